package domain

import "time"

// ContentType distinguishes catalog entries by format
type ContentType string

// content types known to the catalog
const (
	ContentMovie       ContentType = "movie"
	ContentMiniSeries  ContentType = "mini-series"
	ContentSeason      ContentType = "season"
	ContentMultiSeason ContentType = "multi-season"
)

// ContentItem represents a single watchable title from the catalog.
// SocialSignal is populated per recommendation request and never persisted
// with the item itself.
type ContentItem struct {
	ID           int64
	Title        string
	Type         ContentType
	Genres       []string
	ReleaseYear  int
	RuntimeMin   int    // runtime in minutes, per episode for series
	Rating       string // maturity rating, e.g. G, PG, PG-13, R, TV-MA
	Platform     string
	IMDBScore    *float64 // 0-10, optional
	RTScore      *int     // 0-100, optional
	CreatedAt    time.Time
	UpdatedAt    time.Time
	SocialSignal *SocialSignal
}

// HasGenre reports whether the item carries the given genre (case-sensitive,
// genres are normalized to lower case at ingest time)
func (c *ContentItem) HasGenre(genre string) bool {
	for _, g := range c.Genres {
		if g == genre {
			return true
		}
	}
	return false
}

// ContentFilter represents filtering criteria for catalog queries
type ContentFilter struct {
	Genres   []string
	Type     ContentType
	Platform string
	MinYear  int // 0 means no lower bound on release year
	Limit    int
}

// ScoredContent is a catalog item with the relevance score assigned by the
// scorer and the rank assigned by the ranker. Rank is zero until ranked.
type ScoredContent struct {
	Content *ContentItem
	Score   float64
	Variant Variant
	Rank    int
	Factors map[string]float64 // per-factor contributions, for explainability
}

// Variant identifies one of the competing scoring weight configurations
type Variant string

// scoring algorithm variants under A/B evaluation
const (
	VariantA Variant = "A"
	VariantB Variant = "B"
)

// Valid reports whether the variant is one of the known configurations
func (v Variant) Valid() bool { return v == VariantA || v == VariantB }
