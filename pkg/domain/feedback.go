package domain

import "time"

// Verdict is the user's reaction to a presented recommendation
type Verdict string

// feedback verdicts
const (
	VerdictAccept Verdict = "accept"
	VerdictReject Verdict = "reject"
)

// Valid reports whether the verdict is one of the known values
func (v Verdict) Valid() bool { return v == VerdictAccept || v == VerdictReject }

// FeedbackItem is one append-only entry of the feedback log, recorded when a
// user accepts or rejects a recommendation. Never mutated after creation.
type FeedbackItem struct {
	ID        int64     `json:"id"`
	ContentID int64     `json:"content_id"`
	Title     string    `json:"title"`
	Verdict   Verdict   `json:"verdict"`
	Rank      int       `json:"rank"`
	Genres    []string  `json:"genres"`
	Variant   Variant   `json:"variant"`
	CreatedAt time.Time `json:"created_at"`
}

// AlgorithmStats is derived on demand from the feedback log, never stored
type AlgorithmStats struct {
	Total        int     `json:"total"`
	Liked        int     `json:"liked"`
	Accuracy     float64 `json:"accuracy"`      // percent, 0 when Total == 0
	Top3Total    int     `json:"top3_total"`
	Top3Liked    int     `json:"top3_liked"`
	Top3Accuracy float64 `json:"top3_accuracy"` // percent, 0 when Top3Total == 0
}

// GenreStats is the per-genre accuracy breakdown; a multi-genre item counts
// once per genre it belongs to
type GenreStats struct {
	Genre    string  `json:"genre"`
	Total    int     `json:"total"`
	Liked    int     `json:"liked"`
	Accuracy float64 `json:"accuracy"`
}
