package scoring

import (
	"time"

	"github.com/umputun/watchscope/pkg/config"
	"github.com/umputun/watchscope/pkg/domain"
)

// moodAffinity maps quiz mood answers to the genres that satisfy them
var moodAffinity = map[string][]string{
	"laugh":  {"comedy", "animation"},
	"cry":    {"drama", "romance"},
	"thrill": {"thriller", "horror", "action"},
	"think":  {"documentary", "drama", "sci-fi"},
	"escape": {"fantasy", "sci-fi", "action", "animation"},
	"chill":  {"comedy", "romance", "animation", "documentary"},
}

// ratingOrder is the maturity ladder used for ceiling checks
var ratingOrder = map[string]int{
	"G": 0, "TV-G": 0,
	"PG": 1, "TV-PG": 1,
	"PG-13": 2, "TV-14": 2,
	"R": 3, "NC-17": 4, "TV-MA": 3,
}

// RatingAllowed reports whether a content rating fits under the selected
// ceiling. Unknown ratings are allowed only under the most permissive ceiling.
func RatingAllowed(ceiling, rating string) bool {
	if ceiling == "" {
		return true
	}
	cv, ok := ratingOrder[ceiling]
	if !ok {
		return true
	}
	rv, ok := ratingOrder[rating]
	if !ok {
		return cv >= ratingOrder["R"]
	}
	return rv <= cv
}

// Scorer computes the relevance score of a content item for a set of quiz
// answers and a social signal. Pure function of its inputs, never mutates them.
type Scorer struct {
	weights map[domain.Variant]config.Weights
	nowYear int
}

// NewScorer creates a scorer with the configured per-variant weights
func NewScorer(cfg config.ScoringConfig) *Scorer {
	return &Scorer{
		weights: map[domain.Variant]config.Weights{
			domain.VariantA: cfg.VariantA,
			domain.VariantB: cfg.VariantB,
		},
		nowYear: time.Now().Year(),
	}
}

// Score combines the bounded per-factor sub-scores under the variant's
// weights. The returned map holds each factor's weighted contribution so
// recommendations stay explainable.
func (s *Scorer) Score(content *domain.ContentItem, answers domain.Answers, social *domain.SocialSignal, variant domain.Variant) (float64, map[string]float64) {
	w := s.weights[variant]

	genre := w.Genre * genreFactor(content, answers)
	vibe := w.Vibe * vibeFactor(content, answers)
	runtime := w.Runtime * runtimeFactor(content, answers)
	recency := w.Recency * s.recencyFactor(content, answers)
	critic := w.Critic * criticFactor(content)
	soc := w.Social * socialFactor(social)

	// fixed summation order, float addition is not associative and map
	// iteration order would make the total drift between calls
	total := genre + vibe + runtime + recency + critic + soc

	factors := map[string]float64{
		"genre":   genre,
		"vibe":    vibe,
		"runtime": runtime,
		"recency": recency,
		"critic":  critic,
		"social":  soc,
	}
	return total, factors
}

// genreFactor is the overlap between quiz-selected genres and the item's
// genre set, normalized by the number of selected genres
func genreFactor(content *domain.ContentItem, answers domain.Answers) float64 {
	ans, ok := answers.Get(domain.QuestionGenres)
	if !ok || len(ans.Values) == 0 {
		return 0
	}
	matched := 0
	for _, g := range ans.Values {
		if content.HasGenre(g) {
			matched++
		}
	}
	return float64(matched) / float64(len(ans.Values))
}

// vibeFactor scores the mood answer through the static mood-to-genre map,
// normalized the same way as the genre factor
func vibeFactor(content *domain.ContentItem, answers domain.Answers) float64 {
	ans, ok := answers.Get(domain.QuestionMood)
	if !ok {
		return 0
	}
	genres := moodAffinity[ans.First()]
	if len(genres) == 0 {
		return 0
	}
	matched := 0
	for _, g := range genres {
		if content.HasGenre(g) {
			matched++
		}
	}
	return float64(matched) / float64(len(genres))
}

// runtimeFactor grades how the item's format matches the commitment answer.
// Adjacent formats get half credit, flexible matches everything.
func runtimeFactor(content *domain.ContentItem, answers domain.Answers) float64 {
	ans, ok := answers.Get(domain.QuestionSize)
	if !ok {
		return 0
	}
	want := ans.First()
	if want == "flexible" {
		return 1
	}
	if string(content.Type) == want {
		return 1
	}

	// adjacency on the commitment ladder: movie < mini-series < season < multi-season
	ladder := map[domain.ContentType]int{
		domain.ContentMovie: 0, domain.ContentMiniSeries: 1,
		domain.ContentSeason: 2, domain.ContentMultiSeason: 3,
	}
	wantPos, ok1 := ladder[domain.ContentType(want)]
	havePos, ok2 := ladder[content.Type]
	if ok1 && ok2 && abs(wantPos-havePos) == 1 {
		return 0.5
	}
	return 0
}

// recencyFactor grades the release year against the freshness band selected
func (s *Scorer) recencyFactor(content *domain.ContentItem, answers domain.Answers) float64 {
	ans, ok := answers.Get(domain.QuestionRecency)
	if !ok {
		return 0
	}
	age := s.nowYear - content.ReleaseYear
	if age < 0 {
		age = 0
	}
	switch ans.First() {
	case "brand-new":
		switch {
		case age <= 1:
			return 1
		case age <= 2:
			return 0.5
		}
		return 0
	case "recent":
		switch {
		case age <= 3:
			return 1
		case age <= 5:
			return 0.5
		}
		return 0
	case "last-decade":
		if age <= 10 {
			return 1
		}
		return 0
	case "any":
		return 1
	}
	return 0
}

// criticFactor normalizes available critic scores into [0, 1]; items without
// any critic score sit at the neutral midpoint rather than the bottom
func criticFactor(content *domain.ContentItem) float64 {
	var sum float64
	var n int
	if content.IMDBScore != nil {
		sum += clamp(*content.IMDBScore/10, 0, 1)
		n++
	}
	if content.RTScore != nil {
		sum += clamp(float64(*content.RTScore)/100, 0, 1)
		n++
	}
	if n == 0 {
		return 0.5
	}
	return sum / float64(n)
}

// socialFactor maps buzz and sentiment into [-1, 1]. An absent or unknown
// signal contributes exactly zero, which keeps variants identical on items
// with no discussion data.
func socialFactor(social *domain.SocialSignal) float64 {
	if social == nil || social.Analysis.AnalyzedComments == 0 {
		return 0
	}

	var base float64
	switch social.Buzz {
	case domain.BuzzTrendingPositive:
		base = 1.0
	case domain.BuzzPopular:
		base = 0.6
	case domain.BuzzTrendingMixed:
		base = 0.4
	case domain.BuzzNiche:
		base = 0.3
	case domain.BuzzControversial:
		base = 0.2
	case domain.BuzzTrendingNegative:
		base = -0.5
	case domain.BuzzLow:
		base = 0
	}

	// strongly negative sentiment subtracts, positive adds
	adjusted := base + clamp(social.Analysis.AverageSentiment, -1, 1)*0.5
	return clamp(adjusted, -1, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
