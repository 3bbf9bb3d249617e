package feedback

import (
	"sort"

	"github.com/umputun/watchscope/pkg/domain"
)

// rank cutoff for top-K accuracy
const topRankCutoff = 3

// Report is the full accuracy picture derived from the feedback log
type Report struct {
	Overall   domain.AlgorithmStats                    `json:"overall"`
	ByVariant map[domain.Variant]domain.AlgorithmStats `json:"by_variant"`
	ByGenre   []domain.GenreStats                      `json:"by_genre"`
}

// BuildReport computes overall, per-variant and per-genre accuracy from the
// complete feedback log. All percentages are 0 when their denominator is 0.
func BuildReport(items []domain.FeedbackItem) Report {
	report := Report{
		Overall:   Stats(items),
		ByVariant: make(map[domain.Variant]domain.AlgorithmStats, 2),
	}

	for _, variant := range []domain.Variant{domain.VariantA, domain.VariantB} {
		var subset []domain.FeedbackItem
		for _, item := range items {
			if item.Variant == variant {
				subset = append(subset, item)
			}
		}
		report.ByVariant[variant] = Stats(subset)
	}

	report.ByGenre = StatsByGenre(items)
	return report
}

// Stats computes accuracy metrics over a set of feedback items
func Stats(items []domain.FeedbackItem) domain.AlgorithmStats {
	stats := domain.AlgorithmStats{Total: len(items)}

	for _, item := range items {
		liked := item.Verdict == domain.VerdictAccept
		if liked {
			stats.Liked++
		}
		if item.Rank >= 1 && item.Rank <= topRankCutoff {
			stats.Top3Total++
			if liked {
				stats.Top3Liked++
			}
		}
	}

	stats.Accuracy = percentage(stats.Liked, stats.Total)
	stats.Top3Accuracy = percentage(stats.Top3Liked, stats.Top3Total)
	return stats
}

// StatsByGenre computes the per-genre accuracy breakdown. A multi-genre item
// counts once per genre it belongs to. Output is sorted by genre name.
func StatsByGenre(items []domain.FeedbackItem) []domain.GenreStats {
	byGenre := make(map[string]*domain.GenreStats)

	for _, item := range items {
		for _, genre := range item.Genres {
			gs, ok := byGenre[genre]
			if !ok {
				gs = &domain.GenreStats{Genre: genre}
				byGenre[genre] = gs
			}
			gs.Total++
			if item.Verdict == domain.VerdictAccept {
				gs.Liked++
			}
		}
	}

	result := make([]domain.GenreStats, 0, len(byGenre))
	for _, gs := range byGenre {
		gs.Accuracy = percentage(gs.Liked, gs.Total)
		result = append(result, *gs)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Genre < result[j].Genre })
	return result
}

// percentage returns liked/total as a percent, 0 for an empty denominator
func percentage(liked, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(liked) / float64(total) * 100
}
