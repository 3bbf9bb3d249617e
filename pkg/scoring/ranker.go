package scoring

import (
	"sort"
	"strings"

	"github.com/umputun/watchscope/pkg/domain"
)

// Rank sorts scored content in strictly descending score order, breaking ties
// by critic score and then lexicographic title so the output is deterministic
// for identical input sets. Ranks are assigned 1..N. A positive topK truncates
// the result; topK <= 0 returns the full ranked set. The input slice is not
// modified.
func Rank(scored []domain.ScoredContent, topK int) []domain.ScoredContent {
	ranked := make([]domain.ScoredContent, len(scored))
	copy(ranked, scored)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		ci, cj := criticTieBreak(ranked[i].Content), criticTieBreak(ranked[j].Content)
		if ci != cj {
			return ci > cj
		}
		return strings.Compare(ranked[i].Content.Title, ranked[j].Content.Title) < 0
	})

	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	if topK > 0 && topK < len(ranked) {
		ranked = ranked[:topK]
	}
	return ranked
}

// criticTieBreak reduces available critic scores to a single comparable value
// on the 0-10 scale
func criticTieBreak(content *domain.ContentItem) float64 {
	if content.IMDBScore != nil {
		return *content.IMDBScore
	}
	if content.RTScore != nil {
		return float64(*content.RTScore) / 10
	}
	return 0
}
