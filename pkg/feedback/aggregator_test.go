package feedback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/watchscope/pkg/domain"
)

func TestStats(t *testing.T) {
	t.Run("empty log yields zeros", func(t *testing.T) {
		stats := Stats(nil)
		assert.Zero(t, stats.Total)
		assert.Zero(t, stats.Accuracy)
		assert.Zero(t, stats.Top3Accuracy)
	})

	t.Run("seven of ten liked with a perfect top three", func(t *testing.T) {
		items := make([]domain.FeedbackItem, 0, 10)
		for i := 1; i <= 10; i++ {
			verdict := domain.VerdictAccept
			if i > 7 {
				verdict = domain.VerdictReject
			}
			items = append(items, domain.FeedbackItem{Rank: i, Verdict: verdict})
		}

		stats := Stats(items)
		assert.Equal(t, 10, stats.Total)
		assert.Equal(t, 7, stats.Liked)
		assert.InDelta(t, 70.0, stats.Accuracy, 0.001)
		assert.Equal(t, 3, stats.Top3Total)
		assert.Equal(t, 3, stats.Top3Liked)
		assert.InDelta(t, 100.0, stats.Top3Accuracy, 0.001)
	})

	t.Run("rejecting a top pick strictly lowers top-3 accuracy", func(t *testing.T) {
		items := []domain.FeedbackItem{
			{Rank: 1, Verdict: domain.VerdictAccept},
			{Rank: 2, Verdict: domain.VerdictAccept},
			{Rank: 3, Verdict: domain.VerdictAccept},
		}
		before := Stats(items).Top3Accuracy

		items[2].Verdict = domain.VerdictReject
		after := Stats(items).Top3Accuracy
		assert.Less(t, after, before)
	})

	t.Run("ranks outside the cutoff do not count toward top-3", func(t *testing.T) {
		items := []domain.FeedbackItem{
			{Rank: 4, Verdict: domain.VerdictAccept},
			{Rank: 0, Verdict: domain.VerdictAccept}, // unranked legacy entry
		}
		stats := Stats(items)
		assert.Zero(t, stats.Top3Total)
		assert.Zero(t, stats.Top3Accuracy)
		assert.InDelta(t, 100.0, stats.Accuracy, 0.001)
	})
}

func TestStatsByGenre(t *testing.T) {
	items := []domain.FeedbackItem{
		{Verdict: domain.VerdictAccept, Genres: []string{"action", "sci-fi"}},
		{Verdict: domain.VerdictReject, Genres: []string{"action"}},
		{Verdict: domain.VerdictAccept, Genres: []string{"drama"}},
	}

	stats := StatsByGenre(items)
	require.Len(t, stats, 3)

	// sorted by genre name
	assert.Equal(t, "action", stats[0].Genre)
	assert.Equal(t, "drama", stats[1].Genre)
	assert.Equal(t, "sci-fi", stats[2].Genre)

	// multi-genre item counted once per genre
	assert.Equal(t, 2, stats[0].Total)
	assert.Equal(t, 1, stats[0].Liked)
	assert.InDelta(t, 50.0, stats[0].Accuracy, 0.001)
	assert.InDelta(t, 100.0, stats[2].Accuracy, 0.001)
}

func TestBuildReport(t *testing.T) {
	items := []domain.FeedbackItem{
		{Rank: 1, Verdict: domain.VerdictAccept, Variant: domain.VariantA, Genres: []string{"comedy"}},
		{Rank: 2, Verdict: domain.VerdictReject, Variant: domain.VariantA, Genres: []string{"comedy"}},
		{Rank: 1, Verdict: domain.VerdictAccept, Variant: domain.VariantB, Genres: []string{"drama"}},
	}

	report := BuildReport(items)

	assert.Equal(t, 3, report.Overall.Total)
	assert.Equal(t, 2, report.Overall.Liked)

	require.Contains(t, report.ByVariant, domain.VariantA)
	require.Contains(t, report.ByVariant, domain.VariantB)
	assert.Equal(t, 2, report.ByVariant[domain.VariantA].Total)
	assert.InDelta(t, 50.0, report.ByVariant[domain.VariantA].Accuracy, 0.001)
	assert.InDelta(t, 100.0, report.ByVariant[domain.VariantB].Accuracy, 0.001)

	require.Len(t, report.ByGenre, 2)
}

func TestBuildReport_EmptyLog(t *testing.T) {
	report := BuildReport(nil)
	assert.Zero(t, report.Overall.Total)
	assert.Zero(t, report.Overall.Accuracy)
	assert.Zero(t, report.ByVariant[domain.VariantA].Accuracy)
	assert.Empty(t, report.ByGenre)
}
