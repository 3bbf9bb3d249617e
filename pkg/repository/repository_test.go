package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/watchscope/pkg/domain"
)

func setupTestRepos(t *testing.T) *Repositories {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc", filepath.Join(t.TempDir(), "test.db"))
	repos, err := NewRepositories(context.Background(), Config{DSN: dsn})
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })
	return repos
}

func TestNewRepositories(t *testing.T) {
	repos := setupTestRepos(t)
	assert.NoError(t, repos.Ping(context.Background()))
	assert.NotNil(t, repos.Content)
	assert.NotNil(t, repos.Recommendation)
	assert.NotNil(t, repos.Feedback)
	assert.NotNil(t, repos.Signal)
}

func TestContentRepository(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()

	imdb := 8.2
	item := &domain.ContentItem{
		Title:       "Edge of Orbit",
		Type:        domain.ContentMovie,
		Genres:      []string{"action", "sci-fi"},
		ReleaseYear: 2025,
		RuntimeMin:  128,
		Rating:      "PG-13",
		Platform:    "netflix",
		IMDBScore:   &imdb,
	}

	t.Run("upsert sets id", func(t *testing.T) {
		require.NoError(t, repos.Content.UpsertContent(ctx, item))
		assert.NotZero(t, item.ID)
	})

	t.Run("get roundtrip", func(t *testing.T) {
		got, err := repos.Content.GetContent(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, "Edge of Orbit", got.Title)
		assert.Equal(t, []string{"action", "sci-fi"}, got.Genres)
		require.NotNil(t, got.IMDBScore)
		assert.InDelta(t, 8.2, *got.IMDBScore, 0.001)
		assert.Nil(t, got.RTScore)
	})

	t.Run("upsert on same title and year updates instead of duplicating", func(t *testing.T) {
		updated := &domain.ContentItem{
			Title:       "Edge of Orbit",
			Type:        domain.ContentMovie,
			Genres:      []string{"action"},
			ReleaseYear: 2025,
			RuntimeMin:  130,
			Rating:      "PG-13",
		}
		require.NoError(t, repos.Content.UpsertContent(ctx, updated))
		assert.Equal(t, item.ID, updated.ID)

		got, err := repos.Content.GetContent(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, 130, got.RuntimeMin)
		// missing scores on re-import keep the previously known values
		require.NotNil(t, got.IMDBScore)
		assert.InDelta(t, 8.2, *got.IMDBScore, 0.001)
	})

	t.Run("get missing", func(t *testing.T) {
		_, err := repos.Content.GetContent(ctx, 99999)
		assert.Error(t, err)
	})

	t.Run("find by genre", func(t *testing.T) {
		other := &domain.ContentItem{Title: "Quiet Harbor", Type: domain.ContentMiniSeries,
			Genres: []string{"drama"}, ReleaseYear: 2024, Rating: "TV-MA"}
		require.NoError(t, repos.Content.UpsertContent(ctx, other))

		found, err := repos.Content.FindContent(ctx, &domain.ContentFilter{Genres: []string{"sci-fi"}})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "Edge of Orbit", found[0].Title)

		// any-of across requested genres
		found, err = repos.Content.FindContent(ctx, &domain.ContentFilter{Genres: []string{"sci-fi", "drama"}})
		require.NoError(t, err)
		assert.Len(t, found, 2)
	})

	t.Run("find by type with limit", func(t *testing.T) {
		found, err := repos.Content.FindContent(ctx, &domain.ContentFilter{Type: domain.ContentMiniSeries, Limit: 5})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "Quiet Harbor", found[0].Title)
	})

	t.Run("min year bound", func(t *testing.T) {
		found, err := repos.Content.FindContent(ctx, &domain.ContentFilter{MinYear: 2025})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "Edge of Orbit", found[0].Title)
	})

	t.Run("empty filter returns everything", func(t *testing.T) {
		found, err := repos.Content.FindContent(ctx, &domain.ContentFilter{})
		require.NoError(t, err)
		assert.Len(t, found, 2)
	})
}

func TestRecommendationRepository(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()

	content := &domain.ContentItem{Title: "Edge of Orbit", ReleaseYear: 2025}
	require.NoError(t, repos.Content.UpsertContent(ctx, content))

	items := []domain.ScoredContent{
		{Content: content, Score: 0.82, Rank: 1, Variant: domain.VariantA},
	}

	t.Run("save and read back in rank order", func(t *testing.T) {
		require.NoError(t, repos.Recommendation.SaveRecommendations(ctx, "sess-1", items))

		got, err := repos.Recommendation.GetBySession(ctx, "sess-1")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Edge of Orbit", got[0].Content.Title)
		assert.Equal(t, 1, got[0].Rank)
		assert.Equal(t, domain.VariantA, got[0].Variant)
		assert.InDelta(t, 0.82, got[0].Score, 0.001)
	})

	t.Run("saving again replaces the session set", func(t *testing.T) {
		second := &domain.ContentItem{Title: "Quiet Harbor", ReleaseYear: 2024}
		require.NoError(t, repos.Content.UpsertContent(ctx, second))

		replacement := []domain.ScoredContent{
			{Content: second, Score: 0.7, Rank: 1, Variant: domain.VariantA},
			{Content: content, Score: 0.6, Rank: 2, Variant: domain.VariantA},
		}
		require.NoError(t, repos.Recommendation.SaveRecommendations(ctx, "sess-1", replacement))

		got, err := repos.Recommendation.GetBySession(ctx, "sess-1")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "Quiet Harbor", got[0].Content.Title)
	})

	t.Run("unknown session is empty", func(t *testing.T) {
		got, err := repos.Recommendation.GetBySession(ctx, "nope")
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestFeedbackRepository(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()

	t.Run("add assigns id", func(t *testing.T) {
		item := &domain.FeedbackItem{
			ContentID: 1, Title: "Edge of Orbit", Verdict: domain.VerdictAccept,
			Rank: 1, Genres: []string{"action"}, Variant: domain.VariantA,
		}
		require.NoError(t, repos.Feedback.AddFeedback(ctx, item))
		assert.NotZero(t, item.ID)
	})

	t.Run("list preserves insertion order", func(t *testing.T) {
		second := &domain.FeedbackItem{
			ContentID: 2, Title: "Quiet Harbor", Verdict: domain.VerdictReject,
			Rank: 4, Genres: []string{"drama"}, Variant: domain.VariantB,
		}
		require.NoError(t, repos.Feedback.AddFeedback(ctx, second))

		got, err := repos.Feedback.ListFeedback(ctx)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "Edge of Orbit", got[0].Title)
		assert.Equal(t, "Quiet Harbor", got[1].Title)
		assert.Equal(t, domain.VerdictReject, got[1].Verdict)
		assert.Equal(t, []string{"drama"}, got[1].Genres)
	})
}

func TestSignalRepository(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()

	signal := &domain.SocialSignal{
		Buzz: domain.BuzzTrendingPositive,
		Analysis: domain.CommentSentimentAnalysis{
			TotalComments: 50, AnalyzedComments: 45, AverageSentiment: 0.4,
			Label: domain.SentimentPositive, PositiveCount: 30, NegativeCount: 5, NeutralCount: 10,
			TrendingTopics: []domain.TrendingTopic{{Keyword: "finale", Count: 12, Sentiment: domain.SentimentPositive, Score: 0.5}},
		},
		CommentVolume: 240,
		FetchedAt:     time.Now().UTC().Truncate(time.Second),
	}

	t.Run("missing signal is nil without error", func(t *testing.T) {
		got, err := repos.Signal.GetSignal(ctx, "Unknown Title")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("save and read back", func(t *testing.T) {
		require.NoError(t, repos.Signal.SaveSignal(ctx, "Edge of Orbit", signal))

		got, err := repos.Signal.GetSignal(ctx, "Edge of Orbit")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, domain.BuzzTrendingPositive, got.Buzz)
		assert.Equal(t, 240, got.CommentVolume)
		assert.Equal(t, 45, got.Analysis.AnalyzedComments)
		require.Len(t, got.Analysis.TrendingTopics, 1)
		assert.Equal(t, "finale", got.Analysis.TrendingTopics[0].Keyword)
	})

	t.Run("save replaces the cached entry", func(t *testing.T) {
		updated := *signal
		updated.Buzz = domain.BuzzControversial
		updated.CommentVolume = 400
		require.NoError(t, repos.Signal.SaveSignal(ctx, "Edge of Orbit", &updated))

		got, err := repos.Signal.GetSignal(ctx, "Edge of Orbit")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, domain.BuzzControversial, got.Buzz)
		assert.Equal(t, 400, got.CommentVolume)
	})
}
