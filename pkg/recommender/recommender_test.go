package recommender

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/watchscope/pkg/buzz"
	"github.com/umputun/watchscope/pkg/config"
	"github.com/umputun/watchscope/pkg/domain"
	"github.com/umputun/watchscope/pkg/forum"
	"github.com/umputun/watchscope/pkg/scoring"
	"github.com/umputun/watchscope/pkg/sentiment"
)

type fakeForum struct {
	searchCalls int
	posts       []forum.Post
	threads     []*forum.CommentThread
	searchErr   error
}

func (f *fakeForum) SearchDiscussions(_ context.Context, _ string) (*forum.SearchResult, error) {
	f.searchCalls++
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return &forum.SearchResult{Posts: f.posts}, nil
}

func (f *fakeForum) FetchCommentsForTopPosts(_ context.Context, _ []forum.Post, _ int) []*forum.CommentThread {
	return f.threads
}

type fakeSignals struct {
	cache   map[string]*domain.SocialSignal
	saved   map[string]*domain.SocialSignal
	getErr  error
	saveErr error
}

func newFakeSignals() *fakeSignals {
	return &fakeSignals{cache: map[string]*domain.SocialSignal{}, saved: map[string]*domain.SocialSignal{}}
}

func (f *fakeSignals) GetSignal(_ context.Context, title string) (*domain.SocialSignal, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.cache[title], nil
}

func (f *fakeSignals) SaveSignal(_ context.Context, title string, signal *domain.SocialSignal) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved[title] = signal
	return nil
}

type fakeCatalog struct {
	items []*domain.ContentItem
	err   error
}

func (f *fakeCatalog) FindContent(_ context.Context, _ *domain.ContentFilter) ([]*domain.ContentItem, error) {
	return f.items, f.err
}

func testRecommender(t *testing.T, f *fakeForum, signals *fakeSignals, cat *fakeCatalog) *Recommender {
	t.Helper()
	cfg := config.Default()
	return New(Params{
		Forum:      f,
		Signals:    signals,
		Catalog:    cat,
		Analyzer:   sentiment.NewAnalyzer(),
		Classifier: buzz.NewClassifier(cfg.GetBuzzConfig()),
		Scorer:     scoring.NewScorer(cfg.GetScoringConfig()),
		Questions:  cfg.GetQuestions(),
		SignalTTL:  time.Hour,
	})
}

func validAnswers() domain.Answers {
	return domain.Answers{
		{QuestionID: domain.QuestionGenres, Values: []string{"action", "sci-fi"}},
		{QuestionID: domain.QuestionMood, Values: []string{"thrill"}},
		{QuestionID: domain.QuestionSize, Values: []string{"movie"}},
		{QuestionID: domain.QuestionRecency, Values: []string{"any"}},
		{QuestionID: domain.QuestionMaturity, Values: []string{"PG-13"}},
	}
}

func catalogItems() []*domain.ContentItem {
	return []*domain.ContentItem{
		{ID: 1, Title: "Edge of Orbit", Type: domain.ContentMovie, Genres: []string{"action", "sci-fi"},
			ReleaseYear: 2025, Rating: "PG-13"},
		{ID: 2, Title: "Quiet Harbor", Type: domain.ContentMovie, Genres: []string{"action"},
			ReleaseYear: 2024, Rating: "PG"},
		{ID: 3, Title: "Blood Tide", Type: domain.ContentMovie, Genres: []string{"action"},
			ReleaseYear: 2025, Rating: "R"},
	}
}

func TestRecommender_Recommend(t *testing.T) {
	t.Run("ranked output with contiguous ranks", func(t *testing.T) {
		f := &fakeForum{posts: []forum.Post{{ID: "p1", Permalink: "/r/tv/p1/", NumComments: 30}},
			threads: []*forum.CommentThread{{PostID: "p1", Comments: []domain.RawComment{{Body: "amazing"}, {Body: "loved it"}}}}}
		rec := testRecommender(t, f, newFakeSignals(), &fakeCatalog{items: catalogItems()})

		ranked, variant, err := rec.Recommend(context.Background(), Request{SessionID: "sess-1", Answers: validAnswers()})
		require.NoError(t, err)
		assert.True(t, variant.Valid())

		// the R-rated item is excluded before scoring under a PG-13 ceiling
		require.Len(t, ranked, 2)
		for i, item := range ranked {
			assert.Equal(t, i+1, item.Rank)
			assert.Equal(t, variant, item.Variant)
			assert.NotNil(t, item.Content.SocialSignal)
		}
		assert.GreaterOrEqual(t, ranked[0].Score, ranked[1].Score)
	})

	t.Run("missing session id", func(t *testing.T) {
		rec := testRecommender(t, &fakeForum{}, newFakeSignals(), &fakeCatalog{})
		_, _, err := rec.Recommend(context.Background(), Request{Answers: validAnswers()})
		assert.Error(t, err)
	})

	t.Run("unknown question rejected", func(t *testing.T) {
		rec := testRecommender(t, &fakeForum{}, newFakeSignals(), &fakeCatalog{})
		answers := domain.Answers{{QuestionID: "favorite-color", Values: []string{"blue"}}}
		_, _, err := rec.Recommend(context.Background(), Request{SessionID: "s", Answers: answers})
		assert.Error(t, err)
	})

	t.Run("multi-value single-select rejected", func(t *testing.T) {
		rec := testRecommender(t, &fakeForum{}, newFakeSignals(), &fakeCatalog{})
		answers := domain.Answers{{QuestionID: domain.QuestionMood, Values: []string{"laugh", "cry"}}}
		_, _, err := rec.Recommend(context.Background(), Request{SessionID: "s", Answers: answers})
		assert.Error(t, err)
	})

	t.Run("empty catalog is not an error", func(t *testing.T) {
		rec := testRecommender(t, &fakeForum{}, newFakeSignals(), &fakeCatalog{})
		ranked, variant, err := rec.Recommend(context.Background(), Request{SessionID: "s", Answers: validAnswers()})
		require.NoError(t, err)
		assert.True(t, variant.Valid())
		assert.Empty(t, ranked)
	})

	t.Run("explicit variant honored", func(t *testing.T) {
		rec := testRecommender(t, &fakeForum{}, newFakeSignals(), &fakeCatalog{items: catalogItems()})
		_, variant, err := rec.Recommend(context.Background(),
			Request{SessionID: "s", Answers: validAnswers(), Variant: domain.VariantB})
		require.NoError(t, err)
		assert.Equal(t, domain.VariantB, variant)
	})

	t.Run("limit truncates", func(t *testing.T) {
		rec := testRecommender(t, &fakeForum{}, newFakeSignals(), &fakeCatalog{items: catalogItems()})
		ranked, _, err := rec.Recommend(context.Background(),
			Request{SessionID: "s", Answers: validAnswers(), Limit: 1})
		require.NoError(t, err)
		assert.Len(t, ranked, 1)
	})
}

func TestRecommender_SignalDegradation(t *testing.T) {
	t.Run("forum failure degrades to unknown signal", func(t *testing.T) {
		f := &fakeForum{searchErr: &forum.FetchError{Kind: forum.ErrTimeout}}
		signals := newFakeSignals()
		rec := testRecommender(t, f, signals, &fakeCatalog{items: catalogItems()[:1]})

		ranked, _, err := rec.Recommend(context.Background(), Request{SessionID: "s", Answers: validAnswers()})
		require.NoError(t, err, "upstream failure must not fail the request")
		require.Len(t, ranked, 1)

		signal := ranked[0].Content.SocialSignal
		require.NotNil(t, signal)
		assert.Equal(t, domain.BuzzLow, signal.Buzz)
		assert.Equal(t, domain.SentimentUnknown, signal.Analysis.Label)
		assert.Zero(t, ranked[0].Factors["social"], "degraded signal contributes nothing")

		assert.Empty(t, signals.saved, "failed signals are not cached")
	})

	t.Run("fresh cache skips the forum", func(t *testing.T) {
		f := &fakeForum{}
		signals := newFakeSignals()
		signals.cache["Edge of Orbit"] = &domain.SocialSignal{
			Buzz:      domain.BuzzPopular,
			Analysis:  domain.CommentSentimentAnalysis{AnalyzedComments: 20, AverageSentiment: 0.3},
			FetchedAt: time.Now(),
		}
		rec := testRecommender(t, f, signals, &fakeCatalog{items: catalogItems()[:1]})

		ranked, _, err := rec.Recommend(context.Background(), Request{SessionID: "s", Answers: validAnswers()})
		require.NoError(t, err)
		require.Len(t, ranked, 1)
		assert.Zero(t, f.searchCalls)
		assert.Equal(t, domain.BuzzPopular, ranked[0].Content.SocialSignal.Buzz)
	})

	t.Run("cache errors tolerated", func(t *testing.T) {
		f := &fakeForum{posts: []forum.Post{{ID: "p1", Permalink: "/p1/", NumComments: 5}},
			threads: []*forum.CommentThread{{PostID: "p1", Comments: []domain.RawComment{{Body: "solid"}}}}}
		signals := newFakeSignals()
		signals.getErr = context.DeadlineExceeded
		signals.saveErr = context.DeadlineExceeded
		rec := testRecommender(t, f, signals, &fakeCatalog{items: catalogItems()[:1]})

		ranked, _, err := rec.Recommend(context.Background(), Request{SessionID: "s", Answers: validAnswers()})
		require.NoError(t, err)
		require.Len(t, ranked, 1)
		assert.Equal(t, 1, f.searchCalls)
	})

	t.Run("stale cache refetches", func(t *testing.T) {
		f := &fakeForum{posts: []forum.Post{{ID: "p1", Permalink: "/p1/", NumComments: 5}},
			threads: []*forum.CommentThread{{PostID: "p1", Comments: []domain.RawComment{{Body: "solid"}}}}}
		signals := newFakeSignals()
		signals.cache["Edge of Orbit"] = &domain.SocialSignal{
			Buzz:      domain.BuzzPopular,
			FetchedAt: time.Now().Add(-2 * time.Hour),
		}
		rec := testRecommender(t, f, signals, &fakeCatalog{items: catalogItems()[:1]})

		_, _, err := rec.Recommend(context.Background(), Request{SessionID: "s", Answers: validAnswers()})
		require.NoError(t, err)
		assert.Equal(t, 1, f.searchCalls)
		assert.Contains(t, signals.saved, "Edge of Orbit")
	})
}

func TestRecommender_MineSignal(t *testing.T) {
	f := &fakeForum{
		posts: []forum.Post{
			{ID: "p1", Permalink: "/p1/", NumComments: 80},
			{ID: "p2", Permalink: "/p2/", NumComments: 40},
		},
		threads: []*forum.CommentThread{
			{PostID: "p1", Comments: []domain.RawComment{{Body: "amazing"}, {Body: "loved it"}, {Body: "brilliant"}}},
		},
	}
	rec := testRecommender(t, f, newFakeSignals(), &fakeCatalog{})

	signal, err := rec.MineSignal(context.Background(), "Edge of Orbit")
	require.NoError(t, err)

	// volume is the declared comment count across all posts, not just fetched ones
	assert.Equal(t, 120, signal.CommentVolume)
	assert.Equal(t, 3, signal.Analysis.AnalyzedComments)
	assert.Equal(t, domain.SentimentPositive, signal.Analysis.Label)
	assert.Equal(t, domain.BuzzTrendingPositive, signal.Buzz)
	assert.False(t, signal.FetchedAt.IsZero())
}

func TestAssignVariant(t *testing.T) {
	t.Run("stable per session", func(t *testing.T) {
		for _, id := range []string{"alpha", "beta", "gamma", "delta"} {
			assert.Equal(t, assignVariant(id), assignVariant(id))
		}
	})

	t.Run("both variants reachable", func(t *testing.T) {
		seen := map[domain.Variant]bool{}
		for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
			seen[assignVariant(id)] = true
		}
		assert.True(t, seen[domain.VariantA])
		assert.True(t, seen[domain.VariantB])
	})
}
