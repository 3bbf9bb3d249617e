package recommender

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/watchscope/pkg/domain"
	"github.com/umputun/watchscope/pkg/forum"
	"github.com/umputun/watchscope/pkg/scoring"
)

// defaultLimit caps the recommendation list when the request doesn't say
const defaultLimit = 10

// Forum fetches discussion data from the upstream forum API
type Forum interface {
	SearchDiscussions(ctx context.Context, query string) (*forum.SearchResult, error)
	FetchCommentsForTopPosts(ctx context.Context, posts []forum.Post, limit int) []*forum.CommentThread
}

// SignalStore caches computed social signals
type SignalStore interface {
	GetSignal(ctx context.Context, title string) (*domain.SocialSignal, error)
	SaveSignal(ctx context.Context, title string, signal *domain.SocialSignal) error
}

// Catalog queries the content catalog
type Catalog interface {
	FindContent(ctx context.Context, filter *domain.ContentFilter) ([]*domain.ContentItem, error)
}

// Analyzer computes sentiment over a set of comments
type Analyzer interface {
	Analyze(comments []domain.RawComment) domain.CommentSentimentAnalysis
}

// Classifier assigns a buzz label from analysis and comment volume
type Classifier interface {
	Classify(analysis domain.CommentSentimentAnalysis, volume int) domain.BuzzLabel
}

// Extractor pulls text out of pages linked by body-less posts, optional
type Extractor interface {
	Extract(ctx context.Context, urlStr string) (string, error)
}

// Recommender drives the full pipeline: candidate selection from the catalog,
// social signal mining per candidate, scoring and ranking
type Recommender struct {
	forum      Forum
	signals    SignalStore
	catalog    Catalog
	analyzer   Analyzer
	classifier Classifier
	extractor  Extractor
	scorer     *scoring.Scorer
	questions  []domain.QuizQuestion
	signalTTL  time.Duration
}

// Params collects the recommender's dependencies
type Params struct {
	Forum      Forum
	Signals    SignalStore
	Catalog    Catalog
	Analyzer   Analyzer
	Classifier Classifier
	Extractor  Extractor // optional, nil disables linked-page extraction
	Scorer     *scoring.Scorer
	Questions  []domain.QuizQuestion
	SignalTTL  time.Duration
}

// New creates a recommender
func New(p Params) *Recommender {
	ttl := p.SignalTTL
	if ttl == 0 {
		ttl = time.Hour
	}
	return &Recommender{
		forum:      p.Forum,
		signals:    p.Signals,
		catalog:    p.Catalog,
		analyzer:   p.Analyzer,
		classifier: p.Classifier,
		extractor:  p.Extractor,
		scorer:     p.Scorer,
		questions:  p.Questions,
		signalTTL:  ttl,
	}
}

// Request is one recommendation request. Variant is optional, sessions without
// an explicit variant get a stable hash-based assignment.
type Request struct {
	SessionID string         `json:"session_id"`
	Answers   domain.Answers `json:"answers"`
	Variant   domain.Variant `json:"variant,omitempty"`
	Limit     int            `json:"limit,omitempty"`
}

// Recommend runs the pipeline and returns the ranked list together with the
// variant that produced it
func (r *Recommender) Recommend(ctx context.Context, req Request) ([]domain.ScoredContent, domain.Variant, error) {
	if req.SessionID == "" {
		return nil, "", fmt.Errorf("session id is required")
	}
	if err := req.Answers.Validate(r.questions); err != nil {
		return nil, "", fmt.Errorf("invalid answers: %w", err)
	}

	variant := req.Variant
	if !variant.Valid() {
		variant = assignVariant(req.SessionID)
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	candidates, err := r.candidates(ctx, req.Answers)
	if err != nil {
		return nil, "", fmt.Errorf("select candidates: %w", err)
	}
	if len(candidates) == 0 {
		return []domain.ScoredContent{}, variant, nil
	}

	scored := make([]domain.ScoredContent, 0, len(candidates))
	for _, item := range candidates {
		signal := r.signalFor(ctx, item.Title)
		item.SocialSignal = signal

		score, factors := r.scorer.Score(item, req.Answers, signal, variant)
		scored = append(scored, domain.ScoredContent{
			Content: item,
			Score:   score,
			Variant: variant,
			Factors: factors,
		})
	}

	return scoring.Rank(scored, limit), variant, nil
}

// candidates pulls catalog items matching the genre answer and drops anything
// over the maturity ceiling before scoring
func (r *Recommender) candidates(ctx context.Context, answers domain.Answers) ([]*domain.ContentItem, error) {
	filter := &domain.ContentFilter{}
	if ans, ok := answers.Get(domain.QuestionGenres); ok {
		filter.Genres = ans.Values
	}

	items, err := r.catalog.FindContent(ctx, filter)
	if err != nil {
		return nil, err
	}

	ceiling := ""
	if ans, ok := answers.Get(domain.QuestionMaturity); ok {
		ceiling = ans.First()
	}

	kept := items[:0]
	for _, item := range items {
		if !scoring.RatingAllowed(ceiling, item.Rating) {
			continue
		}
		kept = append(kept, item)
	}
	return kept, nil
}

// signalFor returns the social signal for a title, serving from cache while
// fresh. Any failure along the way degrades to the neutral unknown signal so
// one flaky upstream call never sinks the whole request.
func (r *Recommender) signalFor(ctx context.Context, title string) *domain.SocialSignal {
	if cached, err := r.signals.GetSignal(ctx, title); err == nil && cached != nil {
		if time.Since(cached.FetchedAt) < r.signalTTL {
			return cached
		}
	} else if err != nil {
		lgr.Printf("[WARN] signal cache lookup for %q failed: %v", title, err)
	}

	signal, err := r.MineSignal(ctx, title)
	if err != nil {
		lgr.Printf("[WARN] social signal for %q unavailable: %v", title, err)
		return domain.UnknownSignal()
	}

	if err := r.signals.SaveSignal(ctx, title, signal); err != nil {
		lgr.Printf("[WARN] failed to cache signal for %q: %v", title, err)
	}
	return signal
}

// MineSignal fetches and analyzes the forum discussion around a title. Volume
// is the total declared comment count across all found posts, while sentiment
// runs over the comments actually fetched from the top posts.
func (r *Recommender) MineSignal(ctx context.Context, title string) (*domain.SocialSignal, error) {
	search, err := r.forum.SearchDiscussions(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("search discussions: %w", err)
	}

	volume := 0
	for _, post := range search.Posts {
		volume += post.NumComments
	}

	threads := r.forum.FetchCommentsForTopPosts(ctx, search.Posts, 0)
	var comments []domain.RawComment
	for _, thread := range threads {
		comments = append(comments, thread.Comments...)
	}

	// link-only posts carry no text of their own, pull the linked page instead
	if r.extractor != nil {
		if body, postID, ok := r.extractLinked(ctx, search.Posts); ok {
			comments = append(comments, domain.RawComment{Body: body, PostID: postID})
		}
	}

	analysis := r.analyzer.Analyze(comments)
	return &domain.SocialSignal{
		Buzz:          r.classifier.Classify(analysis, volume),
		Analysis:      analysis,
		CommentVolume: volume,
		FetchedAt:     time.Now(),
	}, nil
}

// extractLinked finds the first body-less post linking out and extracts the
// linked page's text
func (r *Recommender) extractLinked(ctx context.Context, posts []forum.Post) (body, postID string, ok bool) {
	for _, post := range posts {
		if post.SelfText != "" || post.URL == "" {
			continue
		}
		text, err := r.extractor.Extract(ctx, post.URL)
		if err != nil {
			lgr.Printf("[DEBUG] extraction for %s failed: %v", post.URL, err)
			return "", "", false
		}
		return text, post.ID, true
	}
	return "", "", false
}

// Questions returns the quiz question catalog served to clients
func (r *Recommender) Questions() []domain.QuizQuestion {
	return r.questions
}

// assignVariant hashes the session id to a stable variant so a session always
// sees the same algorithm
func assignVariant(sessionID string) domain.Variant {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	if h.Sum32()%2 == 0 {
		return domain.VariantA
	}
	return domain.VariantB
}
