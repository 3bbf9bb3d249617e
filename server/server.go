package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"

	"github.com/umputun/watchscope/pkg/domain"
	"github.com/umputun/watchscope/pkg/forum"
	"github.com/umputun/watchscope/pkg/recommender"
)

// Server represents HTTP server instance
type Server struct {
	config     ConfigProvider
	rec        Recommender
	forum      ForumClient
	recStore   RecommendationStore
	fbStore    FeedbackStore
	summarizer Summarizer
	version    string
	debug      bool

	lock       sync.Mutex
	httpServer *http.Server
	router     *routegroup.Bundle
}

// ConfigProvider provides server configuration
type ConfigProvider interface {
	GetServerConfig() (listen string, timeout time.Duration)
}

// Recommender runs the recommendation pipeline
type Recommender interface {
	Recommend(ctx context.Context, req recommender.Request) ([]domain.ScoredContent, domain.Variant, error)
	Questions() []domain.QuizQuestion
}

// ForumClient serves the raw discussion passthrough endpoint
type ForumClient interface {
	SearchDiscussions(ctx context.Context, query string) (*forum.SearchResult, error)
	FetchCommentsForTopPosts(ctx context.Context, posts []forum.Post, limit int) []*forum.CommentThread
}

// RecommendationStore persists ranked recommendation sets
type RecommendationStore interface {
	SaveRecommendations(ctx context.Context, sessionID string, items []domain.ScoredContent) error
}

// FeedbackStore persists and lists the feedback log
type FeedbackStore interface {
	AddFeedback(ctx context.Context, item *domain.FeedbackItem) error
	ListFeedback(ctx context.Context) ([]domain.FeedbackItem, error)
}

// Summarizer optionally digests the top pick's discussion
type Summarizer interface {
	Enabled() bool
	Summarize(ctx context.Context, title string, signal *domain.SocialSignal, samples []string) (string, error)
}

// Params collects server dependencies
type Params struct {
	Config     ConfigProvider
	Rec        Recommender
	Forum      ForumClient
	RecStore   RecommendationStore
	FbStore    FeedbackStore
	Summarizer Summarizer
	Version    string
	Debug      bool
}

// New initializes a new server instance
func New(p Params) *Server {
	s := &Server{
		config:     p.Config,
		rec:        p.Rec,
		forum:      p.Forum,
		recStore:   p.RecStore,
		fbStore:    p.FbStore,
		summarizer: p.Summarizer,
		version:    p.Version,
		debug:      p.Debug,
		router:     routegroup.New(http.NewServeMux()),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Run starts the HTTP server and handles graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	listen, timeout := s.config.GetServerConfig()
	lgr.Printf("[INFO] starting server on %s", listen)

	s.lock.Lock()
	s.httpServer = &http.Server{
		Addr:         listen,
		Handler:      s.router,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	}
	s.lock.Unlock()

	go func() {
		<-ctx.Done()
		lgr.Printf("[INFO] shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			lgr.Printf("[WARN] server shutdown error: %v", err)
		}
	}()

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

// Router exposes the configured handler, used by tests
func (s *Server) Router() http.Handler {
	return s.router
}

// setupMiddleware configures standard middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(rest.AppInfo("watchscope", "umputun", s.version))
	s.router.Use(rest.Ping)

	if s.debug {
		s.router.Use(logger.New(logger.Log(lgr.Default()), logger.Prefix("[DEBUG]")).Handler)
	}

	s.router.Use(rest.Recoverer(lgr.Default()))
	s.router.Use(rest.Throttle(100))
	s.router.Use(rest.SizeLimit(1024 * 1024)) // 1MB
}

// setupRoutes configures application routes
func (s *Server) setupRoutes() {
	s.router.HandleFunc("GET /recommendations/social-signal", s.socialSignalHandler)

	s.router.Mount("/api/v1").Route(func(r *routegroup.Bundle) {
		r.HandleFunc("GET /status", s.statusHandler)
		r.HandleFunc("GET /questions", s.questionsHandler)
		r.HandleFunc("POST /recommendations", s.recommendationsHandler)
		r.HandleFunc("POST /feedback", s.feedbackHandler)
		r.HandleFunc("GET /stats", s.statsHandler)
	})
}

// renderJSON sends JSON response
func renderJSON(w http.ResponseWriter, _ *http.Request, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			lgr.Printf("[ERROR] can't encode response to JSON: %v", err)
		}
	}
}

// renderError sends error response as JSON
func renderError(w http.ResponseWriter, r *http.Request, err error, code int) {
	errMsg := "unknown error"
	if err != nil {
		errMsg = err.Error()
	}
	renderJSON(w, r, code, map[string]string{"error": errMsg})
}
