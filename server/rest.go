package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/watchscope/pkg/domain"
	"github.com/umputun/watchscope/pkg/feedback"
	"github.com/umputun/watchscope/pkg/recommender"
)

// statusHandler returns server status
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":  "ok",
		"version": s.version,
		"time":    time.Now().UTC(),
	}
	renderJSON(w, r, http.StatusOK, status)
}

// questionsHandler returns the quiz question catalog
func (s *Server) questionsHandler(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, r, http.StatusOK, map[string]interface{}{"questions": s.rec.Questions()})
}

// socialSignalHandler proxies the forum search for a title, returning the
// upstream payload verbatim. With fetchComments=true the raw comment threads
// of the top posts are attached under commentsData, commentsLimit caps the
// comment count per thread.
func (s *Server) socialSignalHandler(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	if title == "" {
		renderError(w, r, fmt.Errorf("Missing query parameter"), http.StatusBadRequest)
		return
	}

	search, err := s.forum.SearchDiscussions(r.Context(), title)
	if err != nil {
		lgr.Printf("[ERROR] social signal search for %q failed: %v", title, err)
		renderError(w, r, fmt.Errorf("failed to fetch discussion data"), http.StatusInternalServerError)
		return
	}

	if r.URL.Query().Get("fetchComments") != "true" {
		w.Header().Set("Content-Type", "application/json")
		w.Write(search.Raw) //nolint:errcheck // response write
		return
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(search.Raw, &payload); err != nil {
		lgr.Printf("[ERROR] can't decode search payload for %q: %v", title, err)
		renderError(w, r, fmt.Errorf("failed to fetch discussion data"), http.StatusInternalServerError)
		return
	}

	commentsLimit := 0 // zero falls back to the configured default
	if v := r.URL.Query().Get("commentsLimit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			commentsLimit = n
		}
	}

	threads := s.forum.FetchCommentsForTopPosts(r.Context(), search.Posts, commentsLimit)
	commentsData := make([]json.RawMessage, 0, len(threads))
	for _, thread := range threads {
		commentsData = append(commentsData, thread.Raw)
	}

	encoded, err := json.Marshal(commentsData)
	if err != nil {
		renderError(w, r, fmt.Errorf("failed to encode comments"), http.StatusInternalServerError)
		return
	}
	payload["commentsData"] = encoded

	renderJSON(w, r, http.StatusOK, payload)
}

// recommendationItem is one entry of the recommendations response
type recommendationItem struct {
	ContentID   int64              `json:"content_id"`
	Title       string             `json:"title"`
	Type        domain.ContentType `json:"type"`
	Genres      []string           `json:"genres"`
	ReleaseYear int                `json:"release_year"`
	RuntimeMin  int                `json:"runtime_min"`
	Rating      string             `json:"rating"`
	Platform    string             `json:"platform,omitempty"`
	IMDBScore   *float64           `json:"imdb_score,omitempty"`
	RTScore     *int               `json:"rt_score,omitempty"`
	Score       float64            `json:"score"`
	Rank        int                `json:"rank"`
	Factors     map[string]float64 `json:"factors"`
	Buzz        domain.BuzzLabel   `json:"buzz"`
}

// recommendationsHandler runs the pipeline for a quiz submission
func (s *Server) recommendationsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req recommender.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, r, fmt.Errorf("invalid request body"), http.StatusBadRequest)
		return
	}

	ranked, variant, err := s.rec.Recommend(ctx, req)
	if err != nil {
		renderError(w, r, err, http.StatusBadRequest)
		return
	}

	if err := s.recStore.SaveRecommendations(ctx, req.SessionID, ranked); err != nil {
		lgr.Printf("[WARN] failed to persist recommendations for session %s: %v", req.SessionID, err)
	}

	items := make([]recommendationItem, len(ranked))
	for i, sc := range ranked {
		items[i] = recommendationItem{
			ContentID:   sc.Content.ID,
			Title:       sc.Content.Title,
			Type:        sc.Content.Type,
			Genres:      sc.Content.Genres,
			ReleaseYear: sc.Content.ReleaseYear,
			RuntimeMin:  sc.Content.RuntimeMin,
			Rating:      sc.Content.Rating,
			Platform:    sc.Content.Platform,
			IMDBScore:   sc.Content.IMDBScore,
			RTScore:     sc.Content.RTScore,
			Score:       sc.Score,
			Rank:        sc.Rank,
			Factors:     sc.Factors,
		}
		if sc.Content.SocialSignal != nil {
			items[i].Buzz = sc.Content.SocialSignal.Buzz
		}
	}

	resp := map[string]interface{}{
		"session_id":      req.SessionID,
		"variant":         variant,
		"recommendations": items,
	}

	if summary := s.summarizeTopPick(ctx, ranked); summary != "" {
		resp["summary"] = summary
	}

	renderJSON(w, r, http.StatusOK, resp)
}

// summarizeTopPick digests the discussion around the top-ranked item when the
// summarizer is configured. Failures are logged, never surfaced to the client.
func (s *Server) summarizeTopPick(ctx context.Context, ranked []domain.ScoredContent) string {
	if s.summarizer == nil || !s.summarizer.Enabled() || len(ranked) == 0 {
		return ""
	}
	top := ranked[0].Content
	summary, err := s.summarizer.Summarize(ctx, top.Title, top.SocialSignal, nil)
	if err != nil {
		lgr.Printf("[WARN] summary for %q failed: %v", top.Title, err)
		return ""
	}
	return summary
}

// feedbackHandler records one accept/reject verdict
func (s *Server) feedbackHandler(w http.ResponseWriter, r *http.Request) {
	var item domain.FeedbackItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		renderError(w, r, fmt.Errorf("invalid request body"), http.StatusBadRequest)
		return
	}

	if !item.Verdict.Valid() {
		renderError(w, r, fmt.Errorf("verdict must be accept or reject"), http.StatusBadRequest)
		return
	}
	if item.Title == "" {
		renderError(w, r, fmt.Errorf("title is required"), http.StatusBadRequest)
		return
	}

	if err := s.fbStore.AddFeedback(r.Context(), &item); err != nil {
		lgr.Printf("[ERROR] failed to record feedback: %v", err)
		renderError(w, r, fmt.Errorf("failed to record feedback"), http.StatusInternalServerError)
		return
	}

	renderJSON(w, r, http.StatusCreated, item)
}

// statsHandler derives accuracy metrics from the full feedback log
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	items, err := s.fbStore.ListFeedback(r.Context())
	if err != nil {
		lgr.Printf("[ERROR] failed to load feedback log: %v", err)
		renderError(w, r, fmt.Errorf("failed to load feedback"), http.StatusInternalServerError)
		return
	}

	renderJSON(w, r, http.StatusOK, feedback.BuildReport(items))
}
