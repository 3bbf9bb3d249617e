package forum

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/watchscope/pkg/config"
)

// ErrEmptyQuery is returned before any network call when the caller passes an
// empty search query
var ErrEmptyQuery = errors.New("empty search query")

// Client talks to the forum's public JSON API. Each call is independent, the
// client holds no state beyond configuration and the underlying http.Client.
type Client struct {
	client *http.Client
	cfg    config.ForumConfig
}

// NewClient creates a forum client
func NewClient(cfg config.ForumConfig) *Client {
	return &Client{
		cfg: cfg,
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// SearchDiscussions runs a relevance-sorted, time-unbounded search for the
// given title, capped at the configured result count
func (c *Client) SearchDiscussions(ctx context.Context, query string) (*SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	searchURL := fmt.Sprintf("%s/search.json?q=%s&sort=relevance&t=all&limit=%d",
		c.cfg.BaseURL, url.QueryEscape(query), c.cfg.SearchLimit)

	raw, status, err := c.get(ctx, searchURL, c.cfg.SearchTimeout)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, &FetchError{Kind: ErrHTTP, Status: status}
	}

	result, err := parseSearchResult(raw)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	return result, nil
}

// FetchComments retrieves the comment thread for a post identified by its
// permalink. Non-2xx responses are a soft failure returning (nil, nil) since
// not every post has fetchable comments.
func (c *Client) FetchComments(ctx context.Context, permalink string, limit int) (*CommentThread, error) {
	if limit <= 0 {
		limit = c.cfg.CommentsLimit
	}

	commentsURL := fmt.Sprintf("%s%s.json?limit=%d",
		c.cfg.BaseURL, strings.TrimSuffix(permalink, "/"), limit)

	raw, status, err := c.get(ctx, commentsURL, c.cfg.CommentsTimeout)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		lgr.Printf("[DEBUG] comments unavailable for %s, status %d", permalink, status)
		return nil, nil
	}

	thread, err := parseCommentThread(raw, permalink, c.cfg.MaxDepth)
	if err != nil {
		return nil, fmt.Errorf("comments for %s: %w", permalink, err)
	}
	return thread, nil
}

// FetchCommentsForTopPosts visits at most MaxPosts posts in the order given,
// pausing FetchDelay between successive fetches to respect the upstream rate
// limit. A failure on one post is logged and skipped, never aborting the rest.
func (c *Client) FetchCommentsForTopPosts(ctx context.Context, posts []Post, limit int) []*CommentThread {
	threads := make([]*CommentThread, 0, c.cfg.MaxPosts)

	fetched := 0
	for _, post := range posts {
		if fetched >= c.cfg.MaxPosts {
			break
		}
		if post.Permalink == "" {
			lgr.Printf("[DEBUG] skipping post %q without permalink", post.Title)
			continue
		}

		// pause before every fetch but the first
		if fetched > 0 {
			select {
			case <-time.After(c.cfg.FetchDelay):
			case <-ctx.Done():
				return threads
			}
		}
		fetched++

		thread, err := c.FetchComments(ctx, post.Permalink, limit)
		if err != nil {
			lgr.Printf("[WARN] failed to fetch comments for %s: %v", post.Permalink, err)
			continue
		}
		if thread == nil {
			continue
		}
		threads = append(threads, thread)
	}

	return threads
}

// get issues a single timeout-bounded request and returns body and status.
// Transport-level failures are mapped to FetchError.
func (c *Client) get(ctx context.Context, reqURL string, timeout time.Duration) (body []byte, status int, err error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}

	// upstream usage policy requires a descriptive client identifier
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, 0, &FetchError{Kind: ErrTimeout, Err: err}
		}
		return nil, 0, &FetchError{Kind: ErrHTTP, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, &FetchError{Kind: ErrHTTP, Err: fmt.Errorf("read response: %w", err)}
	}

	return data, resp.StatusCode, nil
}
