package forum

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/umputun/watchscope/pkg/domain"
)

// ErrorKind categorizes upstream failures
type ErrorKind string

// fetch error kinds
const (
	ErrTimeout ErrorKind = "timeout"
	ErrHTTP    ErrorKind = "http"
)

// FetchError is a typed failure from the forum API
type FetchError struct {
	Kind   ErrorKind
	Status int // HTTP status when Kind == ErrHTTP and a response was received
	Err    error
}

// Error implements the error interface
func (e *FetchError) Error() string {
	if e.Kind == ErrHTTP && e.Status != 0 {
		return fmt.Sprintf("forum request failed with status %d", e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("forum request failed (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("forum request failed (%s)", e.Kind)
}

// Unwrap returns the underlying error
func (e *FetchError) Unwrap() error { return e.Err }

// Post is one discussion post from a search result
type Post struct {
	ID          string
	Title       string
	Permalink   string
	Subreddit   string
	URL         string // external link, when the post links out
	SelfText    string // plain text body, sanitized
	NumComments int
	Score       int
	CreatedUTC  float64
}

// SearchResult is a validated search payload. Raw keeps the upstream JSON
// verbatim so the API layer can return it unmodified.
type SearchResult struct {
	Raw   json.RawMessage
	Posts []Post
}

// CommentThread holds the flattened comments of one post. Raw keeps the
// upstream JSON verbatim.
type CommentThread struct {
	Raw      json.RawMessage
	PostID   string
	Comments []domain.RawComment
}

// upstream payload shapes; the forum nests everything in kind/data envelopes
type listing struct {
	Kind string      `json:"kind"`
	Data listingData `json:"data"`
}

type listingData struct {
	Children []child `json:"children"`
}

type child struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type postData struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Permalink    string  `json:"permalink"`
	Subreddit    string  `json:"subreddit"`
	URL          string  `json:"url"`
	SelfText     string  `json:"selftext"`
	SelfTextHTML string  `json:"selftext_html"`
	NumComments  int     `json:"num_comments"`
	Score        int     `json:"score"`
	CreatedUTC   float64 `json:"created_utc"`
}

type commentData struct {
	ID      string      `json:"id"`
	Body    string      `json:"body"`
	Replies repliesJSON `json:"replies"`
}

// repliesJSON tolerates the forum's habit of sending "" instead of a listing
// when a comment has no replies
type repliesJSON struct {
	Listing *listing
}

// UnmarshalJSON implements json.Unmarshaler
func (r *repliesJSON) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == `""` || trimmed == "null" {
		return nil
	}
	var l listing
	if err := json.Unmarshal(data, &l); err != nil {
		return fmt.Errorf("parse replies listing: %w", err)
	}
	r.Listing = &l
	return nil
}

var stripPolicy = bluemonday.StrictPolicy()

// stripHTML reduces forum HTML to plain text
func stripHTML(s string) string {
	return strings.TrimSpace(html.UnescapeString(stripPolicy.Sanitize(s)))
}

// parseSearchResult validates the search payload shape once at the boundary
func parseSearchResult(raw []byte) (*SearchResult, error) {
	var l listing
	if err := json.Unmarshal(raw, &l); err != nil {
		return nil, fmt.Errorf("parse search payload: %w", err)
	}
	if l.Kind != "Listing" {
		return nil, fmt.Errorf("unexpected search payload kind %q", l.Kind)
	}

	result := &SearchResult{Raw: raw, Posts: make([]Post, 0, len(l.Data.Children))}
	for _, c := range l.Data.Children {
		if c.Kind != "t3" { // only link/self posts carry discussions
			continue
		}
		var pd postData
		if err := json.Unmarshal(c.Data, &pd); err != nil {
			return nil, fmt.Errorf("parse post data: %w", err)
		}
		text := strings.TrimSpace(pd.SelfText)
		if text == "" && pd.SelfTextHTML != "" {
			text = stripHTML(pd.SelfTextHTML)
		}
		result.Posts = append(result.Posts, Post{
			ID:          pd.ID,
			Title:       pd.Title,
			Permalink:   pd.Permalink,
			Subreddit:   pd.Subreddit,
			URL:         pd.URL,
			SelfText:    text,
			NumComments: pd.NumComments,
			Score:       pd.Score,
			CreatedUTC:  pd.CreatedUTC,
		})
	}
	return result, nil
}

// parseCommentThread validates a comment payload and flattens the reply tree
// up to maxDepth levels
func parseCommentThread(raw []byte, postID string, maxDepth int) (*CommentThread, error) {
	// comment endpoint returns a two-element array: the post and its comments
	var listings []listing
	if err := json.Unmarshal(raw, &listings); err != nil {
		return nil, fmt.Errorf("parse comments payload: %w", err)
	}
	if len(listings) < 2 {
		return nil, fmt.Errorf("unexpected comments payload: %d listings", len(listings))
	}

	thread := &CommentThread{Raw: raw, PostID: postID}
	collectComments(listings[1].Data.Children, postID, 0, maxDepth, &thread.Comments)
	return thread, nil
}

// collectComments walks the reply tree depth-first, bounded by maxDepth
func collectComments(children []child, postID string, depth, maxDepth int, out *[]domain.RawComment) {
	if depth >= maxDepth {
		return
	}
	for _, c := range children {
		if c.Kind != "t1" { // "more" stubs and other kinds carry no body
			continue
		}
		var cd commentData
		if err := json.Unmarshal(c.Data, &cd); err != nil {
			continue // tolerate malformed nodes, the rest of the tree is still useful
		}
		*out = append(*out, domain.RawComment{Body: cd.Body, PostID: postID})
		if cd.Replies.Listing != nil {
			collectComments(cd.Replies.Listing.Data.Children, postID, depth+1, maxDepth, out)
		}
	}
}
