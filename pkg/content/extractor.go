package content

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/markusmobius/go-trafilatura"

	"github.com/umputun/watchscope/pkg/config"
)

// HTTPExtractor pulls readable text out of pages linked by body-less forum
// posts, using trafilatura for the heavy lifting
type HTTPExtractor struct {
	cfg    config.ExtractionConfig
	client *http.Client
}

// NewHTTPExtractor creates a new page text extractor
func NewHTTPExtractor(cfg config.ExtractionConfig) *HTTPExtractor {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &HTTPExtractor{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Extract retrieves and extracts text content from the given URL. Pages
// yielding less than the configured minimum text length are rejected.
func (e *HTTPExtractor) Extract(ctx context.Context, urlStr string) (string, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return "", fmt.Errorf("parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return "", fmt.Errorf("invalid URL: %s", urlStr)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", e.cfg.UserAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch URL %s: %w", urlStr, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code %d for URL %s", resp.StatusCode, urlStr)
	}

	opts := trafilatura.Options{
		EnableFallback:  true,
		ExcludeComments: true,
		ExcludeTables:   false,
		IncludeImages:   false,
		IncludeLinks:    false,
		Deduplicate:     true,
		OriginalURL:     parsedURL,
	}

	result, err := trafilatura.Extract(resp.Body, opts)
	if err != nil {
		return "", fmt.Errorf("extract content from %s: %w", urlStr, err)
	}
	if result == nil {
		return "", fmt.Errorf("no content extracted from %s", urlStr)
	}

	text := strings.TrimSpace(result.ContentText)
	if len(text) < e.cfg.MinTextLength {
		return "", fmt.Errorf("extracted text too short (%d chars) from %s", len(text), urlStr)
	}

	return text, nil
}
