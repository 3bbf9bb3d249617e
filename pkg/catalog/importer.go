package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-pkgz/lgr"
	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"

	"github.com/umputun/watchscope/pkg/config"
	"github.com/umputun/watchscope/pkg/domain"
)

// Store persists imported catalog items
type Store interface {
	UpsertContent(ctx context.Context, item *domain.ContentItem) error
}

// Importer loads catalog candidates from release announcement RSS feeds
type Importer struct {
	cfg    config.CatalogConfig
	store  Store
	parser *gofeed.Parser
}

// NewImporter creates a new catalog importer
func NewImporter(cfg config.CatalogConfig, store Store) *Importer {
	return &Importer{
		cfg:    cfg,
		store:  store,
		parser: gofeed.NewParser(),
	}
}

// ImportAll fetches every configured feed concurrently and upserts the parsed
// items into the catalog. Individual feed failures are logged and skipped.
func (im *Importer) ImportAll(ctx context.Context) (imported int, err error) {
	if len(im.cfg.Feeds) == 0 {
		return 0, nil
	}

	results := make([]int, len(im.cfg.Feeds))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(im.cfg.MaxWorkers)

	for i, feedURL := range im.cfg.Feeds {
		g.Go(func() error {
			n, impErr := im.importFeed(gctx, feedURL)
			if impErr != nil {
				lgr.Printf("[WARN] import feed %s failed: %v", feedURL, impErr)
				return nil // keep other feeds going
			}
			results[i] = n
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, fmt.Errorf("import feeds: %w", err)
	}

	for _, n := range results {
		imported += n
	}
	return imported, nil
}

// importFeed parses one feed and stores its items
func (im *Importer) importFeed(ctx context.Context, feedURL string) (int, error) {
	fctx, cancel := context.WithTimeout(ctx, im.cfg.ImportTimeout)
	defer cancel()

	feed, err := im.parser.ParseURLWithContext(feedURL, fctx)
	if err != nil {
		return 0, fmt.Errorf("parse feed: %w", err)
	}

	count := 0
	for _, entry := range feed.Items {
		item, ok := im.toContentItem(entry)
		if !ok {
			continue
		}
		if err := im.store.UpsertContent(ctx, item); err != nil {
			lgr.Printf("[WARN] upsert %q from %s failed: %v", item.Title, feedURL, err)
			continue
		}
		count++
	}

	lgr.Printf("[DEBUG] imported %d items from %s", count, feedURL)
	return count, nil
}

// toContentItem maps a feed entry to a catalog item. Entries without a title
// are dropped. Genres come from feed categories, lower-cased.
func (im *Importer) toContentItem(entry *gofeed.Item) (*domain.ContentItem, bool) {
	title := strings.TrimSpace(entry.Title)
	if title == "" {
		return nil, false
	}

	item := &domain.ContentItem{
		Title: title,
		Type:  domain.ContentMovie,
	}

	for _, cat := range entry.Categories {
		cat = strings.ToLower(strings.TrimSpace(cat))
		if cat == "" {
			continue
		}
		if t, ok := contentTypeFromCategory(cat); ok {
			item.Type = t
			continue
		}
		item.Genres = append(item.Genres, cat)
	}

	if entry.PublishedParsed != nil {
		item.ReleaseYear = entry.PublishedParsed.Year()
	}

	return item, true
}

// contentTypeFromCategory recognizes feed categories that describe format
// rather than genre
func contentTypeFromCategory(cat string) (domain.ContentType, bool) {
	switch cat {
	case "movie", "film":
		return domain.ContentMovie, true
	case "mini-series", "miniseries", "limited series":
		return domain.ContentMiniSeries, true
	case "season", "tv season":
		return domain.ContentSeason, true
	case "multi-season", "series", "tv series":
		return domain.ContentMultiSeason, true
	}
	return "", false
}
