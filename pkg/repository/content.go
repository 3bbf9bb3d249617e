package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-pkgz/repeater/v2"
	"github.com/jmoiron/sqlx"

	"github.com/umputun/watchscope/pkg/domain"
)

// ContentRepository handles content catalog database operations
type ContentRepository struct {
	db *sqlx.DB
}

// NewContentRepository creates a new content repository
func NewContentRepository(database *sqlx.DB) *ContentRepository {
	return &ContentRepository{db: database}
}

// contentSQL represents a catalog item for SQL operations
type contentSQL struct {
	ID          int64     `db:"id"`
	Title       string    `db:"title"`
	Type        string    `db:"type"`
	Genres      genresSQL `db:"genres"`
	ReleaseYear int       `db:"release_year"`
	RuntimeMin  int       `db:"runtime_min"`
	Rating      string    `db:"rating"`
	Platform    string    `db:"platform"`
	IMDBScore   *float64  `db:"imdb_score"`
	RTScore     *int      `db:"rt_score"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// genresSQL is a JSON array of genre strings for SQL operations
type genresSQL []string

// Value implements driver.Valuer for database storage
func (g genresSQL) Value() (driver.Value, error) {
	if g == nil {
		return "[]", nil
	}
	return json.Marshal(g)
}

// Scan implements sql.Scanner for database retrieval
func (g *genresSQL) Scan(value interface{}) error {
	if value == nil {
		*g = genresSQL{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return json.Unmarshal([]byte("[]"), g)
	}

	return json.Unmarshal(data, g)
}

// UpsertContent inserts a catalog item or updates the existing row matching
// (title, release_year). The item's ID is set on return.
func (r *ContentRepository) UpsertContent(ctx context.Context, item *domain.ContentItem) error {
	retrier := repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second))

	return retrier.Do(ctx, func() error {
		query := `
			INSERT INTO content (title, type, genres, release_year, runtime_min, rating, platform, imdb_score, rt_score)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(title, release_year) DO UPDATE SET
				type = excluded.type,
				genres = excluded.genres,
				runtime_min = excluded.runtime_min,
				rating = excluded.rating,
				platform = excluded.platform,
				imdb_score = COALESCE(excluded.imdb_score, content.imdb_score),
				rt_score = COALESCE(excluded.rt_score, content.rt_score),
				updated_at = datetime('now')
		`
		_, err := r.db.ExecContext(ctx, query, item.Title, string(item.Type), genresSQL(item.Genres),
			item.ReleaseYear, item.RuntimeMin, item.Rating, item.Platform, item.IMDBScore, item.RTScore)
		if err != nil {
			if isLockError(err) {
				return err // retry
			}
			return &criticalError{err: fmt.Errorf("upsert content: %w", err)}
		}

		var id int64
		if err := r.db.GetContext(ctx, &id,
			"SELECT id FROM content WHERE title = ? AND release_year = ?", item.Title, item.ReleaseYear); err != nil {
			return &criticalError{err: fmt.Errorf("get content id: %w", err)}
		}
		item.ID = id
		return nil
	})
}

// GetContent returns a single catalog item by id
func (r *ContentRepository) GetContent(ctx context.Context, id int64) (*domain.ContentItem, error) {
	var sqlItem contentSQL
	if err := r.db.GetContext(ctx, &sqlItem, "SELECT * FROM content WHERE id = ?", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("content not found")
		}
		return nil, fmt.Errorf("get content: %w", err)
	}
	return toDomainContent(&sqlItem), nil
}

// FindContent returns catalog items matching the filter. Genre matching is
// any-of over the item's JSON genre array.
func (r *ContentRepository) FindContent(ctx context.Context, filter *domain.ContentFilter) ([]*domain.ContentItem, error) {
	query := `SELECT * FROM content WHERE 1=1`
	var args []interface{}

	if filter.Type != "" {
		query += ` AND type = ?`
		args = append(args, string(filter.Type))
	}
	if filter.Platform != "" {
		query += ` AND platform = ?`
		args = append(args, filter.Platform)
	}
	if filter.MinYear > 0 {
		query += ` AND release_year >= ?`
		args = append(args, filter.MinYear)
	}
	if len(filter.Genres) > 0 {
		query += ` AND (`
		for i, g := range filter.Genres {
			if i > 0 {
				query += ` OR `
			}
			query += `JSON_EXTRACT(genres, '$') LIKE ?`
			args = append(args, "%\""+g+"\"%")
		}
		query += `)`
	}

	query += ` ORDER BY release_year DESC, title`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	var sqlItems []contentSQL
	if err := r.db.SelectContext(ctx, &sqlItems, query, args...); err != nil {
		return nil, fmt.Errorf("find content: %w", err)
	}

	items := make([]*domain.ContentItem, len(sqlItems))
	for i := range sqlItems {
		items[i] = toDomainContent(&sqlItems[i])
	}
	return items, nil
}

// toDomainContent converts contentSQL to domain.ContentItem
func toDomainContent(sqlItem *contentSQL) *domain.ContentItem {
	return &domain.ContentItem{
		ID:          sqlItem.ID,
		Title:       sqlItem.Title,
		Type:        domain.ContentType(sqlItem.Type),
		Genres:      []string(sqlItem.Genres),
		ReleaseYear: sqlItem.ReleaseYear,
		RuntimeMin:  sqlItem.RuntimeMin,
		Rating:      sqlItem.Rating,
		Platform:    sqlItem.Platform,
		IMDBScore:   sqlItem.IMDBScore,
		RTScore:     sqlItem.RTScore,
		CreatedAt:   sqlItem.CreatedAt,
		UpdatedAt:   sqlItem.UpdatedAt,
	}
}
