package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/umputun/watchscope/pkg/domain"
)

// RecommendationRepository persists ranked recommendation sets per session
type RecommendationRepository struct {
	db *sqlx.DB
}

// NewRecommendationRepository creates a new recommendation repository
func NewRecommendationRepository(database *sqlx.DB) *RecommendationRepository {
	return &RecommendationRepository{db: database}
}

// recommendationSQL represents a persisted recommendation row
type recommendationSQL struct {
	ID        int64     `db:"id"`
	SessionID string    `db:"session_id"`
	ContentID int64     `db:"content_id"`
	Title     string    `db:"title"`
	Score     float64   `db:"score"`
	Rank      int       `db:"rank"`
	Variant   string    `db:"variant"`
	CreatedAt time.Time `db:"created_at"`
}

// SaveRecommendations replaces the session's recommendation set with the
// given ranked list in a single transaction
func (r *RecommendationRepository) SaveRecommendations(ctx context.Context, sessionID string, items []domain.ScoredContent) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.ExecContext(ctx, "DELETE FROM recommendations WHERE session_id = ?", sessionID); err != nil {
		return fmt.Errorf("clear session recommendations: %w", err)
	}

	query := `
		INSERT INTO recommendations (session_id, content_id, title, score, rank, variant)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	for _, item := range items {
		if _, err := tx.ExecContext(ctx, query, sessionID, item.Content.ID, item.Content.Title,
			item.Score, item.Rank, string(item.Variant)); err != nil {
			return fmt.Errorf("insert recommendation: %w", err)
		}
	}

	return tx.Commit()
}

// GetBySession returns the persisted recommendation rows for a session in
// rank order
func (r *RecommendationRepository) GetBySession(ctx context.Context, sessionID string) ([]domain.ScoredContent, error) {
	var rows []recommendationSQL
	query := `SELECT * FROM recommendations WHERE session_id = ? ORDER BY rank`
	if err := r.db.SelectContext(ctx, &rows, query, sessionID); err != nil {
		return nil, fmt.Errorf("get session recommendations: %w", err)
	}

	items := make([]domain.ScoredContent, len(rows))
	for i, row := range rows {
		items[i] = domain.ScoredContent{
			Content: &domain.ContentItem{ID: row.ContentID, Title: row.Title},
			Score:   row.Score,
			Rank:    row.Rank,
			Variant: domain.Variant(row.Variant),
		}
	}
	return items, nil
}
