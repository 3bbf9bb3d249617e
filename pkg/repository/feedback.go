package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-pkgz/repeater/v2"
	"github.com/jmoiron/sqlx"

	"github.com/umputun/watchscope/pkg/domain"
)

// FeedbackRepository handles the append-only feedback log. Rows are created
// once and never updated.
type FeedbackRepository struct {
	db *sqlx.DB
}

// NewFeedbackRepository creates a new feedback repository
func NewFeedbackRepository(database *sqlx.DB) *FeedbackRepository {
	return &FeedbackRepository{db: database}
}

// feedbackSQL represents a feedback log row
type feedbackSQL struct {
	ID        int64     `db:"id"`
	ContentID int64     `db:"content_id"`
	Title     string    `db:"title"`
	Verdict   string    `db:"verdict"`
	Rank      int       `db:"rank"`
	Genres    genresSQL `db:"genres"`
	Variant   string    `db:"variant"`
	CreatedAt time.Time `db:"created_at"`
}

// AddFeedback appends one entry to the log and sets its ID
func (r *FeedbackRepository) AddFeedback(ctx context.Context, item *domain.FeedbackItem) error {
	retrier := repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second))

	return retrier.Do(ctx, func() error {
		query := `
			INSERT INTO feedback (content_id, title, verdict, rank, genres, variant)
			VALUES (?, ?, ?, ?, ?, ?)
		`
		res, err := r.db.ExecContext(ctx, query, item.ContentID, item.Title, string(item.Verdict),
			item.Rank, genresSQL(item.Genres), string(item.Variant))
		if err != nil {
			if isLockError(err) {
				return err // retry
			}
			return &criticalError{err: fmt.Errorf("add feedback: %w", err)}
		}

		id, err := res.LastInsertId()
		if err != nil {
			return &criticalError{err: fmt.Errorf("get feedback id: %w", err)}
		}
		item.ID = id
		return nil
	})
}

// ListFeedback enumerates the full log in insertion order
func (r *FeedbackRepository) ListFeedback(ctx context.Context) ([]domain.FeedbackItem, error) {
	var rows []feedbackSQL
	if err := r.db.SelectContext(ctx, &rows, "SELECT * FROM feedback ORDER BY id"); err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}

	items := make([]domain.FeedbackItem, len(rows))
	for i, row := range rows {
		items[i] = domain.FeedbackItem{
			ID:        row.ID,
			ContentID: row.ContentID,
			Title:     row.Title,
			Verdict:   domain.Verdict(row.Verdict),
			Rank:      row.Rank,
			Genres:    []string(row.Genres),
			Variant:   domain.Variant(row.Variant),
			CreatedAt: row.CreatedAt,
		}
	}
	return items, nil
}
