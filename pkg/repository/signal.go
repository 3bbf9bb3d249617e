package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-pkgz/repeater/v2"
	"github.com/jmoiron/sqlx"

	"github.com/umputun/watchscope/pkg/domain"
)

// SignalRepository caches computed social signals per title so repeat
// requests within the TTL can skip the upstream fetch
type SignalRepository struct {
	db *sqlx.DB
}

// NewSignalRepository creates a new signal repository
func NewSignalRepository(database *sqlx.DB) *SignalRepository {
	return &SignalRepository{db: database}
}

// signalSQL represents a cached signal row
type signalSQL struct {
	Title         string    `db:"title"`
	Buzz          string    `db:"buzz"`
	Analysis      string    `db:"analysis"`
	CommentVolume int       `db:"comment_volume"`
	FetchedAt     time.Time `db:"fetched_at"`
}

// GetSignal returns the cached signal for a title, or nil when absent
func (r *SignalRepository) GetSignal(ctx context.Context, title string) (*domain.SocialSignal, error) {
	var row signalSQL
	if err := r.db.GetContext(ctx, &row, "SELECT * FROM social_signals WHERE title = ?", title); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get signal: %w", err)
	}

	signal := &domain.SocialSignal{
		Buzz:          domain.BuzzLabel(row.Buzz),
		CommentVolume: row.CommentVolume,
		FetchedAt:     row.FetchedAt,
	}
	if err := json.Unmarshal([]byte(row.Analysis), &signal.Analysis); err != nil {
		return nil, fmt.Errorf("parse cached analysis: %w", err)
	}
	return signal, nil
}

// SaveSignal stores or replaces the cached signal for a title
func (r *SignalRepository) SaveSignal(ctx context.Context, title string, signal *domain.SocialSignal) error {
	analysis, err := json.Marshal(signal.Analysis)
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}

	retrier := repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second))

	return retrier.Do(ctx, func() error {
		query := `
			INSERT OR REPLACE INTO social_signals (title, buzz, analysis, comment_volume, fetched_at)
			VALUES (?, ?, ?, ?, ?)
		`
		_, err := r.db.ExecContext(ctx, query, title, string(signal.Buzz), string(analysis),
			signal.CommentVolume, signal.FetchedAt)
		if err != nil {
			if isLockError(err) {
				return err // retry
			}
			return &criticalError{err: fmt.Errorf("save signal: %w", err)}
		}
		return nil
	})
}
