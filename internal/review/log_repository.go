// Package review orchestrates graded reviews: it applies the scheduling
// algorithm to a stored card and keeps the immutable review history.
package review

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/kioku-app/kioku/internal/srs"
)

// Log is one graded review event. Logs are append-only; the retention rate
// and statistics are derived from them.
type Log struct {
	ID             int64     `db:"id"`
	CardID         int64     `db:"card_id"`
	UserID         string    `db:"user_id"`
	Quality        int       `db:"quality"`
	IntervalDays   int       `db:"interval_days"`
	EasinessFactor float64   `db:"easiness_factor"`
	ReviewedAt     time.Time `db:"reviewed_at"`
}

// LogRepository defines operations for the review history.
type LogRepository interface {
	Create(ctx context.Context, log *Log) error
	// FindRecentByUser returns up to limit logs, newest first.
	FindRecentByUser(ctx context.Context, userID string, limit int) ([]Log, error)
	DeleteAllByUser(ctx context.Context, userID string) error
}

// DBLogRepository implements LogRepository on sqlx.
type DBLogRepository struct {
	db *sqlx.DB
}

func NewDBLogRepository(db *sqlx.DB) *DBLogRepository {
	return &DBLogRepository{db: db}
}

// Create inserts a new review log.
func (r *DBLogRepository) Create(ctx context.Context, log *Log) error {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO review_logs (card_id, user_id, quality, interval_days, easiness_factor, reviewed_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		log.CardID, log.UserID, log.Quality, log.IntervalDays, log.EasinessFactor, log.ReviewedAt)
	if err != nil {
		return fmt.Errorf("db.ExecContext(insert review_log) > %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("result.LastInsertId() > %w", err)
	}
	log.ID = id
	return nil
}

// FindRecentByUser returns the newest logs for the user, most recent first.
func (r *DBLogRepository) FindRecentByUser(ctx context.Context, userID string, limit int) ([]Log, error) {
	var logs []Log
	if err := r.db.SelectContext(ctx, &logs,
		"SELECT * FROM review_logs WHERE user_id = ? ORDER BY reviewed_at DESC, id DESC LIMIT ?",
		userID, limit); err != nil {
		return nil, fmt.Errorf("db.SelectContext(review_logs) > %w", err)
	}
	return logs, nil
}

// DeleteAllByUser removes the user's review history. Used by progress reset.
func (r *DBLogRepository) DeleteAllByUser(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx,
		"DELETE FROM review_logs WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("db.ExecContext(delete review_logs) > %w", err)
	}
	return nil
}

// Qualities extracts the grade sequence from logs for retention calculations.
func Qualities(logs []Log) []srs.Quality {
	qualities := make([]srs.Quality, len(logs))
	for i, log := range logs {
		qualities[i] = srs.Quality(log.Quality)
	}
	return qualities
}
