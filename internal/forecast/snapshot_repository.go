// Package forecast periodically captures how many cards each learner has
// coming due, so review-load trends can be inspected later.
package forecast

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Snapshot is one captured due-count for one learner.
type Snapshot struct {
	ID          int64     `db:"id"`
	UserID      string    `db:"user_id"`
	HorizonDays int       `db:"horizon_days"`
	DueCount    int       `db:"due_count"`
	CapturedAt  time.Time `db:"captured_at"`
}

// SnapshotRepository defines storage for forecast snapshots.
type SnapshotRepository interface {
	Create(ctx context.Context, snapshot *Snapshot) error
	FindByUser(ctx context.Context, userID string) ([]Snapshot, error)
}

// DBSnapshotRepository implements SnapshotRepository on sqlx.
type DBSnapshotRepository struct {
	db *sqlx.DB
}

func NewDBSnapshotRepository(db *sqlx.DB) *DBSnapshotRepository {
	return &DBSnapshotRepository{db: db}
}

// Create inserts a snapshot row.
func (r *DBSnapshotRepository) Create(ctx context.Context, snapshot *Snapshot) error {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO forecast_snapshots (user_id, horizon_days, due_count, captured_at)
		VALUES (?, ?, ?, ?)`,
		snapshot.UserID, snapshot.HorizonDays, snapshot.DueCount, snapshot.CapturedAt)
	if err != nil {
		return fmt.Errorf("db.ExecContext(insert forecast_snapshot) > %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("result.LastInsertId() > %w", err)
	}
	snapshot.ID = id
	return nil
}

// FindByUser returns the user's snapshots, newest first.
func (r *DBSnapshotRepository) FindByUser(ctx context.Context, userID string) ([]Snapshot, error) {
	var snapshots []Snapshot
	if err := r.db.SelectContext(ctx, &snapshots,
		"SELECT * FROM forecast_snapshots WHERE user_id = ? ORDER BY captured_at DESC, id DESC",
		userID); err != nil {
		return nil, fmt.Errorf("db.SelectContext(forecast_snapshots) > %w", err)
	}
	return snapshots, nil
}
