// Package activity tracks per-learner daily activity streaks.
package activity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/kioku-app/kioku/internal/srs"
)

// State is the stored streak record of one learner.
type State struct {
	UserID       string    `db:"user_id"`
	LastActiveAt time.Time `db:"last_active_at"`
	StreakCount  int       `db:"streak_count"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// ActivityState converts the row into the srs package's form.
func (s State) ActivityState() srs.ActivityState {
	return srs.ActivityState{
		LastActiveAt: s.LastActiveAt,
		StreakCount:  s.StreakCount,
	}
}

// Repository defines storage operations for activity states.
type Repository interface {
	// Find returns nil when the user has no recorded activity yet.
	Find(ctx context.Context, userID string) (*State, error)
	Upsert(ctx context.Context, state *State) error
}

// DBRepository implements Repository on sqlx.
type DBRepository struct {
	db *sqlx.DB
}

func NewDBRepository(db *sqlx.DB) *DBRepository {
	return &DBRepository{db: db}
}

// Find returns the user's activity state, or nil if never active.
func (r *DBRepository) Find(ctx context.Context, userID string) (*State, error) {
	var state State
	err := r.db.GetContext(ctx, &state,
		"SELECT * FROM activity_states WHERE user_id = ?", userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db.GetContext(activity_state) > %w", err)
	}
	return &state, nil
}

// Upsert writes the state, inserting the row on first activity.
func (r *DBRepository) Upsert(ctx context.Context, state *State) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE activity_states SET last_active_at = ?, streak_count = ?, updated_at = ? WHERE user_id = ?`,
		state.LastActiveAt, state.StreakCount, state.UpdatedAt, state.UserID)
	if err != nil {
		return fmt.Errorf("db.ExecContext(update activity_state) > %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("result.RowsAffected() > %w", err)
	}
	if affected > 0 {
		return nil
	}

	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO activity_states (user_id, last_active_at, streak_count, updated_at) VALUES (?, ?, ?, ?)`,
		state.UserID, state.LastActiveAt, state.StreakCount, state.UpdatedAt); err != nil {
		return fmt.Errorf("db.ExecContext(insert activity_state) > %w", err)
	}
	return nil
}
