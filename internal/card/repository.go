package card

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Repository defines storage operations for cards.
type Repository interface {
	Create(ctx context.Context, c *Card) error
	FindByID(ctx context.Context, userID string, id int64) (*Card, error)
	FindAllByUser(ctx context.Context, userID string) ([]Card, error)
	// UpdateReviewState persists the scheduling fields if expectedVersion still
	// matches, bumping the version. Returns ErrVersionConflict otherwise.
	UpdateReviewState(ctx context.Context, c *Card, expectedVersion int) error
	DeleteAllByUser(ctx context.Context, userID string) error
	CountByUser(ctx context.Context, userID string) (int, error)
	ListUserIDs(ctx context.Context) ([]string, error)
}

// DBRepository implements Repository on sqlx.
type DBRepository struct {
	db *sqlx.DB
}

func NewDBRepository(db *sqlx.DB) *DBRepository {
	return &DBRepository{db: db}
}

// Create inserts a new card and fills in its generated id.
func (r *DBRepository) Create(ctx context.Context, c *Card) error {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO cards (user_id, front, back, interval_days, repetition_count, easiness_factor, due_at, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.UserID, c.Front, c.Back, c.IntervalDays, c.RepetitionCount,
		c.EasinessFactor, c.DueAt, c.Version, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db.ExecContext(insert card) > %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("result.LastInsertId() > %w", err)
	}
	c.ID = id
	return nil
}

// FindByID returns the user's card, or ErrNotFound.
func (r *DBRepository) FindByID(ctx context.Context, userID string, id int64) (*Card, error) {
	var c Card
	err := r.db.GetContext(ctx, &c,
		"SELECT * FROM cards WHERE user_id = ? AND id = ?", userID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db.GetContext(card) > %w", err)
	}
	return &c, nil
}

// FindAllByUser returns the user's cards ordered by due time.
func (r *DBRepository) FindAllByUser(ctx context.Context, userID string) ([]Card, error) {
	var cards []Card
	if err := r.db.SelectContext(ctx, &cards,
		"SELECT * FROM cards WHERE user_id = ? ORDER BY due_at, id", userID); err != nil {
		return nil, fmt.Errorf("db.SelectContext(cards) > %w", err)
	}
	return cards, nil
}

// UpdateReviewState writes the scheduling fields with an optimistic version
// check so concurrent reviews of the same card cannot lose updates.
func (r *DBRepository) UpdateReviewState(ctx context.Context, c *Card, expectedVersion int) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE cards
		SET interval_days = ?, repetition_count = ?, easiness_factor = ?, due_at = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND user_id = ? AND version = ?`,
		c.IntervalDays, c.RepetitionCount, c.EasinessFactor, c.DueAt, now,
		c.ID, c.UserID, expectedVersion)
	if err != nil {
		return fmt.Errorf("db.ExecContext(update card) > %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("result.RowsAffected() > %w", err)
	}
	if affected == 0 {
		return ErrVersionConflict
	}
	c.Version = expectedVersion + 1
	c.UpdatedAt = now
	return nil
}

// DeleteAllByUser removes every card of the user.
func (r *DBRepository) DeleteAllByUser(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx,
		"DELETE FROM cards WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("db.ExecContext(delete cards) > %w", err)
	}
	return nil
}

// CountByUser returns how many cards the user has.
func (r *DBRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM cards WHERE user_id = ?", userID); err != nil {
		return 0, fmt.Errorf("db.GetContext(count cards) > %w", err)
	}
	return count, nil
}

// ListUserIDs returns the distinct users that own cards.
func (r *DBRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := r.db.SelectContext(ctx, &ids,
		"SELECT DISTINCT user_id FROM cards ORDER BY user_id"); err != nil {
		return nil, fmt.Errorf("db.SelectContext(user ids) > %w", err)
	}
	return ids, nil
}
