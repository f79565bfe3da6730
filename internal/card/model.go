// Package card provides the flashcard domain model and its repositories.
package card

import (
	"errors"
	"time"

	"github.com/kioku-app/kioku/internal/srs"
)

var (
	// ErrNotFound is returned when a card id does not exist for the user.
	ErrNotFound = errors.New("card not found")
	// ErrVersionConflict is returned when a concurrent review updated the
	// card between our read and write.
	ErrVersionConflict = errors.New("card version conflict")
)

// Card is one learnable item together with its scheduling state.
type Card struct {
	ID              int64     `db:"id"`
	UserID          string    `db:"user_id"`
	Front           string    `db:"front"`
	Back            string    `db:"back"`
	IntervalDays    int       `db:"interval_days"`
	RepetitionCount int       `db:"repetition_count"`
	EasinessFactor  float64   `db:"easiness_factor"`
	DueAt           time.Time `db:"due_at"`
	Version         int       `db:"version"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

// ReviewState extracts the scheduling fields in the form the srs package uses.
func (c Card) ReviewState() srs.ReviewState {
	return srs.ReviewState{
		IntervalDays:    c.IntervalDays,
		RepetitionCount: c.RepetitionCount,
		EasinessFactor:  c.EasinessFactor,
		DueAt:           c.DueAt,
	}
}

// ApplyReviewState copies the scheduling fields back onto the card.
func (c *Card) ApplyReviewState(state srs.ReviewState) {
	c.IntervalDays = state.IntervalDays
	c.RepetitionCount = state.RepetitionCount
	c.EasinessFactor = state.EasinessFactor
	c.DueAt = state.DueAt
}

// NewCard creates a card that is due immediately with default scheduling.
func NewCard(userID, front, back string, now time.Time) Card {
	state := srs.NewReviewState(now)
	c := Card{
		UserID:    userID,
		Front:     front,
		Back:      back,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	c.ApplyReviewState(state)
	return c
}
