package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/kioku-app/kioku/internal/srs"
)

// Service records activity pings and keeps the streak up to date.
type Service struct {
	states Repository
	clock  func() time.Time
}

// NewService creates an activity service. A nil clock defaults to UTC wall time.
func NewService(states Repository, clock func() time.Time) *Service {
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &Service{states: states, clock: clock}
}

// RecordActivity folds one ping into the learner's streak and persists it.
func (s *Service) RecordActivity(ctx context.Context, userID string) (*State, error) {
	now := s.clock()

	stored, err := s.states.Find(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("states.Find() > %w", err)
	}

	var current srs.ActivityState
	if stored != nil {
		current = stored.ActivityState()
	}
	next := srs.RecordActivity(current, now)

	state := &State{
		UserID:       userID,
		LastActiveAt: next.LastActiveAt,
		StreakCount:  next.StreakCount,
		UpdatedAt:    now,
	}
	if err := s.states.Upsert(ctx, state); err != nil {
		return nil, fmt.Errorf("states.Upsert() > %w", err)
	}
	return state, nil
}

// Streak returns the learner's current streak without recording activity.
func (s *Service) Streak(ctx context.Context, userID string) (int, error) {
	stored, err := s.states.Find(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("states.Find() > %w", err)
	}
	if stored == nil {
		return 0, nil
	}
	return stored.StreakCount, nil
}
