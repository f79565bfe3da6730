package review

import (
	"context"
	"fmt"
	"time"

	"github.com/kioku-app/kioku/internal/card"
	"github.com/kioku-app/kioku/internal/srs"
)

// Service applies graded reviews to stored cards.
type Service struct {
	cards card.Repository
	logs  LogRepository
	clock func() time.Time
}

// NewService creates a review service. A nil clock defaults to UTC wall time.
func NewService(cards card.Repository, logs LogRepository, clock func() time.Time) *Service {
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &Service{cards: cards, logs: logs, clock: clock}
}

// Review grades one card and persists the next scheduling state. The quality
// is clamped into [0,5] rather than rejected. The write is guarded by the
// card's version, so a concurrent review of the same card surfaces as
// card.ErrVersionConflict instead of silently losing an update.
func (s *Service) Review(ctx context.Context, userID string, cardID int64, quality srs.Quality) (*card.Card, error) {
	c, err := s.cards.FindByID(ctx, userID, cardID)
	if err != nil {
		return nil, fmt.Errorf("cards.FindByID() > %w", err)
	}

	now := s.clock()
	quality = quality.Clamp()
	c.ApplyReviewState(srs.UpdateReview(c.ReviewState(), quality, now))

	if err := s.cards.UpdateReviewState(ctx, c, c.Version); err != nil {
		return nil, fmt.Errorf("cards.UpdateReviewState() > %w", err)
	}

	log := Log{
		CardID:         c.ID,
		UserID:         userID,
		Quality:        int(quality),
		IntervalDays:   c.IntervalDays,
		EasinessFactor: c.EasinessFactor,
		ReviewedAt:     now,
	}
	if err := s.logs.Create(ctx, &log); err != nil {
		return nil, fmt.Errorf("logs.Create() > %w", err)
	}

	return c, nil
}

// ResetProgress puts every card of the user back to the just-introduced
// scheduling state and clears the review history. Card content is kept.
func (s *Service) ResetProgress(ctx context.Context, userID string) error {
	now := s.clock()

	cards, err := s.cards.FindAllByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("cards.FindAllByUser() > %w", err)
	}
	for i := range cards {
		c := &cards[i]
		c.ApplyReviewState(srs.NewReviewState(now))
		if err := s.cards.UpdateReviewState(ctx, c, c.Version); err != nil {
			return fmt.Errorf("cards.UpdateReviewState(card %d) > %w", c.ID, err)
		}
	}

	if err := s.logs.DeleteAllByUser(ctx, userID); err != nil {
		return fmt.Errorf("logs.DeleteAllByUser() > %w", err)
	}
	return nil
}
