// Package statistics derives the dashboard numbers from stored cards,
// review history and activity state.
package statistics

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/samber/lo"

	"github.com/kioku-app/kioku/internal/activity"
	"github.com/kioku-app/kioku/internal/card"
	"github.com/kioku-app/kioku/internal/config"
	"github.com/kioku-app/kioku/internal/review"
	"github.com/kioku-app/kioku/internal/srs"
)

// Summary is everything the home screen shows for one learner.
type Summary struct {
	TotalCards    int
	DueCardIDs    []int64
	DueCount      int
	Forecast      []ForecastBucket
	RetentionRate float64
	LearnedCount  int
	StreakCount   int
}

// ForecastBucket is the number of cards that come due within Days days.
// Counts are cumulative: the bucket for day N includes everything already due.
type ForecastBucket struct {
	Days  int
	Count int
}

// Service computes dashboard summaries.
type Service struct {
	cards      card.Repository
	logs       review.LogRepository
	activities activity.Repository
	cfg        config.DashboardConfig
	clock      func() time.Time
}

// NewService creates a statistics service. A nil clock defaults to UTC wall time.
func NewService(
	cards card.Repository,
	logs review.LogRepository,
	activities activity.Repository,
	cfg config.DashboardConfig,
	clock func() time.Time,
) *Service {
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &Service{cards: cards, logs: logs, activities: activities, cfg: cfg, clock: clock}
}

// Summarize assembles the learner's dashboard numbers.
func (s *Service) Summarize(ctx context.Context, userID string) (*Summary, error) {
	now := s.clock()

	cards, err := s.cards.FindAllByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("cards.FindAllByUser() > %w", err)
	}

	items := lo.Map(cards, func(c card.Card, _ int) srs.DueItem {
		return srs.DueItem{ID: strconv.FormatInt(c.ID, 10), State: c.ReviewState()}
	})
	dueIDs := lo.Map(srs.SelectDue(items, now), func(id string, _ int) int64 {
		parsed, _ := strconv.ParseInt(id, 10, 64)
		return parsed
	})

	states := lo.Map(cards, func(c card.Card, _ int) srs.ReviewState {
		return c.ReviewState()
	})
	forecast := make([]ForecastBucket, 0, s.cfg.ForecastDays+1)
	for days := 0; days <= s.cfg.ForecastDays; days++ {
		forecast = append(forecast, ForecastBucket{
			Days:  days,
			Count: srs.CountDueWithin(states, now, days),
		})
	}

	learned := lo.CountBy(cards, func(c card.Card) bool {
		return c.IntervalDays >= s.cfg.LearnedThresholdDays
	})

	logs, err := s.logs.FindRecentByUser(ctx, userID, s.cfg.RetentionWindow)
	if err != nil {
		return nil, fmt.Errorf("logs.FindRecentByUser() > %w", err)
	}

	state, err := s.activities.Find(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("activities.Find() > %w", err)
	}
	streak := 0
	if state != nil {
		streak = state.StreakCount
	}

	return &Summary{
		TotalCards:    len(cards),
		DueCardIDs:    dueIDs,
		DueCount:      len(dueIDs),
		Forecast:      forecast,
		RetentionRate: srs.RetentionRate(review.Qualities(logs)),
		LearnedCount:  learned,
		StreakCount:   streak,
	}, nil
}
