package forecast

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/kioku-app/kioku/internal/card"
	"github.com/kioku-app/kioku/internal/config"
	"github.com/kioku-app/kioku/internal/srs"
)

// Job runs the periodic due-count capture for every learner.
type Job struct {
	cards     card.Repository
	snapshots SnapshotRepository
	cfg       config.ForecastConfig
	logger    *logrus.Logger
	clock     func() time.Time
	cron      *cron.Cron
}

// NewJob creates a forecast job. A nil clock defaults to UTC wall time.
func NewJob(
	cards card.Repository,
	snapshots SnapshotRepository,
	cfg config.ForecastConfig,
	logger *logrus.Logger,
	clock func() time.Time,
) *Job {
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &Job{cards: cards, snapshots: snapshots, cfg: cfg, logger: logger, clock: clock}
}

// Start schedules the job according to the configured cron expression.
func (j *Job) Start() error {
	c := cron.New()
	if _, err := c.AddFunc(j.cfg.Schedule, func() {
		if err := j.RunOnce(context.Background()); err != nil {
			j.logger.WithError(err).Error("forecast capture failed")
		}
	}); err != nil {
		return fmt.Errorf("cron.AddFunc(%q) > %w", j.cfg.Schedule, err)
	}
	c.Start()
	j.cron = c
	j.logger.WithField("schedule", j.cfg.Schedule).Info("forecast job started")
	return nil
}

// Stop stops the cron scheduler and waits for a running capture to finish.
func (j *Job) Stop(ctx context.Context) error {
	if j.cron == nil {
		return nil
	}
	select {
	case <-j.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce captures one snapshot per learner.
func (j *Job) RunOnce(ctx context.Context) error {
	now := j.clock()

	userIDs, err := j.cards.ListUserIDs(ctx)
	if err != nil {
		return fmt.Errorf("cards.ListUserIDs() > %w", err)
	}

	for _, userID := range userIDs {
		cards, err := j.cards.FindAllByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("cards.FindAllByUser(%s) > %w", userID, err)
		}

		states := lo.Map(cards, func(c card.Card, _ int) srs.ReviewState {
			return c.ReviewState()
		})
		snapshot := Snapshot{
			UserID:      userID,
			HorizonDays: j.cfg.HorizonDays,
			DueCount:    srs.CountDueWithin(states, now, j.cfg.HorizonDays),
			CapturedAt:  now,
		}
		if err := j.snapshots.Create(ctx, &snapshot); err != nil {
			return fmt.Errorf("snapshots.Create(%s) > %w", userID, err)
		}

		j.logger.WithFields(logrus.Fields{
			"user":    userID,
			"horizon": j.cfg.HorizonDays,
			"due":     snapshot.DueCount,
		}).Debug("forecast snapshot captured")
	}
	return nil
}
