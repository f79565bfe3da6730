package review_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kioku-app/kioku/internal/card"
	"github.com/kioku-app/kioku/internal/review"
	"github.com/kioku-app/kioku/internal/srs"
	"github.com/kioku-app/kioku/internal/testutil"
)

func TestServiceReview(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	newFixture := func(t *testing.T) (*review.Service, *card.DBRepository, *review.DBLogRepository) {
		db := testutil.NewSQLiteDB(t)
		cards := card.NewDBRepository(db)
		logs := review.NewDBLogRepository(db)
		return review.NewService(cards, logs, clock), cards, logs
	}

	t.Run("perfect recall schedules the first repetition", func(t *testing.T) {
		service, cards, logs := newFixture(t)

		c := card.NewCard("alice", "犬", "dog", now.AddDate(0, 0, -1))
		require.NoError(t, cards.Create(ctx, &c))

		got, err := service.Review(ctx, "alice", c.ID, 5)
		require.NoError(t, err)

		assert.Equal(t, 1, got.IntervalDays)
		assert.Equal(t, 1, got.RepetitionCount)
		assert.InDelta(t, 2.6, got.EasinessFactor, 0.0001)
		assert.Equal(t, now.AddDate(0, 0, 1), got.DueAt.UTC())
		assert.Equal(t, 2, got.Version)

		history, err := logs.FindRecentByUser(ctx, "alice", 10)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, 5, history[0].Quality)
		assert.Equal(t, 1, history[0].IntervalDays)
	})

	t.Run("lapse resets repetition progress", func(t *testing.T) {
		service, cards, _ := newFixture(t)

		c := card.NewCard("alice", "猫", "cat", now)
		c.IntervalDays = 6
		c.RepetitionCount = 2
		c.EasinessFactor = 2.5
		require.NoError(t, cards.Create(ctx, &c))

		got, err := service.Review(ctx, "alice", c.ID, 1)
		require.NoError(t, err)

		assert.Equal(t, 1, got.IntervalDays)
		assert.Equal(t, 0, got.RepetitionCount)
		assert.InDelta(t, 1.96, got.EasinessFactor, 0.0001)
	})

	t.Run("out of range quality is clamped and logged clamped", func(t *testing.T) {
		service, cards, logs := newFixture(t)

		c := card.NewCard("alice", "鳥", "bird", now)
		require.NoError(t, cards.Create(ctx, &c))

		got, err := service.Review(ctx, "alice", c.ID, 11)
		require.NoError(t, err)
		assert.Equal(t, 1, got.RepetitionCount)
		assert.InDelta(t, 2.6, got.EasinessFactor, 0.0001)

		history, err := logs.FindRecentByUser(ctx, "alice", 10)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, 5, history[0].Quality)
	})

	t.Run("unknown card is not found", func(t *testing.T) {
		service, _, _ := newFixture(t)

		_, err := service.Review(ctx, "alice", 999, 4)
		assert.ErrorIs(t, err, card.ErrNotFound)
	})

	t.Run("cards of other users are invisible", func(t *testing.T) {
		service, cards, _ := newFixture(t)

		c := card.NewCard("bob", "魚", "fish", now)
		require.NoError(t, cards.Create(ctx, &c))

		_, err := service.Review(ctx, "alice", c.ID, 4)
		assert.ErrorIs(t, err, card.ErrNotFound)
	})
}

func TestServiceResetProgress(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	db := testutil.NewSQLiteDB(t)
	cards := card.NewDBRepository(db)
	logs := review.NewDBLogRepository(db)
	service := review.NewService(cards, logs, clock)

	c := card.NewCard("alice", "犬", "dog", now.AddDate(0, 0, -30))
	require.NoError(t, cards.Create(ctx, &c))
	for _, quality := range []srs.Quality{5, 4, 5} {
		_, err := service.Review(ctx, "alice", c.ID, quality)
		require.NoError(t, err)
	}

	require.NoError(t, service.ResetProgress(ctx, "alice"))

	got, err := cards.FindByID(ctx, "alice", c.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.IntervalDays)
	assert.Equal(t, 0, got.RepetitionCount)
	assert.Equal(t, srs.DefaultEasinessFactor, got.EasinessFactor)
	assert.Equal(t, "犬", got.Front)

	history, err := logs.FindRecentByUser(ctx, "alice", 10)
	require.NoError(t, err)
	assert.Empty(t, history)
}
