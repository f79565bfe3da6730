package activity_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kioku-app/kioku/internal/activity"
	"github.com/kioku-app/kioku/internal/testutil"
)

func TestServiceRecordActivity(t *testing.T) {
	ctx := context.Background()

	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	repo := activity.NewDBRepository(testutil.NewSQLiteDB(t))
	service := activity.NewService(repo, clock)

	// First activity ever: row is created, streak stays at zero.
	state, err := service.RecordActivity(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 0, state.StreakCount)

	// Later the same day: no streak movement.
	now = now.Add(8 * time.Hour)
	state, err = service.RecordActivity(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 0, state.StreakCount)

	// Next day: the streak starts.
	now = now.Add(20 * time.Hour)
	state, err = service.RecordActivity(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, state.StreakCount)

	// Day after: it continues.
	now = now.Add(24 * time.Hour)
	state, err = service.RecordActivity(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, state.StreakCount)

	// Three days of silence: restart at one.
	now = now.Add(72 * time.Hour)
	state, err = service.RecordActivity(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, state.StreakCount)

	streak, err := service.Streak(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, streak)
}

func TestServiceStreakWithoutActivity(t *testing.T) {
	ctx := context.Background()
	repo := activity.NewDBRepository(testutil.NewSQLiteDB(t))
	service := activity.NewService(repo, nil)

	streak, err := service.Streak(ctx, "nobody")
	require.NoError(t, err)
	assert.Equal(t, 0, streak)
}
