package srs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecordActivity(t *testing.T) {
	day := func(d, hour int) time.Time {
		return time.Date(2025, 6, d, hour, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name           string
		state          ActivityState
		now            time.Time
		expectedStreak int
	}{
		{
			name:           "first activity ever records the time but not a streak",
			state:          ActivityState{},
			now:            day(1, 9),
			expectedStreak: 0,
		},
		{
			name:           "same day ping does not change the streak",
			state:          ActivityState{LastActiveAt: day(1, 9), StreakCount: 4},
			now:            day(1, 22),
			expectedStreak: 4,
		},
		{
			name:           "next day inside the grace window extends the streak",
			state:          ActivityState{LastActiveAt: day(1, 22), StreakCount: 4},
			now:            day(2, 8),
			expectedStreak: 5,
		},
		{
			name:           "first new day after account creation starts the streak",
			state:          ActivityState{LastActiveAt: day(1, 9), StreakCount: 0},
			now:            day(2, 9),
			expectedStreak: 1,
		},
		{
			name:           "exactly 48 hours still continues",
			state:          ActivityState{LastActiveAt: day(1, 9), StreakCount: 2},
			now:            day(3, 9),
			expectedStreak: 3,
		},
		{
			name:           "fifty hour gap restarts at one",
			state:          ActivityState{LastActiveAt: day(1, 9), StreakCount: 7},
			now:            day(3, 11),
			expectedStreak: 1,
		},
		{
			name:           "long absence restarts at one",
			state:          ActivityState{LastActiveAt: day(1, 9), StreakCount: 30},
			now:            day(20, 9),
			expectedStreak: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RecordActivity(tt.state, tt.now)

			assert.Equal(t, tt.expectedStreak, got.StreakCount)
			assert.Equal(t, tt.now, got.LastActiveAt)
		})
	}
}

func TestRecordActivityUsesUTCDayBoundaries(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)

	// 23:00 and 01:00 the next day in Tokyo are the same UTC day (14:00 and
	// 16:00), so the streak must not move.
	state := ActivityState{
		LastActiveAt: time.Date(2025, 6, 1, 23, 0, 0, 0, tokyo),
		StreakCount:  3,
	}
	got := RecordActivity(state, time.Date(2025, 6, 2, 1, 0, 0, 0, tokyo))
	assert.Equal(t, 3, got.StreakCount)

	// 08:00 and 10:00 Tokyo the next day cross a UTC boundary (23:00 and
	// 01:00), so the streak extends.
	state = ActivityState{
		LastActiveAt: time.Date(2025, 6, 2, 8, 0, 0, 0, tokyo),
		StreakCount:  3,
	}
	got = RecordActivity(state, time.Date(2025, 6, 3, 10, 0, 0, 0, tokyo))
	assert.Equal(t, 4, got.StreakCount)
}

func TestRecordActivityIntradayUpdatesLastActive(t *testing.T) {
	first := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	second := first.Add(3 * time.Hour)

	state := RecordActivity(ActivityState{}, first)
	state = RecordActivity(state, second)

	assert.Equal(t, second, state.LastActiveAt)
	assert.Equal(t, 0, state.StreakCount)
}
