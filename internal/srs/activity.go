package srs

import "time"

// streakGraceHours is how long a streak survives across a day boundary.
// Activity on the following calendar day always falls inside it; skipping a
// full day breaks the streak.
const streakGraceHours = 48

// ActivityState tracks a learner's consecutive-day activity streak.
type ActivityState struct {
	// LastActiveAt is the time of the most recent activity ping.
	// The zero value means the learner has never been active.
	LastActiveAt time.Time
	// StreakCount is the number of consecutive active days. It stays at 0
	// until the learner comes back on a second calendar day.
	StreakCount int
}

// RecordActivity folds one activity ping into the state. Calendar-day
// boundaries are evaluated in UTC regardless of where the ping originated, so
// client and server agree on what "a new day" means. Repeated pings within the
// same UTC day only move LastActiveAt; crossing a day boundary within 48 hours
// extends the streak, and a longer gap restarts it at 1 since today's activity
// itself counts.
func RecordActivity(state ActivityState, now time.Time) ActivityState {
	if state.LastActiveAt.IsZero() {
		// First activity ever: nothing to compare against.
		return ActivityState{LastActiveAt: now, StreakCount: state.StreakCount}
	}

	if sameUTCDay(state.LastActiveAt, now) {
		state.LastActiveAt = now
		return state
	}

	if now.Sub(state.LastActiveAt) <= streakGraceHours*time.Hour {
		state.StreakCount++
	} else {
		state.StreakCount = 1
	}
	state.LastActiveAt = now
	return state
}

func sameUTCDay(a, b time.Time) bool {
	a, b = a.UTC(), b.UTC()
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
