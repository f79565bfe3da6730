// Package srs implements the SM-2 spaced-repetition scheduling algorithm and
// the due-selection, forecast, retention and streak calculations built on top
// of it. Every function is a pure transformation: callers pass the current
// state and a reference time, and persistence stays outside this package.
package srs

import (
	"math"
	"time"
)

const (
	DefaultEasinessFactor = 2.5
	MinEasinessFactor     = 1.3

	// RememberedThreshold is the lowest quality that counts as a successful recall.
	RememberedThreshold = 3
)

// Quality is a recall grade submitted by the learner for one review event.
// 0 means total failure, 5 means perfect recall. Values outside [0,5] are
// clamped rather than rejected, so scheduling stays total over any input.
type Quality int

const (
	MinQuality Quality = 0
	MaxQuality Quality = 5
)

// Clamp returns the quality limited to the valid [0,5] range.
func (q Quality) Clamp() Quality {
	if q < MinQuality {
		return MinQuality
	}
	if q > MaxQuality {
		return MaxQuality
	}
	return q
}

// Remembered reports whether this grade counts as a successful recall.
func (q Quality) Remembered() bool {
	return q >= RememberedThreshold
}

// ReviewState holds the scheduling fields of a single learnable item.
type ReviewState struct {
	// IntervalDays is the number of days until the next scheduled review.
	// Zero only for a freshly introduced item; every update produces >= 1.
	IntervalDays int
	// RepetitionCount is the consecutive successful reviews since the last lapse.
	RepetitionCount int
	// EasinessFactor grows with good recalls and never drops below 1.3.
	EasinessFactor float64
	// DueAt is when the item should next be presented.
	DueAt time.Time
}

// NewReviewState returns the state of an item that was just introduced:
// due immediately, with the default easiness factor.
func NewReviewState(now time.Time) ReviewState {
	return ReviewState{
		IntervalDays:    0,
		RepetitionCount: 0,
		EasinessFactor:  DefaultEasinessFactor,
		DueAt:           now,
	}
}

// UpdateReview applies one graded review to the state and returns the next
// scheduling state. The update order matters: the easiness factor is adjusted
// first, and the grown interval multiplies the previous interval by the new
// easiness factor.
func UpdateReview(state ReviewState, quality Quality, now time.Time) ReviewState {
	quality = quality.Clamp()

	q := float64(quality)
	delta := 0.1 - (5-q)*(0.08+(5-q)*0.02)
	easiness := math.Max(state.EasinessFactor+delta, MinEasinessFactor)

	var repetition, interval int
	if !quality.Remembered() {
		// Lapse: restart learning and review again tomorrow.
		repetition = 0
		interval = 1
	} else {
		repetition = state.RepetitionCount + 1
		switch repetition {
		case 1:
			interval = 1
		case 2:
			interval = 6
		default:
			interval = int(math.Round(float64(state.IntervalDays) * easiness))
			if interval < 1 {
				// Keeps the minimum of one day even when the stored interval
				// is 0, which repaired imports can produce.
				interval = 1
			}
		}
	}

	return ReviewState{
		IntervalDays:    interval,
		RepetitionCount: repetition,
		EasinessFactor:  easiness,
		DueAt:           now.AddDate(0, 0, interval),
	}
}
