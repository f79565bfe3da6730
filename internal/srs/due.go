package srs

import (
	"sort"
	"time"
)

// DueItem pairs an item identifier with its scheduling state for due selection.
type DueItem struct {
	ID    string
	State ReviewState
}

// SelectDue returns the identifiers of all items due strictly before now,
// ordered by due time ascending. Items with equal due times keep their input
// order. The input slice is not modified.
func SelectDue(items []DueItem, now time.Time) []string {
	due := make([]DueItem, 0, len(items))
	for _, item := range items {
		if item.State.DueAt.Before(now) {
			due = append(due, item)
		}
	}

	sort.SliceStable(due, func(i, j int) bool {
		return due[i].State.DueAt.Before(due[j].State.DueAt)
	})

	ids := make([]string, len(due))
	for i, item := range due {
		ids[i] = item.ID
	}
	return ids
}

// CountDueWithin counts the items that come due before now plus the given
// number of days. days == 0 counts only items that are already due.
// A negative horizon counts nothing.
func CountDueWithin(states []ReviewState, now time.Time, days int) int {
	if days < 0 {
		return 0
	}

	horizon := now.AddDate(0, 0, days)
	count := 0
	for _, state := range states {
		if state.DueAt.Before(horizon) {
			count++
		}
	}
	return count
}
