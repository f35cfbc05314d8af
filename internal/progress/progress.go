// Package progress holds the stateless arithmetic behind journey progress,
// check-in eligibility, and the themed narrative text shown for a journey.
package progress

import (
	"math"
	"time"
)

// ProgressPercent returns how far through a journey the user is, driven by
// the recorded day counter rather than elapsed calendar time.
func ProgressPercent(start *time.Time, currentDay, totalDays int) int {
	if start == nil {
		return 0
	}
	if totalDays <= 0 {
		return degeneratePercent(currentDay)
	}
	return clampPercent(int(math.Round(float64(currentDay) * 100 / float64(totalDays))))
}

// IsActive reports whether a journey has begun and is not yet completed.
// A journey scheduled to start in the future is not active.
func IsActive(start, completed *time.Time, now time.Time) bool {
	if start == nil || completed != nil {
		return false
	}
	return !now.Before(*start)
}

// CanCheckInToday allows at most one check-in per calendar day and allows
// catch-up check-ins once the journey day being evaluated has arrived.
func CanCheckInToday(start *time.Time, currentDay int, lastCheckIn *time.Time, now time.Time) bool {
	if start == nil {
		return false
	}
	if lastCheckIn != nil && SameDay(*lastCheckIn, now) {
		return false
	}
	dayToCheck := start.AddDate(0, 0, currentDay)
	return SameDay(dayToCheck, now) || dayToCheck.Before(now)
}

// SameDay compares calendar dates in now's location.
func SameDay(a, b time.Time) bool {
	a = a.In(b.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// FormatDate renders a date the way the journey cards show it.
func FormatDate(t time.Time) string {
	return t.Format("Jan 2, 2006")
}

// flooredPercent is the integer percentage used for narrative thresholds.
func flooredPercent(currentDay, totalDays int) int {
	if totalDays <= 0 {
		return degeneratePercent(currentDay)
	}
	return currentDay * 100 / totalDays
}

func degeneratePercent(currentDay int) int {
	if currentDay > 0 {
		return 100
	}
	return 0
}

func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
