package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/Dias221467/Questline/internal/models"
)

// milestoneDays are the fixed gate days; the journey's final day is added
// to them at scheduling time.
var milestoneDays = []int{3, 7, 14, 21}

// ScheduleGates returns the ascending, de-duplicated gate days for a journey
// of the given duration. Days past the duration are dropped.
func ScheduleGates(duration int) []int {
	candidates := append(append([]int{}, milestoneDays...), duration)

	seen := make(map[int]struct{}, len(candidates))
	days := make([]int, 0, len(candidates))
	for _, d := range candidates {
		if d <= 0 || d > duration {
			continue
		}
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		days = append(days, d)
	}
	sort.Ints(days)
	return days
}

// GatePrompt is the prompt shown on the gate for day.
func GatePrompt(day int) string {
	return fmt.Sprintf("Day %d Reflection: How has this journey changed you so far?", day)
}

// NewGates builds the incomplete gates for a freshly created journey.
func NewGates(j *models.Journey, now time.Time) []models.ReflectionGate {
	days := ScheduleGates(j.Duration)
	gates := make([]models.ReflectionGate, 0, len(days))
	for _, day := range days {
		gates = append(gates, models.ReflectionGate{
			JourneyID: j.ID,
			UserID:    j.UserID,
			Day:       day,
			Completed: false,
			Prompt:    GatePrompt(day),
			CreatedAt: now,
		})
	}
	return gates
}

// PendingGate returns the earliest incomplete gate that blocks an ordinary
// check-in for day, or nil. A gate blocks once the journey has reached its
// day, either through the recorded counter or the day being checked in.
func PendingGate(j *models.Journey, gates []models.ReflectionGate, day int) *models.ReflectionGate {
	reached := day
	if j.CurrentDay > reached {
		reached = j.CurrentDay
	}
	var pending *models.ReflectionGate
	for i := range gates {
		g := &gates[i]
		if g.Completed || g.JourneyID != j.ID || g.Day > reached {
			continue
		}
		if pending == nil || g.Day < pending.Day {
			pending = g
		}
	}
	return pending
}
