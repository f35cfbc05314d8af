package engine

import (
	"time"

	"github.com/Dias221467/Questline/internal/models"
	"github.com/Dias221467/Questline/internal/progress"
)

// StepKind tells the client which form to show next.
type StepKind string

const (
	StepNone     StepKind = "none"
	StepGate     StepKind = "gate"
	StepCheckIn  StepKind = "check_in"
	StepWait     StepKind = "wait"
	StepFinished StepKind = "finished"
)

type NextStep struct {
	Kind   StepKind               `json:"kind"`
	Day    int                    `json:"day"`
	Prompt string                 `json:"prompt,omitempty"`
	Gate   *models.ReflectionGate `json:"gate,omitempty"`
}

// View is the presentation binding of a snapshot.
type View struct {
	*Snapshot
	Progress        int      `json:"progress"`
	Narrative       string   `json:"narrative"`
	Active          bool     `json:"active"`
	CanCheckInToday bool     `json:"can_check_in_today"`
	Next            NextStep `json:"next"`
}

// Describe derives everything the journey page renders from a snapshot.
// A pending gate always wins over an ordinary check-in.
func Describe(s *Snapshot, now time.Time) View {
	if s == nil {
		s = NewSnapshot(nil, nil, nil, now)
	}
	v := View{Snapshot: s, Next: NextStep{Kind: StepNone}}
	j := s.Journey
	if j == nil {
		return v
	}

	var last *time.Time
	if c := s.LastCheckIn(); c != nil {
		last = &c.CreatedAt
	}

	v.Progress = progress.ProgressPercent(j.StartedAt, j.CurrentDay, j.Duration)
	v.Narrative = progress.Narrative(j.Theme, j.CurrentDay, j.Duration)
	v.Active = progress.IsActive(j.StartedAt, j.CompletedAt, now)
	v.CanCheckInToday = progress.CanCheckInToday(j.StartedAt, j.CurrentDay, last, now)

	switch {
	case j.Completed():
		v.Next = NextStep{Kind: StepFinished, Day: j.CurrentDay}
	case !j.Started():
		v.Next = NextStep{Kind: StepNone}
	default:
		if g := PendingGate(j, s.Gates, j.CurrentDay); g != nil {
			v.Next = NextStep{Kind: StepGate, Day: g.Day, Prompt: g.Prompt, Gate: g}
		} else if v.CanCheckInToday {
			v.Next = NextStep{Kind: StepCheckIn, Day: j.CurrentDay, Prompt: progress.ReflectionPrompt(j.CurrentDay, j.Theme)}
		} else {
			v.Next = NextStep{Kind: StepWait, Day: j.CurrentDay}
		}
	}
	return v
}
