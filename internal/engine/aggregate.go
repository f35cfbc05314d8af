package engine

import (
	"math"

	"github.com/Dias221467/Questline/internal/models"
)

const (
	MinTruthScore = 0
	MaxTruthScore = 10
)

// Aggregate holds the derived journey statistics recomputed on a check-in.
type Aggregate struct {
	CurrentDay int `json:"current_day"`
	Streak     int `json:"streak"`
	TruthScore int `json:"truth_score"`
}

// ApplyCheckIn recomputes the journey aggregate for a durably recorded
// check-in. The truth score is a running average weighted by the
// pre-update day counter, which only equals a true mean when no days were
// skipped. Streak increments on every check-in; missed days are not
// detected.
func ApplyCheckIn(j models.Journey, c models.CheckIn) Aggregate {
	prev := j.CurrentDay
	if prev < 0 {
		prev = 0
	}

	day := prev + 1
	if c.Day+1 > day {
		day = c.Day + 1
	}

	score := math.Round(float64(j.TruthScore*prev+c.TruthRating) / float64(prev+1))

	return Aggregate{
		CurrentDay: day,
		Streak:     j.Streak + 1,
		TruthScore: clampTruth(int(score)),
	}
}

// Update expresses the aggregate as a partial journey update.
func (a Aggregate) Update() models.JourneyUpdate {
	day, streak, score := a.CurrentDay, a.Streak, a.TruthScore
	return models.JourneyUpdate{
		CurrentDay: &day,
		Streak:     &streak,
		TruthScore: &score,
	}
}

func clampTruth(v int) int {
	if v < MinTruthScore {
		return MinTruthScore
	}
	if v > MaxTruthScore {
		return MaxTruthScore
	}
	return v
}
