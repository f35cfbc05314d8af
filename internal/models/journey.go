package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Theme selects the storyline a journey is narrated with.
type Theme string

const (
	ThemeFantasy   Theme = "fantasy"
	ThemeSciFi     Theme = "sci-fi"
	ThemeAdventure Theme = "adventure"
	ThemeMystery   Theme = "mystery"
)

// AllowedThemes lists every theme a journey may be created with.
var AllowedThemes = map[Theme]struct{}{
	ThemeFantasy:   {},
	ThemeSciFi:     {},
	ThemeAdventure: {},
	ThemeMystery:   {},
}

// Valid reports whether t is one of the known themes.
func (t Theme) Valid() bool {
	_, ok := AllowedThemes[t]
	return ok
}

// Journey is a multi-day habit campaign owned by a single user.
type Journey struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"user_id" json:"user_id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Habit       string             `bson:"habit" json:"habit"`
	Duration    int                `bson:"duration" json:"duration"`
	Theme       Theme              `bson:"theme" json:"theme"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	StartedAt   *time.Time         `bson:"started_at" json:"started_at"`     // nil while the journey is a draft
	CompletedAt *time.Time         `bson:"completed_at" json:"completed_at"` // never cleared once set
	CurrentDay  int                `bson:"current_day" json:"current_day"`
	Streak      int                `bson:"streak" json:"streak"`
	TruthScore  int                `bson:"truth_score" json:"truth_score"`
	Version     int64              `bson:"version" json:"version"`
}

// Started reports whether the journey has left the draft state.
func (j *Journey) Started() bool {
	return j.StartedAt != nil
}

// Completed reports whether the journey has been marked finished.
func (j *Journey) Completed() bool {
	return j.CompletedAt != nil
}

// JourneyUpdate carries a partial update. Nil fields are left untouched.
type JourneyUpdate struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Habit       *string    `json:"habit,omitempty"`
	Theme       *Theme     `json:"theme,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CurrentDay  *int       `json:"current_day,omitempty"`
	Streak      *int       `json:"streak,omitempty"`
	TruthScore  *int       `json:"truth_score,omitempty"`
}

// Empty reports whether the update would change nothing.
func (u JourneyUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Habit == nil && u.Theme == nil &&
		u.StartedAt == nil && u.CompletedAt == nil &&
		u.CurrentDay == nil && u.Streak == nil && u.TruthScore == nil
}

// Fields returns the update as a column/value map keyed by the stored field names.
func (u JourneyUpdate) Fields() map[string]interface{} {
	fields := map[string]interface{}{}
	if u.Title != nil {
		fields["title"] = *u.Title
	}
	if u.Description != nil {
		fields["description"] = *u.Description
	}
	if u.Habit != nil {
		fields["habit"] = *u.Habit
	}
	if u.Theme != nil {
		fields["theme"] = *u.Theme
	}
	if u.StartedAt != nil {
		fields["started_at"] = *u.StartedAt
	}
	if u.CompletedAt != nil {
		fields["completed_at"] = *u.CompletedAt
	}
	if u.CurrentDay != nil {
		fields["current_day"] = *u.CurrentDay
	}
	if u.Streak != nil {
		fields["streak"] = *u.Streak
	}
	if u.TruthScore != nil {
		fields["truth_score"] = *u.TruthScore
	}
	return fields
}

// Apply copies the non-nil fields of u onto j.
func (u JourneyUpdate) Apply(j *Journey) {
	if u.Title != nil {
		j.Title = *u.Title
	}
	if u.Description != nil {
		j.Description = *u.Description
	}
	if u.Habit != nil {
		j.Habit = *u.Habit
	}
	if u.Theme != nil {
		j.Theme = *u.Theme
	}
	if u.StartedAt != nil {
		t := *u.StartedAt
		j.StartedAt = &t
	}
	if u.CompletedAt != nil {
		t := *u.CompletedAt
		j.CompletedAt = &t
	}
	if u.CurrentDay != nil {
		j.CurrentDay = *u.CurrentDay
	}
	if u.Streak != nil {
		j.Streak = *u.Streak
	}
	if u.TruthScore != nil {
		j.TruthScore = *u.TruthScore
	}
}
