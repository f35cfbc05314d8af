package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Criteria types an achievement can be earned by.
const (
	CriteriaJourneyCompleted = "journey_completed"
	CriteriaCheckIns         = "check_ins"
	CriteriaStreak           = "streak"
	CriteriaTruthScore       = "truth_score"
	CriteriaGatesCompleted   = "gates_completed"
)

// AllowedCriteria is the set of criteria the evaluator understands.
var AllowedCriteria = map[string]struct{}{
	CriteriaJourneyCompleted: {},
	CriteriaCheckIns:         {},
	CriteriaStreak:           {},
	CriteriaTruthScore:       {},
	CriteriaGatesCompleted:   {},
}

type Achievement struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"`
	Description   string             `bson:"description" json:"description"`
	ImageURL      *string            `bson:"image_url,omitempty" json:"image_url"`
	PointsReward  int                `bson:"points_reward" json:"points_reward"`
	CriteriaType  string             `bson:"criteria_type" json:"criteria_type"`
	CriteriaValue int                `bson:"criteria_value" json:"criteria_value"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
}

// UserAchievement records that a user earned an achievement. Unique per
// (user, achievement).
type UserAchievement struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID `bson:"user_id" json:"user_id"`
	AchievementID primitive.ObjectID `bson:"achievement_id" json:"achievement_id"`
	EarnedAt      time.Time          `bson:"earned_at" json:"earned_at"`
	Achievement   *Achievement       `bson:"-" json:"achievement,omitempty"`
}

// AchievementSummary backs the achievements page header.
type AchievementSummary struct {
	TotalPoints    int               `json:"total_points"`
	Earned         int               `json:"earned"`
	Available      int               `json:"available"`
	CompletionRate int               `json:"completion_rate"`
	EarnedList     []UserAchievement `json:"earned_list"`
	Remaining      []Achievement     `json:"remaining"`
}
