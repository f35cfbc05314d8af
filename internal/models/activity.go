package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Activity types recorded in the journey trail.
const (
	ActivityJourneyCreated   = "journey_created"
	ActivityJourneyStarted   = "journey_started"
	ActivityJourneyUpdated   = "journey_updated"
	ActivityJourneyCompleted = "journey_completed"
	ActivityJourneyDeleted   = "journey_deleted"
	ActivityCheckIn          = "check_in_recorded"
	ActivityGateCompleted    = "gate_completed"
	ActivityAchievement      = "achievement_earned"
)

// Activity is one entry of a user's trail. Entries outlive the journey
// they mention.
type Activity struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID  `bson:"user_id" json:"user_id"`
	Type      string              `bson:"type" json:"type"`
	TargetID  primitive.ObjectID  `bson:"target_id" json:"target_id"` // the journey, check-in, gate or achievement
	JourneyID *primitive.ObjectID `bson:"journey_id,omitempty" json:"journey_id,omitempty"`
	Timestamp time.Time           `bson:"timestamp" json:"timestamp"`
	Message   string              `bson:"message" json:"message"`
}

// ActivityQuery narrows a trail listing. Zero values mean no filter.
type ActivityQuery struct {
	JourneyID *primitive.ObjectID
	Types     []string
	Limit     int
}
