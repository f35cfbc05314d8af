package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReflectionGate is a milestone that must be answered before ordinary
// check-ins resume.
type ReflectionGate struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	JourneyID   primitive.ObjectID `bson:"journey_id" json:"journey_id"`
	UserID      primitive.ObjectID `bson:"user_id" json:"user_id"`
	Day         int                `bson:"day" json:"day"`
	Completed   bool               `bson:"completed" json:"completed"`
	Prompt      string             `bson:"prompt" json:"prompt"`
	Response    *string            `bson:"response" json:"response"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	CompletedAt *time.Time         `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
}
