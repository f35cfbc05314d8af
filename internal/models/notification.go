package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types.
const (
	NotificationAchievementEarned = "achievement_earned"
	NotificationCheckInDue        = "check_in_due"
	NotificationGateReady         = "gate_ready"
)

type Notification struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID  `bson:"user_id" json:"user_id"`
	Type      string              `bson:"type" json:"type"`                               // e.g. "achievement_earned", "check_in_due"
	Title     string              `bson:"title" json:"title"`                             // Short headline
	Message   string              `bson:"message" json:"message"`                         // Descriptive content
	Read      bool                `bson:"read" json:"read"`                               // True if user viewed it
	TargetID  *primitive.ObjectID `bson:"target_id,omitempty" json:"target_id,omitempty"` // Optional reference to journey/achievement
	CreatedAt time.Time           `bson:"created_at" json:"created_at"`
	ExpiresAt time.Time           `bson:"expires_at" json:"expires_at"` // For auto-deletion after 7 days
}
