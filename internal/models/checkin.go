package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultTruthRating is recorded when a check-in arrives without a rating.
const DefaultTruthRating = 5

// CheckIn is one day's recorded habit completion plus reflection.
// At most one check-in exists per (journey, day).
type CheckIn struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	JourneyID    primitive.ObjectID `bson:"journey_id" json:"journey_id"`
	UserID       primitive.ObjectID `bson:"user_id" json:"user_id"`
	Day          int                `bson:"day" json:"day"`
	Reflection   string             `bson:"reflection" json:"reflection"`
	TextInput    string             `bson:"text_input,omitempty" json:"text_input,omitempty"`
	NumericInput *float64           `bson:"numeric_input,omitempty" json:"numeric_input,omitempty"`
	PhotoURL     *string            `bson:"photo_url,omitempty" json:"photo_url"`
	TruthRating  int                `bson:"truth_rating" json:"truth_rating"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
}
