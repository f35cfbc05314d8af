package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents an account that owns journeys.
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email          string             `bson:"email" json:"email"`
	Name           string             `bson:"name,omitempty" json:"name,omitempty"`
	HashedPassword string             `bson:"hashed_password" json:"-"`
	Role           string             `bson:"role" json:"role"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
	LastActiveAt   time.Time          `bson:"last_active_at,omitempty" json:"last_active_at,omitempty"`
}
