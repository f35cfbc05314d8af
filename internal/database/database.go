package database

import (
	"context"
	"fmt"
	"time"

	"github.com/Dias221467/Questline/internal/config"
	"github.com/Dias221467/Questline/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectDB dials MongoDB and checks it answers.
func ConnectDB(ctx context.Context, cfg *config.Config) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("MongoDB is not reachable: %w", err)
	}

	logger.Log.WithField("database", cfg.MongoDB).Info("Connected to MongoDB")
	return client.Database(cfg.MongoDB), nil
}

// Indexes lists the indexes each collection needs. The unique ones back
// the conflict rules of the repositories.
func Indexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		"journeys": {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "started_at", Value: 1}, {Key: "completed_at", Value: 1}}},
		},
		"check_ins": {
			{
				Keys:    bson.D{{Key: "journey_id", Value: 1}, {Key: "day", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("journey_day_unique"),
			},
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
		},
		"reflection_gates": {
			{Keys: bson.D{{Key: "journey_id", Value: 1}, {Key: "day", Value: 1}}},
		},
		"achievements": {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		"user_achievements": {
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "achievement_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		"users": {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		"notifications": {
			{Keys: bson.D{{Key: "expires_at", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		"activities": {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}}},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "journey_id", Value: 1}, {Key: "timestamp", Value: -1}}},
		},
	}
}

// EnsureIndexes creates any missing index. It is safe to run repeatedly.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for _, name := range collectionNames() {
		models := Indexes()[name]
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
		logger.Log.WithField("collection", name).Info("Indexes ensured")
	}
	return nil
}

// collectionNames fixes the order indexes are created in.
func collectionNames() []string {
	return []string{"journeys", "check_ins", "reflection_gates", "achievements", "user_achievements", "users", "notifications", "activities"}
}
