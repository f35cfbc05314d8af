package repository

import (
	"context"
	"fmt"

	"github.com/Dias221467/Questline/internal/models"
	"github.com/Dias221467/Questline/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ActivityRepository stores the per-user trail in "activities".
type ActivityRepository struct {
	collection *mongo.Collection
}

func NewActivityRepository(db *mongo.Database) *ActivityRepository {
	return &ActivityRepository{collection: db.Collection("activities")}
}

func (r *ActivityRepository) CreateActivity(ctx context.Context, activity *models.Activity) error {
	result, err := r.collection.InsertOne(ctx, activity)
	if err != nil {
		logger.Log.WithError(err).WithField("type", activity.Type).Error("Failed to insert activity")
		return fmt.Errorf("failed to insert activity: %w", err)
	}
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		activity.ID = id
	}
	return nil
}

// ListActivities returns the user's trail newest first, narrowed by q.
func (r *ActivityRepository) ListActivities(ctx context.Context, userID primitive.ObjectID, q models.ActivityQuery) ([]models.Activity, error) {
	filter := bson.M{"user_id": userID}
	if q.JourneyID != nil {
		filter["journey_id"] = *q.JourneyID
	}
	if len(q.Types) > 0 {
		filter["type"] = bson.M{"$in": q.Types}
	}

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}})
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch activities: %w", err)
	}
	defer cursor.Close(ctx)

	activities := []models.Activity{}
	if err := cursor.All(ctx, &activities); err != nil {
		return nil, fmt.Errorf("failed to decode activities: %w", err)
	}
	return activities, nil
}
