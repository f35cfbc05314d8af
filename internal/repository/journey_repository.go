package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dias221467/Questline/internal/models"
	"github.com/Dias221467/Questline/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// JourneyRepository struct handles database operations related to journeys
type JourneyRepository struct {
	collection *mongo.Collection
}

// NewJourneyRepository creates a new instance of JourneyRepository
func NewJourneyRepository(db *mongo.Database) *JourneyRepository {
	return &JourneyRepository{
		collection: db.Collection("journeys"),
	}
}

// CreateJourney inserts a journey and assigns its ID
func (r *JourneyRepository) CreateJourney(ctx context.Context, journey *models.Journey) (*models.Journey, error) {
	if journey.CreatedAt.IsZero() {
		journey.CreatedAt = time.Now()
	}
	journey.Version = 1

	result, err := r.collection.InsertOne(ctx, journey)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to insert journey")
		return nil, fmt.Errorf("failed to insert journey: %w", translate(err))
	}

	// Cast the inserted ID and assign it to the journey object
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		logger.Log.Error("Failed to cast inserted ID")
		return nil, fmt.Errorf("failed to cast inserted journey ID")
	}
	journey.ID = insertedID

	logger.Log.WithField("journey_id", journey.ID.Hex()).Info("Journey created successfully")
	return journey, nil
}

// GetJourney fetches a journey owned by userID
func (r *JourneyRepository) GetJourney(ctx context.Context, id, userID primitive.ObjectID) (*models.Journey, error) {
	var journey models.Journey

	err := r.collection.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&journey)
	if err != nil {
		logger.Log.WithError(err).WithField("journey_id", id.Hex()).Warn("Failed to find journey")
		return nil, fmt.Errorf("failed to find journey %s: %w", id.Hex(), translate(err))
	}
	return &journey, nil
}

// ListJourneys returns the user's journeys, newest first
func (r *JourneyRepository) ListJourneys(ctx context.Context, userID primitive.ObjectID) ([]models.Journey, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID.Hex()).Error("Failed to fetch journeys")
		return nil, fmt.Errorf("failed to fetch journeys: %w", err)
	}
	defer cursor.Close(ctx)

	journeys := []models.Journey{}
	if err := cursor.All(ctx, &journeys); err != nil {
		return nil, fmt.Errorf("failed to decode journeys: %w", err)
	}

	logger.Log.WithFields(map[string]interface{}{
		"user_id": userID.Hex(),
		"count":   len(journeys),
	}).Debug("Journeys fetched")
	return journeys, nil
}

// FindActiveJourney returns the most recently created started, unfinished
// journey of the user. No such journey yields (nil, nil).
func (r *JourneyRepository) FindActiveJourney(ctx context.Context, userID primitive.ObjectID) (*models.Journey, error) {
	filter := bson.M{
		"user_id":      userID,
		"started_at":   bson.M{"$ne": nil},
		"completed_at": nil,
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})

	var journey models.Journey
	err := r.collection.FindOne(ctx, filter, opts).Decode(&journey)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID.Hex()).Error("Failed to load active journey")
		return nil, fmt.Errorf("failed to load active journey: %w", err)
	}
	return &journey, nil
}

// UpdateJourney applies a partial update and bumps the version. With an
// expected version other than AnyVersion the write only lands if the stored
// version still matches; a mismatch is reported as ErrConflict.
func (r *JourneyRepository) UpdateJourney(ctx context.Context, id, userID primitive.ObjectID, upd models.JourneyUpdate, expectedVersion int64) (*models.Journey, error) {
	filter := bson.M{"_id": id, "user_id": userID}
	if expectedVersion != AnyVersion {
		filter["version"] = expectedVersion
	}

	update := bson.M{"$inc": bson.M{"version": 1}}
	if fields := upd.Fields(); len(fields) > 0 {
		update["$set"] = fields
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var journey models.Journey
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&journey)
	if errors.Is(err, mongo.ErrNoDocuments) && expectedVersion != AnyVersion {
		n, cerr := r.collection.CountDocuments(ctx, bson.M{"_id": id, "user_id": userID})
		if cerr == nil && n > 0 {
			logger.Log.WithFields(map[string]interface{}{
				"journey_id": id.Hex(),
				"expected":   expectedVersion,
			}).Warn("Journey version is stale")
			return nil, fmt.Errorf("journey %s changed concurrently: %w", id.Hex(), ErrConflict)
		}
	}
	if err != nil {
		logger.Log.WithError(err).WithField("journey_id", id.Hex()).Error("Failed to update journey")
		return nil, fmt.Errorf("failed to update journey %s: %w", id.Hex(), translate(err))
	}

	logger.Log.WithFields(map[string]interface{}{
		"journey_id": id.Hex(),
		"version":    journey.Version,
	}).Info("Journey updated successfully")
	return &journey, nil
}

// DeleteJourney deletes a journey owned by userID
func (r *JourneyRepository) DeleteJourney(ctx context.Context, id, userID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		logger.Log.WithError(err).WithField("journey_id", id.Hex()).Error("Failed to delete journey")
		return fmt.Errorf("failed to delete journey: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("journey %s: %w", id.Hex(), ErrNotFound)
	}

	logger.Log.WithField("journey_id", id.Hex()).Info("Journey deleted successfully")
	return nil
}

// ListActiveJourneys returns started, unfinished journeys across all users.
// Used by background jobs.
func (r *JourneyRepository) ListActiveJourneys(ctx context.Context, limit int64) ([]models.Journey, error) {
	filter := bson.M{
		"started_at":   bson.M{"$ne": nil},
		"completed_at": nil,
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch active journeys: %w", err)
	}
	defer cursor.Close(ctx)

	journeys := []models.Journey{}
	if err := cursor.All(ctx, &journeys); err != nil {
		return nil, fmt.Errorf("failed to decode active journeys: %w", err)
	}
	return journeys, nil
}
