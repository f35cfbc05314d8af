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

// CheckInRepository stores check-ins. The unique (journey_id, day) index
// created by database.EnsureIndexes turns duplicate days into ErrConflict.
type CheckInRepository struct {
	collection *mongo.Collection
}

func NewCheckInRepository(db *mongo.Database) *CheckInRepository {
	return &CheckInRepository{
		collection: db.Collection("check_ins"),
	}
}

func (r *CheckInRepository) CreateCheckIn(ctx context.Context, checkIn *models.CheckIn) (*models.CheckIn, error) {
	if checkIn.CreatedAt.IsZero() {
		checkIn.CreatedAt = time.Now()
	}

	result, err := r.collection.InsertOne(ctx, checkIn)
	if err != nil {
		err = translate(err)
		if errors.Is(err, ErrConflict) {
			logger.Log.WithFields(map[string]interface{}{
				"journey_id": checkIn.JourneyID.Hex(),
				"day":        checkIn.Day,
			}).Warn("Duplicate check-in rejected")
			return nil, fmt.Errorf("check-in for day %d already exists: %w", checkIn.Day, err)
		}
		logger.Log.WithError(err).Error("Failed to insert check-in")
		return nil, fmt.Errorf("failed to insert check-in: %w", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("failed to cast inserted check-in ID")
	}
	checkIn.ID = insertedID

	logger.Log.WithFields(map[string]interface{}{
		"check_in_id": checkIn.ID.Hex(),
		"journey_id":  checkIn.JourneyID.Hex(),
		"day":         checkIn.Day,
	}).Info("Check-in created successfully")
	return checkIn, nil
}

// ListCheckIns returns a journey's check-ins ascending by day
func (r *CheckInRepository) ListCheckIns(ctx context.Context, journeyID, userID primitive.ObjectID) ([]models.CheckIn, error) {
	opts := options.Find().SetSort(bson.D{{Key: "day", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"journey_id": journeyID, "user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch check-ins: %w", err)
	}
	defer cursor.Close(ctx)

	checkIns := []models.CheckIn{}
	if err := cursor.All(ctx, &checkIns); err != nil {
		return nil, fmt.Errorf("failed to decode check-ins: %w", err)
	}
	return checkIns, nil
}

// LatestCheckIn returns the highest-day check-in of a journey, or nil.
func (r *CheckInRepository) LatestCheckIn(ctx context.Context, journeyID primitive.ObjectID) (*models.CheckIn, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "day", Value: -1}})

	var checkIn models.CheckIn
	err := r.collection.FindOne(ctx, bson.M{"journey_id": journeyID}, opts).Decode(&checkIn)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest check-in: %w", err)
	}
	return &checkIn, nil
}

func (r *CheckInRepository) DeleteCheckIn(ctx context.Context, id, userID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		logger.Log.WithError(err).WithField("check_in_id", id.Hex()).Error("Failed to delete check-in")
		return fmt.Errorf("failed to delete check-in: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("check-in %s: %w", id.Hex(), ErrNotFound)
	}
	return nil
}

func (r *CheckInRepository) DeleteCheckInsByJourney(ctx context.Context, journeyID, userID primitive.ObjectID) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"journey_id": journeyID, "user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete check-ins of journey %s: %w", journeyID.Hex(), err)
	}
	return result.DeletedCount, nil
}

func (r *CheckInRepository) CountCheckInsByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("failed to count check-ins: %w", err)
	}
	return n, nil
}
