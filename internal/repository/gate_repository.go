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

type GateRepository struct {
	collection *mongo.Collection
}

func NewGateRepository(db *mongo.Database) *GateRepository {
	return &GateRepository{
		collection: db.Collection("reflection_gates"),
	}
}

// CreateGates inserts a journey's gates in one batch and assigns their IDs
func (r *GateRepository) CreateGates(ctx context.Context, gates []models.ReflectionGate) ([]models.ReflectionGate, error) {
	if len(gates) == 0 {
		return gates, nil
	}

	docs := make([]interface{}, len(gates))
	for i := range gates {
		if gates[i].ID.IsZero() {
			gates[i].ID = primitive.NewObjectID()
		}
		docs[i] = gates[i]
	}

	if _, err := r.collection.InsertMany(ctx, docs); err != nil {
		logger.Log.WithError(err).WithField("journey_id", gates[0].JourneyID.Hex()).Error("Failed to insert reflection gates")
		return nil, fmt.Errorf("failed to insert reflection gates: %w", translate(err))
	}

	logger.Log.WithFields(map[string]interface{}{
		"journey_id": gates[0].JourneyID.Hex(),
		"count":      len(gates),
	}).Info("Reflection gates created")
	return gates, nil
}

// ListGates returns a journey's gates ascending by day
func (r *GateRepository) ListGates(ctx context.Context, journeyID, userID primitive.ObjectID) ([]models.ReflectionGate, error) {
	opts := options.Find().SetSort(bson.D{{Key: "day", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"journey_id": journeyID, "user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reflection gates: %w", err)
	}
	defer cursor.Close(ctx)

	gates := []models.ReflectionGate{}
	if err := cursor.All(ctx, &gates); err != nil {
		return nil, fmt.Errorf("failed to decode reflection gates: %w", err)
	}
	return gates, nil
}

func (r *GateRepository) GetGate(ctx context.Context, id, userID primitive.ObjectID) (*models.ReflectionGate, error) {
	var gate models.ReflectionGate
	if err := r.collection.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&gate); err != nil {
		return nil, fmt.Errorf("failed to find reflection gate %s: %w", id.Hex(), translate(err))
	}
	return &gate, nil
}

// CompleteGate answers an open gate. A gate completes once: answering it
// again reports ErrConflict.
func (r *GateRepository) CompleteGate(ctx context.Context, id, userID primitive.ObjectID, response string, at time.Time) (*models.ReflectionGate, error) {
	filter := bson.M{"_id": id, "user_id": userID, "completed": false}
	update := bson.M{"$set": bson.M{
		"completed":    true,
		"response":     response,
		"completed_at": at,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var gate models.ReflectionGate
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&gate)
	if errors.Is(err, mongo.ErrNoDocuments) {
		n, cerr := r.collection.CountDocuments(ctx, bson.M{"_id": id, "user_id": userID})
		if cerr == nil && n > 0 {
			return nil, fmt.Errorf("reflection gate %s already completed: %w", id.Hex(), ErrConflict)
		}
		return nil, fmt.Errorf("reflection gate %s: %w", id.Hex(), ErrNotFound)
	}
	if err != nil {
		logger.Log.WithError(err).WithField("gate_id", id.Hex()).Error("Failed to complete reflection gate")
		return nil, fmt.Errorf("failed to complete reflection gate: %w", err)
	}

	logger.Log.WithFields(map[string]interface{}{
		"gate_id":    id.Hex(),
		"journey_id": gate.JourneyID.Hex(),
		"day":        gate.Day,
	}).Info("Reflection gate completed")
	return &gate, nil
}

func (r *GateRepository) DeleteGatesByJourney(ctx context.Context, journeyID, userID primitive.ObjectID) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"journey_id": journeyID, "user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete reflection gates of journey %s: %w", journeyID.Hex(), err)
	}
	return result.DeletedCount, nil
}

func (r *GateRepository) CountCompletedGates(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"user_id": userID, "completed": true})
	if err != nil {
		return 0, fmt.Errorf("failed to count completed gates: %w", err)
	}
	return n, nil
}
