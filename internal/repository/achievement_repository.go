package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Dias221467/Questline/internal/models"
	"github.com/Dias221467/Questline/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AchievementRepository owns the achievement catalog and the earned
// user_achievements join collection.
type AchievementRepository struct {
	catalog *mongo.Collection
	earned  *mongo.Collection
}

func NewAchievementRepository(db *mongo.Database) *AchievementRepository {
	return &AchievementRepository{
		catalog: db.Collection("achievements"),
		earned:  db.Collection("user_achievements"),
	}
}

// ListAchievements returns the catalog, highest reward first
func (r *AchievementRepository) ListAchievements(ctx context.Context) ([]models.Achievement, error) {
	opts := options.Find().SetSort(bson.D{{Key: "points_reward", Value: -1}, {Key: "name", Value: 1}})

	cursor, err := r.catalog.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch achievements: %w", err)
	}
	defer cursor.Close(ctx)

	achievements := []models.Achievement{}
	for cursor.Next(ctx) {
		var a models.Achievement
		if err := cursor.Decode(&a); err != nil {
			return nil, fmt.Errorf("failed to decode achievement: %w", err)
		}
		achievements = append(achievements, a)
	}
	return achievements, cursor.Err()
}

func (r *AchievementRepository) CreateAchievement(ctx context.Context, a *models.Achievement) (*models.Achievement, error) {
	a.CreatedAt = time.Now()

	result, err := r.catalog.InsertOne(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("failed to insert achievement: %w", translate(err))
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	a.ID = insertedID

	logger.Log.WithField("achievement", a.Name).Info("Achievement created")
	return a, nil
}

// EnsureAchievement inserts a catalog entry unless one with the same name
// exists. It reports whether a new entry was written.
func (r *AchievementRepository) EnsureAchievement(ctx context.Context, a *models.Achievement) (bool, error) {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	update := bson.M{"$setOnInsert": bson.M{
		"name":           a.Name,
		"description":    a.Description,
		"image_url":      a.ImageURL,
		"points_reward":  a.PointsReward,
		"criteria_type":  a.CriteriaType,
		"criteria_value": a.CriteriaValue,
		"created_at":     a.CreatedAt,
	}}

	result, err := r.catalog.UpdateOne(ctx, bson.M{"name": a.Name}, update, options.Update().SetUpsert(true))
	if err != nil {
		return false, fmt.Errorf("failed to seed achievement %q: %w", a.Name, err)
	}
	return result.UpsertedCount > 0, nil
}

// ListUserAchievements returns what the user has earned, most recent first
func (r *AchievementRepository) ListUserAchievements(ctx context.Context, userID primitive.ObjectID) ([]models.UserAchievement, error) {
	opts := options.Find().SetSort(bson.D{{Key: "earned_at", Value: -1}})

	cursor, err := r.earned.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user achievements: %w", err)
	}
	defer cursor.Close(ctx)

	earned := []models.UserAchievement{}
	if err := cursor.All(ctx, &earned); err != nil {
		return nil, fmt.Errorf("failed to decode user achievements: %w", err)
	}
	return earned, nil
}

// AwardAchievement records an earned achievement. Earning the same one twice
// reports ErrConflict.
func (r *AchievementRepository) AwardAchievement(ctx context.Context, ua *models.UserAchievement) (*models.UserAchievement, error) {
	if ua.EarnedAt.IsZero() {
		ua.EarnedAt = time.Now()
	}

	result, err := r.earned.InsertOne(ctx, ua)
	if err != nil {
		return nil, fmt.Errorf("failed to award achievement: %w", translate(err))
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	ua.ID = insertedID

	logger.Log.WithFields(map[string]interface{}{
		"user_id":        ua.UserID.Hex(),
		"achievement_id": ua.AchievementID.Hex(),
	}).Info("Achievement awarded")
	return ua, nil
}
