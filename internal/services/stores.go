package services

import (
	"context"
	"time"

	"github.com/Dias221467/Questline/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The stores below are satisfied by the Mongo repositories in
// internal/repository and by the in-memory store in
// internal/repository/memory.

type JourneyStore interface {
	CreateJourney(ctx context.Context, journey *models.Journey) (*models.Journey, error)
	GetJourney(ctx context.Context, id, userID primitive.ObjectID) (*models.Journey, error)
	ListJourneys(ctx context.Context, userID primitive.ObjectID) ([]models.Journey, error)
	FindActiveJourney(ctx context.Context, userID primitive.ObjectID) (*models.Journey, error)
	UpdateJourney(ctx context.Context, id, userID primitive.ObjectID, upd models.JourneyUpdate, expectedVersion int64) (*models.Journey, error)
	DeleteJourney(ctx context.Context, id, userID primitive.ObjectID) error
	ListActiveJourneys(ctx context.Context, limit int64) ([]models.Journey, error)
}

type CheckInStore interface {
	CreateCheckIn(ctx context.Context, checkIn *models.CheckIn) (*models.CheckIn, error)
	ListCheckIns(ctx context.Context, journeyID, userID primitive.ObjectID) ([]models.CheckIn, error)
	LatestCheckIn(ctx context.Context, journeyID primitive.ObjectID) (*models.CheckIn, error)
	DeleteCheckIn(ctx context.Context, id, userID primitive.ObjectID) error
	DeleteCheckInsByJourney(ctx context.Context, journeyID, userID primitive.ObjectID) (int64, error)
	CountCheckInsByUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

type GateStore interface {
	CreateGates(ctx context.Context, gates []models.ReflectionGate) ([]models.ReflectionGate, error)
	ListGates(ctx context.Context, journeyID, userID primitive.ObjectID) ([]models.ReflectionGate, error)
	GetGate(ctx context.Context, id, userID primitive.ObjectID) (*models.ReflectionGate, error)
	CompleteGate(ctx context.Context, id, userID primitive.ObjectID, response string, at time.Time) (*models.ReflectionGate, error)
	DeleteGatesByJourney(ctx context.Context, journeyID, userID primitive.ObjectID) (int64, error)
	CountCompletedGates(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

type AchievementStore interface {
	ListAchievements(ctx context.Context) ([]models.Achievement, error)
	CreateAchievement(ctx context.Context, a *models.Achievement) (*models.Achievement, error)
	EnsureAchievement(ctx context.Context, a *models.Achievement) (bool, error)
	ListUserAchievements(ctx context.Context, userID primitive.ObjectID) ([]models.UserAchievement, error)
	AwardAchievement(ctx context.Context, ua *models.UserAchievement) (*models.UserAchievement, error)
}

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	UpdateLastActive(ctx context.Context, id primitive.ObjectID, at time.Time) error
	ListUserIDs(ctx context.Context) ([]primitive.ObjectID, error)
}

type ActivityStore interface {
	CreateActivity(ctx context.Context, activity *models.Activity) error
	ListActivities(ctx context.Context, userID primitive.ObjectID, q models.ActivityQuery) ([]models.Activity, error)
}

type NotificationStore interface {
	CreateNotification(ctx context.Context, notif *models.Notification) error
	GetUserNotifications(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error)
	MarkAsRead(ctx context.Context, id, userID primitive.ObjectID) error
	DeleteNotification(ctx context.Context, id, userID primitive.ObjectID) error
	GetLatestNotificationByType(ctx context.Context, userID primitive.ObjectID, notifType string) (*models.Notification, error)
	DeleteExpiredNotifications(ctx context.Context) (int64, error)
}
