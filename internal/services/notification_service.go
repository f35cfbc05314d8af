package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Dias221467/Questline/internal/models"
	"github.com/Dias221467/Questline/internal/progress"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReminderInterval is the minimum gap between two check-in reminders.
const ReminderInterval = 20 * time.Hour

type NotificationService struct {
	repo     NotificationStore
	journeys JourneyStore
	checkIns CheckInStore
	gates    GateStore
	now      func() time.Time
}

func NewNotificationService(repo NotificationStore, journeys JourneyStore, checkIns CheckInStore, gates GateStore) *NotificationService {
	return &NotificationService{
		repo:     repo,
		journeys: journeys,
		checkIns: checkIns,
		gates:    gates,
		now:      time.Now,
	}
}

// SetClock overrides the reminder clock.
func (s *NotificationService) SetClock(now func() time.Time) { s.now = now }

// CreateNotification logs a new notification for a user
func (s *NotificationService) CreateNotification(ctx context.Context, userID primitive.ObjectID, notifType, title, message string, targetID *primitive.ObjectID) error {
	notif := &models.Notification{
		UserID:   userID,
		Type:     notifType,
		Title:    title,
		Message:  message,
		Read:     false,
		TargetID: targetID,
	}
	return s.repo.CreateNotification(ctx, notif)
}

// GetUserNotifications returns all notifications for a user
func (s *NotificationService) GetUserNotifications(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	return s.repo.GetUserNotifications(ctx, userID)
}

// MarkNotificationAsRead sets the "read" status of a notification to true
func (s *NotificationService) MarkNotificationAsRead(ctx context.Context, userID, notifID primitive.ObjectID) error {
	return s.repo.MarkAsRead(ctx, notifID, userID)
}

// DeleteNotification deletes a specific notification
func (s *NotificationService) DeleteNotification(ctx context.Context, userID, notifID primitive.ObjectID) error {
	return s.repo.DeleteNotification(ctx, notifID, userID)
}

func (s *NotificationService) DeleteExpiredNotifications(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpiredNotifications(ctx)
}

// CheckInsDue reminds users whose active journey is open for today's
// check-in. A user hears at most once per ReminderInterval. It returns how
// many reminders were sent.
func (s *NotificationService) CheckInsDue(ctx context.Context, limit int64) (int, error) {
	journeys, err := s.journeys.ListActiveJourneys(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch active journeys: %w", err)
	}

	now := s.now()
	seen := make(map[primitive.ObjectID]bool)
	sent := 0
	for _, journey := range journeys {
		// newest first, so the first journey per user is the active one
		if seen[journey.UserID] {
			continue
		}
		seen[journey.UserID] = true

		last, err := s.checkIns.LatestCheckIn(ctx, journey.ID)
		if err != nil {
			logrus.WithError(err).WithField("journey_id", journey.ID.Hex()).Warn("Failed to read latest check-in")
			continue
		}
		var lastAt *time.Time
		if last != nil {
			lastAt = &last.CreatedAt
		}
		if !progress.CanCheckInToday(journey.StartedAt, journey.CurrentDay, lastAt, now) {
			continue
		}

		notifType, title, message := s.reminderFor(ctx, journey)
		existing, err := s.repo.GetLatestNotificationByType(ctx, journey.UserID, notifType)
		if err == nil && existing != nil && now.Sub(existing.CreatedAt) < ReminderInterval {
			continue
		}

		journeyID := journey.ID
		if err := s.CreateNotification(ctx, journey.UserID, notifType, title, message, &journeyID); err != nil {
			logrus.WithError(err).Warnf("Failed to send check-in reminder for journey %s", journey.ID.Hex())
			continue
		}
		sent++
	}

	logrus.WithField("sent", sent).Info("Check-in reminders processed")
	return sent, nil
}

// reminderFor words the reminder, pointing at an open gate when one blocks
// the day.
func (s *NotificationService) reminderFor(ctx context.Context, journey models.Journey) (string, string, string) {
	gates, err := s.gates.ListGates(ctx, journey.ID, journey.UserID)
	if err == nil {
		for _, g := range gates {
			if !g.Completed && g.Day <= journey.CurrentDay {
				return models.NotificationGateReady,
					"Reflection gate awaits",
					fmt.Sprintf("Day %d of \"%s\" asks for a reflection before you continue.", g.Day, journey.Title)
			}
		}
	}
	return models.NotificationCheckInDue,
		"Time to check in",
		fmt.Sprintf("Day %d of \"%s\" is ready for you.", journey.CurrentDay+1, journey.Title)
}
