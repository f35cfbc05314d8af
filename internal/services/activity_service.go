package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Dias221467/Questline/internal/models"
	"github.com/Dias221467/Questline/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultActivityLimit = 20
	MaxActivityLimit     = 100
)

// ActivityService keeps the user's trail: journey lifecycle, check-ins,
// answered gates and earned achievements.
type ActivityService struct {
	repo ActivityStore
	now  func() time.Time
}

func NewActivityService(repo ActivityStore) *ActivityService {
	return &ActivityService{repo: repo, now: time.Now}
}

func (s *ActivityService) SetClock(now func() time.Time) { s.now = now }

// Record appends an entry. journeyID is nil for entries that belong to no
// journey, such as achievements.
func (s *ActivityService) Record(ctx context.Context, userID primitive.ObjectID, kind string, targetID primitive.ObjectID, journeyID *primitive.ObjectID, message string) error {
	entry := &models.Activity{
		UserID:    userID,
		Type:      kind,
		TargetID:  targetID,
		JourneyID: journeyID,
		Timestamp: s.now(),
		Message:   message,
	}
	if err := s.repo.CreateActivity(ctx, entry); err != nil {
		return fmt.Errorf("failed to record %s: %w", kind, err)
	}
	logger.Log.WithFields(map[string]interface{}{
		"user_id": userID.Hex(),
		"type":    kind,
	}).Debug("Activity recorded")
	return nil
}

// Recent lists the trail newest first. Limits outside (0, MaxActivityLimit]
// fall back to DefaultActivityLimit.
func (s *ActivityService) Recent(ctx context.Context, userID primitive.ObjectID, q models.ActivityQuery) ([]models.Activity, error) {
	if q.Limit <= 0 || q.Limit > MaxActivityLimit {
		q.Limit = DefaultActivityLimit
	}
	activities, err := s.repo.ListActivities(ctx, userID, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	return activities, nil
}
