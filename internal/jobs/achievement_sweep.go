package jobs

import (
	"context"
	"fmt"

	"github.com/Dias221467/Questline/internal/services"
	"github.com/sirupsen/logrus"
)

// AchievementSweep re-evaluates every user, catching awards missed when an
// evaluation after a write failed.
type AchievementSweep struct {
	UserService        *services.UserService
	AchievementService *services.AchievementService
}

func NewAchievementSweep(users *services.UserService, achievements *services.AchievementService) *AchievementSweep {
	return &AchievementSweep{UserService: users, AchievementService: achievements}
}

func (s *AchievementSweep) Run(ctx context.Context) (int, error) {
	ids, err := s.UserService.ListUserIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list users: %w", err)
	}
	awarded := s.AchievementService.Sweep(ctx, ids)
	logrus.WithFields(logrus.Fields{"users": len(ids), "awarded": awarded}).Info("Achievement sweep completed")
	return awarded, nil
}
