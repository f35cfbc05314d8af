package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/Dias221467/Questline/internal/models"
	"github.com/Dias221467/Questline/internal/repository"
	"github.com/Dias221467/Questline/pkg/logger"
	"github.com/Dias221467/Questline/pkg/metrics"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultAchievements is the catalog seeded at startup.
var DefaultAchievements = []models.Achievement{
	{Name: "First Step", Description: "Record your first check-in", PointsReward: 10, CriteriaType: models.CriteriaCheckIns, CriteriaValue: 1},
	{Name: "Week Warrior", Description: "Reach a 7 check-in streak", PointsReward: 50, CriteriaType: models.CriteriaStreak, CriteriaValue: 7},
	{Name: "Reflective Soul", Description: "Answer 3 reflection gates", PointsReward: 60, CriteriaType: models.CriteriaGatesCompleted, CriteriaValue: 3},
	{Name: "Truth Seeker", Description: "Hold a truth score of 8 or more", PointsReward: 75, CriteriaType: models.CriteriaTruthScore, CriteriaValue: 8},
	{Name: "First Journey", Description: "Complete your first journey", PointsReward: 100, CriteriaType: models.CriteriaJourneyCompleted, CriteriaValue: 1},
	{Name: "Centurion", Description: "Record 100 check-ins", PointsReward: 250, CriteriaType: models.CriteriaCheckIns, CriteriaValue: 100},
	{Name: "Seasoned Traveler", Description: "Complete 5 journeys", PointsReward: 300, CriteriaType: models.CriteriaJourneyCompleted, CriteriaValue: 5},
}

// UserStats are the figures achievement criteria are measured against.
type UserStats struct {
	CheckIns          int64 `json:"check_ins"`
	GatesCompleted    int64 `json:"gates_completed"`
	JourneysCompleted int64 `json:"journeys_completed"`
	BestStreak        int   `json:"best_streak"`
	BestTruthScore    int   `json:"best_truth_score"`
}

// Meets reports whether the stats satisfy an achievement's criteria.
func (st UserStats) Meets(a models.Achievement) bool {
	var have int64
	switch a.CriteriaType {
	case models.CriteriaCheckIns:
		have = st.CheckIns
	case models.CriteriaGatesCompleted:
		have = st.GatesCompleted
	case models.CriteriaJourneyCompleted:
		have = st.JourneysCompleted
	case models.CriteriaStreak:
		have = int64(st.BestStreak)
	case models.CriteriaTruthScore:
		have = int64(st.BestTruthScore)
	default:
		return false
	}
	return have >= int64(a.CriteriaValue)
}

type AchievementService struct {
	repo     AchievementStore
	journeys JourneyStore
	checkIns CheckInStore
	gates    GateStore
	now      func() time.Time

	NotificationService *NotificationService
	ActivityService     *ActivityService
}

func NewAchievementService(repo AchievementStore, journeys JourneyStore, checkIns CheckInStore, gates GateStore) *AchievementService {
	return &AchievementService{
		repo:     repo,
		journeys: journeys,
		checkIns: checkIns,
		gates:    gates,
		now:      time.Now,
	}
}

func (s *AchievementService) SetClock(now func() time.Time) { s.now = now }

// SeedDefaults inserts the default catalog entries that are missing.
func (s *AchievementService) SeedDefaults(ctx context.Context) (int, error) {
	created := 0
	for _, a := range DefaultAchievements {
		a := a
		ok, err := s.repo.EnsureAchievement(ctx, &a)
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}
	logger.Log.WithField("created", created).Info("Achievement catalog seeded")
	return created, nil
}

func (s *AchievementService) ListAchievements(ctx context.Context) ([]models.Achievement, error) {
	return s.repo.ListAchievements(ctx)
}

func (s *AchievementService) CreateAchievement(ctx context.Context, in AchievementInput) (*models.Achievement, error) {
	if err := validateStruct(in, "invalid achievement"); err != nil {
		return nil, err
	}
	return s.repo.CreateAchievement(ctx, &models.Achievement{
		Name:          in.Name,
		Description:   in.Description,
		ImageURL:      in.ImageURL,
		PointsReward:  in.PointsReward,
		CriteriaType:  in.CriteriaType,
		CriteriaValue: in.CriteriaValue,
	})
}

// UserAchievements returns what the user earned with each catalog entry
// joined in.
func (s *AchievementService) UserAchievements(ctx context.Context, userID primitive.ObjectID) ([]models.UserAchievement, error) {
	catalog, err := s.repo.ListAchievements(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}
	earned, err := s.repo.ListUserAchievements(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user achievements: %w", err)
	}

	byID := make(map[primitive.ObjectID]models.Achievement, len(catalog))
	for _, a := range catalog {
		byID[a.ID] = a
	}
	for i := range earned {
		if a, ok := byID[earned[i].AchievementID]; ok {
			a := a
			earned[i].Achievement = &a
		}
	}
	return earned, nil
}

// Summary backs the achievements page: points from earned badges, counts,
// and the completion rate rounded to a whole percent.
func (s *AchievementService) Summary(ctx context.Context, userID primitive.ObjectID) (*models.AchievementSummary, error) {
	catalog, err := s.repo.ListAchievements(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}
	earned, err := s.UserAchievements(ctx, userID)
	if err != nil {
		return nil, err
	}

	have := make(map[primitive.ObjectID]bool, len(earned))
	summary := &models.AchievementSummary{
		Earned:     len(earned),
		Available:  len(catalog),
		EarnedList: earned,
		Remaining:  []models.Achievement{},
	}
	for _, ua := range earned {
		have[ua.AchievementID] = true
		if ua.Achievement != nil {
			summary.TotalPoints += ua.Achievement.PointsReward
		}
	}
	for _, a := range catalog {
		if !have[a.ID] {
			summary.Remaining = append(summary.Remaining, a)
		}
	}

	total := len(catalog)
	if total == 0 {
		total = 1
	}
	summary.CompletionRate = int(math.Round(float64(len(earned)) / float64(total) * 100))
	return summary, nil
}

// Stats gathers the user's progress figures across all journeys.
func (s *AchievementService) Stats(ctx context.Context, userID primitive.ObjectID) (UserStats, error) {
	var st UserStats
	var err error

	if st.CheckIns, err = s.checkIns.CountCheckInsByUser(ctx, userID); err != nil {
		return st, fmt.Errorf("failed to count check-ins: %w", err)
	}
	if st.GatesCompleted, err = s.gates.CountCompletedGates(ctx, userID); err != nil {
		return st, fmt.Errorf("failed to count gates: %w", err)
	}

	journeys, err := s.journeys.ListJourneys(ctx, userID)
	if err != nil {
		return st, fmt.Errorf("failed to list journeys: %w", err)
	}
	for _, j := range journeys {
		if j.Completed() {
			st.JourneysCompleted++
		}
		if j.Streak > st.BestStreak {
			st.BestStreak = j.Streak
		}
		// a truth score only counts once something was rated
		if j.CurrentDay > 0 && j.TruthScore > st.BestTruthScore {
			st.BestTruthScore = j.TruthScore
		}
	}
	return st, nil
}

// Evaluate awards every catalog achievement the user now qualifies for and
// returns the newly earned ones.
func (s *AchievementService) Evaluate(ctx context.Context, userID primitive.ObjectID) ([]models.UserAchievement, error) {
	catalog, err := s.repo.ListAchievements(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}
	if len(catalog) == 0 {
		return nil, nil
	}
	earned, err := s.repo.ListUserAchievements(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user achievements: %w", err)
	}
	have := make(map[primitive.ObjectID]bool, len(earned))
	for _, ua := range earned {
		have[ua.AchievementID] = true
	}

	stats, err := s.Stats(ctx, userID)
	if err != nil {
		return nil, err
	}

	var awarded []models.UserAchievement
	for _, a := range catalog {
		if have[a.ID] || !stats.Meets(a) {
			continue
		}
		ua, err := s.repo.AwardAchievement(ctx, &models.UserAchievement{
			UserID:        userID,
			AchievementID: a.ID,
			EarnedAt:      s.now(),
		})
		if errors.Is(err, repository.ErrConflict) {
			// a concurrent evaluation got there first
			continue
		}
		if err != nil {
			return awarded, fmt.Errorf("failed to award %q: %w", a.Name, err)
		}
		a := a
		ua.Achievement = &a
		awarded = append(awarded, *ua)
		metrics.AchievementsAwarded.Inc()
		s.announce(ctx, userID, a)
	}

	if len(awarded) > 0 {
		logger.Log.WithFields(map[string]interface{}{
			"user_id": userID.Hex(),
			"count":   len(awarded),
		}).Info("Achievements awarded")
	}
	return awarded, nil
}

func (s *AchievementService) announce(ctx context.Context, userID primitive.ObjectID, a models.Achievement) {
	id := a.ID
	if s.NotificationService != nil {
		err := s.NotificationService.CreateNotification(ctx, userID, models.NotificationAchievementEarned,
			"Achievement unlocked",
			fmt.Sprintf("You earned \"%s\" (+%d points).", a.Name, a.PointsReward),
			&id,
		)
		if err != nil {
			logger.Log.WithError(err).Warn("Failed to send achievement notification")
		}
	}
	if s.ActivityService != nil {
		if err := s.ActivityService.Record(ctx, userID, models.ActivityAchievement, id, nil, "Earned "+a.Name); err != nil {
			logger.Log.WithError(err).Warn("Failed to record achievement activity")
		}
	}
}

// Sweep evaluates every given user; failures are logged per user.
func (s *AchievementService) Sweep(ctx context.Context, userIDs []primitive.ObjectID) int {
	total := 0
	for _, id := range userIDs {
		awarded, err := s.Evaluate(ctx, id)
		if err != nil {
			logger.Log.WithError(err).WithField("user_id", id.Hex()).Warn("Achievement sweep failed for user")
			continue
		}
		total += len(awarded)
	}
	return total
}
