package memory

import (
	"context"
	"testing"
	"time"

	"github.com/Dias221467/Questline/internal/models"
	"github.com/Dias221467/Questline/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestFindActiveJourneyPicksNewestStarted(t *testing.T) {
	ctx := context.Background()
	s := New()
	user := primitive.NewObjectID()
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	started := base

	_, _ = s.CreateJourney(ctx, &models.Journey{UserID: user, Title: "old", StartedAt: &started, CreatedAt: base})
	_, _ = s.CreateJourney(ctx, &models.Journey{UserID: user, Title: "new", StartedAt: &started, CreatedAt: base.Add(time.Hour)})
	_, _ = s.CreateJourney(ctx, &models.Journey{UserID: user, Title: "draft", CreatedAt: base.Add(2 * time.Hour)})
	done := base.Add(3 * time.Hour)
	_, _ = s.CreateJourney(ctx, &models.Journey{UserID: user, Title: "done", StartedAt: &started, CompletedAt: &done, CreatedAt: base.Add(3 * time.Hour)})

	active, err := s.FindActiveJourney(ctx, user)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, "new", active.Title)

	none, err := s.FindActiveJourney(ctx, primitive.NewObjectID())
	require.NoError(t, err)
	assert.Nil(t, none)

	all, err := s.ListJourneys(ctx, user)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "done", all[0].Title)
	assert.Equal(t, "old", all[3].Title)
}

func TestUpdateJourneyVersioning(t *testing.T) {
	ctx := context.Background()
	s := New()
	user := primitive.NewObjectID()
	j, _ := s.CreateJourney(ctx, &models.Journey{UserID: user})
	require.Equal(t, int64(1), j.Version)

	day := 1
	upd, err := s.UpdateJourney(ctx, j.ID, user, models.JourneyUpdate{CurrentDay: &day}, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), upd.Version)
	assert.Equal(t, 1, upd.CurrentDay)

	_, err = s.UpdateJourney(ctx, j.ID, user, models.JourneyUpdate{CurrentDay: &day}, 1)
	assert.ErrorIs(t, err, repository.ErrConflict)

	upd, err = s.UpdateJourney(ctx, j.ID, user, models.JourneyUpdate{}, repository.AnyVersion)
	require.NoError(t, err)
	assert.Equal(t, int64(3), upd.Version)

	_, err = s.UpdateJourney(ctx, j.ID, primitive.NewObjectID(), models.JourneyUpdate{}, repository.AnyVersion)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCheckInUniquenessAndScoping(t *testing.T) {
	ctx := context.Background()
	s := New()
	user := primitive.NewObjectID()
	journey := primitive.NewObjectID()

	first, err := s.CreateCheckIn(ctx, &models.CheckIn{JourneyID: journey, UserID: user, Day: 1})
	require.NoError(t, err)
	_, err = s.CreateCheckIn(ctx, &models.CheckIn{JourneyID: journey, UserID: user, Day: 1})
	assert.ErrorIs(t, err, repository.ErrConflict)
	_, err = s.CreateCheckIn(ctx, &models.CheckIn{JourneyID: journey, UserID: user, Day: 0})
	require.NoError(t, err)

	list, err := s.ListCheckIns(ctx, journey, user)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 0, list[0].Day)

	foreign, err := s.ListCheckIns(ctx, journey, primitive.NewObjectID())
	require.NoError(t, err)
	assert.Empty(t, foreign)

	assert.ErrorIs(t, s.DeleteCheckIn(ctx, first.ID, primitive.NewObjectID()), repository.ErrNotFound)
	require.NoError(t, s.DeleteCheckIn(ctx, first.ID, user))
	_, err = s.CreateCheckIn(ctx, &models.CheckIn{JourneyID: journey, UserID: user, Day: 1})
	assert.NoError(t, err, "deleting a check-in frees its day")

	latest, err := s.LatestCheckIn(ctx, journey)
	require.NoError(t, err)
	assert.Equal(t, 1, latest.Day)
}

func TestCompleteGateOnce(t *testing.T) {
	ctx := context.Background()
	s := New()
	user := primitive.NewObjectID()
	gates, _ := s.CreateGates(ctx, []models.ReflectionGate{{JourneyID: primitive.NewObjectID(), UserID: user, Day: 3}})

	g, err := s.CompleteGate(ctx, gates[0].ID, user, "first answer that is long", time.Now())
	require.NoError(t, err)
	assert.True(t, g.Completed)

	_, err = s.CompleteGate(ctx, gates[0].ID, user, "second answer that is long", time.Now())
	assert.ErrorIs(t, err, repository.ErrConflict)

	stored, err := s.GetGate(ctx, gates[0].ID, user)
	require.NoError(t, err)
	assert.Equal(t, "first answer that is long", *stored.Response)

	n, err := s.CountCompletedGates(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestAchievementsAndNotifications(t *testing.T) {
	ctx := context.Background()
	s := New()
	user := primitive.NewObjectID()

	created, err := s.EnsureAchievement(ctx, &models.Achievement{Name: "First Step", PointsReward: 10})
	require.NoError(t, err)
	assert.True(t, created)
	created, err = s.EnsureAchievement(ctx, &models.Achievement{Name: "First Step", PointsReward: 99})
	require.NoError(t, err)
	assert.False(t, created)
	_, _ = s.CreateAchievement(ctx, &models.Achievement{Name: "Legend", PointsReward: 500})

	catalog, _ := s.ListAchievements(ctx)
	require.Len(t, catalog, 2)
	assert.Equal(t, "Legend", catalog[0].Name)

	_, err = s.AwardAchievement(ctx, &models.UserAchievement{UserID: user, AchievementID: catalog[0].ID})
	require.NoError(t, err)
	_, err = s.AwardAchievement(ctx, &models.UserAchievement{UserID: user, AchievementID: catalog[0].ID})
	assert.ErrorIs(t, err, repository.ErrConflict)

	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	s.SetClock(func() time.Time { return now })
	require.NoError(t, s.CreateNotification(ctx, &models.Notification{UserID: user, Type: models.NotificationCheckInDue}))

	list, _ := s.GetUserNotifications(ctx, user)
	assert.Len(t, list, 1)

	now = now.Add(repository.NotificationTTL + time.Second)
	list, _ = s.GetUserNotifications(ctx, user)
	assert.Empty(t, list)
	n, err := s.DeleteExpiredNotifications(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestListActivitiesFilters(t *testing.T) {
	ctx := context.Background()
	s := New()
	user := primitive.NewObjectID()
	journey := primitive.NewObjectID()
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	record := func(kind string, journeyID *primitive.ObjectID, at time.Duration) {
		require.NoError(t, s.CreateActivity(ctx, &models.Activity{UserID: user, Type: kind, JourneyID: journeyID, Timestamp: base.Add(at)}))
	}
	record(models.ActivityJourneyCreated, &journey, 0)
	record(models.ActivityCheckIn, &journey, time.Minute)
	record(models.ActivityAchievement, nil, 2*time.Minute)

	all, err := s.ListActivities(ctx, user, models.ActivityQuery{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, models.ActivityAchievement, all[0].Type)

	forJourney, err := s.ListActivities(ctx, user, models.ActivityQuery{JourneyID: &journey})
	require.NoError(t, err)
	assert.Len(t, forJourney, 2)

	checkIns, err := s.ListActivities(ctx, user, models.ActivityQuery{Types: []string{models.ActivityCheckIn}})
	require.NoError(t, err)
	require.Len(t, checkIns, 1)

	limited, err := s.ListActivities(ctx, user, models.ActivityQuery{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
