package jobs

import (
	"context"
	"testing"

	"github.com/Dias221467/Questline/internal/engine"
	"github.com/Dias221467/Questline/internal/models"
	"github.com/Dias221467/Questline/internal/repository/memory"
	"github.com/Dias221467/Questline/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

func TestCheckInReminderRunScan(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	journeys := services.NewJourneyService(store, store, store, services.DefaultOptions())
	sess := engine.NewSession(primitive.NewObjectID())

	_, err := journeys.CreateJourney(ctx, sess, services.CreateJourneyInput{
		Title: "Stretch", Description: "Every evening", Habit: "stretching", Duration: 14, Theme: models.ThemeMystery,
	})
	require.NoError(t, err)

	notifications := services.NewNotificationService(store, store, store, store)
	reminder := NewCheckInReminder(notifications)
	require.NoError(t, reminder.RunScan(ctx))
	require.NoError(t, reminder.RunScan(ctx))

	notifs, err := notifications.GetUserNotifications(ctx, sess.UserID)
	require.NoError(t, err)
	require.Len(t, notifs, 1)
	assert.Equal(t, models.NotificationCheckInDue, notifs[0].Type)
}

func TestAchievementSweepRun(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	users := services.NewUserService(store).WithHashCost(bcrypt.MinCost)
	achievements := services.NewAchievementService(store, store, store, store)
	_, err := achievements.SeedDefaults(ctx)
	require.NoError(t, err)

	user, err := users.RegisterUser(ctx, services.SignUpInput{Email: "ada@example.com", Password: "long-enough"})
	require.NoError(t, err)

	journeys := services.NewJourneyService(store, store, store, services.DefaultOptions())
	sess := engine.NewSession(user.ID)
	j, err := journeys.CreateJourney(ctx, sess, services.CreateJourneyInput{
		Title: "Read", Description: "Ten pages", Habit: "reading", Duration: 7, Theme: models.ThemeSciFi,
	})
	require.NoError(t, err)
	_, err = journeys.CreateCheckIn(ctx, sess, services.CheckInInput{JourneyID: j.ID, Reflection: "good chapter"})
	require.NoError(t, err)

	sweep := NewAchievementSweep(users, achievements)
	awarded, err := sweep.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, awarded)

	awarded, err = sweep.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, awarded)

}
