package services

import (
	"testing"
	"time"

	"github.com/Dias221467/Questline/internal/models"
	"github.com/Dias221467/Questline/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newReminderFixture(t *testing.T) (*fixture, *NotificationService) {
	t.Helper()
	f := newFixture(t)
	notifications := NewNotificationService(f.store, f.store, f.store, f.store)
	notifications.SetClock(f.clock.Now)
	return f, notifications
}

func TestCheckInsDueRemindsOncePerInterval(t *testing.T) {
	f, notifications := newReminderFixture(t)
	f.journey(t, 30)

	sent, err := notifications.CheckInsDue(f.ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	f.clock.Advance(time.Hour)
	sent, err = notifications.CheckInsDue(f.ctx, 0)
	require.NoError(t, err)
	assert.Zero(t, sent)

	notifs, _ := notifications.GetUserNotifications(f.ctx, f.sess.UserID)
	require.Len(t, notifs, 1)
	assert.Equal(t, models.NotificationCheckInDue, notifs[0].Type)

	f.clock.Advance(ReminderInterval)
	sent, err = notifications.CheckInsDue(f.ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
}

func TestCheckInsDueSkipsAfterTodaysCheckIn(t *testing.T) {
	f, notifications := newReminderFixture(t)
	j := f.journey(t, 30)
	_, err := f.checkIn(j.ID, 0, 5)
	require.NoError(t, err)

	sent, err := notifications.CheckInsDue(f.ctx, 0)
	require.NoError(t, err)
	assert.Zero(t, sent)
}

func TestCheckInsDuePointsAtOpenGate(t *testing.T) {
	f, notifications := newReminderFixture(t)
	j := f.journey(t, 30)
	for day := 0; day < 3; day++ {
		_, err := f.checkIn(j.ID, day, 5)
		require.NoError(t, err)
	}
	f.clock.Advance(3 * 24 * time.Hour)

	sent, err := notifications.CheckInsDue(f.ctx, 0)
	require.NoError(t, err)
	require.Equal(t, 1, sent)

	notifs, _ := notifications.GetUserNotifications(f.ctx, f.sess.UserID)
	require.Len(t, notifs, 1)
	assert.Equal(t, models.NotificationGateReady, notifs[0].Type)
	require.NotNil(t, notifs[0].TargetID)
	assert.Equal(t, j.ID, *notifs[0].TargetID)
}

func TestNotificationOwnership(t *testing.T) {
	f, notifications := newReminderFixture(t)
	require.NoError(t, notifications.CreateNotification(f.ctx, f.sess.UserID, models.NotificationCheckInDue, "t", "m", nil))
	notifs, _ := notifications.GetUserNotifications(f.ctx, f.sess.UserID)
	require.Len(t, notifs, 1)
	id := notifs[0].ID

	stranger := primitive.NewObjectID()
	assert.ErrorIs(t, notifications.MarkNotificationAsRead(f.ctx, stranger, id), repository.ErrNotFound)
	assert.ErrorIs(t, notifications.DeleteNotification(f.ctx, stranger, id), repository.ErrNotFound)

	require.NoError(t, notifications.MarkNotificationAsRead(f.ctx, f.sess.UserID, id))
	notifs, _ = notifications.GetUserNotifications(f.ctx, f.sess.UserID)
	assert.True(t, notifs[0].Read)

	require.NoError(t, notifications.DeleteNotification(f.ctx, f.sess.UserID, id))
	notifs, _ = notifications.GetUserNotifications(f.ctx, f.sess.UserID)
	assert.Empty(t, notifs)
}

func TestDeleteExpiredNotifications(t *testing.T) {
	f, notifications := newReminderFixture(t)
	require.NoError(t, notifications.CreateNotification(f.ctx, f.sess.UserID, models.NotificationCheckInDue, "t", "m", nil))

	f.clock.Advance(repository.NotificationTTL + time.Minute)
	n, err := notifications.DeleteExpiredNotifications(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
