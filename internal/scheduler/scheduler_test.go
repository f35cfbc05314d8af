package scheduler

import (
	"testing"
	"time"

	"github.com/Dias221467/Questline/internal/jobs"
	"github.com/Dias221467/Questline/internal/repository/memory"
	"github.com/Dias221467/Questline/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJobs() (*jobs.CheckInReminder, *jobs.AchievementSweep) {
	store := memory.New()
	reminder := jobs.NewCheckInReminder(services.NewNotificationService(store, store, store, store))
	sweep := jobs.NewAchievementSweep(services.NewUserService(store), services.NewAchievementService(store, store, store, store))
	return reminder, sweep
}

func TestStartAndStop(t *testing.T) {
	reminder, sweep := testJobs()
	s, err := Start("0 * * * *", "30 3 * * *", reminder, sweep)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Entries())

	select {
	case <-s.Stop().Done():
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestStartRejectsBadSpec(t *testing.T) {
	reminder, sweep := testJobs()

	_, err := Start("every now and then", "30 3 * * *", reminder, sweep)
	assert.ErrorContains(t, err, "reminder")

	_, err = Start("@hourly", "61 * * * *", reminder, sweep)
	assert.ErrorContains(t, err, "sweep")
}
