package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Dias221467/Questline/internal/engine"
	"github.com/Dias221467/Questline/internal/models"
	"github.com/Dias221467/Questline/internal/repository"
	"github.com/Dias221467/Questline/internal/repository/memory"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errBoom = errors.New("boom")

// testClock is a settable clock shared by the service and the store.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	store *memory.Store
	clock *testClock
	svc   *JourneyService
	sess  *engine.Session
	ctx   context.Context
}

func newFixture(t *testing.T, mutate ...func(*Options)) *fixture {
	t.Helper()
	store := memory.New()
	clock := newTestClock()
	store.SetClock(clock.Now)

	opts := DefaultOptions()
	opts.MinDuration = 1
	opts.Now = clock.Now
	for _, m := range mutate {
		m(&opts)
	}
	activities := NewActivityService(store)
	activities.SetClock(clock.Now)
	svc := NewJourneyService(store, store, store, opts)
	svc.Activities = activities
	return &fixture{
		store: store,
		clock: clock,
		svc:   svc,
		sess:  engine.NewSession(primitive.NewObjectID()),
		ctx:   context.Background(),
	}
}

func (f *fixture) journey(t *testing.T, duration int) *models.Journey {
	t.Helper()
	j, err := f.svc.CreateJourney(f.ctx, f.sess, CreateJourneyInput{
		Title:       "Morning pages",
		Description: "Write three pages every morning",
		Habit:       "writing",
		Duration:    duration,
		Theme:       models.ThemeFantasy,
	})
	require.NoError(t, err)
	return j
}

func (f *fixture) checkIn(journeyID primitive.ObjectID, day, rating int) (*models.CheckIn, error) {
	return f.svc.CreateCheckIn(f.ctx, f.sess, CheckInInput{
		JourneyID:   journeyID,
		Day:         day,
		Reflection:  "felt focused today",
		TruthRating: &rating,
	})
}

func (f *fixture) stored(t *testing.T, id primitive.ObjectID) *models.Journey {
	t.Helper()
	j, err := f.store.GetJourney(f.ctx, id, f.sess.UserID)
	require.NoError(t, err)
	return j
}

// trail lists the activity types recorded for a journey, newest first.
func (f *fixture) trail(t *testing.T, journeyID primitive.ObjectID) []string {
	t.Helper()
	entries, err := f.svc.Activities.Recent(f.ctx, f.sess.UserID, models.ActivityQuery{JourneyID: &journeyID, Limit: MaxActivityLimit})
	require.NoError(t, err)
	kinds := make([]string, 0, len(entries))
	for _, e := range entries {
		kinds = append(kinds, e.Type)
	}
	return kinds
}

// failingGates refuses to store gates.
type failingGates struct{ *memory.Store }

func (failingGates) CreateGates(context.Context, []models.ReflectionGate) ([]models.ReflectionGate, error) {
	return nil, errBoom
}

// failingAggregate refuses every journey update.
type failingAggregate struct{ *memory.Store }

func (failingAggregate) UpdateJourney(context.Context, primitive.ObjectID, primitive.ObjectID, models.JourneyUpdate, int64) (*models.Journey, error) {
	return nil, errBoom
}

// lateCompletion hands out the journey as it was before another request
// completed it, while the stored copy is already completed.
type lateCompletion struct{ *memory.Store }

func (l lateCompletion) GetJourney(ctx context.Context, id, userID primitive.ObjectID) (*models.Journey, error) {
	j, err := l.Store.GetJourney(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if j.CompletedAt == nil {
		done := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
		if _, err := l.Store.UpdateJourney(ctx, id, userID, models.JourneyUpdate{CompletedAt: &done}, repository.AnyVersion); err != nil {
			return nil, err
		}
	}
	return j, nil
}

// racingJourneys lets another writer bump the version right before every
// update lands.
type racingJourneys struct{ *memory.Store }

func (r racingJourneys) UpdateJourney(ctx context.Context, id, userID primitive.ObjectID, upd models.JourneyUpdate, expected int64) (*models.Journey, error) {
	if _, err := r.Store.UpdateJourney(ctx, id, userID, models.JourneyUpdate{}, repository.AnyVersion); err != nil {
		return nil, err
	}
	return r.Store.UpdateJourney(ctx, id, userID, upd, expected)
}
