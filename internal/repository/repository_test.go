package repository

import (
	"context"
	"testing"
	"time"

	"github.com/Dias221467/Questline/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

// toDoc turns a model into the raw document a mocked server would return.
func toDoc(t *testing.T, v interface{}) bson.D {
	t.Helper()
	raw, err := bson.Marshal(v)
	require.NoError(t, err)
	var doc bson.D
	require.NoError(t, bson.Unmarshal(raw, &doc))
	return doc
}

func countResponse(ns string, n int64) bson.D {
	return mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "n", Value: n}})
}

func duplicateKey() bson.D {
	return mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "E11000 duplicate key error"})
}

func TestJourneyRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	userID := primitive.NewObjectID()

	mt.Run("create assigns id and first version", func(mt *mtest.T) {
		repo := NewJourneyRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		j, err := repo.CreateJourney(ctx, &models.Journey{UserID: userID, Title: "Read", Duration: 7})
		require.NoError(mt, err)
		assert.False(mt, j.ID.IsZero())
		assert.Equal(mt, int64(1), j.Version)
		assert.False(mt, j.CreatedAt.IsZero())
	})

	mt.Run("get missing is not found", func(mt *mtest.T) {
		repo := NewJourneyRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.journeys", mtest.FirstBatch))

		_, err := repo.GetJourney(ctx, primitive.NewObjectID(), userID)
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("no active journey is not an error", func(mt *mtest.T) {
		repo := NewJourneyRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.journeys", mtest.FirstBatch))

		j, err := repo.FindActiveJourney(ctx, userID)
		require.NoError(mt, err)
		assert.Nil(mt, j)
	})

	mt.Run("list decodes every journey", func(mt *mtest.T) {
		repo := NewJourneyRepository(mt.DB)
		now := time.Now().UTC().Truncate(time.Millisecond)
		a := models.Journey{ID: primitive.NewObjectID(), UserID: userID, Title: "A", StartedAt: &now}
		b := models.Journey{ID: primitive.NewObjectID(), UserID: userID, Title: "B"}
		mt.AddMockResponses(
			mtest.CreateCursorResponse(1, "db.journeys", mtest.FirstBatch, toDoc(mt.T, a), toDoc(mt.T, b)),
			mtest.CreateCursorResponse(0, "db.journeys", mtest.NextBatch),
		)

		journeys, err := repo.ListJourneys(ctx, userID)
		require.NoError(mt, err)
		require.Len(mt, journeys, 2)
		assert.Equal(mt, "A", journeys[0].Title)
		require.NotNil(mt, journeys[0].StartedAt)
		assert.Nil(mt, journeys[1].StartedAt)
	})

	mt.Run("update returns the new document", func(mt *mtest.T) {
		repo := NewJourneyRepository(mt.DB)
		updated := models.Journey{ID: primitive.NewObjectID(), UserID: userID, CurrentDay: 1, Streak: 1, TruthScore: 8, Version: 2}
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: toDoc(mt.T, updated)}})

		day := 1
		j, err := repo.UpdateJourney(ctx, updated.ID, userID, models.JourneyUpdate{CurrentDay: &day}, 1)
		require.NoError(mt, err)
		assert.Equal(mt, int64(2), j.Version)
		assert.Equal(mt, 8, j.TruthScore)
	})

	mt.Run("stale version is a conflict", func(mt *mtest.T) {
		repo := NewJourneyRepository(mt.DB)
		mt.AddMockResponses(
			bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: nil}},
			countResponse("db.journeys", 1),
		)

		day := 2
		_, err := repo.UpdateJourney(ctx, primitive.NewObjectID(), userID, models.JourneyUpdate{CurrentDay: &day}, 1)
		assert.ErrorIs(mt, err, ErrConflict)
	})

	mt.Run("update of a foreign journey is not found", func(mt *mtest.T) {
		repo := NewJourneyRepository(mt.DB)
		mt.AddMockResponses(
			bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: nil}},
			countResponse("db.journeys", 0),
		)

		day := 2
		_, err := repo.UpdateJourney(ctx, primitive.NewObjectID(), userID, models.JourneyUpdate{CurrentDay: &day}, 3)
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("delete of nothing is not found", func(mt *mtest.T) {
		repo := NewJourneyRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := repo.DeleteJourney(ctx, primitive.NewObjectID(), userID)
		assert.ErrorIs(mt, err, ErrNotFound)
	})
}

func TestCheckInRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("duplicate day is a conflict", func(mt *mtest.T) {
		repo := NewCheckInRepository(mt.DB)
		mt.AddMockResponses(duplicateKey())

		_, err := repo.CreateCheckIn(ctx, &models.CheckIn{JourneyID: primitive.NewObjectID(), Day: 0})
		assert.ErrorIs(mt, err, ErrConflict)
	})

	mt.Run("latest is nil without check-ins", func(mt *mtest.T) {
		repo := NewCheckInRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.check_ins", mtest.FirstBatch))

		c, err := repo.LatestCheckIn(ctx, primitive.NewObjectID())
		require.NoError(mt, err)
		assert.Nil(mt, c)
	})

	mt.Run("delete by journey reports count", func(mt *mtest.T) {
		repo := NewCheckInRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 3}))

		n, err := repo.DeleteCheckInsByJourney(ctx, primitive.NewObjectID(), primitive.NewObjectID())
		require.NoError(mt, err)
		assert.Equal(mt, int64(3), n)
	})
}

func TestGateRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	userID := primitive.NewObjectID()

	mt.Run("create assigns ids", func(mt *mtest.T) {
		repo := NewGateRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		journeyID := primitive.NewObjectID()
		gates, err := repo.CreateGates(ctx, []models.ReflectionGate{
			{JourneyID: journeyID, UserID: userID, Day: 3},
			{JourneyID: journeyID, UserID: userID, Day: 7},
		})
		require.NoError(mt, err)
		for _, g := range gates {
			assert.False(mt, g.ID.IsZero())
		}
	})

	mt.Run("complete returns the answered gate", func(mt *mtest.T) {
		repo := NewGateRepository(mt.DB)
		resp := "It made my mornings calmer overall."
		at := time.Now().UTC().Truncate(time.Millisecond)
		done := models.ReflectionGate{ID: primitive.NewObjectID(), UserID: userID, Day: 3, Completed: true, Response: &resp, CompletedAt: &at}
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: toDoc(mt.T, done)}})

		g, err := repo.CompleteGate(ctx, done.ID, userID, resp, at)
		require.NoError(mt, err)
		assert.True(mt, g.Completed)
		assert.Equal(mt, resp, *g.Response)
	})

	mt.Run("second completion is a conflict", func(mt *mtest.T) {
		repo := NewGateRepository(mt.DB)
		mt.AddMockResponses(
			bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: nil}},
			countResponse("db.reflection_gates", 1),
		)

		_, err := repo.CompleteGate(ctx, primitive.NewObjectID(), userID, "whatever it takes to pass", time.Now())
		assert.ErrorIs(mt, err, ErrConflict)
	})

	mt.Run("unknown gate is not found", func(mt *mtest.T) {
		repo := NewGateRepository(mt.DB)
		mt.AddMockResponses(
			bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: nil}},
			countResponse("db.reflection_gates", 0),
		)

		_, err := repo.CompleteGate(ctx, primitive.NewObjectID(), userID, "whatever it takes to pass", time.Now())
		assert.ErrorIs(mt, err, ErrNotFound)
	})
}

func TestAchievementRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("awarding twice is a conflict", func(mt *mtest.T) {
		repo := NewAchievementRepository(mt.DB)
		mt.AddMockResponses(duplicateKey())

		_, err := repo.AwardAchievement(ctx, &models.UserAchievement{UserID: primitive.NewObjectID(), AchievementID: primitive.NewObjectID()})
		assert.ErrorIs(mt, err, ErrConflict)
	})

	mt.Run("ensure reports an inserted entry", func(mt *mtest.T) {
		repo := NewAchievementRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 0},
			bson.E{Key: "upserted", Value: bson.A{bson.D{{Key: "index", Value: 0}, {Key: "_id", Value: primitive.NewObjectID()}}}},
		))

		created, err := repo.EnsureAchievement(ctx, &models.Achievement{Name: "First Step", CriteriaType: models.CriteriaCheckIns, CriteriaValue: 1})
		require.NoError(mt, err)
		assert.True(mt, created)
	})
}

func TestUserRepositoryDuplicateEmail(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("duplicate email", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(duplicateKey())

		_, err := repo.CreateUser(context.Background(), &models.User{Email: "a@b.c"})
		assert.ErrorIs(mt, err, ErrConflict)
	})
}

func TestNotificationRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("create sets expiry", func(mt *mtest.T) {
		repo := NewNotificationRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		n := &models.Notification{UserID: primitive.NewObjectID(), Type: models.NotificationCheckInDue}
		require.NoError(mt, repo.CreateNotification(ctx, n))
		assert.Equal(mt, NotificationTTL, n.ExpiresAt.Sub(n.CreatedAt))
	})

	mt.Run("mark foreign notification", func(mt *mtest.T) {
		repo := NewNotificationRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		err := repo.MarkAsRead(ctx, primitive.NewObjectID(), primitive.NewObjectID())
		assert.ErrorIs(mt, err, ErrNotFound)
	})
}

func TestActivityRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("create assigns id", func(mt *mtest.T) {
		repo := NewActivityRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		a := &models.Activity{UserID: primitive.NewObjectID(), Type: models.ActivityCheckIn, Timestamp: time.Now()}
		require.NoError(mt, repo.CreateActivity(ctx, a))
		assert.False(mt, a.ID.IsZero())
	})

	mt.Run("list narrows by journey", func(mt *mtest.T) {
		repo := NewActivityRepository(mt.DB)
		user := primitive.NewObjectID()
		journey := primitive.NewObjectID()
		entry := models.Activity{
			ID:        primitive.NewObjectID(),
			UserID:    user,
			Type:      models.ActivityGateCompleted,
			JourneyID: &journey,
			Timestamp: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
		}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.activities", mtest.FirstBatch, toDoc(mt.T, entry)))

		got, err := repo.ListActivities(ctx, user, models.ActivityQuery{JourneyID: &journey, Limit: 5})
		require.NoError(mt, err)
		require.Len(mt, got, 1)
		require.NotNil(mt, got[0].JourneyID)
		assert.Equal(mt, journey, *got[0].JourneyID)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "find", started.CommandName)
		filter := started.Command.Lookup("filter").Document()
		assert.Equal(mt, journey, filter.Lookup("journey_id").ObjectID())
		assert.Equal(mt, user, filter.Lookup("user_id").ObjectID())
	})
}
