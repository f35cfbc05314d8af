package engine

import (
	"testing"
	"time"

	"github.com/Dias221467/Questline/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestScheduleGates(t *testing.T) {
	tests := []struct {
		duration int
		want     []int
	}{
		{30, []int{3, 7, 14, 21, 30}},
		{90, []int{3, 7, 14, 21, 90}},
		{7, []int{3, 7}},
		{14, []int{3, 7, 14}},
		{21, []int{3, 7, 14, 21}},
		{10, []int{3, 7, 10}},
		{5, []int{3, 5}}, // the final day always gets a gate, even off the milestone list
		{3, []int{3}},
		{2, []int{2}},
		{0, []int{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ScheduleGates(tt.duration), "duration %d", tt.duration)
	}
}

func TestNewGates(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	j := &models.Journey{ID: primitive.NewObjectID(), UserID: primitive.NewObjectID(), Duration: 7}

	gates := NewGates(j, now)
	require.Len(t, gates, 2)
	for i, day := range []int{3, 7} {
		g := gates[i]
		assert.Equal(t, day, g.Day)
		assert.Equal(t, j.ID, g.JourneyID)
		assert.Equal(t, j.UserID, g.UserID)
		assert.False(t, g.Completed)
		assert.Nil(t, g.Response)
		assert.Equal(t, now, g.CreatedAt)
	}
	assert.Equal(t, "Day 3 Reflection: How has this journey changed you so far?", gates[0].Prompt)
}

func TestPendingGate(t *testing.T) {
	j := &models.Journey{ID: primitive.NewObjectID(), Duration: 7}
	gates := NewGates(j, time.Now())

	assert.Nil(t, PendingGate(j, gates, 0))
	assert.Nil(t, PendingGate(j, gates, 2))

	g := PendingGate(j, gates, 3)
	require.NotNil(t, g)
	assert.Equal(t, 3, g.Day)

	// the counter alone is enough to block
	j.CurrentDay = 4
	g = PendingGate(j, gates, 0)
	require.NotNil(t, g)
	assert.Equal(t, 3, g.Day)

	gates[0].Completed = true
	assert.Nil(t, PendingGate(j, gates, 4))

	g = PendingGate(j, gates, 9)
	require.NotNil(t, g)
	assert.Equal(t, 7, g.Day)
}

func TestPendingGateIgnoresOtherJourneys(t *testing.T) {
	j := &models.Journey{ID: primitive.NewObjectID(), Duration: 7}
	other := &models.Journey{ID: primitive.NewObjectID(), Duration: 7}
	assert.Nil(t, PendingGate(j, NewGates(other, time.Now()), 5))
}
