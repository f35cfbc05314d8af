package engine

import (
	"testing"
	"time"

	"github.com/Dias221467/Questline/internal/models"
	"github.com/Dias221467/Questline/internal/progress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribeEmpty(t *testing.T) {
	v := Describe(nil, time.Now())
	assert.Equal(t, StepNone, v.Next.Kind)
	assert.Nil(t, v.Journey)
	assert.Equal(t, 0, v.Progress)
}

func TestDescribeCheckInThenGate(t *testing.T) {
	s := testSnapshot(t)
	now := s.Journey.StartedAt.Add(2 * time.Hour)

	v := Describe(s, now)
	assert.True(t, v.Active)
	assert.True(t, v.CanCheckInToday)
	assert.Equal(t, StepCheckIn, v.Next.Kind)
	assert.Equal(t, 0, v.Next.Day)
	assert.Equal(t, progress.ReflectionPrompt(0, models.ThemeFantasy), v.Next.Prompt)

	j := *s.Journey
	j.CurrentDay = 3
	s = s.WithJourney(j, now)
	v = Describe(s, now.Add(72*time.Hour))
	assert.Equal(t, StepGate, v.Next.Kind)
	require.NotNil(t, v.Next.Gate)
	assert.Equal(t, 3, v.Next.Day)
	assert.Equal(t, 43, v.Progress)
}

func TestDescribeWaitsAfterTodaysCheckIn(t *testing.T) {
	s := testSnapshot(t)
	now := s.Journey.StartedAt.Add(time.Hour)
	j := *s.Journey
	j.CurrentDay = 1
	s = s.WithCheckIn(models.CheckIn{Day: 0, CreatedAt: now}, j, now)

	v := Describe(s, now.Add(time.Hour))
	assert.False(t, v.CanCheckInToday)
	assert.Equal(t, StepWait, v.Next.Kind)
}

func TestDescribeFinishedAndDraft(t *testing.T) {
	s := testSnapshot(t)
	done := s.Journey.StartedAt.Add(200 * time.Hour)
	j := *s.Journey
	j.CompletedAt = &done
	v := Describe(s.WithJourney(j, done), done)
	assert.False(t, v.Active)
	assert.Equal(t, StepFinished, v.Next.Kind)

	draft := *s.Journey
	draft.StartedAt = nil
	v = Describe(s.WithJourney(draft, done), done)
	assert.Equal(t, StepNone, v.Next.Kind)
	assert.Equal(t, 0, v.Progress)
}
