package scheduler

import (
	"context"
	"fmt"

	"github.com/Dias221467/Questline/internal/jobs"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler runs the background jobs on their cron specs.
type Scheduler struct {
	c *cron.Cron
}

// Start registers the reminder scan and the achievement sweep and starts
// the cron loop.
func Start(reminderSpec, sweepSpec string, reminder *jobs.CheckInReminder, sweep *jobs.AchievementSweep) (*Scheduler, error) {
	c := cron.New()

	if _, err := c.AddFunc(reminderSpec, func() {
		if err := reminder.RunScan(context.Background()); err != nil {
			logrus.WithError(err).Error("Check-in reminder scan failed")
		}
	}); err != nil {
		return nil, fmt.Errorf("invalid reminder schedule %q: %w", reminderSpec, err)
	}

	if _, err := c.AddFunc(sweepSpec, func() {
		if _, err := sweep.Run(context.Background()); err != nil {
			logrus.WithError(err).Error("Achievement sweep failed")
		}
	}); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", sweepSpec, err)
	}

	c.Start()
	logrus.WithFields(logrus.Fields{"reminder": reminderSpec, "sweep": sweepSpec}).Info("Cron jobs started")
	return &Scheduler{c: c}, nil
}

// Entries reports how many jobs are scheduled.
func (s *Scheduler) Entries() int { return len(s.c.Entries()) }

// Stop halts scheduling and returns a context done once running jobs end.
func (s *Scheduler) Stop() context.Context {
	return s.c.Stop()
}
