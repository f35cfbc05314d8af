package jobs

import (
	"context"
	"fmt"

	"github.com/Dias221467/Questline/internal/services"
	"github.com/sirupsen/logrus"
)

// DefaultScanLimit bounds how many active journeys one scan reads.
const DefaultScanLimit = 1000

type CheckInReminder struct {
	NotificationService *services.NotificationService
	Limit               int64
}

func NewCheckInReminder(notifService *services.NotificationService) *CheckInReminder {
	return &CheckInReminder{NotificationService: notifService, Limit: DefaultScanLimit}
}

// RunScan reminds users whose journey is open for today and clears out
// expired notifications.
func (d *CheckInReminder) RunScan(ctx context.Context) error {
	sent, err := d.NotificationService.CheckInsDue(ctx, d.Limit)
	if err != nil {
		return fmt.Errorf("reminder scan failed: %w", err)
	}

	removed, err := d.NotificationService.DeleteExpiredNotifications(ctx)
	if err != nil {
		logrus.WithError(err).Warn("Failed to delete expired notifications")
	}

	logrus.WithFields(logrus.Fields{"sent": sent, "expired_removed": removed}).Info("Check-in reminder scan completed")
	return nil
}
