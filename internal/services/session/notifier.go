package session

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Notifier delivers an alert to one trusted contact
type Notifier interface {
	Notify(ctx context.Context, contact, message string) error
}

// LogNotifier simulates SMS delivery by logging each send after a short delay
type LogNotifier struct {
	delay  time.Duration
	logger *logrus.Logger
}

func NewLogNotifier(delay time.Duration, logger *logrus.Logger) *LogNotifier {
	return &LogNotifier{delay: delay, logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, contact, message string) error {
	if n.delay > 0 {
		timer := time.NewTimer(n.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	n.logger.WithFields(logrus.Fields{
		"contact": contact,
		"message": message,
	}).Info("SMS sent")
	return nil
}
