package delivery

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/RichMarin19/fast-life-sub000/internal/guidance"
)

// LogDeliverer writes submissions to the log instead of a device. Used when
// no FCM credentials are configured and in local development.
type LogDeliverer struct {
	logger *zap.Logger
}

// NewLogDeliverer creates a log-only deliverer.
func NewLogDeliverer(logger *zap.Logger) *LogDeliverer {
	return &LogDeliverer{logger: logger}
}

func (l *LogDeliverer) Submit(_ context.Context, fireAt time.Time, payload guidance.Payload, identifier string) error {
	l.logger.Info("Notification submitted (log delivery)",
		zap.String("identifier", identifier),
		zap.Time("fire_at", fireAt),
		zap.String("title", payload.Title),
		zap.String("body", payload.Body),
	)
	return nil
}

func (l *LogDeliverer) Cancel(_ context.Context, identifier string) error {
	l.logger.Info("Notification cancelled (log delivery)", zap.String("identifier", identifier))
	return nil
}

func (l *LogDeliverer) CancelAll(_ context.Context, activity guidance.ActivityType) error {
	l.logger.Info("Notifications cancelled for activity (log delivery)",
		zap.String("activity", string(activity)))
	return nil
}
