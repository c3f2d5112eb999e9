package usecases

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"greencoin.backend/pkg/logger"
	"greencoin.backend/pkg/metrics"
)

// Notifier delivers events to subscribers. Delivery is best effort.
type Notifier interface {
	Publish(ctx context.Context, topic string, payload interface{}) error
}

// GeoIndex finds OPEN reports around a point, nearest first.
type GeoIndex interface {
	Add(ctx context.Context, id uuid.UUID, lat, lon float64) error
	Remove(ctx context.Context, id uuid.UUID) error
	FindOpenWithin(ctx context.Context, lat, lon, radiusKm float64) ([]uuid.UUID, error)
}

// NopNotifier discards every event.
type NopNotifier struct{}

func (NopNotifier) Publish(context.Context, string, interface{}) error { return nil }

// publish runs after commit. Failures are logged and counted, never returned.
func publish(ctx context.Context, n Notifier, topic string, payload interface{}) {
	if err := n.Publish(ctx, topic, payload); err != nil {
		metrics.RecordNotificationFailure("publish")
		logger.Warn(ctx, "Notification dropped",
			zap.String("topic", topic),
			zap.Error(err),
		)
	}
}
