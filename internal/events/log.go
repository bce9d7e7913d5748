package events

import (
	"context"

	"go.uber.org/zap"
)

// LogPublisher writes events to the service log. It is used when no broker is configured.
type LogPublisher struct {
	log *zap.Logger
}

func NewLogPublisher(log *zap.Logger) *LogPublisher {
	return &LogPublisher{log: log.Named("events")}
}

func (p *LogPublisher) Publish(_ context.Context, event Event) error {
	p.log.Info("event",
		zap.String("event_id", event.ID),
		zap.String("event_type", event.Type),
		zap.String("org_id", event.OrgID.String()),
		zap.Any("payload", event.Payload),
	)
	return nil
}

func (p *LogPublisher) Close() error { return nil }
