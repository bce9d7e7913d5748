package events

import (
	"context"

	"github.com/smallbiznis/storeledger/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("events",
	fx.Provide(NewPublisher),
)

// NewPublisher connects to RabbitMQ when RABBITMQ_URL is set and falls back to logging
// when it is unset or unreachable at startup.
func NewPublisher(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) Publisher {
	var publisher Publisher = NewLogPublisher(log)
	if cfg.RabbitMQURL != "" {
		rabbit, err := NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange, log)
		if err != nil {
			log.Warn("rabbitmq unavailable, events will only be logged", zap.Error(err))
		} else {
			publisher = rabbit
		}
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error { return publisher.Close() },
	})
	return publisher
}
