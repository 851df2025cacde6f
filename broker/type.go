package broker

import (
	"context"

	"github.com/dambileh/civitas-bus/broker/query"
	"github.com/dambileh/civitas-bus/config"
	"github.com/dambileh/civitas-bus/logger"
)

// MQ - common interface of DataBus
type MQ interface {
	Init(ctx context.Context) error

	// Pub/Sub a pattern
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string, handler query.Handler) (query.Subscription, error)
}

// DataBus abstract type
type DataBus struct {
	log    logger.Logger
	mq     MQ
	typeMQ string
	cfg    *config.Config
}
