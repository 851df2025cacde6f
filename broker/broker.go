/*
Message Queue
*/
package broker

import (
	"context"

	"github.com/dambileh/civitas-bus/broker/nats"
	"github.com/dambileh/civitas-bus/broker/query"
	"github.com/dambileh/civitas-bus/broker/rabbit"
	"github.com/dambileh/civitas-bus/broker/ram"
	"github.com/dambileh/civitas-bus/broker/redis"
	"github.com/dambileh/civitas-bus/config"
	"github.com/dambileh/civitas-bus/logger"
)

// New creates a new MQ instance
func New(ctx context.Context, log logger.Logger, cfg *config.Config) (*DataBus, error) {
	service := &DataBus{
		log: log,
		cfg: cfg,
	}

	// Set configuration
	service.setConfig()

	switch service.typeMQ {
	case "redis":
		service.mq = redis.New(cfg)
	case "nats":
		service.mq = nats.New(cfg)
	case "rabbitmq":
		service.mq = rabbit.New(cfg)
	case "ram":
		service.mq = ram.New(cfg)
	default:
		service.mq = redis.New(cfg)
	}

	if err := service.Init(ctx); err != nil {
		return nil, err
	}

	return service, nil
}

// Init - init connection
func (mq *DataBus) Init(ctx context.Context) error {
	err := mq.mq.Init(ctx)
	if err != nil {
		return err
	}

	mq.log.Info("run MQ", "mq", mq.typeMQ)

	return nil
}

// Publish - publish to a channel
func (mq *DataBus) Publish(ctx context.Context, channel string, payload []byte) error {
	mq.log.DebugWithContext(ctx, "publish to channel",
		"channel", channel,
	)

	return mq.mq.Publish(ctx, channel, payload)
}

// Subscribe - subscribe to a channel
func (mq *DataBus) Subscribe(ctx context.Context, channel string, handler query.Handler) (query.Subscription, error) {
	mq.log.InfoWithContext(ctx, "subscribe to channel",
		"channel", channel,
	)

	return mq.mq.Subscribe(ctx, channel, handler)
}

// setConfig - set configuration
func (mq *DataBus) setConfig() {
	mq.cfg.SetDefault("MQ_TYPE", "redis") // Select: redis, nats, rabbitmq, ram
	mq.typeMQ = mq.cfg.GetString("MQ_TYPE")
}
