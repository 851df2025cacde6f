/*
Package nats implements the broker on NATS core subjects.
*/
package nats

import (
	"context"

	natsio "github.com/nats-io/nats.go"

	"github.com/dambileh/civitas-bus/broker/query"
	"github.com/dambileh/civitas-bus/config"
)

// Config - configuration
type Config struct {
	URI string
}

type MQ struct {
	client *natsio.Conn

	config Config
	cfg    *config.Config
}

func New(cfg *config.Config) *MQ {
	return &MQ{cfg: cfg}
}

// Init - init connection
func (mq *MQ) Init(ctx context.Context) error {
	var err error

	// Set configuration
	mq.setConfig()

	mq.client, err = natsio.Connect(mq.config.URI)
	if err != nil {
		return err
	}

	// Graceful shutdown
	go func() {
		<-ctx.Done()

		mq.client.Close()
	}()

	return nil
}

// Publish - publish to a channel
func (mq *MQ) Publish(_ context.Context, channel string, payload []byte) error {
	return mq.client.Publish(channel, payload)
}

// Subscribe - subscribe to a channel
func (mq *MQ) Subscribe(_ context.Context, channel string, handler query.Handler) (query.Subscription, error) {
	sub, err := mq.client.Subscribe(channel, func(msg *natsio.Msg) {
		handler(msg.Data)
	})
	if err != nil {
		return nil, err
	}

	return &subscription{sub: sub}, nil
}

type subscription struct {
	sub *natsio.Subscription
}

func (s *subscription) Unsubscribe() error {
	if !s.sub.IsValid() {
		return nil
	}

	return s.sub.Unsubscribe()
}

// setConfig - set configuration
func (mq *MQ) setConfig() {
	mq.cfg.SetDefault("MQ_NATS_URI", natsio.DefaultURL) // NATS URI

	mq.config = Config{
		URI: mq.cfg.GetString("MQ_NATS_URI"),
	}
}
