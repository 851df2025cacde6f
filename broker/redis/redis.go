/*
Package redis implements the broker on Redis pub/sub via rueidis.

Each subscription owns a dedicated connection; the shared multiplexed client
carries publishes.
*/
package redis

import (
	"context"
	"sync"

	"github.com/redis/rueidis"

	"github.com/dambileh/civitas-bus/broker/query"
	"github.com/dambileh/civitas-bus/config"
)

// Config - configuration
type Config struct {
	Host     []string
	Username string
	Password string
}

type MQ struct {
	client rueidis.Client

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

	mq.client, err = rueidis.NewClient(rueidis.ClientOption{
		InitAddress: mq.config.Host,
		Username:    mq.config.Username,
		Password:    mq.config.Password,
		SelectDB:    0, // use default DB
	})
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
func (mq *MQ) Publish(ctx context.Context, channel string, payload []byte) error {
	cmd := mq.client.B().Publish().Channel(channel).Message(string(payload)).Build()

	return mq.client.Do(ctx, cmd).Error()
}

// Subscribe - subscribe to a channel on a dedicated connection
func (mq *MQ) Subscribe(ctx context.Context, channel string, handler query.Handler) (query.Subscription, error) {
	client, cancel := mq.client.Dedicate()

	wait := client.SetPubSubHooks(rueidis.PubSubHooks{
		OnMessage: func(msg rueidis.PubSubMessage) {
			handler([]byte(msg.Message))
		},
	})

	if err := client.Do(ctx, client.B().Subscribe().Channel(channel).Build()).Error(); err != nil {
		cancel()

		return nil, err
	}

	return &subscription{cancel: cancel, wait: wait}, nil
}

type subscription struct {
	cancel func()
	wait   <-chan error
	once   sync.Once
}

// Unsubscribe releases the dedicated connection, which tears the
// subscription down server-side.
func (s *subscription) Unsubscribe() error {
	s.once.Do(s.cancel)

	return nil
}

// setConfig - set configuration
func (mq *MQ) setConfig() {
	mq.cfg.SetDefault("MQ_REDIS_URI", "localhost:6379") // Redis Hosts
	mq.cfg.SetDefault("MQ_REDIS_USERNAME", "")          // Redis Username
	mq.cfg.SetDefault("MQ_REDIS_PASSWORD", "")          // Redis Password

	mq.config = Config{
		Host:     mq.cfg.GetStringSlice("MQ_REDIS_URI"),
		Username: mq.cfg.GetString("MQ_REDIS_USERNAME"),
		Password: mq.cfg.GetString("MQ_REDIS_PASSWORD"),
	}
}
