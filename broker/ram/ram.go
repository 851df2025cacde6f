/*
Package ram implements the broker in process memory. It carries the same
at-least-once broadcast semantics as the network backends: every open
subscription on a channel sees every publish, in per-subscription order.

Used by unit tests and single-node runs.
*/
package ram

import (
	"context"
	"sync"

	"github.com/dambileh/civitas-bus/broker/query"
	"github.com/dambileh/civitas-bus/config"
)

// Config - configuration
type Config struct {
	ChannelSize int
}

type MQ struct {
	mu sync.RWMutex

	subscribers map[string][]*subscription

	config Config
	cfg    *config.Config
}

func New(cfg *config.Config) *MQ {
	return &MQ{
		subscribers: map[string][]*subscription{},
		cfg:         cfg,
	}
}

// Init - initialize
func (mq *MQ) Init(_ context.Context) error {
	// Set configuration
	mq.setConfig()

	return nil
}

// Publish - deliver payload to every open subscription on channel
func (mq *MQ) Publish(_ context.Context, channel string, payload []byte) error {
	mq.mu.RLock()
	defer mq.mu.RUnlock()

	for _, sub := range mq.subscribers[channel] {
		select {
		case sub.inbox <- payload:
		case <-sub.done:
		}
	}

	return nil
}

// Subscribe - open a subscription with its own dispatch goroutine
func (mq *MQ) Subscribe(_ context.Context, channel string, handler query.Handler) (query.Subscription, error) {
	sub := &subscription{
		mq:      mq,
		channel: channel,
		inbox:   make(chan []byte, mq.config.ChannelSize),
		done:    make(chan struct{}),
	}

	mq.mu.Lock()
	mq.subscribers[channel] = append(mq.subscribers[channel], sub)
	mq.mu.Unlock()

	go func() {
		for {
			select {
			case payload := <-sub.inbox:
				handler(payload)
			case <-sub.done:
				return
			}
		}
	}()

	return sub, nil
}

type subscription struct {
	mq      *MQ
	channel string
	inbox   chan []byte
	done    chan struct{}
	once    sync.Once
}

// Unsubscribe removes the subscription and stops its dispatch goroutine.
func (s *subscription) Unsubscribe() error {
	s.once.Do(func() {
		s.mq.mu.Lock()

		subs := s.mq.subscribers[s.channel]
		for i, sub := range subs {
			if sub == s {
				s.mq.subscribers[s.channel] = append(subs[:i], subs[i+1:]...)
				break
			}
		}

		if len(s.mq.subscribers[s.channel]) == 0 {
			delete(s.mq.subscribers, s.channel)
		}

		s.mq.mu.Unlock()

		close(s.done)
	})

	return nil
}

// setConfig - set configuration
func (mq *MQ) setConfig() {
	mq.cfg.SetDefault("MQ_RAM_CHANNEL_SIZE", 64) // Buffered deliveries per subscription

	mq.config = Config{
		ChannelSize: mq.cfg.GetInt("MQ_RAM_CHANNEL_SIZE"),
	}
}
