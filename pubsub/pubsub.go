/*
Package pubsub implements request/response coordination on top of primitive
publish/subscribe and key-value operations.

A publish fans the message out once per subscriber type registered on the
channel, seeding a delivery claim per type. Competing instances of a type all
receive the broadcast; the one that wins the claim processes the message, the
rest discard it. Losing a claim is the expected steady-state outcome for all
but one of N competing consumers and is never surfaced as an error.
*/
package pubsub

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dambileh/civitas-bus/broker"
	"github.com/dambileh/civitas-bus/broker/query"
	"github.com/dambileh/civitas-bus/claims"
	"github.com/dambileh/civitas-bus/config"
	"github.com/dambileh/civitas-bus/logger"
	"github.com/dambileh/civitas-bus/message"
	"github.com/dambileh/civitas-bus/registry"
	"github.com/dambileh/civitas-bus/store"
)

// New builds a coordinator on the given broker and KV store.
func New(log logger.Logger, mq broker.MQ, kv store.KV, cfg *config.Config) *PubSub {
	cfg.SetDefault("BUS_PROCESS_ID", uuid.NewString()) // Process-unique identity in the registry

	return &PubSub{
		log:       log,
		mq:        mq,
		registry:  registry.New(log, kv),
		claims:    claims.New(log, kv, cfg),
		processID: cfg.GetString("BUS_PROCESS_ID"),
	}
}

// ProcessID returns the identity this coordinator registers under.
func (p *PubSub) ProcessID() string {
	return p.processID
}

// Publish validates msg and fans it out on channel, once per registered
// subscriber type: the claim set is seeded for the type, the recipient is
// rewritten, and the serialized envelope is published. Fire-and-forget: no
// acknowledgment is awaited. When no subscriber type is registered the
// message is dropped with a warning and no error.
func (p *PubSub) Publish(ctx context.Context, channel string, msg *message.Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	types, err := p.registry.SubscriberTypes(ctx, channel)
	if err != nil {
		return fmt.Errorf("pubsub: publish on %s: %w", channel, err)
	}

	if len(types) == 0 {
		p.log.WarnWithContext(ctx, "no subscriber types registered, message dropped",
			"channel", channel,
			"messageId", msg.Header.MessageID,
		)

		return nil
	}

	for _, subscriberType := range types {
		if err := p.claims.Add(ctx, channel, subscriberType, msg.Header.MessageID); err != nil {
			return fmt.Errorf("pubsub: publish on %s: %w", channel, err)
		}

		msg.Header.SentAt = time.Now().UTC()
		msg.Recipient = subscriberType

		payload, err := msg.Marshal()
		if err != nil {
			return fmt.Errorf("pubsub: publish on %s: %w", channel, err)
		}

		// TODO: retry transient broker errors instead of surfacing them raw
		if err := p.mq.Publish(ctx, channel, payload); err != nil {
			return fmt.Errorf("pubsub: publish on %s: %w", channel, err)
		}
	}

	return nil
}

// PublishAndWaitForResponse publishes msg on channel and blocks until a
// response correlated by message ID arrives on responseChannel and is
// exclusively claimed, or ctx ends.
//
// The response subscription is opened and registered before the request is
// fanned out, so a fast responder cannot reply into a channel with no
// registered consumer. The wait is bounded by ctx: pass a deadline unless an
// unbounded wait is really wanted.
func (p *PubSub) PublishAndWaitForResponse(
	ctx context.Context,
	channel, responseChannel string,
	opts SubscribeOptions,
	msg *message.Message,
) (*message.Message, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}

	if opts.SubscriberType == "" {
		return nil, ErrSubscriberTypeRequired
	}

	if opts.SubscriberID == "" {
		opts.SubscriberID = p.processID
	}

	responses := make(chan *message.Message, 1)

	sub, err := p.mq.Subscribe(ctx, responseChannel, func(payload []byte) {
		if resp := p.acceptResponse(ctx, msg, opts.SubscriberType, payload); resp != nil {
			select {
			case responses <- resp:
			default:
			}
		}
	})
	if err != nil {
		return nil, fmt.Errorf("pubsub: subscribe on %s: %w", responseChannel, err)
	}

	defer func() {
		_ = sub.Unsubscribe() //nolint:errcheck // teardown on every exit path
	}()

	if err := p.registry.Register(ctx, responseChannel, opts.SubscriberType, opts.SubscriberID); err != nil {
		return nil, err
	}

	if err := p.Publish(ctx, channel, msg); err != nil {
		return nil, err
	}

	select {
	case resp := <-responses:
		return resp, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w on %s: %w", ErrResponseTimeout, responseChannel, ctx.Err())
	}
}

// acceptResponse decides whether an inbound payload is the awaited response.
// A non-matching or already-claimed message is ignored; the subscription
// stays open awaiting the real one.
func (p *PubSub) acceptResponse(ctx context.Context, req *message.Message, subscriberType string, payload []byte) *message.Message {
	resp, err := message.Parse(payload)
	if err != nil {
		p.log.DebugWithContext(ctx, "ignoring undecodable response", "error", err.Error())

		return nil
	}

	// Correlation is by message ID and recipient type. The claim targets the
	// response's own channel, where the responder seeded it.
	if resp.Header.MessageID != req.Header.MessageID || resp.Recipient != subscriberType {
		return nil
	}

	claimed, err := p.claims.Remove(ctx, resp.Channel, resp.Recipient, resp.Header.MessageID)
	if err != nil {
		p.log.WarnWithContext(ctx, "response claim failed",
			"channel", resp.Channel,
			"messageId", resp.Header.MessageID,
			"error", err.Error(),
		)

		return nil
	}

	if !claimed {
		return nil
	}

	return resp
}

// Subscribe opens a long-lived subscription on channel for one consumer
// instance. Each inbound message addressed to the consumer's type is claimed
// through the delivery claim set; the handler runs only on a claim win.
// Registration in the subscriber registry happens once the subscription is
// acknowledged by the broker.
func (p *PubSub) Subscribe(ctx context.Context, channel string, opts SubscribeOptions, handler Handler) (query.Subscription, error) {
	if opts.SubscriberType == "" {
		return nil, ErrSubscriberTypeRequired
	}

	if opts.SubscriberID == "" {
		return nil, ErrSubscriberIDRequired
	}

	sub, err := p.mq.Subscribe(ctx, channel, func(payload []byte) {
		msg, err := message.Parse(payload)
		if err != nil {
			p.log.DebugWithContext(ctx, "ignoring undecodable message",
				"channel", channel,
				"error", err.Error(),
			)

			return
		}

		if msg.Channel != channel || msg.Recipient != opts.SubscriberType {
			return
		}

		claimed, err := p.claims.Remove(ctx, channel, opts.SubscriberType, msg.Header.MessageID)
		if err != nil {
			p.log.WarnWithContext(ctx, "claim failed",
				"channel", channel,
				"messageId", msg.Header.MessageID,
				"error", err.Error(),
			)

			return
		}

		if !claimed {
			// Another instance of this type won the race
			p.log.DebugWithContext(ctx, "claim lost",
				"channel", channel,
				"messageId", msg.Header.MessageID,
			)

			return
		}

		handler(ctx, msg)
	})
	if err != nil {
		return nil, fmt.Errorf("pubsub: subscribe on %s: %w", channel, err)
	}

	if err := p.registry.Register(ctx, channel, opts.SubscriberType, opts.SubscriberID); err != nil {
		_ = sub.Unsubscribe() //nolint:errcheck // best effort

		return nil, err
	}

	return sub, nil
}

// SubscriberTypes returns the subscriber types registered on channel.
func (p *PubSub) SubscriberTypes(ctx context.Context, channel string) ([]string, error) {
	return p.registry.SubscriberTypes(ctx, channel)
}

// SubscribersForType returns the process IDs registered for
// (channel, subscriberType).
func (p *PubSub) SubscribersForType(ctx context.Context, channel, subscriberType string) ([]string, error) {
	return p.registry.SubscribersForType(ctx, channel, subscriberType)
}

// UnregisterFromAllChannels removes processID from every channel in the
// catalog. Exposed for collaborators that register under their own identity.
func (p *PubSub) UnregisterFromAllChannels(ctx context.Context, processID string) error {
	return p.registry.UnregisterFromAllChannels(ctx, processID)
}

// Close deregisters this process from every channel. Register it with the
// shutdown hook so crashes and signals do not leave the process behind as a
// fan-out target.
func (p *PubSub) Close(ctx context.Context) error {
	return p.registry.UnregisterFromAllChannels(ctx, p.processID)
}
