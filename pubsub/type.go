package pubsub

import (
	"context"

	"github.com/dambileh/civitas-bus/broker"
	"github.com/dambileh/civitas-bus/claims"
	"github.com/dambileh/civitas-bus/logger"
	"github.com/dambileh/civitas-bus/message"
	"github.com/dambileh/civitas-bus/registry"
)

// SubscribeOptions identify the consumer of a subscription.
//
// SubscriberType groups competing instances: a message fanned out to a type
// is processed by exactly one instance of that type. SubscriberID is the
// process-unique identity recorded in the registry.
type SubscribeOptions struct {
	SubscriberType string
	SubscriberID   string
}

// Handler consumes one successfully claimed message.
type Handler func(ctx context.Context, msg *message.Message)

// PubSub coordinates request/response exchanges over a broker that has no
// native request/reply support, using the subscriber registry and the
// delivery claim set on the shared KV store.
type PubSub struct {
	log       logger.Logger
	mq        broker.MQ
	registry  *registry.Registry
	claims    *claims.Claims
	processID string
}
