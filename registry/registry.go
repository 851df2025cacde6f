/*
Package registry tracks which subscriber types currently hold an open
subscription on each channel.

Layout in the KV store: key = channel name, hash field = subscriber type,
field value = JSON list of process IDs. Registration is a read-modify-write
of a single field; concurrent writers to the same field can lose an update
(last-writer-wins). A lost registration costs one fan-out target, it does not
corrupt data.
*/
package registry

import (
	"context"
	"fmt"
	"sort"

	"github.com/segmentio/encoding/json"

	"github.com/dambileh/civitas-bus/channels"
	"github.com/dambileh/civitas-bus/logger"
	"github.com/dambileh/civitas-bus/store"
)

type Registry struct {
	kv  store.KV
	log logger.Logger
}

func New(log logger.Logger, kv store.KV) *Registry {
	return &Registry{
		kv:  kv,
		log: log,
	}
}

// Register idempotently adds processID to the subscriber list of
// (channel, subscriberType).
func (r *Registry) Register(ctx context.Context, channel, subscriberType, processID string) error {
	subscribers, err := r.SubscribersForType(ctx, channel, subscriberType)
	if err != nil {
		return err
	}

	for _, subscriber := range subscribers {
		if subscriber == processID {
			return nil
		}
	}

	subscribers = append(subscribers, processID)

	value, err := json.Marshal(subscribers)
	if err != nil {
		return fmt.Errorf("registry: encode subscribers of %s/%s: %w", channel, subscriberType, err)
	}

	if err := r.kv.HashSet(ctx, channel, subscriberType, value); err != nil {
		return fmt.Errorf("registry: register %s/%s: %w", channel, subscriberType, err)
	}

	r.log.DebugWithContext(ctx, "registered channel subscriber",
		"channel", channel,
		"subscriberType", subscriberType,
		"processId", processID,
	)

	return nil
}

// SubscriberTypes returns the subscriber types presently believed to be
// registered on channel, sorted for deterministic fan-out order.
func (r *Registry) SubscriberTypes(ctx context.Context, channel string) ([]string, error) {
	fields, err := r.kv.HashGetAll(ctx, channel)
	if err != nil {
		return nil, fmt.Errorf("registry: subscriber types of %s: %w", channel, err)
	}

	types := make([]string, 0, len(fields))
	for subscriberType := range fields {
		types = append(types, subscriberType)
	}

	sort.Strings(types)

	return types, nil
}

// SubscribersForType returns the process IDs registered for
// (channel, subscriberType).
func (r *Registry) SubscribersForType(ctx context.Context, channel, subscriberType string) ([]string, error) {
	value, err := r.kv.HashGet(ctx, channel, subscriberType)
	if err != nil {
		return nil, fmt.Errorf("registry: subscribers of %s/%s: %w", channel, subscriberType, err)
	}

	if value == nil {
		return nil, nil
	}

	var subscribers []string
	if err := json.Unmarshal(value, &subscribers); err != nil {
		return nil, fmt.Errorf("registry: decode subscribers of %s/%s: %w", channel, subscriberType, err)
	}

	return subscribers, nil
}

// UnregisterFromAllChannels removes processID from every subscriber-type list
// of every external channel in the catalog. Used during shutdown. An error on
// one channel aborts the remaining cleanup; the caller decides whether to
// retry.
func (r *Registry) UnregisterFromAllChannels(ctx context.Context, processID string) error {
	for _, channel := range channels.ExternalChannels() {
		if err := r.unregisterFromChannel(ctx, channel, processID); err != nil {
			return err
		}
	}

	return nil
}

func (r *Registry) unregisterFromChannel(ctx context.Context, channel, processID string) error {
	fields, err := r.kv.HashGetAll(ctx, channel)
	if err != nil {
		return fmt.Errorf("registry: unregister from %s: %w", channel, err)
	}

	for subscriberType, raw := range fields {
		var subscribers []string
		if err := json.Unmarshal([]byte(raw), &subscribers); err != nil {
			return fmt.Errorf("registry: decode subscribers of %s/%s: %w", channel, subscriberType, err)
		}

		kept := subscribers[:0]

		for _, subscriber := range subscribers {
			if subscriber != processID {
				kept = append(kept, subscriber)
			}
		}

		if len(kept) == len(subscribers) {
			continue
		}

		if len(kept) == 0 {
			// Drop the emptied type so it no longer shows up as a fan-out target
			if err := r.kv.HashDelete(ctx, channel, subscriberType); err != nil {
				return fmt.Errorf("registry: unregister from %s/%s: %w", channel, subscriberType, err)
			}

			continue
		}

		value, err := json.Marshal(kept)
		if err != nil {
			return fmt.Errorf("registry: encode subscribers of %s/%s: %w", channel, subscriberType, err)
		}

		if err := r.kv.HashSet(ctx, channel, subscriberType, value); err != nil {
			return fmt.Errorf("registry: unregister from %s/%s: %w", channel, subscriberType, err)
		}
	}

	return nil
}
