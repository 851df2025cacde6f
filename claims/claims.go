/*
Package claims manages the per (channel, subscriber type) set of message IDs
still awaiting consumption.

A publish seeds one entry per registered subscriber type; the consumer that
removes an ID from the set has won the right to process that message
exclusively. Losing the race is the expected steady-state outcome for all but
one of N competing consumers and is not an error.
*/
package claims

import (
	"context"
	"fmt"

	"github.com/segmentio/encoding/json"

	"github.com/dambileh/civitas-bus/config"
	"github.com/dambileh/civitas-bus/logger"
	"github.com/dambileh/civitas-bus/store"
)

// Claim modes. Atomic relies on the store's list removal being atomic and is
// race-free. RMW is a read-modify-write with a confirming re-read; the store
// has no compare-and-swap here, so the re-read narrows the double-win window
// without eliminating it.
const (
	ModeAtomic = "atomic"
	ModeRMW    = "rmw"
)

type Claims struct {
	kv   store.KV
	log  logger.Logger
	mode string
}

func New(log logger.Logger, kv store.KV, cfg *config.Config) *Claims {
	cfg.SetDefault("CLAIMS_MODE", ModeAtomic) // Select: atomic, rmw

	mode := cfg.GetString("CLAIMS_MODE")
	if mode != ModeAtomic && mode != ModeRMW {
		mode = ModeAtomic
	}

	return &Claims{
		kv:   kv,
		log:  log,
		mode: mode,
	}
}

// Add seeds messageID as claimable by subscriberType on channel.
func (c *Claims) Add(ctx context.Context, channel, subscriberType, messageID string) error {
	key := claimKey(channel, subscriberType)

	if c.mode == ModeAtomic {
		if err := c.kv.ListAppend(ctx, key, messageID); err != nil {
			return fmt.Errorf("claims: add %s to %s: %w", messageID, key, err)
		}

		return nil
	}

	pending, err := c.readPending(ctx, key)
	if err != nil {
		return err
	}

	if err := c.writePending(ctx, key, append(pending, messageID)); err != nil {
		return err
	}

	return nil
}

// Remove attempts to claim messageID for subscriberType on channel. It
// reports true only when this caller won the claim; false means another
// consumer already claimed it, or it was never seeded.
func (c *Claims) Remove(ctx context.Context, channel, subscriberType, messageID string) (bool, error) {
	key := claimKey(channel, subscriberType)

	if c.mode == ModeAtomic {
		removed, err := c.kv.ListRemove(ctx, key, messageID)
		if err != nil {
			return false, fmt.Errorf("claims: remove %s from %s: %w", messageID, key, err)
		}

		return removed > 0, nil
	}

	return c.removeRMW(ctx, key, messageID)
}

// Pending returns the message IDs still claimable by subscriberType on
// channel, in seed order.
func (c *Claims) Pending(ctx context.Context, channel, subscriberType string) ([]string, error) {
	key := claimKey(channel, subscriberType)

	if c.mode == ModeAtomic {
		pending, err := c.kv.ListRange(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("claims: pending of %s: %w", key, err)
		}

		return pending, nil
	}

	return c.readPending(ctx, key)
}

// removeRMW is the read-modify-write claim of the source design: remove in
// memory, write back, then re-read to confirm the ID is really gone before
// declaring the claim won.
func (c *Claims) removeRMW(ctx context.Context, key, messageID string) (bool, error) {
	pending, err := c.readPending(ctx, key)
	if err != nil {
		return false, err
	}

	kept := make([]string, 0, len(pending))
	found := false

	for _, id := range pending {
		if !found && id == messageID {
			found = true
			continue
		}

		kept = append(kept, id)
	}

	if !found {
		return false, nil
	}

	if err := c.writePending(ctx, key, kept); err != nil {
		return false, err
	}

	// Confirm the removal is visible; a concurrent writer may have raced us
	confirm, err := c.readPending(ctx, key)
	if err != nil {
		return false, err
	}

	for _, id := range confirm {
		if id == messageID {
			return false, nil
		}
	}

	return true, nil
}

func (c *Claims) readPending(ctx context.Context, key string) ([]string, error) {
	value, err := c.kv.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("claims: read %s: %w", key, err)
	}

	if value == nil {
		return nil, nil
	}

	var pending []string
	if err := json.Unmarshal(value, &pending); err != nil {
		return nil, fmt.Errorf("claims: decode %s: %w", key, err)
	}

	return pending, nil
}

func (c *Claims) writePending(ctx context.Context, key string, pending []string) error {
	if pending == nil {
		pending = []string{}
	}

	value, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("claims: encode %s: %w", key, err)
	}

	if err := c.kv.Put(ctx, key, value); err != nil {
		return fmt.Errorf("claims: write %s: %w", key, err)
	}

	return nil
}

func claimKey(channel, subscriberType string) string {
	return channel + "." + subscriberType
}
