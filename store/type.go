package store

import (
	"context"

	"github.com/dambileh/civitas-bus/store/options"
)

// KV is the common interface of the key-value store shared by every process
// of the mesh. Values are opaque byte slices; callers serialize to JSON.
//
// Plain get/put/remove/exists carry the coordination state. The hash, set and
// list variants are affordances for the surrounding collaborators and for
// components that can exploit the store's atomic primitives.
type KV interface {
	Init(ctx context.Context) error

	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte, opts ...options.PutOption) error
	Remove(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)

	// Hash variant
	HashSet(ctx context.Context, key, field string, value []byte) error
	HashGet(ctx context.Context, key, field string) ([]byte, error)
	HashGetAll(ctx context.Context, key string) (map[string]string, error)
	HashDelete(ctx context.Context, key string, fields ...string) error

	// Set variant. SetRemove reports how many members were removed.
	SetAdd(ctx context.Context, key string, members ...string) error
	SetRemove(ctx context.Context, key string, members ...string) (int64, error)
	SetMembers(ctx context.Context, key string) ([]string, error)

	// List variant. ListRemove atomically removes every occurrence of value
	// and reports how many elements were removed.
	ListAppend(ctx context.Context, key string, values ...string) error
	ListRange(ctx context.Context, key string) ([]string, error)
	ListRemove(ctx context.Context, key, value string) (int64, error)
}
