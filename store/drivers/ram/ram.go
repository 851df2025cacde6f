/*
Package ram implements the KV store on process-local memory. It backs unit
tests and single-node runs; cross-process coordination needs the redis driver.
*/
package ram

import (
	"context"
	"sync"
	"time"

	"github.com/dambileh/civitas-bus/config"
	"github.com/dambileh/civitas-bus/store/options"
)

type entry struct {
	value    []byte
	deadline time.Time
}

// Store implementation of the KV interface
type Store struct {
	mu sync.Mutex

	values map[string]entry
	hashes map[string]map[string][]byte
	sets   map[string]map[string]struct{}
	lists  map[string][]string

	cfg *config.Config
}

// New creates an in-memory store configured via cfg.
func New(cfg *config.Config) *Store {
	return &Store{
		values: map[string]entry{},
		hashes: map[string]map[string][]byte{},
		sets:   map[string]map[string]struct{}{},
		lists:  map[string][]string{},
		cfg:    cfg,
	}
}

// Init - initialize
func (s *Store) Init(ctx context.Context) error {
	// Graceful shutdown
	go func() {
		<-ctx.Done()
		// Nothing to do
	}()

	return nil
}

// Get returns the value of key, or nil when the key is absent or expired.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.values[key]
	if !ok || s.expired(key, item) {
		return nil, nil
	}

	return append([]byte(nil), item.value...), nil
}

// Put writes the value of key, optionally with a TTL.
func (s *Store) Put(_ context.Context, key string, value []byte, opts ...options.PutOption) error {
	putOpts := options.ApplyPut(opts)

	s.mu.Lock()
	defer s.mu.Unlock()

	item := entry{value: append([]byte(nil), value...)}
	if putOpts.Expire > 0 {
		item.deadline = time.Now().Add(putOpts.Expire)
	}

	s.values[key] = item

	return nil
}

// Remove deletes key.
func (s *Store) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)

	return nil
}

// Exists reports whether key holds a live value.
func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.values[key]
	if !ok || s.expired(key, item) {
		return false, nil
	}

	return true, nil
}

// HashSet writes one field of a hash.
func (s *Store) HashSet(_ context.Context, key, field string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	hash, ok := s.hashes[key]
	if !ok {
		hash = map[string][]byte{}
		s.hashes[key] = hash
	}

	hash[field] = append([]byte(nil), value...)

	return nil
}

// HashGet returns one field of a hash, or nil when absent.
func (s *Store) HashGet(_ context.Context, key, field string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.hashes[key][field]
	if !ok {
		return nil, nil
	}

	return append([]byte(nil), value...), nil
}

// HashGetAll returns every field of a hash.
func (s *Store) HashGetAll(_ context.Context, key string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make(map[string]string, len(s.hashes[key]))
	for field, value := range s.hashes[key] {
		result[field] = string(value)
	}

	return result, nil
}

// HashDelete removes fields from a hash, dropping the hash once empty.
func (s *Store) HashDelete(_ context.Context, key string, fields ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	hash, ok := s.hashes[key]
	if !ok {
		return nil
	}

	for _, field := range fields {
		delete(hash, field)
	}

	if len(hash) == 0 {
		delete(s.hashes, key)
	}

	return nil
}

// SetAdd adds members to a set.
func (s *Store) SetAdd(_ context.Context, key string, members ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.sets[key]
	if !ok {
		set = map[string]struct{}{}
		s.sets[key] = set
	}

	for _, member := range members {
		set[member] = struct{}{}
	}

	return nil
}

// SetRemove removes members from a set and reports how many were present.
func (s *Store) SetRemove(_ context.Context, key string, members ...string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.sets[key]
	if !ok {
		return 0, nil
	}

	var removed int64

	for _, member := range members {
		if _, present := set[member]; present {
			delete(set, member)
			removed++
		}
	}

	if len(set) == 0 {
		delete(s.sets, key)
	}

	return removed, nil
}

// SetMembers returns every member of a set.
func (s *Store) SetMembers(_ context.Context, key string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	members := make([]string, 0, len(s.sets[key]))
	for member := range s.sets[key] {
		members = append(members, member)
	}

	return members, nil
}

// ListAppend appends values to a list, creating it when absent.
func (s *Store) ListAppend(_ context.Context, key string, values ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lists[key] = append(s.lists[key], values...)

	return nil
}

// ListRange returns the whole list.
func (s *Store) ListRange(_ context.Context, key string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.lists[key]...), nil
}

// ListRemove removes every occurrence of value and reports how many elements
// were removed. The removal is atomic with respect to concurrent callers.
func (s *Store) ListRemove(_ context.Context, key, value string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, ok := s.lists[key]
	if !ok {
		return 0, nil
	}

	kept := list[:0]

	var removed int64

	for _, element := range list {
		if element == value {
			removed++
			continue
		}

		kept = append(kept, element)
	}

	if len(kept) == 0 {
		delete(s.lists, key)
	} else {
		s.lists[key] = kept
	}

	return removed, nil
}

// expired drops key when its deadline has passed. Caller holds the lock.
func (s *Store) expired(key string, item entry) bool {
	if item.deadline.IsZero() || time.Now().Before(item.deadline) {
		return false
	}

	delete(s.values, key)

	return true
}
