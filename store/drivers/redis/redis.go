/*
Package redis implements the KV store on Redis via rueidis.

Every operation is a single independent round trip on a multiplexed client;
there is no retry at this layer, retry policy belongs to the caller.
*/
package redis

import (
	"context"

	"github.com/redis/rueidis"

	"github.com/dambileh/civitas-bus/config"
	"github.com/dambileh/civitas-bus/store/options"
)

func New(cfg *config.Config) *Store {
	return &Store{cfg: cfg}
}

// Init - initialize
func (s *Store) Init(ctx context.Context) error {
	var err error

	// Set configuration
	s.setConfig()

	if len(s.config.Host) == 0 {
		return &StoreError{
			Op:      "init",
			Err:     ErrInvalidURI,
			Details: "redis host configuration is empty",
		}
	}

	// Connect to Redis
	s.client, err = rueidis.NewClient(rueidis.ClientOption{
		InitAddress: s.config.Host,
		Username:    s.config.Username,
		Password:    s.config.Password,
		SelectDB:    0, // use default DB
	})
	if err != nil {
		return &StoreError{
			Op:      "init",
			Err:     ErrClientConnection,
			Details: err.Error(),
		}
	}

	// Graceful shutdown
	go func() {
		<-ctx.Done()

		s.client.Close()
	}()

	return nil
}

// Get returns the value of key, or nil when the key is absent.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Do(ctx, s.client.B().Get().Key(key).Build()).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, nil
		}

		return nil, &StoreError{Op: "get", Err: err}
	}

	return value, nil
}

// Put writes the value of key, optionally with a TTL.
func (s *Store) Put(ctx context.Context, key string, value []byte, opts ...options.PutOption) error {
	putOpts := options.ApplyPut(opts)

	if err := s.client.Do(ctx, s.client.B().Set().Key(key).Value(string(value)).Build()).Error(); err != nil {
		return &StoreError{Op: "put", Err: err}
	}

	if putOpts.Expire > 0 {
		expire := s.client.B().Expire().Key(key).Seconds(int64(putOpts.Expire.Seconds())).Build()
		if err := s.client.Do(ctx, expire).Error(); err != nil {
			return &StoreError{Op: "put", Err: err, Details: "expire"}
		}
	}

	return nil
}

// Remove deletes key.
func (s *Store) Remove(ctx context.Context, key string) error {
	if err := s.client.Do(ctx, s.client.B().Del().Key(key).Build()).Error(); err != nil {
		return &StoreError{Op: "remove", Err: err}
	}

	return nil
}

// Exists reports whether key holds a value.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	count, err := s.client.Do(ctx, s.client.B().Exists().Key(key).Build()).AsInt64()
	if err != nil {
		return false, &StoreError{Op: "exists", Err: err}
	}

	return count > 0, nil
}

// HashSet writes one field of a hash.
func (s *Store) HashSet(ctx context.Context, key, field string, value []byte) error {
	cmd := s.client.B().Hset().Key(key).FieldValue().FieldValue(field, string(value)).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return &StoreError{Op: "hash set", Err: err}
	}

	return nil
}

// HashGet returns one field of a hash, or nil when absent.
func (s *Store) HashGet(ctx context.Context, key, field string) ([]byte, error) {
	value, err := s.client.Do(ctx, s.client.B().Hget().Key(key).Field(field).Build()).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, nil
		}

		return nil, &StoreError{Op: "hash get", Err: err}
	}

	return value, nil
}

// HashGetAll returns every field of a hash.
func (s *Store) HashGetAll(ctx context.Context, key string) (map[string]string, error) {
	fields, err := s.client.Do(ctx, s.client.B().Hgetall().Key(key).Build()).AsStrMap()
	if err != nil {
		return nil, &StoreError{Op: "hash get all", Err: err}
	}

	return fields, nil
}

// HashDelete removes fields from a hash.
func (s *Store) HashDelete(ctx context.Context, key string, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}

	if err := s.client.Do(ctx, s.client.B().Hdel().Key(key).Field(fields...).Build()).Error(); err != nil {
		return &StoreError{Op: "hash delete", Err: err}
	}

	return nil
}

// SetAdd adds members to a set.
func (s *Store) SetAdd(ctx context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}

	if err := s.client.Do(ctx, s.client.B().Sadd().Key(key).Member(members...).Build()).Error(); err != nil {
		return &StoreError{Op: "set add", Err: err}
	}

	return nil
}

// SetRemove removes members from a set and reports how many were present.
func (s *Store) SetRemove(ctx context.Context, key string, members ...string) (int64, error) {
	if len(members) == 0 {
		return 0, nil
	}

	removed, err := s.client.Do(ctx, s.client.B().Srem().Key(key).Member(members...).Build()).AsInt64()
	if err != nil {
		return 0, &StoreError{Op: "set remove", Err: err}
	}

	return removed, nil
}

// SetMembers returns every member of a set.
func (s *Store) SetMembers(ctx context.Context, key string) ([]string, error) {
	members, err := s.client.Do(ctx, s.client.B().Smembers().Key(key).Build()).AsStrSlice()
	if err != nil {
		return nil, &StoreError{Op: "set members", Err: err}
	}

	return members, nil
}

// ListAppend appends values to a list, creating it when absent.
func (s *Store) ListAppend(ctx context.Context, key string, values ...string) error {
	if len(values) == 0 {
		return nil
	}

	if err := s.client.Do(ctx, s.client.B().Rpush().Key(key).Element(values...).Build()).Error(); err != nil {
		return &StoreError{Op: "list append", Err: err}
	}

	return nil
}

// ListRange returns the whole list.
func (s *Store) ListRange(ctx context.Context, key string) ([]string, error) {
	elements, err := s.client.Do(ctx, s.client.B().Lrange().Key(key).Start(0).Stop(-1).Build()).AsStrSlice()
	if err != nil {
		return nil, &StoreError{Op: "list range", Err: err}
	}

	return elements, nil
}

// ListRemove atomically removes every occurrence of value and reports how
// many elements were removed. LREM is atomic on the server, so concurrent
// claimers of the same element cannot both win.
func (s *Store) ListRemove(ctx context.Context, key, value string) (int64, error) {
	removed, err := s.client.Do(ctx, s.client.B().Lrem().Key(key).Count(0).Element(value).Build()).AsInt64()
	if err != nil {
		return 0, &StoreError{Op: "list remove", Err: err}
	}

	return removed, nil
}

// setConfig - set configuration
func (s *Store) setConfig() {
	s.cfg.SetDefault("STORE_REDIS_URI", "localhost:6379") // Redis Hosts
	s.cfg.SetDefault("STORE_REDIS_USERNAME", "")          // Redis Username
	s.cfg.SetDefault("STORE_REDIS_PASSWORD", "")          // Redis Password

	s.config = Config{
		Host:     s.cfg.GetStringSlice("STORE_REDIS_URI"),
		Username: s.cfg.GetString("STORE_REDIS_USERNAME"),
		Password: s.cfg.GetString("STORE_REDIS_PASSWORD"),
	}
}
