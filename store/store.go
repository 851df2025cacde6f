/*
Key-Value Store package
*/
package store

import (
	"context"

	"github.com/dambileh/civitas-bus/config"
	"github.com/dambileh/civitas-bus/logger"
	"github.com/dambileh/civitas-bus/store/drivers/ram"
	"github.com/dambileh/civitas-bus/store/drivers/redis"
)

// New - return implementation of the KV store
//
//nolint:ireturn // It's made by design
func New(ctx context.Context, log logger.Logger, cfg *config.Config) (KV, error) {
	cfg.SetDefault("STORE_TYPE", "ram") // Select: redis, ram

	var kv KV

	typeStore := cfg.GetString("STORE_TYPE")
	switch typeStore {
	case "redis":
		kv = redis.New(cfg)
	case "ram":
		kv = ram.New(cfg)
	default:
		kv = ram.New(cfg)
	}

	if err := kv.Init(ctx); err != nil {
		return nil, err
	}

	log.Info("run store", "store", typeStore)

	return kv, nil
}
