package redis

import (
	"github.com/redis/rueidis"

	"github.com/dambileh/civitas-bus/config"
)

// Config - config
type Config struct {
	Username string
	Password string
	Host     []string
}

// Store implementation of the KV interface
type Store struct {
	client rueidis.Client

	config Config
	cfg    *config.Config
}
