package store

import (
	"errors"

	"github.com/redis/go-redis/v9"
)

// ErrConflict is returned when a transaction kept losing the race for its keys
var ErrConflict = errors.New("transaction conflict: retries exhausted")

// Config holds configuration for the Redis transactor
type Config struct {
	// Redis client
	RedisClient *redis.Client

	// MaxRetries bounds how often a conflicting transaction is re-run
	MaxRetries uint64
}
