package vrf

import (
	"time"

	"github.com/KirkDiggler/coinflip/internal/common/clock"
	"github.com/KirkDiggler/coinflip/internal/models"
	"github.com/KirkDiggler/coinflip/internal/repositories/store"
	"github.com/redis/go-redis/v9"
)

// Config holds configuration for the local oracle
type Config struct {
	// Redis client
	RedisClient *redis.Client

	// Transactor serialises fulfilment against concurrent requests
	Transactor store.Transactor

	// Clock stamps fulfilment; defaults to the system clock
	Clock clock.Clock

	// PollInterval is how often Run checks the queue when it is empty
	PollInterval time.Duration
}

// account is the stored state of one oracle account
type account struct {
	Address   string
	Secret    []byte
	Authority string

	// Counter is bumped by every request
	Counter uint64
	Pending bool
	Alpha   []byte

	// Buffer is only set from a verified proof
	Buffer models.Buffer
	Proof  *Proof

	CreatedAt   time.Time
	FulfilledAt time.Time
}

// Fulfilment is the outcome of one fulfilled request
type Fulfilment struct {
	Account string
	Counter uint64
	Buffer  models.Buffer
}
