package relayer

import (
	"log/slog"
	"time"

	"github.com/KirkDiggler/coinflip/internal/services/game"
)

// Config holds configuration for the relayer
type Config struct {
	// Engine settles the games
	Engine game.Service

	// Interval between passes; defaults to two seconds
	Interval time.Duration

	// MaxBackoff caps the delay between retries of a failing pass
	MaxBackoff time.Duration

	Logger *slog.Logger
}

// RunOnceOutput counts what one pass did
type RunOnceOutput struct {
	// Pending is the number of games offered
	Pending int

	// Settled games had a fresh value and were settled by this pass
	Settled int

	// Waiting games have no published value yet
	Waiting int

	// Skipped games were settled or consumed by someone else
	Skipped int

	// Failed games returned an error
	Failed int
}
