package relayer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/KirkDiggler/coinflip/internal/services/game"
	"github.com/cenkalti/backoff/v4"
)

const (
	defaultInterval   = 2 * time.Second
	defaultMaxBackoff = 30 * time.Second
)

var ErrNilEngine = errors.New("engine cannot be nil")

type service struct {
	engine     game.Service
	interval   time.Duration
	maxBackoff time.Duration
	logger     *slog.Logger
}

// New creates a new relayer
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.Engine == nil {
		return nil, ErrNilEngine
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultInterval
	}

	maxBackoff := cfg.MaxBackoff
	if maxBackoff <= 0 {
		maxBackoff = defaultMaxBackoff
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &service{
		engine:     cfg.Engine,
		interval:   interval,
		maxBackoff: maxBackoff,
		logger:     logger.With("component", "relayer"),
	}, nil
}

// RunOnce offers every pending game to the engine. A game that fails is
// counted and logged without stopping the pass; only failing to list the
// pending games is returned as an error.
func (s *service) RunOnce(ctx context.Context) (*RunOnceOutput, error) {
	pending, err := s.engine.GetPendingGames(ctx, &game.GetPendingGamesInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to list pending games: %w", err)
	}

	output := &RunOnceOutput{
		Pending: len(pending.Games),
	}

	for _, p := range pending.Games {
		if err := ctx.Err(); err != nil {
			return output, err
		}

		settled, err := s.engine.SettleGame(ctx, &game.SettleGameInput{
			GameID: p.Game.GameID,
			Owner:  p.Game.Owner,
			Oracle: p.Oracle,
		})
		if err != nil {
			output.Failed++
			s.logger.WarnContext(ctx, "settle failed",
				"game", p.Game.Address,
				"error", err)
			continue
		}

		switch settled.Status {
		case game.SettleStatusSettled:
			output.Settled++
		case game.SettleStatusAwaitingRandomness:
			output.Waiting++
		default:
			output.Skipped++
		}
	}

	if output.Settled > 0 || output.Failed > 0 {
		s.logger.InfoContext(ctx, "relay pass",
			"pending", output.Pending,
			"settled", output.Settled,
			"waiting", output.Waiting,
			"skipped", output.Skipped,
			"failed", output.Failed)
	}

	return output, nil
}

// Run relays until ctx is cancelled. A pass that cannot list games is
// retried with exponential backoff before the next tick.
func (s *service) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.InfoContext(ctx, "relayer started", "interval", s.interval.String())

	for {
		if err := s.pass(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "relayer stopped")
			return nil
		case <-ticker.C:
		}
	}
}

func (s *service) pass(ctx context.Context) error {
	b := backoff.NewExponentialBackOff()
	b.MaxInterval = s.maxBackoff
	b.MaxElapsedTime = 0

	return backoff.RetryNotify(func() error {
		_, err := s.RunOnce(ctx)
		return err
	}, backoff.WithContext(b, ctx), func(err error, next time.Duration) {
		s.logger.WarnContext(ctx, "relay pass failed, backing off",
			"error", err,
			"retry_in", next.String())
	})
}
