// Package app assembles the engine and its backing stores from configuration
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/KirkDiggler/coinflip/internal/common/clock"
	"github.com/KirkDiggler/coinflip/internal/common/uuid"
	"github.com/KirkDiggler/coinflip/internal/config"
	"github.com/KirkDiggler/coinflip/internal/oracle/vrf"
	"github.com/KirkDiggler/coinflip/internal/repositories/client_state"
	"github.com/KirkDiggler/coinflip/internal/repositories/event"
	gameRepo "github.com/KirkDiggler/coinflip/internal/repositories/game"
	"github.com/KirkDiggler/coinflip/internal/repositories/ledger"
	"github.com/KirkDiggler/coinflip/internal/repositories/store"
	"github.com/KirkDiggler/coinflip/internal/services/game"
	"github.com/rcrowley/go-metrics"
	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

// App holds everything built from one configuration
type App struct {
	Redis    *redis.Client
	Oracle   *vrf.Oracle
	Engine   game.Service
	Registry metrics.Registry
}

// Close releases the Redis connection
func (a *App) Close() error {
	return a.Redis.Close()
}

// New connects to Redis and wires the repositories, the local oracle and the engine
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	app, err := wire(cfg, redisClient, logger)
	if err != nil {
		redisClient.Close()
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		redisClient.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Redis.Addr, err)
	}

	return app, nil
}

func wire(cfg *config.Config, redisClient *redis.Client, logger *slog.Logger) (*App, error) {
	transactor, err := store.NewRedis(&store.Config{
		RedisClient: redisClient,
		MaxRetries:  cfg.Engine.MaxRetries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}

	games, err := gameRepo.NewRedis(&gameRepo.Config{
		RedisClient: redisClient,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create game repository: %w", err)
	}

	clientStates, err := client_state.NewRedis(&client_state.Config{
		RedisClient: redisClient,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client state repository: %w", err)
	}

	systemClock := clock.New()
	ids := uuid.New()

	accounts, err := ledger.NewRedis(&ledger.Config{
		RedisClient:   redisClient,
		Clock:         systemClock,
		UUIDGenerator: ids,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ledger repository: %w", err)
	}

	events, err := event.NewRedis(&event.Config{
		RedisClient: redisClient,
		MaxLen:      cfg.Engine.EventStreamMaxLen,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create event repository: %w", err)
	}

	localOracle, err := vrf.NewRedis(&vrf.Config{
		RedisClient:  redisClient,
		Transactor:   transactor,
		PollInterval: cfg.Oracle.PollInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create oracle: %w", err)
	}

	registry := metrics.NewRegistry()

	engine, err := game.New(&game.Config{
		ProgramID:       cfg.Engine.ProgramID,
		Variant:         game.Variant(cfg.Engine.Variant),
		Transactor:      transactor,
		GameRepo:        games,
		ClientStateRepo: clientStates,
		LedgerRepo:      accounts,
		EventRepo:       events,
		Oracle:          localOracle,
		Provisioner:     localOracle,
		Clock:           systemClock,
		UUIDGenerator:   ids,
		Logger:          logger,
		MetricsRegistry: registry,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create game service: %w", err)
	}

	return &App{
		Redis:    redisClient,
		Oracle:   localOracle,
		Engine:   engine,
		Registry: registry,
	}, nil
}
