package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/KirkDiggler/coinflip/internal/app"
	"github.com/KirkDiggler/coinflip/internal/common/amount"
	"github.com/KirkDiggler/coinflip/internal/config"
	"github.com/KirkDiggler/coinflip/internal/handlers/discord"
	"github.com/KirkDiggler/coinflip/internal/logging"
	"github.com/KirkDiggler/coinflip/internal/services/messaging"
	"github.com/KirkDiggler/coinflip/internal/services/relayer"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load(os.Getenv("COINFLIP_CONFIG"), ".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(&logging.Config{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	err = run(cfg, logger.Logger)
	if err != nil {
		logger.Error("bot exited", "error", err)
	} else {
		logger.Info("bot has been shut down")
	}

	logger.Close()
	if err != nil {
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	if cfg.Discord.Token == "" {
		return errors.New("DISCORD_TOKEN environment variable is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	coinflip, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer coinflip.Close()

	relay, err := relayer.New(&relayer.Config{
		Engine:     coinflip.Engine,
		Interval:   cfg.Relayer.Interval,
		MaxBackoff: cfg.Relayer.MaxBackoff,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create relayer: %w", err)
	}

	messagingSvc, err := messaging.NewService(&messaging.ServiceConfig{})
	if err != nil {
		return fmt.Errorf("failed to create messaging service: %w", err)
	}

	bot, err := discord.New(&discord.Config{
		Token:            cfg.Discord.Token,
		ApplicationID:    cfg.Discord.ApplicationID,
		GuildID:          cfg.Discord.GuildID,
		GameService:      coinflip.Engine,
		MessagingService: messagingSvc,
		Amounts: amount.Token{
			Symbol:   cfg.Token.Symbol,
			Decimals: cfg.Token.Decimals,
		},
		AllowFaucet:   cfg.Discord.AllowFaucet,
		WatchInterval: cfg.Discord.WatchInterval,
		Logger:        logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create Discord bot: %w", err)
	}

	if err := bot.Start(); err != nil {
		return fmt.Errorf("failed to start Discord bot: %w", err)
	}
	defer func() {
		if err := bot.Stop(); err != nil {
			logger.Error("error stopping bot", "error", err)
		}
	}()

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return relay.Run(ctx)
	})

	// Without the fulfiller an external process must serve the oracle queue
	if cfg.Oracle.Fulfil {
		group.Go(func() error {
			return coinflip.Oracle.Run(ctx, logger)
		})
	}

	group.Go(func() error {
		return bot.Watch(ctx)
	})

	if cfg.Metrics.Interval > 0 {
		group.Go(func() error {
			logMetrics(ctx, coinflip.Registry, cfg.Metrics.Interval, logger)
			return nil
		})
	}

	logger.Info("coinflip is running, press CTRL-C to exit",
		"variant", cfg.Engine.Variant,
		"fulfil", cfg.Oracle.Fulfil)

	return group.Wait()
}
