// Package config loads the service configuration. Values are layered:
// built-in defaults, then an optional TOML file, then an optional .env
// file, then the process environment. Later layers only override the
// settings they actually name.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the full configuration of the bot and the CLI
type Config struct {
	Redis   RedisConfig   `toml:"redis" envPrefix:"REDIS_"`
	Engine  EngineConfig  `toml:"engine" envPrefix:"COINFLIP_"`
	Discord DiscordConfig `toml:"discord"`
	Relayer RelayerConfig `toml:"relayer" envPrefix:"RELAYER_"`
	Oracle  OracleConfig  `toml:"oracle" envPrefix:"ORACLE_"`
	Token   TokenConfig   `toml:"token" envPrefix:"TOKEN_"`
	Log     LogConfig     `toml:"log" envPrefix:"LOG_"`
	Metrics MetricsConfig `toml:"metrics" envPrefix:"METRICS_"`
}

type RedisConfig struct {
	Addr     string `toml:"addr" env:"ADDR"`
	Password string `toml:"password" env:"PASSWORD"`
	DB       int    `toml:"db" env:"DB"`
}

type EngineConfig struct {
	// ProgramID namespaces every derived address
	ProgramID string `toml:"program_id" env:"PROGRAM_ID"`

	// Variant is "client" or "vrf"
	Variant string `toml:"variant" env:"VARIANT"`

	// MaxRetries bounds transaction conflict retries
	MaxRetries uint64 `toml:"max_retries" env:"MAX_RETRIES"`

	// EventStreamMaxLen approximately caps the event log; 0 keeps everything
	EventStreamMaxLen int64 `toml:"event_stream_max_len" env:"EVENT_STREAM_MAX_LEN"`
}

// DiscordConfig keeps the variable names the bot has always used
type DiscordConfig struct {
	Token         string `toml:"token" env:"DISCORD_TOKEN"`
	ApplicationID string `toml:"application_id" env:"APPLICATION_ID"`
	GuildID       string `toml:"guild_id" env:"GUILD_ID"`

	// AllowFaucet exposes /coinflip fund; meant for test servers
	AllowFaucet   bool          `toml:"allow_faucet" env:"COINFLIP_ALLOW_FAUCET"`
	WatchInterval time.Duration `toml:"watch_interval" env:"COINFLIP_WATCH_INTERVAL"`
}

type RelayerConfig struct {
	Interval   time.Duration `toml:"interval" env:"INTERVAL"`
	MaxBackoff time.Duration `toml:"max_backoff" env:"MAX_BACKOFF"`
}

type OracleConfig struct {
	// Fulfil runs the local oracle's fulfiller inside the bot
	Fulfil       bool          `toml:"fulfil" env:"FULFIL"`
	PollInterval time.Duration `toml:"poll_interval" env:"POLL_INTERVAL"`
}

// TokenConfig describes how ledger amounts are displayed
type TokenConfig struct {
	Symbol   string `toml:"symbol" env:"SYMBOL"`
	Decimals int32  `toml:"decimals" env:"DECIMALS"`
}

type LogConfig struct {
	Level string `toml:"level" env:"LEVEL"`

	// File enables a rotating file sink next to the console output
	File       string `toml:"file" env:"FILE"`
	MaxSizeMB  int    `toml:"max_size_mb" env:"MAX_SIZE_MB"`
	MaxBackups int    `toml:"max_backups" env:"MAX_BACKUPS"`
	MaxAgeDays int    `toml:"max_age_days" env:"MAX_AGE_DAYS"`
	Compress   bool   `toml:"compress" env:"COMPRESS"`
}

type MetricsConfig struct {
	// Interval between registry dumps to the log; 0 disables them
	Interval time.Duration `toml:"interval" env:"INTERVAL"`
}

// Default returns the configuration used when nothing overrides it
func Default() *Config {
	return &Config{
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Engine: EngineConfig{
			ProgramID:  "CoinF1ipProgram111111111111111111111111111",
			Variant:    "client",
			MaxRetries: 10,
		},
		Discord: DiscordConfig{
			WatchInterval: time.Second,
		},
		Relayer: RelayerConfig{
			Interval:   2 * time.Second,
			MaxBackoff: 30 * time.Second,
		},
		Oracle: OracleConfig{
			Fulfil:       true,
			PollInterval: 500 * time.Millisecond,
		},
		Token: TokenConfig{
			Symbol:   "FLIP",
			Decimals: 2,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  100,
			MaxBackups: 5,
			MaxAgeDays: 28,
		},
		Metrics: MetricsConfig{
			Interval: time.Minute,
		},
	}
}

// Load builds the configuration. Either path may be empty; a missing .env
// file is not an error, a missing config file is.
func Load(configFile, envFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if _, err := toml.DecodeFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", configFile, err)
		}
	}

	if envFile != "" {
		// Variables already in the environment win over the file
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the settings every binary depends on
func (c *Config) Validate() error {
	if c.Redis.Addr == "" {
		return errors.New("redis address cannot be empty")
	}

	if c.Engine.ProgramID == "" {
		return errors.New("program id cannot be empty")
	}

	switch c.Engine.Variant {
	case "client", "vrf":
	default:
		return fmt.Errorf("unknown variant %q", c.Engine.Variant)
	}

	if c.Token.Decimals < 0 || c.Token.Decimals > 18 {
		return fmt.Errorf("token decimals out of range: %d", c.Token.Decimals)
	}

	return nil
}
