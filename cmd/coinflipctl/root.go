package main

import (
	"encoding/json"
	"fmt"

	"github.com/KirkDiggler/coinflip/internal/app"
	"github.com/KirkDiggler/coinflip/internal/common/amount"
	"github.com/KirkDiggler/coinflip/internal/config"
	"github.com/KirkDiggler/coinflip/internal/logging"
	"github.com/spf13/cobra"
)

// cli carries what every sub command shares once the root has run
type cli struct {
	configFile string
	envFile    string

	cfg    *config.Config
	logger *logging.Logger
	app    *app.App
	token  amount.Token
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	cmd := &cobra.Command{
		Use:           "coinflipctl",
		Short:         "Operate a coin flip engine directly",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.open(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.close()
		},
	}

	cmd.PersistentFlags().StringVar(&c.configFile, "config", "", "TOML configuration file")
	cmd.PersistentFlags().StringVar(&c.envFile, "env-file", ".env", "dotenv file, ignored when missing")

	cmd.AddCommand(
		createCmd(c),
		joinCmd(c),
		settleCmd(c),
		claimCmd(c),
		fundCmd(c),
		balanceCmd(c),
		historyCmd(c),
		initVRFCmd(c),
		eventsCmd(c),
		relayCmd(c),
		fulfillCmd(c),
		verifyCmd(c),
	)

	return cmd
}

func (c *cli) open(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configFile, c.envFile)
	if err != nil {
		return err
	}

	logger, err := logging.New(&logging.Config{
		Level:      cfg.Log.Level,
		Console:    cmd.ErrOrStderr(),
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
	if err != nil {
		return err
	}

	coinflip, err := app.New(cmd.Context(), cfg, logger.Logger)
	if err != nil {
		logger.Close()
		return err
	}

	c.cfg = cfg
	c.logger = logger
	c.app = coinflip
	c.token = amount.Token{Symbol: cfg.Token.Symbol, Decimals: cfg.Token.Decimals}
	return nil
}

func (c *cli) close() error {
	if c.app != nil {
		c.app.Close()
	}
	if c.logger != nil {
		return c.logger.Close()
	}
	return nil
}

// print writes v as indented JSON on the command's output
func (c *cli) print(cmd *cobra.Command, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
