package main

import (
	"github.com/KirkDiggler/coinflip/internal/models"
	"github.com/KirkDiggler/coinflip/internal/oracle/vrf"
	"github.com/KirkDiggler/coinflip/internal/services/game"
	"github.com/KirkDiggler/coinflip/internal/services/relayer"
	"github.com/spf13/cobra"
)

func eventsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Read the observation log",
		RunE: func(cmd *cobra.Command, args []string) error {
			after, _ := cmd.Flags().GetString("after")
			count, _ := cmd.Flags().GetInt64("count")
			gameAddress, _ := cmd.Flags().GetString("game-address")
			typeNames, _ := cmd.Flags().GetStringSlice("type")

			types := make([]models.EventType, 0, len(typeNames))
			for _, name := range typeNames {
				types = append(types, models.EventType(name))
			}

			events, err := c.app.Engine.ListEvents(cmd.Context(), &game.ListEventsInput{
				After: after,
				Count: count,
				Types: types,
				Game:  gameAddress,
			})
			if err != nil {
				return err
			}

			return c.print(cmd, events)
		},
	}

	cmd.Flags().String("after", "", "cursor to resume from")
	cmd.Flags().Int64("count", 0, "entries to scan, 0 for all")
	cmd.Flags().String("game-address", "", "only events of this game address")
	cmd.Flags().StringSlice("type", nil, "only these event types")
	return cmd
}

func relayCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Settle every game whose randomness has arrived",
		RunE: func(cmd *cobra.Command, args []string) error {
			follow, _ := cmd.Flags().GetBool("follow")

			relay, err := relayer.New(&relayer.Config{
				Engine:     c.app.Engine,
				Interval:   c.cfg.Relayer.Interval,
				MaxBackoff: c.cfg.Relayer.MaxBackoff,
				Logger:     c.logger.Logger,
			})
			if err != nil {
				return err
			}

			if follow {
				return relay.Run(cmd.Context())
			}

			output, err := relay.RunOnce(cmd.Context())
			if err != nil {
				return err
			}

			return c.print(cmd, output)
		},
	}

	cmd.Flags().Bool("follow", false, "keep relaying until interrupted")
	return cmd
}

func verifyCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Re-check an oracle account's published value against its proof",
		RunE: func(cmd *cobra.Command, args []string) error {
			account, _ := cmd.Flags().GetString("oracle")
			maxResult, _ := cmd.Flags().GetUint64("max")

			buffer, err := c.app.Oracle.Verify(cmd.Context(), account)
			if err != nil {
				return err
			}

			result := map[string]interface{}{
				"oracle":    account,
				"delivered": !buffer.IsZero(),
				"buffer":    buffer,
			}
			if maxResult > 0 && !buffer.IsZero() {
				result["numeric"] = game.MapResult(buffer, maxResult)
			}

			return c.print(cmd, result)
		},
	}

	cmd.Flags().String("oracle", "", "oracle account address")
	cmd.MarkFlagRequired("oracle")
	cmd.Flags().Uint64("max", 0, "also map the value onto [1, max]")
	return cmd
}

func fulfillCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fulfill",
		Short: "Serve queued randomness requests with the local oracle",
		RunE: func(cmd *cobra.Command, args []string) error {
			all, _ := cmd.Flags().GetBool("all")

			fulfilled := []*vrf.Fulfilment{}
			for {
				fulfilment, err := c.app.Oracle.FulfillNext(cmd.Context())
				if err != nil {
					return err
				}
				if fulfilment == nil {
					break
				}
				fulfilled = append(fulfilled, fulfilment)
				if !all {
					break
				}
			}

			return c.print(cmd, fulfilled)
		},
	}

	cmd.Flags().Bool("all", false, "drain the queue instead of serving one request")
	return cmd
}
