package main

import (
	"fmt"
	"strings"

	"github.com/KirkDiggler/coinflip/internal/models"
	"github.com/KirkDiggler/coinflip/internal/services/game"
	"github.com/spf13/cobra"
)

func parseChoice(text string) (models.Choice, error) {
	switch strings.ToLower(text) {
	case "even", "0":
		return models.ChoiceEven, nil
	case "odd", "1":
		return models.ChoiceOdd, nil
	default:
		return 0, fmt.Errorf("choice must be even or odd, got %q", text)
	}
}

func addGameFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("owner", "o", "", "game owner")
	cmd.MarkFlagRequired("owner")
	cmd.Flags().StringP("game", "g", "", "game id")
	cmd.MarkFlagRequired("game")
}

func createCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a game and escrow the owner's stake",
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, _ := cmd.Flags().GetString("owner")
			gameID, _ := cmd.Flags().GetString("game")
			choiceText, _ := cmd.Flags().GetString("choice")
			stakeText, _ := cmd.Flags().GetString("stake")
			maxResult, _ := cmd.Flags().GetUint64("max")
			oracleAccount, _ := cmd.Flags().GetString("oracle")
			fresh, _ := cmd.Flags().GetBool("fresh-oracle")

			choice, err := parseChoice(choiceText)
			if err != nil {
				return err
			}

			stake, err := c.token.Parse(stakeText)
			if err != nil {
				return err
			}

			created, err := c.app.Engine.CreateGame(cmd.Context(), &game.CreateGameInput{
				Owner:       owner,
				GameID:      gameID,
				Choice:      choice,
				StakeAmount: stake,
				MaxResult:   maxResult,
				Oracle:      oracleAccount,
				FreshOracle: fresh,
			})
			if err != nil {
				return err
			}

			return c.print(cmd, created)
		},
	}

	addGameFlags(cmd)
	cmd.Flags().StringP("choice", "c", "even", "parity the owner bets on: even or odd")
	cmd.Flags().StringP("stake", "s", "", "stake per side, e.g. 2.5")
	cmd.MarkFlagRequired("stake")
	cmd.Flags().Uint64P("max", "m", 0, "upper bound of the draw, 0 for the default")
	cmd.Flags().String("oracle", "", "oracle account to bind")
	cmd.Flags().Bool("fresh-oracle", false, "provision a dedicated oracle account")
	return cmd
}

func joinCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "join",
		Short: "Join a game, escrow the stake and request randomness",
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, _ := cmd.Flags().GetString("owner")
			gameID, _ := cmd.Flags().GetString("game")
			joinee, _ := cmd.Flags().GetString("joinee")

			joined, err := c.app.Engine.JoinGame(cmd.Context(), &game.JoinGameInput{
				GameID: gameID,
				Owner:  owner,
				Joinee: joinee,
			})
			if err != nil {
				return err
			}

			return c.print(cmd, joined)
		},
	}

	addGameFlags(cmd)
	cmd.Flags().StringP("joinee", "j", "", "joining participant")
	cmd.MarkFlagRequired("joinee")
	return cmd
}

func settleCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settle",
		Short: "Consume the delivered random value and record the winner",
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, _ := cmd.Flags().GetString("owner")
			gameID, _ := cmd.Flags().GetString("game")
			oracleAccount, _ := cmd.Flags().GetString("oracle")

			// Default to the bound oracle
			if oracleAccount == "" {
				current, err := c.app.Engine.GetGame(cmd.Context(), &game.GetGameInput{
					GameID: gameID,
					Owner:  owner,
				})
				if err != nil {
					return err
				}
				oracleAccount = current.ClientState.Oracle
			}

			settled, err := c.app.Engine.SettleGame(cmd.Context(), &game.SettleGameInput{
				GameID: gameID,
				Owner:  owner,
				Oracle: oracleAccount,
			})
			if err != nil {
				return err
			}

			return c.print(cmd, settled)
		},
	}

	addGameFlags(cmd)
	cmd.Flags().String("oracle", "", "oracle account read from, defaults to the bound one")
	return cmd
}

func claimCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "claim",
		Short: "Pay out a settled game to its winner",
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, _ := cmd.Flags().GetString("owner")
			gameID, _ := cmd.Flags().GetString("game")
			caller, _ := cmd.Flags().GetString("caller")

			claimed, err := c.app.Engine.ClaimReward(cmd.Context(), &game.ClaimRewardInput{
				GameID: gameID,
				Owner:  owner,
				Caller: caller,
			})
			if err != nil {
				return err
			}

			return c.print(cmd, claimed)
		},
	}

	addGameFlags(cmd)
	cmd.Flags().String("caller", "", "who asks to be paid")
	cmd.MarkFlagRequired("caller")
	return cmd
}
