package main

import (
	"github.com/KirkDiggler/coinflip/internal/services/game"
	"github.com/spf13/cobra"
)

func fundCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fund",
		Short: "Credit an address from outside the ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			address, _ := cmd.Flags().GetString("address")
			amountText, _ := cmd.Flags().GetString("amount")

			units, err := c.token.Parse(amountText)
			if err != nil {
				return err
			}

			funded, err := c.app.Engine.FundAccount(cmd.Context(), &game.FundAccountInput{
				Address: address,
				Amount:  units,
			})
			if err != nil {
				return err
			}

			return c.print(cmd, map[string]interface{}{
				"address": funded.Account.Address,
				"balance": funded.Account.Balance,
				"display": c.token.Format(funded.Account.Balance),
			})
		},
	}

	cmd.Flags().StringP("address", "a", "", "address to credit")
	cmd.MarkFlagRequired("address")
	cmd.Flags().String("amount", "", "amount, e.g. 10 or 2.5")
	cmd.MarkFlagRequired("amount")
	return cmd
}

func balanceCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show the ledger balance of an address",
		RunE: func(cmd *cobra.Command, args []string) error {
			address, _ := cmd.Flags().GetString("address")

			balance, err := c.app.Engine.GetBalance(cmd.Context(), &game.GetBalanceInput{
				Address: address,
			})
			if err != nil {
				return err
			}

			return c.print(cmd, map[string]interface{}{
				"address": address,
				"balance": balance.Balance,
				"display": c.token.Format(balance.Balance),
			})
		},
	}

	cmd.Flags().StringP("address", "a", "", "address to read")
	cmd.MarkFlagRequired("address")
	return cmd
}

func historyCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List the ledger transfers touching an address",
		RunE: func(cmd *cobra.Command, args []string) error {
			address, _ := cmd.Flags().GetString("address")

			history, err := c.app.Engine.GetTransfers(cmd.Context(), &game.GetTransfersInput{
				Address: address,
			})
			if err != nil {
				return err
			}

			transfers := make([]map[string]interface{}, 0, len(history.Transfers))
			for _, transfer := range history.Transfers {
				transfers = append(transfers, map[string]interface{}{
					"id":        transfer.ID,
					"from":      transfer.From,
					"to":        transfer.To,
					"amount":    transfer.Amount,
					"display":   c.token.Format(transfer.Amount),
					"authority": transfer.Authority,
					"timestamp": transfer.Timestamp,
				})
			}

			return c.print(cmd, map[string]interface{}{
				"address":   address,
				"transfers": transfers,
			})
		},
	}

	cmd.Flags().StringP("address", "a", "", "address to read")
	cmd.MarkFlagRequired("address")
	return cmd
}

func initVRFCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init-vrf",
		Short: "Provision the payer's oracle account",
		RunE: func(cmd *cobra.Command, args []string) error {
			payer, _ := cmd.Flags().GetString("payer")

			initialized, err := c.app.Engine.InitVRF(cmd.Context(), &game.InitVRFInput{
				Payer: payer,
			})
			if err != nil {
				return err
			}

			return c.print(cmd, initialized)
		},
	}

	cmd.Flags().StringP("payer", "p", "", "payer identity")
	cmd.MarkFlagRequired("payer")
	return cmd
}
