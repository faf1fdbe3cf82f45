package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewRailCommand groups the value-rail commands.
func NewRailCommand() *cobra.Command {
	railCmd := &cobra.Command{Use: "rail", Short: "Value rail operations"}
	railCmd.AddCommand(newRailMintCommand(), newRailBalanceCommand(), newRailPayCommand())
	return railCmd
}

func newRailMintCommand() *cobra.Command {
	mintCmd := &cobra.Command{
		Use:   "mint",
		Short: "Credit an address from the dev faucet",
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr, _ := cmd.Flags().GetString("address")
			amount, _ := cmd.Flags().GetInt64("amount")
			bal, err := getTransport().Mint(cmd.Context(), addr, amount)
			if err != nil {
				return rpcError(err)
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{"address": addr, "balance": bal})
		},
	}
	mintCmd.Flags().String("address", "", "Address to credit")
	mintCmd.Flags().Int64("amount", 0, "Amount")
	return mintCmd
}

func newRailBalanceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "balance <address>",
		Short: "Show an address balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bal, err := getTransport().Balance(cmd.Context(), args[0])
			if err != nil {
				return rpcError(err)
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{"address": args[0], "balance": bal})
		},
	}
}

// newRailPayCommand sends a raw payment with JSON call data.
func newRailPayCommand() *cobra.Command {
	payCmd := &cobra.Command{
		Use:   "pay",
		Short: "Pay into custody with raw call data",
		RunE: func(cmd *cobra.Command, _ []string) error {
			from, _ := cmd.Flags().GetString("from")
			amount, _ := cmd.Flags().GetInt64("amount")
			raw, _ := cmd.Flags().GetString("data")
			var data []any
			if raw != "" {
				if err := json.Unmarshal([]byte(raw), &data); err != nil {
					return fmt.Errorf("invalid --data: %w", err)
				}
			}
			if err := getTransport().Pay(cmd.Context(), from, amount, data); err != nil {
				return rpcError(err)
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{"success": true})
		},
	}
	payCmd.Flags().String("from", "", "Payer address")
	payCmd.Flags().Int64("amount", 0, "Amount")
	payCmd.Flags().String("data", "", `Call data as a JSON array, e.g. '["createStream","<to>",1700000000000,1700003600000]'`)
	return payCmd
}
