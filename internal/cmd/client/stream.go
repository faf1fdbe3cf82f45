package client

import (
	"fmt"
	"strconv"
	"time"

	"github.com/rzbill/sluice/internal/cmd/client/transports"
	"github.com/spf13/cobra"
)

// NewStreamCommand constructs the `stream` command group and subcommands.
func NewStreamCommand() *cobra.Command {
	streamCmd := &cobra.Command{Use: "stream", Short: "Payment stream operations"}
	streamCmd.AddCommand(
		newStreamCreateCommand(),
		newStreamGetCommand(),
		newStreamListCommand(),
		newStreamAvailableCommand(),
		newStreamWithdrawCommand(),
		newStreamCancelCommand(),
	)
	return streamCmd
}

func parseID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid stream id %q", s)
	}
	return id, nil
}

// newStreamCreateCommand pays the deposit into custody with createStream
// call data.
func newStreamCreateCommand() *cobra.Command {
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a stream by depositing into custody",
		RunE: func(cmd *cobra.Command, _ []string) error {
			from, _ := cmd.Flags().GetString("from")
			to, _ := cmd.Flags().GetString("to")
			deposit, _ := cmd.Flags().GetInt64("deposit")
			startStr, _ := cmd.Flags().GetString("start")
			stopStr, _ := cmd.Flags().GetString("stop")
			duration, _ := cmd.Flags().GetDuration("duration")
			if from == "" || to == "" {
				return fmt.Errorf("--from and --to are required")
			}

			start := time.Now().UnixMilli()
			if startStr != "" {
				ms, err := parseTimeMs(startStr)
				if err != nil {
					return err
				}
				start = ms
			}
			var stop int64
			switch {
			case stopStr != "":
				ms, err := parseTimeMs(stopStr)
				if err != nil {
					return err
				}
				stop = ms
			case duration > 0:
				stop = start + duration.Milliseconds()
			default:
				return fmt.Errorf("one of --stop or --duration is required")
			}

			data := []any{"createStream", to, start, stop}
			if err := getTransport().Pay(cmd.Context(), from, deposit, data); err != nil {
				return rpcError(err)
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{"success": true, "start": start, "stop": stop})
		},
	}
	createCmd.Flags().String("from", "", "Sender address (must match the token subject)")
	createCmd.Flags().String("to", "", "Recipient address")
	createCmd.Flags().Int64("deposit", 0, "Deposit amount")
	createCmd.Flags().String("start", "", "Start time: RFC3339 or ms (default now)")
	createCmd.Flags().String("stop", "", "Stop time: RFC3339 or ms")
	createCmd.Flags().Duration("duration", 0, "Stream duration, alternative to --stop")
	return createCmd
}

func newStreamGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a stream with its vested and available amounts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			view, err := getTransport().GetStream(cmd.Context(), id)
			if err != nil {
				return rpcError(err)
			}
			return printJSON(cmd.OutOrStdout(), view)
		},
	}
}

func newStreamListCommand() *cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List streams by sender or recipient",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var req transports.ListRequest
			req.Sender, _ = cmd.Flags().GetString("sender")
			req.Recipient, _ = cmd.Flags().GetString("recipient")
			req.Expand, _ = cmd.Flags().GetBool("expand")
			req.Filter, _ = cmd.Flags().GetString("filter")
			req.Limit, _ = cmd.Flags().GetInt("limit")
			if (req.Sender == "") == (req.Recipient == "") {
				return fmt.Errorf("exactly one of --sender or --recipient is required")
			}
			ids, views, err := getTransport().ListStreams(cmd.Context(), req)
			if err != nil {
				return rpcError(err)
			}
			if req.Expand || req.Filter != "" {
				return printJSON(cmd.OutOrStdout(), views)
			}
			if ids == nil {
				ids = []uint64{}
			}
			return printJSON(cmd.OutOrStdout(), ids)
		},
	}
	listCmd.Flags().String("sender", "", "Sender address")
	listCmd.Flags().String("recipient", "", "Recipient address")
	listCmd.Flags().Bool("expand", false, "Return full views instead of ids")
	listCmd.Flags().String("filter", "", "CEL filter over views, e.g. 'available > 0'")
	listCmd.Flags().Int("limit", 0, "Max entries (0 = server default)")
	return listCmd
}

func newStreamAvailableCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "available <id>",
		Short: "Show the amount the recipient can withdraw now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			n, err := getTransport().Available(cmd.Context(), id)
			if err != nil {
				return rpcError(err)
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{"id": id, "available": n})
		},
	}
}

func newStreamWithdrawCommand() *cobra.Command {
	withdrawCmd := &cobra.Command{
		Use:   "withdraw <id>",
		Short: "Withdraw vested value to the recipient",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			amount, _ := cmd.Flags().GetInt64("amount")
			all, _ := cmd.Flags().GetBool("all")
			t := getTransport()
			if all {
				if amount, err = t.Available(cmd.Context(), id); err != nil {
					return rpcError(err)
				}
			}
			if err := t.Withdraw(cmd.Context(), id, amount); err != nil {
				return rpcError(err)
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{"success": true, "amount": amount})
		},
	}
	withdrawCmd.Flags().Int64("amount", 0, "Amount to withdraw")
	withdrawCmd.Flags().Bool("all", false, "Withdraw everything available now")
	return withdrawCmd
}

func newStreamCancelCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel a stream, settling both parties",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			out, err := getTransport().Cancel(cmd.Context(), id)
			if err != nil {
				return rpcError(err)
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{"success": true, "available": out.Available, "leftover": out.Leftover})
		},
	}
}
