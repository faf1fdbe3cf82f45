package client

import (
	"encoding/json"
	"errors"

	sluicev1 "github.com/rzbill/sluice/api/sluice/v1"
	"github.com/spf13/cobra"
)

// NewEventsCommand groups the ledger event journal commands.
func NewEventsCommand() *cobra.Command {
	eventsCmd := &cobra.Command{Use: "events", Short: "Ledger event journal"}
	eventsCmd.AddCommand(newEventsTailCommand())
	return eventsCmd
}

// newEventsTailCommand prints journal entries as JSON lines.
func newEventsTailCommand() *cobra.Command {
	tailCmd := &cobra.Command{
		Use:   "tail",
		Short: "Follow ledger events",
		RunE: func(cmd *cobra.Command, _ []string) error {
			from, _ := cmd.Flags().GetUint64("from")
			consumer, _ := cmd.Flags().GetString("consumer")
			limit, _ := cmd.Flags().GetInt("limit")

			enc := json.NewEncoder(cmd.OutOrStdout())
			seen := 0
			err := getTransport().WatchEvents(cmd.Context(), from, consumer, func(ev *sluicev1.EventEnvelope) error {
				if err := enc.Encode(ev); err != nil {
					return err
				}
				seen++
				if limit > 0 && seen >= limit {
					return errStop
				}
				return nil
			})
			if errors.Is(err, errStop) || (err != nil && cmd.Context().Err() != nil) {
				return nil
			}
			return rpcError(err)
		},
	}
	tailCmd.Flags().Uint64("from", 0, "First sequence to deliver (0 = only new events)")
	tailCmd.Flags().String("consumer", "", "Durable consumer name; resumes from its cursor")
	tailCmd.Flags().Int("limit", 0, "Stop after N events (0 = infinite)")
	return tailCmd
}
