package client

import (
	"github.com/spf13/cobra"
)

// NewRoot constructs a root Cobra command for the sluice client.
func NewRoot(baseURL BaseURLFunc) *cobra.Command {
	root := &cobra.Command{
		Use:   "sluice",
		Short: "sluice client commands",
	}
	AddCommands(root, baseURL)
	return root
}

// AddCommands registers every client command group on root.
func AddCommands(root *cobra.Command, baseURL BaseURLFunc) {
	root.AddCommand(
		NewStreamCommand(),
		NewRailCommand(),
		NewEventsCommand(),
		NewTokenCommand(),
		NewAddressCommand(),
		NewHealthCommand(baseURL),
	)
}
