package client

import (
	"fmt"
	"os"
	"time"

	"github.com/rzbill/sluice/internal/auth"
	"github.com/rzbill/sluice/internal/ledger"
	"github.com/spf13/cobra"
)

// NewTokenCommand groups bearer token helpers.
func NewTokenCommand() *cobra.Command {
	tokenCmd := &cobra.Command{Use: "token", Short: "Bearer token helpers"}
	issueCmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue an HS256 token whose subject is an address",
		RunE: func(cmd *cobra.Command, _ []string) error {
			secret, _ := cmd.Flags().GetString("secret")
			issuer, _ := cmd.Flags().GetString("issuer")
			audience, _ := cmd.Flags().GetString("audience")
			subject, _ := cmd.Flags().GetString("subject")
			ttl, _ := cmd.Flags().GetDuration("ttl")
			if secret == "" {
				return fmt.Errorf("--secret or SLUICE_AUTH_SECRET is required")
			}
			addr, err := ledger.ParseAddress(subject)
			if err != nil {
				return err
			}
			tok, err := auth.Issue(auth.Config{Secret: secret, Issuer: issuer, Audience: audience}, addr, ttl)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	issueCmd.Flags().String("secret", os.Getenv("SLUICE_AUTH_SECRET"), "HMAC secret shared with the server")
	issueCmd.Flags().String("issuer", "sluice", "Token issuer")
	issueCmd.Flags().String("audience", "", "Token audience")
	issueCmd.Flags().String("subject", "", "Address the token authenticates")
	issueCmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
	tokenCmd.AddCommand(issueCmd)
	return tokenCmd
}

// NewAddressCommand groups identity helpers.
func NewAddressCommand() *cobra.Command {
	addrCmd := &cobra.Command{Use: "address", Short: "Identity helpers"}
	newCmd := &cobra.Command{
		Use:   "new",
		Short: "Generate an address (random, or derived from --label)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			label, _ := cmd.Flags().GetString("label")
			var (
				a   ledger.Address
				err error
			)
			if label != "" {
				a = ledger.DeriveAddress(label)
			} else if a, err = ledger.RandomAddress(); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]string{"base64": a.String(), "hex": a.Hex()})
		},
	}
	newCmd.Flags().String("label", "", "Derive deterministically from a label")
	addrCmd.AddCommand(newCmd)
	return addrCmd
}
