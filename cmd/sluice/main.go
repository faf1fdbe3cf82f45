package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	clientcmd "github.com/rzbill/sluice/internal/cmd/client"
	serverrun "github.com/rzbill/sluice/internal/cmd/server"
	cfgpkg "github.com/rzbill/sluice/internal/config"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "sluice",
		Short:        "sluice payment stream ledger",
		Long:         "sluice is a single-binary payment streaming ledger. This CLI runs the node and drives its API.",
		SilenceUsage: true,
	}

	serverCmd := &cobra.Command{Use: "server", Short: "Server commands"}
	serverStartCmd := &cobra.Command{
		Use:     "start",
		Short:   "Start the sluice node (gRPC and HTTP)",
		Aliases: []string{"run"},
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			dataDir, _ := cmd.Flags().GetString("data-dir")
			grpcAddr, _ := cmd.Flags().GetString("grpc")
			httpAddr, _ := cmd.Flags().GetString("http")

			cfg, err := cfgpkg.Load(configPath)
			if err != nil {
				return err
			}
			cfgpkg.FromEnv(&cfg)
			if f := cmd.Flags().Lookup("fsync"); f.Changed {
				cfg.Storage.Fsync = f.Value.String()
			}
			if f := cmd.Flags().Lookup("log-level"); f.Changed {
				cfg.Log.Level = f.Value.String()
			}
			if f := cmd.Flags().Lookup("log-format"); f.Changed {
				cfg.Log.Format = f.Value.String()
			}
			if f := cmd.Flags().Lookup("store"); f.Changed {
				cfg.Ledger.Store = f.Value.String()
			}
			if v, _ := cmd.Flags().GetBool("allow-mint"); v {
				cfg.Rail.AllowMint = true
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			if err := serverrun.Run(ctx, serverrun.Options{
				DataDir:  dataDir,
				GRPCAddr: grpcAddr,
				HTTPAddr: httpAddr,
				Config:   cfg,
			}); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		},
	}
	serverStartCmd.Flags().String("config", os.Getenv("SLUICE_CONFIG"), "Config file (.json, .yaml or .yml)")
	serverStartCmd.Flags().String("data-dir", "", "Data directory (if not specified, uses OS-specific application data directory)")
	serverStartCmd.Flags().String("grpc", serverrun.DefaultGRPCAddr, "gRPC listen address")
	serverStartCmd.Flags().String("http", serverrun.DefaultHTTPAddr, "HTTP listen address")
	serverStartCmd.Flags().String("fsync", "interval", "Fsync mode: always|interval|never")
	serverStartCmd.Flags().String("store", "pebble", "Stream store: pebble|sqlite")
	serverStartCmd.Flags().String("log-level", "info", "Log level: debug|info|warn|error")
	serverStartCmd.Flags().String("log-format", "text", "Log format: text|json")
	serverStartCmd.Flags().Bool("allow-mint", false, "Enable the dev faucet")
	serverCmd.AddCommand(serverStartCmd)
	rootCmd.AddCommand(serverCmd)

	clientcmd.AddCommands(rootCmd, apiURL)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func apiURL() string {
	if v := os.Getenv("SLUICE_HTTP"); v != "" {
		return v
	}
	return "http://127.0.0.1:8080"
}
