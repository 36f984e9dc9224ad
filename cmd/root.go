package main

import (
	"fmt"
	"os"

	"billledger/internal/config"
	"billledger/internal/logger"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "billledger",
	Short: "Billing ledger service for purchase, sales and service bills",
	Long: `billledger records bills with GST line items, tracks payments against
them and moves each bill through its approval lifecycle.

Configuration is read from the environment, optionally seeded from a .env
file in the working directory. DATABASE_URL is required.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		if err := logger.Setup(loaded.LoggerConfig()); err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}
		cfg = loaded
		return nil
	},
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log := logger.WithComponent("cmd")
		log.Error().Err(err).Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
