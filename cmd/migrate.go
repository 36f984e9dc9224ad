package main

import (
	"context"
	"fmt"
	"time"

	"billledger/internal/caching"
	"billledger/internal/logger"
	"billledger/pkg/database"

	"github.com/spf13/cobra"
)

const cacheFlushTimeout = 10 * time.Second

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and exit",
	Long: `Apply pending database migrations and exit.

Cached bill snapshots are dropped afterwards so no reader sees a bill shaped
by the previous schema.`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	if err := database.Migrate(cfg.DatabaseURL); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), cacheFlushTimeout)
	defer cancel()
	_ = flushBillCache(ctx, newBillCache(cfg))
	return nil
}

// flushBillCache drops every cached bill. Failures are logged and returned;
// callers treat them as non-fatal since entries still expire with the TTL.
func flushBillCache(ctx context.Context, cache caching.BillCache) error {
	log := logger.WithComponent("migrate")
	if err := cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to flush bill cache after migration")
		return fmt.Errorf("flush bill cache: %w", err)
	}
	log.Info().Msg("Bill cache flushed")
	return nil
}
