package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"billledger/internal/handlers"
	"billledger/internal/jobs/background"
	"billledger/internal/logger"
	"billledger/pkg/database"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the background scheduler",
	Example: `  # Apply migrations, then serve on $PORT
  billledger serve --migrate

  # Serve without the overdue sweep and GST archive jobs
  billledger serve --no-jobs`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Bool("migrate", false, "Apply pending migrations before serving")
	serveCmd.Flags().Bool("no-jobs", false, "Do not start the background scheduler")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("serve")
	runMigrations, _ := cmd.Flags().GetBool("migrate")
	noJobs, _ := cmd.Flags().GetBool("no-jobs")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if runMigrations {
		if err := database.Migrate(cfg.DatabaseURL); err != nil {
			return err
		}
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()
	if runMigrations {
		_ = flushBillCache(ctx, a.cache)
	}

	var archive handlers.GSTArchive
	if a.archiver != nil {
		archive = a.archiver
	}
	router := handlers.Router{
		Bills:          handlers.NewBillHandlers(a.bills, a.payments),
		Lifecycle:      handlers.NewLifecycleHandlers(a.lifecycle),
		Reports:        handlers.NewReportHandlers(a.reports, archive),
		Health:         handlers.NewHealthHandlers(a.pool, a.cache, version),
		Metrics:        a.metrics,
		Gatherer:       a.registry,
		RequestTimeout: cfg.RequestTimeout,
	}

	if !noJobs {
		scheduler, err := background.NewJobScheduler(a.sweeper, a.archive(), cfg.OverdueSweepInterval)
		if err != nil {
			return err
		}
		scheduler.Start()
		defer func() {
			if err := scheduler.Stop(); err != nil {
				log.Error().Err(err).Msg("Scheduler shutdown failed")
			}
		}()
		router.Jobs = handlers.NewJobHandlers(scheduler)
	}

	e := handlers.NewRouter(router)
	addr := fmt.Sprintf(":%d", cfg.Port)
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("version", version).Str("addr", addr).Msg("Billing ledger server starting")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		log.Info().Msg("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	log.Info().Msg("Server stopped")
	return nil
}
