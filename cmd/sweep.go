package main

import (
	"context"
	"fmt"
	"time"

	"billledger/internal/logger"

	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run the overdue reminder sweep once and exit",
	Long: `Run the overdue reminder sweep once. Every overdue bill is logged as a
payment reminder and the overdue gauge is refreshed.

With --archive the previous month's GST report is also written to object
storage, the same way the monthly scheduled job does.`,
	Example: `  # Sweep from cron instead of the built-in scheduler
  billledger sweep

  # Sweep and archive last month's GST report
  billledger sweep --archive`,
	RunE: runSweep,
}

func init() {
	rootCmd.AddCommand(sweepCmd)

	sweepCmd.Flags().Bool("archive", false, "Also archive the previous month's GST report")
	sweepCmd.Flags().Duration("timeout", 5*time.Minute, "Give up after this long")
}

func runSweep(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("sweep")
	archive, _ := cmd.Flags().GetBool("archive")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	n, err := a.sweeper.Run(ctx)
	if err != nil {
		return fmt.Errorf("overdue sweep: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d overdue bill(s)\n", n)

	if !archive {
		return nil
	}
	if a.archiver == nil {
		return fmt.Errorf("archiving is disabled (ARCHIVE_ENABLED=false)")
	}
	archived, err := a.archiver.ArchivePreviousMonth(ctx)
	if err != nil {
		return fmt.Errorf("archive gst report: %w", err)
	}
	log.Info().Str("object", archived.ObjectName).Msg("Archive written")
	fmt.Fprintf(cmd.OutOrStdout(), "archived %s/%s (%d rows)\n", archived.Bucket, archived.ObjectName, archived.Rows)
	return nil
}
