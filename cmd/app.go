package main

import (
	"context"
	"fmt"

	"billledger/internal/caching"
	"billledger/internal/config"
	"billledger/internal/jobs/background"
	"billledger/internal/logger"
	"billledger/internal/metrics"
	"billledger/internal/repositories"
	"billledger/internal/services"
	"billledger/pkg/database"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// app holds the wired ledger components shared by every command
type app struct {
	pool     *pgxpool.Pool
	cache    caching.BillCache
	registry *prometheus.Registry
	metrics  *metrics.Metrics

	bills     services.BillServiceInterface
	payments  services.PaymentServiceInterface
	lifecycle services.LifecycleServiceInterface
	reports   services.ReportServiceInterface
	archiver  *services.ReportArchiver // nil when archiving is disabled
	sweeper   *background.OverdueSweeper
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	log := logger.WithComponent("app")

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	cache := newBillCache(cfg)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	billRepo := repositories.NewBillRepo(pool)
	reportRepo := repositories.NewReportRepo(pool)

	a := &app{
		pool:      pool,
		cache:     cache,
		registry:  registry,
		metrics:   m,
		bills:     services.NewBillService(billRepo, cache, m),
		payments:  services.NewPaymentService(billRepo, cache, m),
		lifecycle: services.NewLifecycleService(billRepo, cache, m),
		reports:   services.NewReportService(reportRepo),
	}
	a.sweeper = background.NewOverdueSweeper(a.reports, m)

	if cfg.ArchiveEnabled {
		store, err := services.NewMinioObjectStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioUseSSL)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("initialize object storage: %w", err)
		}
		a.archiver = services.NewReportArchiver(a.reports, store, cfg.ReportBucket, m)
	} else {
		log.Info().Msg("GST report archive disabled")
	}

	return a, nil
}

func newBillCache(cfg *config.Config) caching.BillCache {
	if !cfg.CacheEnabled {
		log := logger.WithComponent("app")
		log.Info().Msg("Bill cache disabled")
		return caching.NoopBillCache{}
	}
	return caching.NewRedisBillCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.BillCacheTTL)
}

// archive returns the archiver as a scheduler dependency, keeping a disabled
// archiver a true nil interface.
func (a *app) archive() background.Archiver {
	if a.archiver == nil {
		return nil
	}
	return a.archiver
}

func (a *app) close() {
	a.pool.Close()
}
