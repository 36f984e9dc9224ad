package handlers

import (
	"time"

	"billledger/internal/metrics"
	"billledger/internal/middleware"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router bundles everything NewRouter mounts. Jobs may be nil for processes
// that do not run the scheduler.
type Router struct {
	Bills          *BillHandlers
	Lifecycle      *LifecycleHandlers
	Reports        *ReportHandlers
	Health         *HealthHandlers
	Jobs           *JobHandlers
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	RequestTimeout time.Duration
}

// NewRouter builds the echo instance with global middleware and all routes
func NewRouter(r Router) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echoMiddleware.RequestID())
	e.Use(middleware.RequestLogger())
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.Metrics(r.Metrics))
	e.Use(echoMiddleware.CORS())
	e.Pre(echoMiddleware.RemoveTrailingSlash())

	versionMiddleware := middleware.NewVersionMiddleware()
	e.Use(versionMiddleware.APIVersionResolver())

	// Health and metrics endpoints
	e.GET("/health", r.Health.HealthCheck)
	e.GET("/health/ready", r.Health.ReadinessCheck)
	e.GET("/health/live", r.Health.LivenessCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(r.Gatherer, promhttp.HandlerOpts{})))

	v1 := e.Group("/v1")
	v1.Use(versionMiddleware.VersionHeader("v1"))
	if r.RequestTimeout > 0 {
		v1.Use(echoMiddleware.ContextTimeoutWithConfig(echoMiddleware.ContextTimeoutConfig{
			Timeout: r.RequestTimeout,
		}))
	}

	// Bill routes
	v1.POST("/bills", r.Bills.CreateBill)
	v1.GET("/bills", r.Bills.ListBills)
	v1.GET("/bills/:id", r.Bills.GetBill)
	v1.PATCH("/bills/:id", r.Bills.UpdateBill)
	v1.DELETE("/bills/:id", r.Bills.DeleteBill)
	v1.POST("/bills/:id/duplicate", r.Bills.DuplicateBill)
	v1.POST("/bills/:id/payments", r.Bills.AddPayment)
	v1.GET("/bills/:id/payments", r.Bills.ListPayments)

	// Lifecycle routes
	v1.POST("/bills/:id/submit", r.Lifecycle.Submit)
	v1.POST("/bills/:id/approve", r.Lifecycle.Approve)
	v1.POST("/bills/:id/cancel", r.Lifecycle.Cancel)
	v1.POST("/bills/bulk/approve", r.Lifecycle.BulkApprove)
	v1.POST("/bills/bulk/cancel", r.Lifecycle.BulkCancel)

	// Report routes
	v1.GET("/reports/gst", r.Reports.GSTReport)
	v1.POST("/reports/gst/archive", r.Reports.ArchiveGSTReport)
	v1.GET("/reports/gst/archive", r.Reports.GSTArchiveURL)
	v1.GET("/reports/overdue", r.Reports.OverdueBills)
	v1.GET("/reports/monthly", r.Reports.MonthlyAnalytics)
	v1.GET("/reports/status", r.Reports.StatusBreakdown)
	v1.GET("/reports/vendors", r.Reports.VendorBreakdown)

	if r.Jobs != nil {
		v1.GET("/jobs", r.Jobs.ListJobs)
		v1.POST("/jobs/:name/run", r.Jobs.RunJob)
	}

	return e
}
