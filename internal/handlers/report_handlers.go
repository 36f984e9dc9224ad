package handlers

import (
	"context"
	"net/http"
	"time"

	"billledger/internal/common"
	"billledger/internal/services"

	"github.com/labstack/echo/v4"
)

const archiveURLExpiry = 15 * time.Minute

// GSTArchive stores and serves monthly GST report snapshots
type GSTArchive interface {
	ArchiveMonth(ctx context.Context, year int, month time.Month) (*services.ArchivedReport, error)
	DownloadURL(ctx context.Context, year int, month time.Month, expiry time.Duration) (string, error)
}

// ReportHandlers handles the read-only ledger reports
type ReportHandlers struct {
	reportService services.ReportServiceInterface
	archive       GSTArchive
}

// NewReportHandlers creates report handlers; archive may be nil when object
// storage is not configured.
func NewReportHandlers(reportService services.ReportServiceInterface, archive GSTArchive) *ReportHandlers {
	return &ReportHandlers{
		reportService: reportService,
		archive:       archive,
	}
}

// GSTReport handles GET /reports/gst?from=&to=
func (h *ReportHandlers) GSTReport(c echo.Context) error {
	from, to, err := requiredDateRange(c)
	if err != nil {
		return common.SendError(c, err)
	}
	report, err := h.reportService.GSTReport(c.Request().Context(), from, to)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, report)
}

// OverdueBills handles GET /reports/overdue
func (h *ReportHandlers) OverdueBills(c echo.Context) error {
	bills, err := h.reportService.OverdueBills(c.Request().Context())
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"bills": bills,
		"count": len(bills),
	})
}

// MonthlyAnalytics handles GET /reports/monthly?year=
func (h *ReportHandlers) MonthlyAnalytics(c echo.Context) error {
	year, err := queryInt(c, "year", time.Now().UTC().Year())
	if err != nil {
		return common.SendError(c, err)
	}
	analytics, err := h.reportService.MonthlyAnalytics(c.Request().Context(), year)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, analytics)
}

// StatusBreakdown handles GET /reports/status
func (h *ReportHandlers) StatusBreakdown(c echo.Context) error {
	rows, err := h.reportService.StatusBreakdown(c.Request().Context())
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"breakdown": rows})
}

// VendorBreakdown handles GET /reports/vendors?from=&to=
func (h *ReportHandlers) VendorBreakdown(c echo.Context) error {
	from, to, err := requiredDateRange(c)
	if err != nil {
		return common.SendError(c, err)
	}
	rows, err := h.reportService.VendorBreakdown(c.Request().Context(), from, to)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"breakdown": rows})
}

func archiveMonth(c echo.Context) (int, time.Month, error) {
	year, err := queryInt(c, "year", 0)
	if err != nil {
		return 0, 0, err
	}
	if err := common.ValidateYear(year); err != nil {
		return 0, 0, err
	}
	month, err := queryInt(c, "month", 0)
	if err != nil {
		return 0, 0, err
	}
	if month < 1 || month > 12 {
		return 0, 0, common.FieldValidation("month", "month must be between 1 and 12")
	}
	return year, time.Month(month), nil
}

// ArchiveGSTReport handles POST /reports/gst/archive?year=&month=
func (h *ReportHandlers) ArchiveGSTReport(c echo.Context) error {
	if h.archive == nil {
		return c.JSON(http.StatusServiceUnavailable, common.CreateErrorResponse("UNAVAILABLE", "report archive is not configured", nil))
	}
	year, month, err := archiveMonth(c)
	if err != nil {
		return common.SendError(c, err)
	}
	archived, err := h.archive.ArchiveMonth(c.Request().Context(), year, month)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, archived)
}

// GSTArchiveURL handles GET /reports/gst/archive?year=&month=
func (h *ReportHandlers) GSTArchiveURL(c echo.Context) error {
	if h.archive == nil {
		return c.JSON(http.StatusServiceUnavailable, common.CreateErrorResponse("UNAVAILABLE", "report archive is not configured", nil))
	}
	year, month, err := archiveMonth(c)
	if err != nil {
		return common.SendError(c, err)
	}
	url, err := h.archive.DownloadURL(c.Request().Context(), year, month, archiveURLExpiry)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"object_name": services.GSTObjectName(year, month),
		"url":         url,
		"expires_in":  int(archiveURLExpiry.Seconds()),
	})
}
