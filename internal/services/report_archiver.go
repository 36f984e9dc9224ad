package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"billledger/internal/logger"
	"billledger/internal/metrics"

	"github.com/rs/zerolog"
)

// ArchivedReport describes a stored GST report snapshot
type ArchivedReport struct {
	Bucket     string    `json:"bucket"`
	ObjectName string    `json:"object_name"`
	Rows       int       `json:"rows"`
	Size       int64     `json:"size"`
	ArchivedAt time.Time `json:"archived_at"`
}

// ReportArchiver writes monthly GST report snapshots to object storage
type ReportArchiver struct {
	reports ReportServiceInterface
	store   ObjectStore
	bucket  string
	metrics *metrics.Metrics
	log     zerolog.Logger
	now     func() time.Time
}

func NewReportArchiver(reports ReportServiceInterface, store ObjectStore, bucket string, m *metrics.Metrics) *ReportArchiver {
	if m == nil {
		m = metrics.NewNop()
	}
	return &ReportArchiver{
		reports: reports,
		store:   store,
		bucket:  bucket,
		metrics: m,
		log:     logger.WithComponent("archiver"),
		now:     time.Now,
	}
}

// GSTObjectName is the object key for a month's snapshot: gst/<yyyy>-<mm>.json
func GSTObjectName(year int, month time.Month) string {
	return fmt.Sprintf("gst/%04d-%02d.json", year, int(month))
}

// ArchiveMonth stores the GST report covering every day of the given month.
// Re-archiving a month overwrites the previous snapshot.
func (a *ReportArchiver) ArchiveMonth(ctx context.Context, year int, month time.Month) (*ArchivedReport, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)

	report, err := a.reports.GSTReport(ctx, from, to)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode gst report: %w", err)
	}

	if err := a.store.EnsureBucketExists(ctx, a.bucket); err != nil {
		return nil, fmt.Errorf("ensure bucket %s: %w", a.bucket, err)
	}
	name := GSTObjectName(year, month)
	if err := a.store.PutObject(ctx, a.bucket, name, bytes.NewReader(data), int64(len(data)), "application/json"); err != nil {
		return nil, fmt.Errorf("upload %s: %w", name, err)
	}

	a.metrics.ReportsArchived.Inc()
	a.log.Info().Str("bucket", a.bucket).Str("object", name).Int("rows", len(report.Rows)).Msg("GST report archived")
	return &ArchivedReport{
		Bucket:     a.bucket,
		ObjectName: name,
		Rows:       len(report.Rows),
		Size:       int64(len(data)),
		ArchivedAt: a.now(),
	}, nil
}

// ArchivePreviousMonth archives the calendar month before now
func (a *ReportArchiver) ArchivePreviousMonth(ctx context.Context) (*ArchivedReport, error) {
	first := time.Date(a.now().UTC().Year(), a.now().UTC().Month(), 1, 0, 0, 0, 0, time.UTC)
	prev := first.AddDate(0, -1, 0)
	return a.ArchiveMonth(ctx, prev.Year(), prev.Month())
}

// DownloadURL returns a time-limited link to an archived month
func (a *ReportArchiver) DownloadURL(ctx context.Context, year int, month time.Month, expiry time.Duration) (string, error) {
	return a.store.GetPresignedURL(ctx, a.bucket, GSTObjectName(year, month), expiry)
}
