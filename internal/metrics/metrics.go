package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "billledger"

// Metrics groups the ledger's Prometheus collectors
type Metrics struct {
	BillsCreated     prometheus.Counter
	PaymentsRecorded prometheus.Counter
	AmountCollected  prometheus.Counter
	Transitions      *prometheus.CounterVec
	Rejections       *prometheus.CounterVec
	OverdueBills     prometheus.Gauge
	ReportsArchived  prometheus.Counter
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
}

// New registers all collectors with reg
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		BillsCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bills_created_total",
			Help:      "Bills created, including duplicates.",
		}),
		PaymentsRecorded: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_recorded_total",
			Help:      "Payments accepted against bills.",
		}),
		AmountCollected: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_amount_total",
			Help:      "Sum of accepted payment amounts.",
		}),
		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_transitions_total",
			Help:      "Bill status transitions by resulting status.",
		}, []string{"to"}),
		Rejections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_rejections_total",
			Help:      "Rejected ledger operations by operation and error kind.",
		}, []string{"operation", "kind"}),
		OverdueBills: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "overdue_bills",
			Help:      "Overdue bills found by the last reminder sweep.",
		}),
		ReportsArchived: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gst_reports_archived_total",
			Help:      "GST report snapshots written to object storage.",
		}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "code"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// NewNop returns collectors bound to a throwaway registry, for tests and
// one-shot commands.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
