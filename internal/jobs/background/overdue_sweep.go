package background

import (
	"context"

	"billledger/internal/logger"
	"billledger/internal/metrics"
	"billledger/internal/services"

	"github.com/rs/zerolog"
)

// OverdueSweeper logs a payment reminder for every overdue bill. Delivery of
// reminders is left to whatever consumes the log stream.
type OverdueSweeper struct {
	reports services.ReportServiceInterface
	metrics *metrics.Metrics
	log     zerolog.Logger
}

func NewOverdueSweeper(reports services.ReportServiceInterface, m *metrics.Metrics) *OverdueSweeper {
	if m == nil {
		m = metrics.NewNop()
	}
	return &OverdueSweeper{
		reports: reports,
		metrics: m,
		log:     logger.WithComponent("overdue-sweep"),
	}
}

// Run returns the number of overdue bills found
func (s *OverdueSweeper) Run(ctx context.Context) (int, error) {
	bills, err := s.reports.OverdueBills(ctx)
	if err != nil {
		return 0, err
	}

	for _, b := range bills {
		s.log.Warn().
			Str("bill_id", b.BillID.String()).
			Str("bill_number", b.BillNumber).
			Str("counterparty", b.CounterpartyName).
			Str("balance_due", b.BalanceDue.StringFixed(2)).
			Int("days_overdue", b.DaysOverdue).
			Msg("Payment reminder: bill overdue")
	}
	s.metrics.OverdueBills.Set(float64(len(bills)))
	s.log.Info().Int("overdue", len(bills)).Msg("Overdue sweep completed")
	return len(bills), nil
}
