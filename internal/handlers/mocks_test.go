package handlers

import (
	"context"
	"time"

	"billledger/internal/jobs/background"
	"billledger/internal/models"
	"billledger/internal/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockBillService struct {
	mock.Mock
}

func (m *MockBillService) CreateBill(ctx context.Context, req *models.CreateBillRequest) (*models.BillView, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BillView), args.Error(1)
}

func (m *MockBillService) GetBill(ctx context.Context, billID uuid.UUID) (*models.BillView, error) {
	args := m.Called(ctx, billID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BillView), args.Error(1)
}

func (m *MockBillService) ListBills(ctx context.Context, filter models.BillFilter) ([]*models.BillView, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BillView), args.Error(1)
}

func (m *MockBillService) UpdateBill(ctx context.Context, billID uuid.UUID, req *models.UpdateBillRequest) (*models.BillView, error) {
	args := m.Called(ctx, billID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BillView), args.Error(1)
}

func (m *MockBillService) DeleteBill(ctx context.Context, billID uuid.UUID) error {
	args := m.Called(ctx, billID)
	return args.Error(0)
}

func (m *MockBillService) DuplicateBill(ctx context.Context, billID uuid.UUID) (*models.BillView, error) {
	args := m.Called(ctx, billID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BillView), args.Error(1)
}

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) AddPayment(ctx context.Context, req *models.AddPaymentRequest) (*models.BillView, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BillView), args.Error(1)
}

func (m *MockPaymentService) ListPayments(ctx context.Context, billID uuid.UUID) ([]models.Payment, error) {
	args := m.Called(ctx, billID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Payment), args.Error(1)
}

type MockLifecycleService struct {
	mock.Mock
}

func (m *MockLifecycleService) Submit(ctx context.Context, billID uuid.UUID) (*models.BillView, error) {
	args := m.Called(ctx, billID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BillView), args.Error(1)
}

func (m *MockLifecycleService) Approve(ctx context.Context, billID uuid.UUID, approverID string) (*models.BillView, error) {
	args := m.Called(ctx, billID, approverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BillView), args.Error(1)
}

func (m *MockLifecycleService) Cancel(ctx context.Context, billID uuid.UUID) (*models.BillView, error) {
	args := m.Called(ctx, billID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BillView), args.Error(1)
}

func (m *MockLifecycleService) BulkApprove(ctx context.Context, billIDs []uuid.UUID, approverID string) (*models.BulkOperationResult, error) {
	args := m.Called(ctx, billIDs, approverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BulkOperationResult), args.Error(1)
}

func (m *MockLifecycleService) BulkCancel(ctx context.Context, billIDs []uuid.UUID) (*models.BulkOperationResult, error) {
	args := m.Called(ctx, billIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BulkOperationResult), args.Error(1)
}

type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) GSTReport(ctx context.Context, from, to time.Time) (*models.GSTReport, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GSTReport), args.Error(1)
}

func (m *MockReportService) OverdueBills(ctx context.Context) ([]models.OverdueBill, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.OverdueBill), args.Error(1)
}

func (m *MockReportService) MonthlyAnalytics(ctx context.Context, year int) (*models.MonthlyAnalytics, error) {
	args := m.Called(ctx, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MonthlyAnalytics), args.Error(1)
}

func (m *MockReportService) StatusBreakdown(ctx context.Context) ([]models.BreakdownRow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BreakdownRow), args.Error(1)
}

func (m *MockReportService) VendorBreakdown(ctx context.Context, from, to time.Time) ([]models.BreakdownRow, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BreakdownRow), args.Error(1)
}

type MockArchive struct {
	mock.Mock
}

func (m *MockArchive) ArchiveMonth(ctx context.Context, year int, month time.Month) (*services.ArchivedReport, error) {
	args := m.Called(ctx, year, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ArchivedReport), args.Error(1)
}

func (m *MockArchive) DownloadURL(ctx context.Context, year int, month time.Month, expiry time.Duration) (string, error) {
	args := m.Called(ctx, year, month, expiry)
	return args.String(0), args.Error(1)
}

type MockJobRunner struct {
	mock.Mock
}

func (m *MockJobRunner) GetJobStatus() []background.JobStatus {
	args := m.Called()
	return args.Get(0).([]background.JobStatus)
}

func (m *MockJobRunner) RunNow(name string) error {
	args := m.Called(name)
	return args.Error(0)
}

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error { return p.err }
