package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"billledger/internal/common"
	"billledger/internal/models"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createBill(t *testing.T, l *ledger, number string) *models.BillView {
	t.Helper()
	view, err := l.bills.CreateBill(context.Background(), createRequest(number))
	require.NoError(t, err)
	return view
}

func TestAddPayment_FullPaymentMarksPaid(t *testing.T) {
	l := newLedger()
	ctx := context.Background()
	bill := createBill(t, l, "PB-PAY-1")

	view, err := l.pay(ctx, bill.ID, "236")
	require.NoError(t, err)
	assert.Equal(t, models.BillStatusPaid, view.Status)
	assertDecimal(t, "0", view.BalanceDue, "balance")
	require.Len(t, view.Payments, 1)

	_, err = l.pay(ctx, bill.ID, "0.01")
	assertKind(t, common.KindValidation, err)

	stored := l.repo.stored(bill.ID)
	assert.Len(t, stored.Payments, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(l.metrics.PaymentsRecorded))
	assert.Equal(t, 236.0, testutil.ToFloat64(l.metrics.AmountCollected))
}

func TestAddPayment_PartialPayment(t *testing.T) {
	l := newLedger()
	ctx := context.Background()
	bill := createBill(t, l, "PB-PAY-2")

	view, err := l.pay(ctx, bill.ID, "100")
	require.NoError(t, err)
	assert.Equal(t, models.BillStatusPartiallyPaid, view.Status)
	assertDecimal(t, "136", view.BalanceDue, "balance")
	assertDecimal(t, "100", view.AmountPaid, "paid")

	view, err = l.pay(ctx, bill.ID, "136")
	require.NoError(t, err)
	assert.Equal(t, models.BillStatusPaid, view.Status)
	assert.Len(t, view.Payments, 2)
}

func TestAddPayment_FromApproved(t *testing.T) {
	l := newLedger()
	ctx := context.Background()
	bill := createBill(t, l, "PB-PAY-3")
	_, err := l.lifecycle.Submit(ctx, bill.ID)
	require.NoError(t, err)
	_, err = l.lifecycle.Approve(ctx, bill.ID, "cfo")
	require.NoError(t, err)

	view, err := l.pay(ctx, bill.ID, "50")
	require.NoError(t, err)
	assert.Equal(t, models.BillStatusPartiallyPaid, view.Status)
	assert.Equal(t, "cfo", *view.ApprovedBy)
}

func TestAddPayment_OverpaymentRejected(t *testing.T) {
	l := newLedger()
	bill := createBill(t, l, "PB-PAY-4")

	_, err := l.pay(context.Background(), bill.ID, "236.01")
	assertKind(t, common.KindValidation, err)

	stored := l.repo.stored(bill.ID)
	assert.Empty(t, stored.Payments)
	assert.Equal(t, models.BillStatusDraft, stored.Status)
}

func TestAddPayment_ZeroTotalBillTakesNoPayment(t *testing.T) {
	l := newLedger()
	ctx := context.Background()
	req := createRequest("PB-PAY-FREE")
	req.LineItems[0].Rate = dec("0")
	bill, err := l.bills.CreateBill(ctx, req)
	require.NoError(t, err)
	assertDecimal(t, "0", bill.TotalAmount, "total")

	_, err = l.pay(ctx, bill.ID, "0.01")
	assertKind(t, common.KindValidation, err)

	// long past its due date, yet nothing is owed
	l.setNow(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	_, err = l.lifecycle.Submit(ctx, bill.ID)
	require.NoError(t, err)
	view, err := l.bills.GetBill(ctx, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BillStatusPending, view.EffectiveStatus)
	assertDecimal(t, "0", view.BalanceDue, "balance")
}

func TestAddPayment_CancelledBillRejected(t *testing.T) {
	l := newLedger()
	ctx := context.Background()
	bill := createBill(t, l, "PB-PAY-5")
	_, err := l.lifecycle.Cancel(ctx, bill.ID)
	require.NoError(t, err)

	_, err = l.pay(ctx, bill.ID, "10")
	assertKind(t, common.KindInvalidState, err)
}

func TestAddPayment_UnknownBill(t *testing.T) {
	l := newLedger()
	_, err := l.pay(context.Background(), uuid.New(), "10")
	assertKind(t, common.KindNotFound, err)
}

func TestAddPayment_Validation(t *testing.T) {
	l := newLedger()
	bill := createBill(t, l, "PB-PAY-6")
	valid := func() *models.AddPaymentRequest {
		return &models.AddPaymentRequest{
			BillID:           bill.ID,
			PaymentReference: "CHQ-000123",
			PaidAmount:       dec("10"),
			PaymentDate:      testNow,
			PaymentMethod:    models.PaymentMethodCheque,
		}
	}

	tests := map[string]func(*models.AddPaymentRequest){
		"zero amount":      func(r *models.AddPaymentRequest) { r.PaidAmount = decimal.Zero },
		"negative amount":  func(r *models.AddPaymentRequest) { r.PaidAmount = dec("-5") },
		"sub-paisa amount": func(r *models.AddPaymentRequest) { r.PaidAmount = dec("10.005") },
		"missing method":   func(r *models.AddPaymentRequest) { r.PaymentMethod = "" },
		"unknown method":   func(r *models.AddPaymentRequest) { r.PaymentMethod = "barter" },
		"missing ref":      func(r *models.AddPaymentRequest) { r.PaymentReference = "" },
		"missing date":     func(r *models.AddPaymentRequest) { r.PaymentDate = time.Time{} },
		"missing bill id":  func(r *models.AddPaymentRequest) { r.BillID = uuid.Nil },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			req := valid()
			mutate(req)
			_, err := l.payments.AddPayment(context.Background(), req)
			assertKind(t, common.KindValidation, err)
		})
	}

	_, err := l.payments.AddPayment(context.Background(), nil)
	assertKind(t, common.KindValidation, err)
	assert.Empty(t, l.repo.stored(bill.ID).Payments)
}

func TestAddPayment_StorageFailureRollsBack(t *testing.T) {
	l := newLedger()
	bill := createBill(t, l, "PB-PAY-7")
	l.repo.store.failNext["Update"] = assert.AnError

	_, err := l.pay(context.Background(), bill.ID, "100")
	assertKind(t, common.KindInternal, err)

	stored := l.repo.stored(bill.ID)
	assert.Empty(t, stored.Payments)
	assert.Equal(t, models.BillStatusDraft, stored.Status)
}

func TestAddPayment_ConcurrentPaymentsNeverOverpay(t *testing.T) {
	l := newLedger()
	bill := createBill(t, l, "PB-PAY-8")

	const workers = 12
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
		rejected int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.pay(context.Background(), bill.ID, "50")
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				assert.Equal(t, common.KindValidation, common.KindOf(err))
				rejected++
				return
			}
			accepted++
		}()
	}
	wg.Wait()

	// 4 x 50 fits in 236, a fifth would not
	assert.Equal(t, 4, accepted)
	assert.Equal(t, workers-4, rejected)

	stored := l.repo.stored(bill.ID)
	assertDecimal(t, "200", stored.AmountPaid(), "paid")
	assert.True(t, stored.AmountPaid().LessThanOrEqual(stored.TotalAmount))
	assert.Equal(t, models.BillStatusPartiallyPaid, stored.Status)
}

func TestListPayments(t *testing.T) {
	l := newLedger()
	ctx := context.Background()
	bill := createBill(t, l, "PB-PAY-9")
	_, err := l.pay(ctx, bill.ID, "36")
	require.NoError(t, err)

	payments, err := l.payments.ListPayments(ctx, bill.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, "UTR-36", payments[0].PaymentReference)
}
