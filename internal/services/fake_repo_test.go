package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"billledger/internal/common"
	"billledger/internal/models"
	"billledger/internal/repositories"

	"github.com/google/uuid"
)

// memStore is an in-memory ledger. InTx holds mu for the whole transaction,
// which gives the same per-bill serialization a row lock does, and restores a
// snapshot when the transaction function fails.
type memStore struct {
	mu    sync.Mutex
	bills map[uuid.UUID]*models.Bill
	// failNext makes the next call of the named method fail
	failNext map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		bills:    make(map[uuid.UUID]*models.Bill),
		failNext: make(map[string]error),
	}
}

type memRepo struct {
	store *memStore
	inTx  bool
}

var _ repositories.BillRepository = (*memRepo)(nil)

func newMemRepo() *memRepo {
	return &memRepo{store: newMemStore()}
}

func (r *memRepo) lock() func() {
	if r.inTx {
		return func() {}
	}
	r.store.mu.Lock()
	return r.store.mu.Unlock
}

func (r *memRepo) injected(method string) error {
	if err, ok := r.store.failNext[method]; ok {
		delete(r.store.failNext, method)
		return err
	}
	return nil
}

func cloneBill(b *models.Bill) *models.Bill {
	c := *b
	c.LineItems = append([]models.LineItem{}, b.LineItems...)
	c.Payments = append([]models.Payment{}, b.Payments...)
	return &c
}

func (r *memRepo) InTx(ctx context.Context, fn func(repo repositories.BillRepository) error) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	snapshot := make(map[uuid.UUID]*models.Bill, len(r.store.bills))
	for id, b := range r.store.bills {
		snapshot[id] = cloneBill(b)
	}
	if err := fn(&memRepo{store: r.store, inTx: true}); err != nil {
		r.store.bills = snapshot
		return err
	}
	return nil
}

func (r *memRepo) Create(ctx context.Context, bill *models.Bill) error {
	defer r.lock()()
	if err := r.injected("Create"); err != nil {
		return err
	}
	for _, b := range r.store.bills {
		if b.BillNumber == bill.BillNumber {
			return common.Conflict("bill number %s already exists", bill.BillNumber)
		}
	}
	for i := range bill.LineItems {
		bill.LineItems[i].BillID = bill.ID
		bill.LineItems[i].Position = i + 1
	}
	r.store.bills[bill.ID] = cloneBill(bill)
	return nil
}

func (r *memRepo) get(id uuid.UUID) (*models.Bill, error) {
	b, ok := r.store.bills[id]
	if !ok {
		return nil, common.NotFound("bill %s not found", id)
	}
	return cloneBill(b), nil
}

func (r *memRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Bill, error) {
	defer r.lock()()
	if err := r.injected("GetByID"); err != nil {
		return nil, err
	}
	return r.get(id)
}

func (r *memRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Bill, error) {
	defer r.lock()()
	return r.get(id)
}

func (r *memRepo) ExistsByNumber(ctx context.Context, billNumber string) (bool, error) {
	defer r.lock()()
	for _, b := range r.store.bills {
		if b.BillNumber == billNumber {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRepo) Update(ctx context.Context, bill *models.Bill) error {
	defer r.lock()()
	if err := r.injected("Update"); err != nil {
		return err
	}
	stored, ok := r.store.bills[bill.ID]
	if !ok {
		return common.NotFound("bill %s not found", bill.ID)
	}
	updated := cloneBill(bill)
	updated.LineItems = stored.LineItems
	updated.Payments = stored.Payments
	r.store.bills[bill.ID] = updated
	return nil
}

func (r *memRepo) ReplaceLineItems(ctx context.Context, billID uuid.UUID, items []models.LineItem) error {
	defer r.lock()()
	stored, ok := r.store.bills[billID]
	if !ok {
		return common.NotFound("bill %s not found", billID)
	}
	for i := range items {
		items[i].BillID = billID
		items[i].Position = i + 1
	}
	stored.LineItems = append([]models.LineItem{}, items...)
	return nil
}

func (r *memRepo) Delete(ctx context.Context, id uuid.UUID) error {
	defer r.lock()()
	stored, ok := r.store.bills[id]
	if !ok {
		return common.NotFound("bill %s not found", id)
	}
	if len(stored.Payments) > 0 {
		return common.InvalidState("bill %s has payments", id)
	}
	delete(r.store.bills, id)
	return nil
}

func (r *memRepo) AddPayment(ctx context.Context, payment *models.Payment) error {
	defer r.lock()()
	if err := r.injected("AddPayment"); err != nil {
		return err
	}
	stored, ok := r.store.bills[payment.BillID]
	if !ok {
		return common.NotFound("bill %s not found", payment.BillID)
	}
	stored.Payments = append(stored.Payments, *payment)
	return nil
}

func (r *memRepo) List(ctx context.Context, filter models.BillFilter) ([]models.BillListRow, error) {
	defer r.lock()()
	rows := []models.BillListRow{}
	for _, b := range r.store.bills {
		if filter.Status != nil && b.Status != *filter.Status {
			continue
		}
		if filter.BillType != nil && b.BillType != *filter.BillType {
			continue
		}
		header := cloneBill(b)
		header.LineItems, header.Payments = nil, nil
		rows = append(rows, models.BillListRow{Bill: header, AmountPaid: b.AmountPaid()})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Bill.BillNumber < rows[j].Bill.BillNumber })
	if filter.Offset >= len(rows) {
		return []models.BillListRow{}, nil
	}
	rows = rows[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(rows) {
		rows = rows[:filter.Limit]
	}
	return rows, nil
}

// stored reads a bill straight from the store, bypassing services
func (r *memRepo) stored(id uuid.UUID) *models.Bill {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	b, ok := r.store.bills[id]
	if !ok {
		return nil
	}
	return cloneBill(b)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
