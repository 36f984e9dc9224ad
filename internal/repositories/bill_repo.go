package repositories

import (
	"context"
	"fmt"
	"strings"

	"billledger/internal/common"
	"billledger/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// BillRepository is the ledger store. Bills own their line items (removed
// with the bill, explicitly) and their payments (never removed; a bill with
// payments cannot be deleted).
type BillRepository interface {
	// InTx runs fn against a repository bound to a single transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	InTx(ctx context.Context, fn func(repo BillRepository) error) error

	// Create inserts the bill row and all of its line items atomically
	Create(ctx context.Context, bill *models.Bill) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Bill, error)
	// GetForUpdate loads a bill and holds its row lock until the surrounding
	// transaction ends. Callers must be inside InTx.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Bill, error)
	ExistsByNumber(ctx context.Context, billNumber string) (bool, error)
	Update(ctx context.Context, bill *models.Bill) error
	ReplaceLineItems(ctx context.Context, billID uuid.UUID, items []models.LineItem) error
	Delete(ctx context.Context, id uuid.UUID) error
	AddPayment(ctx context.Context, payment *models.Payment) error
	List(ctx context.Context, filter models.BillFilter) ([]models.BillListRow, error)
}

type billRepo struct {
	db Database
}

func NewBillRepo(db Database) BillRepository {
	return &billRepo{db: db}
}

const billColumns = `id, bill_number, bill_type, party_name, party_tax_id, party_email, party_phone,
		party_street, party_city, party_state, party_pincode, party_country,
		bill_date, due_date, reference_number,
		subtotal, cgst_amount, sgst_amount, igst_amount, cess_amount, discount_amount, tds_amount, total_amount,
		status, approved_by, approved_at, created_at, updated_at`

func scanBill(row pgx.Row, extra ...any) (*models.Bill, error) {
	b := &models.Bill{}
	p := &b.Counterparty
	dest := []any{&b.ID, &b.BillNumber, &b.BillType, &p.Name, &p.TaxID, &p.Email, &p.Phone,
		&p.Address.Street, &p.Address.City, &p.Address.State, &p.Address.Pincode, &p.Address.Country,
		&b.BillDate, &b.DueDate, &b.ReferenceNumber,
		&b.Subtotal, &b.CGSTAmount, &b.SGSTAmount, &b.IGSTAmount, &b.CESSAmount, &b.DiscountAmount, &b.TDSAmount, &b.TotalAmount,
		&b.Status, &b.ApprovedBy, &b.ApprovedAt, &b.CreatedAt, &b.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *billRepo) InTx(ctx context.Context, fn func(repo BillRepository) error) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(&billRepo{db: tx})
	})
}

func (r *billRepo) Create(ctx context.Context, bill *models.Bill) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		p := bill.Counterparty
		query := `
		INSERT INTO bills (` + billColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, NOW(), NOW())
	`
		_, err := tx.Exec(ctx, query, bill.ID, bill.BillNumber, bill.BillType, p.Name, p.TaxID, p.Email, p.Phone,
			p.Address.Street, p.Address.City, p.Address.State, p.Address.Pincode, p.Address.Country,
			bill.BillDate, bill.DueDate, bill.ReferenceNumber,
			bill.Subtotal, bill.CGSTAmount, bill.SGSTAmount, bill.IGSTAmount, bill.CESSAmount, bill.DiscountAmount, bill.TDSAmount, bill.TotalAmount,
			bill.Status, bill.ApprovedBy, bill.ApprovedAt)
		if err != nil {
			if isUniqueViolation(err, "bills_bill_number_key") {
				return common.Conflict("bill number %s already exists", bill.BillNumber)
			}
			return fmt.Errorf("insert bill: %w", err)
		}
		return insertLineItems(ctx, tx, bill.ID, bill.LineItems)
	})
}

const insertLineItemQuery = `
		INSERT INTO bill_line_items (id, bill_id, position, description, hsn_code, quantity, unit, rate, gst_rate, amount, cgst, sgst, igst, cess, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

func insertLineItems(ctx context.Context, db Database, billID uuid.UUID, items []models.LineItem) error {
	for i := range items {
		item := &items[i]
		item.BillID = billID
		item.Position = i + 1
		_, err := db.Exec(ctx, insertLineItemQuery, item.ID, item.BillID, item.Position, item.Description, item.HSNCode,
			item.Quantity, item.Unit, item.Rate, item.GSTRate, item.Amount, item.CGST, item.SGST, item.IGST, item.CESS, item.Total)
		if err != nil {
			return fmt.Errorf("insert line item %d: %w", item.Position, err)
		}
	}
	return nil
}

func (r *billRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Bill, error) {
	query := `
		SELECT ` + billColumns + `
		FROM bills
		WHERE id = $1
	`
	return r.load(ctx, query, id)
}

func (r *billRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Bill, error) {
	query := `
		SELECT ` + billColumns + `
		FROM bills
		WHERE id = $1
		FOR UPDATE
	`
	return r.load(ctx, query, id)
}

func (r *billRepo) load(ctx context.Context, query string, id uuid.UUID) (*models.Bill, error) {
	bill, err := scanBill(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "bill %s not found", id)
	}
	if bill.LineItems, err = r.lineItems(ctx, id); err != nil {
		return nil, err
	}
	if bill.Payments, err = r.payments(ctx, id); err != nil {
		return nil, err
	}
	return bill, nil
}

func (r *billRepo) lineItems(ctx context.Context, billID uuid.UUID) ([]models.LineItem, error) {
	query := `
		SELECT id, bill_id, position, description, hsn_code, quantity, unit, rate, gst_rate, amount, cgst, sgst, igst, cess, total
		FROM bill_line_items
		WHERE bill_id = $1
		ORDER BY position ASC
	`
	rows, err := r.db.Query(ctx, query, billID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.LineItem{}
	for rows.Next() {
		var item models.LineItem
		if err := rows.Scan(&item.ID, &item.BillID, &item.Position, &item.Description, &item.HSNCode, &item.Quantity, &item.Unit,
			&item.Rate, &item.GSTRate, &item.Amount, &item.CGST, &item.SGST, &item.IGST, &item.CESS, &item.Total); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *billRepo) payments(ctx context.Context, billID uuid.UUID) ([]models.Payment, error) {
	query := `
		SELECT id, bill_id, payment_reference, paid_amount, payment_date, payment_method, transaction_id, notes, created_at
		FROM bill_payments
		WHERE bill_id = $1
		ORDER BY payment_date ASC, created_at ASC
	`
	rows, err := r.db.Query(ctx, query, billID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := []models.Payment{}
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.ID, &p.BillID, &p.PaymentReference, &p.PaidAmount, &p.PaymentDate, &p.PaymentMethod,
			&p.TransactionID, &p.Notes, &p.CreatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *billRepo) ExistsByNumber(ctx context.Context, billNumber string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM bills WHERE bill_number = $1)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, billNumber).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *billRepo) Update(ctx context.Context, bill *models.Bill) error {
	p := bill.Counterparty
	query := `
		UPDATE bills
		SET bill_type = $1, party_name = $2, party_tax_id = $3, party_email = $4, party_phone = $5,
			party_street = $6, party_city = $7, party_state = $8, party_pincode = $9, party_country = $10,
			bill_date = $11, due_date = $12, reference_number = $13,
			subtotal = $14, cgst_amount = $15, sgst_amount = $16, igst_amount = $17, cess_amount = $18,
			discount_amount = $19, tds_amount = $20, total_amount = $21,
			status = $22, approved_by = $23, approved_at = $24, updated_at = NOW()
		WHERE id = $25
	`
	tag, err := r.db.Exec(ctx, query, bill.BillType, p.Name, p.TaxID, p.Email, p.Phone,
		p.Address.Street, p.Address.City, p.Address.State, p.Address.Pincode, p.Address.Country,
		bill.BillDate, bill.DueDate, bill.ReferenceNumber,
		bill.Subtotal, bill.CGSTAmount, bill.SGSTAmount, bill.IGSTAmount, bill.CESSAmount,
		bill.DiscountAmount, bill.TDSAmount, bill.TotalAmount,
		bill.Status, bill.ApprovedBy, bill.ApprovedAt, bill.ID)
	if err != nil {
		return fmt.Errorf("update bill: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.NotFound("bill %s not found", bill.ID)
	}
	return nil
}

// ReplaceLineItems drops the bill's current line items and inserts items in
// their place. Callers must be inside InTx.
func (r *billRepo) ReplaceLineItems(ctx context.Context, billID uuid.UUID, items []models.LineItem) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM bill_line_items WHERE bill_id = $1`, billID); err != nil {
		return fmt.Errorf("delete line items: %w", err)
	}
	return insertLineItems(ctx, r.db, billID, items)
}

// Delete removes a bill and the line items it owns. Payments are never
// removed; a bill that has any is rejected.
func (r *billRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		var payments int
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM bill_payments WHERE bill_id = $1`, id).Scan(&payments); err != nil {
			return err
		}
		if payments > 0 {
			return common.InvalidState("bill %s has %d payments and cannot be deleted", id, payments)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM bill_line_items WHERE bill_id = $1`, id); err != nil {
			return fmt.Errorf("delete line items: %w", err)
		}
		tag, err := tx.Exec(ctx, `DELETE FROM bills WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete bill: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return common.NotFound("bill %s not found", id)
		}
		return nil
	})
}

func (r *billRepo) AddPayment(ctx context.Context, payment *models.Payment) error {
	query := `
		INSERT INTO bill_payments (id, bill_id, payment_reference, paid_amount, payment_date, payment_method, transaction_id, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	`
	_, err := r.db.Exec(ctx, query, payment.ID, payment.BillID, payment.PaymentReference, payment.PaidAmount,
		payment.PaymentDate, payment.PaymentMethod, payment.TransactionID, payment.Notes)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// List returns bill headers with their payment totals, without line items or
// payments.
func (r *billRepo) List(ctx context.Context, filter models.BillFilter) ([]models.BillListRow, error) {
	var conditions []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if filter.Status != nil {
		add("status = $%d", *filter.Status)
	}
	if filter.BillType != nil {
		add("bill_type = $%d", *filter.BillType)
	}
	if filter.Counterparty != "" {
		add("party_name ILIKE $%d", "%"+filter.Counterparty+"%")
	}
	if filter.FromDate != nil {
		add("bill_date >= $%d", *filter.FromDate)
	}
	if filter.ToDate != nil {
		add("bill_date <= $%d", *filter.ToDate)
	}

	query := `
		SELECT ` + billColumns + `,
			COALESCE((SELECT SUM(p.paid_amount) FROM bill_payments p WHERE p.bill_id = bills.id), 0) AS amount_paid
		FROM bills`
	if len(conditions) > 0 {
		query += `
		WHERE ` + strings.Join(conditions, " AND ")
	}
	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(`
		ORDER BY bill_date DESC, bill_number ASC
		LIMIT $%d OFFSET $%d
	`, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []models.BillListRow{}
	for rows.Next() {
		var row models.BillListRow
		bill, err := scanBill(rows, &row.AmountPaid)
		if err != nil {
			return nil, err
		}
		row.Bill = bill
		result = append(result, row)
	}
	return result, rows.Err()
}
