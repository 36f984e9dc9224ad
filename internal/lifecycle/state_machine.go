// Package lifecycle is the only place bill status transitions are decided.
//
//	draft ──submit──▶ pending ──approve──▶ approved
//	  │                  │                    │
//	  └──────payment─────┴──────payment───────┴──▶ partially_paid ──payment──▶ paid
//
// cancel is accepted from any non-terminal status. overdue is derived at read
// time and never produced here.
package lifecycle

import (
	"billledger/internal/common"
	"billledger/internal/models"

	"github.com/shopspring/decimal"
)

// Event is something that may move a bill to a new status
type Event string

const (
	EventSubmit         Event = "submit"
	EventApprove        Event = "approve"
	EventPartialPayment Event = "partial_payment"
	EventFullPayment    Event = "full_payment"
	EventCancel         Event = "cancel"
)

type key struct {
	from  models.BillStatus
	event Event
}

var transitions = map[key]models.BillStatus{
	{models.BillStatusDraft, EventSubmit}:    models.BillStatusPending,
	{models.BillStatusPending, EventApprove}: models.BillStatusApproved,

	{models.BillStatusDraft, EventPartialPayment}:         models.BillStatusPartiallyPaid,
	{models.BillStatusPending, EventPartialPayment}:       models.BillStatusPartiallyPaid,
	{models.BillStatusApproved, EventPartialPayment}:      models.BillStatusPartiallyPaid,
	{models.BillStatusPartiallyPaid, EventPartialPayment}: models.BillStatusPartiallyPaid,

	{models.BillStatusDraft, EventFullPayment}:         models.BillStatusPaid,
	{models.BillStatusPending, EventFullPayment}:       models.BillStatusPaid,
	{models.BillStatusApproved, EventFullPayment}:      models.BillStatusPaid,
	{models.BillStatusPartiallyPaid, EventFullPayment}: models.BillStatusPaid,

	{models.BillStatusDraft, EventCancel}:         models.BillStatusCancelled,
	{models.BillStatusPending, EventCancel}:       models.BillStatusCancelled,
	{models.BillStatusApproved, EventCancel}:      models.BillStatusCancelled,
	{models.BillStatusPartiallyPaid, EventCancel}: models.BillStatusCancelled,
}

// Transition returns the status reached by applying ev to current, or an
// InvalidState error when the pair is not allowed.
func Transition(current models.BillStatus, ev Event) (models.BillStatus, error) {
	next, ok := transitions[key{current, ev}]
	if !ok {
		return current, common.InvalidState("cannot %s a bill in status %s", ev, current)
	}
	return next, nil
}

// PaymentEvent picks the payment event matching cumulative payments against
// the bill total. It returns false when nothing has been paid.
func PaymentEvent(paid, total decimal.Decimal) (Event, bool) {
	if !paid.IsPositive() {
		return "", false
	}
	if paid.GreaterThanOrEqual(total) {
		return EventFullPayment, true
	}
	return EventPartialPayment, true
}

// CanEdit reports whether header fields or line items may change
func CanEdit(status models.BillStatus) error {
	if status.Terminal() {
		return common.InvalidState("cannot update a bill in status %s", status)
	}
	return nil
}

// CanDelete reports whether the bill may be hard-deleted. Only bills without
// financial commitments qualify.
func CanDelete(status models.BillStatus) error {
	switch status {
	case models.BillStatusDraft, models.BillStatusPending:
		return nil
	}
	return common.InvalidState("cannot delete a bill in status %s", status)
}

// CanAcceptPayment reports whether payments may be recorded at all; the
// overpayment check is separate.
func CanAcceptPayment(status models.BillStatus) error {
	if status == models.BillStatusCancelled {
		return common.InvalidState("cannot record a payment against a cancelled bill")
	}
	return nil
}

// InitialStatus validates a caller requested creation status
func InitialStatus(requested *models.BillStatus) (models.BillStatus, error) {
	if requested == nil || *requested == "" {
		return models.BillStatusDraft, nil
	}
	switch *requested {
	case models.BillStatusDraft, models.BillStatusPending:
		return *requested, nil
	}
	return "", common.FieldValidation("initial_status", "initial status must be draft or pending, got %s", *requested)
}
