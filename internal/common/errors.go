package common

import (
	"errors"
	"fmt"
)

// ErrorKind classifies ledger failures so transports can map them
type ErrorKind string

const (
	KindConflict     ErrorKind = "CONFLICT"
	KindNotFound     ErrorKind = "NOT_FOUND"
	KindInvalidState ErrorKind = "INVALID_STATE"
	KindValidation   ErrorKind = "VALIDATION_ERROR"
	KindInternal     ErrorKind = "SERVER_ERROR"
)

// Sentinels usable with errors.Is
var (
	ErrConflict     = &LedgerError{Kind: KindConflict}
	ErrNotFound     = &LedgerError{Kind: KindNotFound}
	ErrInvalidState = &LedgerError{Kind: KindInvalidState}
	ErrValidation   = &LedgerError{Kind: KindValidation}
)

// LedgerError is the single typed error returned by the ledger core
type LedgerError struct {
	Kind    ErrorKind
	Field   string
	Message string
	Err     error
}

func (e *LedgerError) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *LedgerError) Unwrap() error { return e.Err }

// Is matches on kind so errors.Is(err, ErrNotFound) works for any not-found error
func (e *LedgerError) Is(target error) bool {
	t, ok := target.(*LedgerError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

func Conflict(format string, args ...any) error {
	return &LedgerError{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return &LedgerError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func InvalidState(format string, args ...any) error {
	return &LedgerError{Kind: KindInvalidState, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) error {
	return &LedgerError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// FieldValidation reports a validation failure attributable to one input field
func FieldValidation(field, format string, args ...any) error {
	return &LedgerError{Kind: KindValidation, Field: field, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the ledger kind of err, or KindInternal for foreign errors
func KindOf(err error) ErrorKind {
	var le *LedgerError
	if errors.As(err, &le) {
		return le.Kind
	}
	return KindInternal
}

// SecureErrorMessage creates standardized error messages to prevent information leakage.
// Ledger errors pass through unchanged; they are meant for callers.
func SecureErrorMessage(operation string, err error) error {
	if err == nil {
		return nil
	}
	var le *LedgerError
	if errors.As(err, &le) {
		return err
	}
	return fmt.Errorf("failed to %s: %w", operation, err)
}
