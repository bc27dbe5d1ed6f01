package apperrors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrConflict indicates the operation conflicts with the current state of the resource.
var ErrConflict = errors.New("resource state conflict")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// OverpaymentError is returned when a payment exceeds the outstanding balance
// of an invoice record. It carries the outstanding amount at the time of the
// attempt so callers can retry with a corrected amount.
type OverpaymentError struct {
	InvoiceID   string
	Outstanding decimal.Decimal
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("payment exceeds outstanding balance of %s on invoice %s", e.Outstanding.String(), e.InvoiceID)
}

// AccountTypeMismatchError is returned when a caller-supplied account does not
// have the account type the operation requires.
type AccountTypeMismatchError struct {
	AccountID string
	Expected  string
	Actual    string
}

func (e *AccountTypeMismatchError) Error() string {
	return fmt.Sprintf("account %s has type %s, expected %s", e.AccountID, e.Actual, e.Expected)
}

// AppError wraps a lower-level error with an HTTP-ish status code and message.
// Repositories use it so services and handlers do not depend on driver errors.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an AppError wrapping err.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}
