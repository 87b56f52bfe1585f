package shared

import (
	"errors"
	"fmt"
)

// ErrorKind groups domain errors into the categories callers branch on
type ErrorKind string

const (
	KindValidation ErrorKind = "validation" // bad shape or range of input
	KindStock      ErrorKind = "stock"      // out of stock, stale stock
	KindSettlement ErrorKind = "settlement" // over payment, already settled, bad method fields
	KindNotFound   ErrorKind = "not_found"
	KindState      ErrorKind = "state"    // illegal state transition
	KindConflict   ErrorKind = "conflict" // concurrent modification, duplicate submission
)

// DomainError represents a domain-level error
type DomainError struct {
	Kind    ErrorKind `json:"kind"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError with the same code,
// so errors.Is(err, ErrOutOfStock) matches regardless of message detail.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithMessage returns a copy of the error carrying a more specific message
func (e *DomainError) WithMessage(format string, args ...any) *DomainError {
	return &DomainError{
		Kind:    e.Kind,
		Code:    e.Code,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewDomainError creates a new domain error of kind validation
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Kind:    KindValidation,
		Code:    code,
		Message: message,
	}
}

// NewKindError creates a new domain error with an explicit kind
func NewKindError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a validation error
func NewValidationError(code, message string) *DomainError {
	return NewKindError(KindValidation, code, message)
}

// NewNotFoundError creates a not found error naming the missing resource
func NewNotFoundError(resource string, id any) *DomainError {
	return NewKindError(KindNotFound, "NOT_FOUND", fmt.Sprintf("%s %v not found", resource, id))
}

// KindOf returns the kind of a domain error, or "" when err is not one
func KindOf(err error) ErrorKind {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Kind
	}
	return ""
}

// IsKind reports whether err is a domain error of the given kind
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

// Common domain errors
var (
	ErrNotFound            = NewKindError(KindNotFound, "NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewKindError(KindConflict, "ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewValidationError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewKindError(KindConflict, "CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrDuplicateSubmission = NewKindError(KindConflict, "DUPLICATE_SUBMISSION", "Request with this idempotency key was already processed")
	ErrInvalidState        = NewKindError(KindState, "INVALID_STATE", "Operation not allowed in current state")
)

// Invoice and stock errors
var (
	ErrInvalidQuantity = NewValidationError("INVALID_QUANTITY", "Quantity must be greater than zero")
	ErrTotalsMismatch  = NewValidationError("TOTALS_MISMATCH", "Submitted totals do not match computed totals")
	ErrOutOfStock      = NewKindError(KindStock, "OUT_OF_STOCK", "Requested quantity exceeds on-hand stock")
	ErrStaleStock      = NewKindError(KindStock, "STALE_STOCK", "Stock changed since the line was added")
)

// Settlement errors
var (
	ErrOverPayment         = NewKindError(KindSettlement, "OVER_PAYMENT", "Payment amount exceeds outstanding balance")
	ErrAlreadySettled      = NewKindError(KindSettlement, "ALREADY_SETTLED", "Ledger record is already settled")
	ErrInvalidMethodFields = NewKindError(KindSettlement, "INVALID_METHOD_FIELDS", "Payment method fields are missing or invalid")
	ErrIllegalTransition   = NewKindError(KindState, "ILLEGAL_CHEQUE_TRANSITION", "Cheque status transition is not allowed")
)
