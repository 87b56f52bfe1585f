package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the settlement state of a ledger record. It is always derived
// from the record's total and settled amount and never stored.
type Status string

const (
	StatusPending          Status = "pending"
	StatusPartiallySettled Status = "partially_settled"
	StatusSettled          Status = "settled"
)

// IsValid checks if the status is known
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusPartiallySettled, StatusSettled:
		return true
	}
	return false
}

// String returns the string representation
func (s Status) String() string {
	return string(s)
}

// DeriveStatus computes the status from the total and the settled amount.
// A record with nothing left to pay is settled, including a zero total.
func DeriveStatus(total, settled decimal.Decimal) Status {
	switch {
	case !settled.LessThan(total):
		return StatusSettled
	case settled.IsZero():
		return StatusPending
	default:
		return StatusPartiallySettled
	}
}

// IsOverdue reports whether an unpaid balance is past its due date
func IsOverdue(balance decimal.Decimal, dueDate, now time.Time) bool {
	return balance.IsPositive() && now.After(dueDate)
}
