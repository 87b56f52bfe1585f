package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Options tunes invoice and settlement behaviour
type Options struct {
	// DefaultDueDays is added to the commit date when no due date is given
	DefaultDueDays int
	// TotalsTolerance is the largest accepted difference between client and server totals
	TotalsTolerance decimal.Decimal
	// IdempotencyTTL is how long a settle idempotency key is remembered
	IdempotencyTTL time.Duration
}

// DefaultOptions returns the options used when none are configured
func DefaultOptions() Options {
	return Options{
		DefaultDueDays:  30,
		TotalsTolerance: decimal.RequireFromString("0.01"),
		IdempotencyTTL:  24 * time.Hour,
	}
}

// Metrics receives ledger business measurements
type Metrics interface {
	RecordCommitted(ctx context.Context, tenantID uuid.UUID, kind string, total decimal.Decimal)
	RecordPayment(ctx context.Context, tenantID uuid.UUID, kind, method string, amount decimal.Decimal)
	RecordChequeOutcome(ctx context.Context, tenantID uuid.UUID, status string, amount decimal.Decimal)
	RecordStatusChange(ctx context.Context, tenantID uuid.UUID, kind, from, to string)
	RecordStockConflict(ctx context.Context, tenantID uuid.UUID, kind string)
}
