package ledger

import (
	"context"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecordFilter narrows ledger record listings.
// Status and overdue are evaluated as predicates on the stored amounts.
type RecordFilter struct {
	shared.Filter
	Kinds          []Kind
	CounterpartyID *uuid.UUID
	Status         Status
	OpenOnly       bool
	OverdueAt      *time.Time
	From           *time.Time
	To             *time.Time
}

// PaymentFilter narrows the payment registers
type PaymentFilter struct {
	shared.Filter
	Side         Side
	Kinds        []Kind
	Method       Method
	ChequeStatus ChequeStatus
	From         *time.Time
	To           *time.Time
}

// PaymentEntry is a payment joined with the record it settles
type PaymentEntry struct {
	Payment
	RecordNumber   string
	Kind           Kind
	CounterpartyID uuid.UUID
}

// BalanceSummary aggregates the open balances of one record kind
type BalanceSummary struct {
	Kind           Kind
	OpenCount      int64
	Total          decimal.Decimal
	Settled        decimal.Decimal
	Balance        decimal.Decimal
	OverdueCount   int64
	OverdueBalance decimal.Decimal
}

// RecordRepository defines the interface for ledger record persistence
type RecordRepository interface {
	// FindByIDForTenant loads a record with its lines and payments
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Record, error)
	// FindByIDForUpdate loads a record and locks its row until the transaction ends
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Record, error)
	// FindByPaymentIDForUpdate locks and loads the record owning a payment
	FindByPaymentIDForUpdate(ctx context.Context, tenantID, paymentID uuid.UUID) (*Record, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter RecordFilter) ([]Record, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter RecordFilter) (int64, error)
	FindPayments(ctx context.Context, tenantID uuid.UUID, filter PaymentFilter) ([]PaymentEntry, error)
	CountPayments(ctx context.Context, tenantID uuid.UUID, filter PaymentFilter) (int64, error)

	// Create inserts a new record with its lines
	Create(ctx context.Context, record *Record) error
	// SaveWithLock persists settlement state and payments, failing with
	// ErrConcurrencyConflict when the stored version moved on
	SaveWithLock(ctx context.Context, record *Record) error

	// SummarizeOpen sums open balances of one kind as of now
	SummarizeOpen(ctx context.Context, tenantID uuid.UUID, kind Kind, now time.Time) (*BalanceSummary, error)
	// ReturnedQuantities sums quantities per product over returns referencing the origin
	ReturnedQuantities(ctx context.Context, tenantID, originID uuid.UUID) (map[uuid.UUID]int64, error)
	// ExistsOpenWithProduct reports whether an unsettled record references the product
	ExistsOpenWithProduct(ctx context.Context, tenantID, productID uuid.UUID) (bool, error)
}
