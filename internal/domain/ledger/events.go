package ledger

import (
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeRecord is the aggregate type for ledger record events
const AggregateTypeRecord = "LedgerRecord"

// Event type constants
const (
	EventTypeRecordCommitted     = "ledger.committed"
	EventTypePaymentRecorded     = "ledger.payment_recorded"
	EventTypeChequeStatusChanged = "ledger.cheque_status_changed"
	EventTypeStatusChanged       = "ledger.status_changed"
)

// RecordCommittedEvent is published when a ledger record is created
type RecordCommittedEvent struct {
	shared.EventMeta
	RecordID       uuid.UUID       `json:"record_id"`
	Number         string          `json:"number"`
	Kind           Kind            `json:"kind"`
	CounterpartyID uuid.UUID       `json:"counterparty_id"`
	Total          decimal.Decimal `json:"total"`
	LineCount      int             `json:"line_count"`
}

// NewRecordCommittedEvent creates a new RecordCommittedEvent
func NewRecordCommittedEvent(r *Record) *RecordCommittedEvent {
	return &RecordCommittedEvent{
		EventMeta: r.EventMeta(EventTypeRecordCommitted, AggregateTypeRecord),
		RecordID:        r.ID,
		Number:          r.Number,
		Kind:            r.Kind,
		CounterpartyID:  r.CounterpartyID,
		Total:           r.Total,
		LineCount:       len(r.Lines),
	}
}

// PaymentRecordedEvent is published when a payment is applied
type PaymentRecordedEvent struct {
	shared.EventMeta
	RecordID  uuid.UUID       `json:"record_id"`
	Kind      Kind            `json:"kind"`
	PaymentID uuid.UUID       `json:"payment_id"`
	Method    Method          `json:"method"`
	Amount    decimal.Decimal `json:"amount"`
	Balance   decimal.Decimal `json:"balance"`
}

// NewPaymentRecordedEvent creates a new PaymentRecordedEvent
func NewPaymentRecordedEvent(r *Record, p *Payment) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		EventMeta: r.EventMeta(EventTypePaymentRecorded, AggregateTypeRecord),
		RecordID:        r.ID,
		Kind:            r.Kind,
		PaymentID:       p.ID,
		Method:          p.Method,
		Amount:          p.Amount,
		Balance:         r.Balance(),
	}
}

// ChequeStatusChangedEvent is published when a cheque clears, bounces or is cancelled
type ChequeStatusChangedEvent struct {
	shared.EventMeta
	RecordID  uuid.UUID       `json:"record_id"`
	PaymentID uuid.UUID       `json:"payment_id"`
	OldStatus ChequeStatus    `json:"old_status"`
	NewStatus ChequeStatus    `json:"new_status"`
	Amount    decimal.Decimal `json:"amount"`
}

// NewChequeStatusChangedEvent creates a new ChequeStatusChangedEvent
func NewChequeStatusChangedEvent(r *Record, p *Payment, old ChequeStatus) *ChequeStatusChangedEvent {
	return &ChequeStatusChangedEvent{
		EventMeta: r.EventMeta(EventTypeChequeStatusChanged, AggregateTypeRecord),
		RecordID:        r.ID,
		PaymentID:       p.ID,
		OldStatus:       old,
		NewStatus:       p.ChequeStatus,
		Amount:          p.Amount,
	}
}

// StatusChangedEvent is published whenever the derived status changes
type StatusChangedEvent struct {
	shared.EventMeta
	RecordID      uuid.UUID       `json:"record_id"`
	Number        string          `json:"number"`
	Kind          Kind            `json:"kind"`
	OldStatus     Status          `json:"old_status"`
	NewStatus     Status          `json:"new_status"`
	AmountSettled decimal.Decimal `json:"amount_settled"`
	Total         decimal.Decimal `json:"total"`
}

// NewStatusChangedEvent creates a new StatusChangedEvent
func NewStatusChangedEvent(r *Record, old, new Status) *StatusChangedEvent {
	return &StatusChangedEvent{
		EventMeta: r.EventMeta(EventTypeStatusChanged, AggregateTypeRecord),
		RecordID:        r.ID,
		Number:          r.Number,
		Kind:            r.Kind,
		OldStatus:       old,
		NewStatus:       new,
		AmountSettled:   r.AmountSettled,
		Total:           r.Total,
	}
}
