package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Line is a snapshotted line item of a committed ledger record
type Line struct {
	ID          uuid.UUID
	ProductID   uuid.UUID
	ProductCode string
	ProductName string
	Quantity    int64
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
}

// Record is the durable outcome of a committed invoice: a sale, purchase,
// sales return or purchase return. Lines and totals are immutable after
// creation; only payments and the due date change.
type Record struct {
	shared.TenantAggregateRoot
	Number           string
	Kind             Kind
	CounterpartyID   uuid.UUID
	CounterpartyName string
	OriginID         *uuid.UUID
	Lines            []Line
	Subtotal         decimal.Decimal
	TaxRuleID        *uuid.UUID
	TaxAmount        decimal.Decimal
	DiscountRuleID   *uuid.UUID
	DiscountAmount   decimal.Decimal
	Total            decimal.Decimal
	AmountSettled    decimal.Decimal
	DueDate          time.Time
	Remark           string
	Payments         []Payment
}

// NewRecordInput holds the priced outcome of an invoice
type NewRecordInput struct {
	TenantID         uuid.UUID
	Kind             Kind
	CounterpartyID   uuid.UUID
	CounterpartyName string
	OriginID         *uuid.UUID
	Lines            []Line
	Subtotal         decimal.Decimal
	TaxRuleID        *uuid.UUID
	TaxAmount        decimal.Decimal
	DiscountRuleID   *uuid.UUID
	DiscountAmount   decimal.Decimal
	DueDate          time.Time
	Remark           string
	CreatedBy        uuid.UUID
}

// NewRecord creates a pending ledger record
func NewRecord(in NewRecordInput) (*Record, error) {
	if !in.Kind.IsValid() {
		return nil, shared.NewValidationError("INVALID_KIND", "Unknown ledger record kind")
	}
	if in.CounterpartyID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_COUNTERPARTY", "Counterparty is required")
	}
	if len(in.Lines) == 0 {
		return nil, shared.NewValidationError("EMPTY_INVOICE", "Ledger record must have at least one line")
	}
	if in.OriginID != nil && !in.Kind.IsReturn() {
		return nil, shared.NewValidationError("INVALID_ORIGIN", "Only returns can reference an origin record")
	}
	if in.DueDate.IsZero() {
		return nil, shared.NewValidationError("INVALID_DUE_DATE", "Due date is required")
	}

	subtotal := decimal.Zero
	lines := make([]Line, len(in.Lines))
	for i, l := range in.Lines {
		if l.Quantity <= 0 {
			return nil, shared.ErrInvalidQuantity
		}
		if l.UnitPrice.IsNegative() {
			return nil, shared.NewValidationError("INVALID_PRICE", "Unit price cannot be negative")
		}
		l.LineTotal = l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity))
		if l.ID == uuid.Nil {
			l.ID = uuid.New()
		}
		lines[i] = l
		subtotal = subtotal.Add(l.LineTotal)
	}
	if !subtotal.Equal(in.Subtotal) {
		return nil, shared.NewValidationError("INVALID_SUBTOTAL", "Subtotal does not match line totals")
	}
	if in.TaxAmount.IsNegative() || in.DiscountAmount.IsNegative() {
		return nil, shared.NewValidationError("INVALID_AMOUNT", "Tax and discount amounts cannot be negative")
	}
	total := subtotal.Add(in.TaxAmount).Sub(in.DiscountAmount)
	if total.IsNegative() {
		return nil, shared.NewValidationError("INVALID_AMOUNT", "Discount cannot exceed subtotal plus tax")
	}

	record := &Record{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(in.TenantID),
		Kind:                in.Kind,
		CounterpartyID:      in.CounterpartyID,
		CounterpartyName:    in.CounterpartyName,
		OriginID:            in.OriginID,
		Lines:               lines,
		Subtotal:            subtotal,
		TaxRuleID:           in.TaxRuleID,
		TaxAmount:           in.TaxAmount,
		DiscountRuleID:      in.DiscountRuleID,
		DiscountAmount:      in.DiscountAmount,
		Total:               total,
		AmountSettled:       decimal.Zero,
		DueDate:             in.DueDate,
		Remark:              strings.TrimSpace(in.Remark),
		Payments:            make([]Payment, 0),
	}
	record.Number = GenerateNumber(in.Kind, record.ID, record.CreatedAt)
	record.SetCreatedBy(in.CreatedBy)

	record.AddDomainEvent(NewRecordCommittedEvent(record))

	return record, nil
}

// GenerateNumber builds a document number such as SL-20260315-3F2A9B1C
func GenerateNumber(kind Kind, id uuid.UUID, at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:8])
	return fmt.Sprintf("%s-%s-%s", kind.NumberPrefix(), at.Format("20060102"), suffix)
}

// Balance returns the amount still outstanding
func (r *Record) Balance() decimal.Decimal {
	return r.Total.Sub(r.AmountSettled)
}

// Status derives the settlement status
func (r *Record) Status() Status {
	return DeriveStatus(r.Total, r.AmountSettled)
}

// IsOverdue reports whether the record has an open balance past its due date
func (r *Record) IsOverdue(now time.Time) bool {
	return IsOverdue(r.Balance(), r.DueDate, now)
}

// Side returns the side of the books the balance sits on
func (r *Record) Side() Side {
	return r.Kind.Side()
}

// Settle applies a payment against the outstanding balance
func (r *Record) Settle(instr PaymentInstruction, amount decimal.Decimal, paidAt time.Time, remark string) (*Payment, error) {
	if instr == nil {
		return nil, shared.ErrInvalidMethodFields.WithMessage("Payment method is required")
	}
	if r.Status() == StatusSettled {
		return nil, shared.ErrAlreadySettled.WithMessage("Ledger record %s is already settled", r.Number)
	}
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("INVALID_AMOUNT", "Payment amount must be greater than zero")
	}
	if amount.GreaterThan(r.Balance()) {
		return nil, shared.ErrOverPayment.WithMessage("Payment %s exceeds outstanding balance %s", amount.String(), r.Balance().String())
	}
	if err := instr.validate(); err != nil {
		return nil, err
	}
	if paidAt.IsZero() {
		paidAt = time.Now()
	}

	payment := Payment{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   r.TenantID,
		RecordID:   r.ID,
		Method:     instr.Method(),
		Amount:     amount,
		Remark:     strings.TrimSpace(remark),
		PaidAt:     paidAt,
	}
	instr.apply(&payment)

	before := r.Status()
	r.Payments = append(r.Payments, payment)
	r.recomputeSettled()
	r.IncrementVersion()

	r.AddDomainEvent(NewPaymentRecordedEvent(r, &payment))
	r.emitStatusChange(before)

	return &r.Payments[len(r.Payments)-1], nil
}

// UpdateChequeStatus moves a pending cheque to cleared, bounced or cancelled.
// Bounced and cancelled cheques stop counting towards the settled amount.
func (r *Record) UpdateChequeStatus(paymentID uuid.UUID, status ChequeStatus) (*Payment, error) {
	payment := r.FindPayment(paymentID)
	if payment == nil {
		return nil, shared.NewNotFoundError("payment", paymentID)
	}
	if !payment.IsCheque() {
		return nil, shared.ErrIllegalTransition.WithMessage("Payment %s is not a cheque", paymentID)
	}
	if !status.IsValid() {
		return nil, shared.NewValidationError("INVALID_CHEQUE_STATUS", "Unknown cheque status: "+string(status))
	}
	if !payment.ChequeStatus.CanTransitionTo(status) {
		return nil, shared.ErrIllegalTransition.WithMessage("Cannot move cheque from %s to %s", payment.ChequeStatus, status)
	}

	before := r.Status()
	old := payment.ChequeStatus
	payment.ChequeStatus = status
	payment.Touch()
	r.recomputeSettled()
	r.IncrementVersion()

	r.AddDomainEvent(NewChequeStatusChangedEvent(r, payment, old))
	r.emitStatusChange(before)

	return payment, nil
}

// ChangeDueDate moves the due date. It cannot precede the record's creation day.
func (r *Record) ChangeDueDate(due time.Time) error {
	if due.IsZero() {
		return shared.NewValidationError("INVALID_DUE_DATE", "Due date is required")
	}
	created := r.CreatedAt.Truncate(24 * time.Hour)
	if due.Before(created) {
		return shared.NewValidationError("INVALID_DUE_DATE", "Due date cannot be before the record was created")
	}
	r.DueDate = due
	r.IncrementVersion()
	return nil
}

// FindPayment returns the payment with the given ID, or nil
func (r *Record) FindPayment(id uuid.UUID) *Payment {
	for i := range r.Payments {
		if r.Payments[i].ID == id {
			return &r.Payments[i]
		}
	}
	return nil
}

// QuantityByProduct sums line quantities per product
func (r *Record) QuantityByProduct() map[uuid.UUID]int64 {
	out := make(map[uuid.UUID]int64, len(r.Lines))
	for _, l := range r.Lines {
		out[l.ProductID] += l.Quantity
	}
	return out
}

func (r *Record) recomputeSettled() {
	settled := decimal.Zero
	for i := range r.Payments {
		if r.Payments[i].Counts() {
			settled = settled.Add(r.Payments[i].Amount)
		}
	}
	r.AmountSettled = settled
}

func (r *Record) emitStatusChange(before Status) {
	if after := r.Status(); after != before {
		r.AddDomainEvent(NewStatusChangedEvent(r, before, after))
	}
}
