package ledger

import (
	"strings"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Method is the channel a payment was made through
type Method string

const (
	MethodCash   Method = "cash"
	MethodBank   Method = "bank"
	MethodCheque Method = "cheque"
)

// IsValid checks if the method is known
func (m Method) IsValid() bool {
	switch m {
	case MethodCash, MethodBank, MethodCheque:
		return true
	}
	return false
}

// ChequeStatus is the clearing sub-state of a cheque payment
type ChequeStatus string

const (
	ChequePending   ChequeStatus = "pending"
	ChequeCleared   ChequeStatus = "cleared"
	ChequeBounced   ChequeStatus = "bounced"
	ChequeCancelled ChequeStatus = "cancelled"
)

// IsValid checks if the cheque status is known
func (s ChequeStatus) IsValid() bool {
	switch s {
	case ChequePending, ChequeCleared, ChequeBounced, ChequeCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is allowed
func (s ChequeStatus) IsTerminal() bool {
	return s != ChequePending
}

// Excludes reports whether a cheque in this status no longer counts as settled
func (s ChequeStatus) Excludes() bool {
	return s == ChequeBounced || s == ChequeCancelled
}

// CanTransitionTo checks the cheque clearing state machine.
// Only pending cheques move, and only to cleared, bounced or cancelled.
func (s ChequeStatus) CanTransitionTo(target ChequeStatus) bool {
	if s != ChequePending {
		return false
	}
	switch target {
	case ChequeCleared, ChequeBounced, ChequeCancelled:
		return true
	}
	return false
}

// PaymentInstruction carries the method-specific fields of a payment.
// The set of implementations is closed: CashPayment, BankPayment, ChequePayment.
type PaymentInstruction interface {
	Method() Method
	validate() error
	apply(p *Payment)
}

// CashPayment needs no extra fields
type CashPayment struct{}

// Method returns MethodCash
func (CashPayment) Method() Method { return MethodCash }

func (CashPayment) validate() error { return nil }

func (CashPayment) apply(*Payment) {}

// BankPayment is a transfer into or out of a bank account
type BankPayment struct {
	AccountNumber string
}

// Method returns MethodBank
func (BankPayment) Method() Method { return MethodBank }

func (b BankPayment) validate() error {
	if strings.TrimSpace(b.AccountNumber) == "" {
		return shared.ErrInvalidMethodFields.WithMessage("Bank payment requires an account number")
	}
	return nil
}

func (b BankPayment) apply(p *Payment) {
	p.AccountNumber = strings.TrimSpace(b.AccountNumber)
}

// ChequePayment is counted as settled from creation until it bounces or is cancelled
type ChequePayment struct {
	ChequeNumber string
	BankName     string
}

// Method returns MethodCheque
func (ChequePayment) Method() Method { return MethodCheque }

func (c ChequePayment) validate() error {
	if strings.TrimSpace(c.ChequeNumber) == "" || strings.TrimSpace(c.BankName) == "" {
		return shared.ErrInvalidMethodFields.WithMessage("Cheque payment requires a cheque number and a bank name")
	}
	return nil
}

func (c ChequePayment) apply(p *Payment) {
	p.ChequeNumber = strings.TrimSpace(c.ChequeNumber)
	p.BankName = strings.TrimSpace(c.BankName)
	p.ChequeStatus = ChequePending
}

// Payment is one payment event applied to a ledger record.
// It is immutable once created except for the cheque clearing status.
type Payment struct {
	shared.BaseEntity
	TenantID      uuid.UUID
	RecordID      uuid.UUID
	Method        Method
	Amount        decimal.Decimal
	AccountNumber string
	ChequeNumber  string
	BankName      string
	ChequeStatus  ChequeStatus
	Remark        string
	PaidAt        time.Time
}

// Counts reports whether the payment contributes to the settled amount
func (p *Payment) Counts() bool {
	if p.Method != MethodCheque {
		return true
	}
	return !p.ChequeStatus.Excludes()
}

// IsCheque reports whether the payment was made by cheque
func (p *Payment) IsCheque() bool {
	return p.Method == MethodCheque
}
