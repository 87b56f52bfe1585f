package models

import (
	"time"

	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecordModel is the persistence model for ledger.Record.
// amount_settled is stored so balances can be summed in SQL; status is not.
type RecordModel struct {
	TenantAggregateModel
	Number           string          `gorm:"type:varchar(40);not null;index"`
	Kind             ledger.Kind     `gorm:"type:varchar(20);not null;index"`
	CounterpartyID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	CounterpartyName string          `gorm:"type:varchar(200);not null"`
	OriginID         *uuid.UUID      `gorm:"type:uuid;index"`
	Subtotal         decimal.Decimal `gorm:"type:numeric;not null"`
	TaxRuleID        *uuid.UUID      `gorm:"type:uuid"`
	TaxAmount        decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	DiscountRuleID   *uuid.UUID      `gorm:"type:uuid"`
	DiscountAmount   decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	Total            decimal.Decimal `gorm:"type:numeric;not null"`
	AmountSettled    decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	DueDate          time.Time       `gorm:"not null;index"`
	Remark           string          `gorm:"type:text"`
	Lines            []LineModel     `gorm:"foreignKey:RecordID;constraint:OnDelete:CASCADE"`
	Payments         []PaymentModel  `gorm:"foreignKey:RecordID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (RecordModel) TableName() string {
	return "ledger_records"
}

// LineModel is the persistence model for ledger.Line
type LineModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	RecordID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position    int             `gorm:"not null"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductCode string          `gorm:"type:varchar(50);not null"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	Quantity    int64           `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric;not null"`
	LineTotal   decimal.Decimal `gorm:"type:numeric;not null"`
}

// TableName returns the table name for GORM
func (LineModel) TableName() string {
	return "ledger_lines"
}

// PaymentModel is the persistence model for ledger.Payment
type PaymentModel struct {
	BaseModel
	TenantID      uuid.UUID           `gorm:"type:uuid;not null;index"`
	RecordID      uuid.UUID           `gorm:"type:uuid;not null;index"`
	Method        ledger.Method       `gorm:"type:varchar(20);not null;index"`
	Amount        decimal.Decimal     `gorm:"type:numeric;not null"`
	AccountNumber string              `gorm:"type:varchar(64)"`
	ChequeNumber  string              `gorm:"type:varchar(64)"`
	BankName      string              `gorm:"type:varchar(100)"`
	ChequeStatus  ledger.ChequeStatus `gorm:"type:varchar(20);index"`
	Remark        string              `gorm:"type:text"`
	PaidAt        time.Time           `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "ledger_payments"
}

// ToDomain converts the model to a domain Payment
func (m *PaymentModel) ToDomain() ledger.Payment {
	return ledger.Payment{
		BaseEntity:    m.BaseModel.ToDomain(),
		TenantID:      m.TenantID,
		RecordID:      m.RecordID,
		Method:        m.Method,
		Amount:        m.Amount,
		AccountNumber: m.AccountNumber,
		ChequeNumber:  m.ChequeNumber,
		BankName:      m.BankName,
		ChequeStatus:  m.ChequeStatus,
		Remark:        m.Remark,
		PaidAt:        m.PaidAt,
	}
}

// PaymentModelFromDomain creates a model from a domain Payment
func PaymentModelFromDomain(p *ledger.Payment) PaymentModel {
	m := PaymentModel{
		TenantID:      p.TenantID,
		RecordID:      p.RecordID,
		Method:        p.Method,
		Amount:        p.Amount,
		AccountNumber: p.AccountNumber,
		ChequeNumber:  p.ChequeNumber,
		BankName:      p.BankName,
		ChequeStatus:  p.ChequeStatus,
		Remark:        p.Remark,
		PaidAt:        p.PaidAt,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}

// ToDomain converts the model, with whatever lines and payments were
// preloaded, to a domain Record
func (m *RecordModel) ToDomain() *ledger.Record {
	r := &ledger.Record{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		Number:              m.Number,
		Kind:                m.Kind,
		CounterpartyID:      m.CounterpartyID,
		CounterpartyName:    m.CounterpartyName,
		OriginID:            m.OriginID,
		Subtotal:            m.Subtotal,
		TaxRuleID:           m.TaxRuleID,
		TaxAmount:           m.TaxAmount,
		DiscountRuleID:      m.DiscountRuleID,
		DiscountAmount:      m.DiscountAmount,
		Total:               m.Total,
		AmountSettled:       m.AmountSettled,
		DueDate:             m.DueDate,
		Remark:              m.Remark,
		Lines:               make([]ledger.Line, len(m.Lines)),
		Payments:            make([]ledger.Payment, len(m.Payments)),
	}
	for i, l := range m.Lines {
		r.Lines[i] = ledger.Line{
			ID:          l.ID,
			ProductID:   l.ProductID,
			ProductCode: l.ProductCode,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			LineTotal:   l.LineTotal,
		}
	}
	for i := range m.Payments {
		r.Payments[i] = m.Payments[i].ToDomain()
	}
	return r
}

// RecordModelFromDomain creates a model, lines and payments included, from a domain Record
func RecordModelFromDomain(r *ledger.Record) *RecordModel {
	m := &RecordModel{
		Number:           r.Number,
		Kind:             r.Kind,
		CounterpartyID:   r.CounterpartyID,
		CounterpartyName: r.CounterpartyName,
		OriginID:         r.OriginID,
		Subtotal:         r.Subtotal,
		TaxRuleID:        r.TaxRuleID,
		TaxAmount:        r.TaxAmount,
		DiscountRuleID:   r.DiscountRuleID,
		DiscountAmount:   r.DiscountAmount,
		Total:            r.Total,
		AmountSettled:    r.AmountSettled,
		DueDate:          r.DueDate,
		Remark:           r.Remark,
		Lines:            make([]LineModel, len(r.Lines)),
		Payments:         make([]PaymentModel, len(r.Payments)),
	}
	m.FromDomainTenantAggregateRoot(r.TenantAggregateRoot)
	for i, l := range r.Lines {
		id := l.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		m.Lines[i] = LineModel{
			ID:          id,
			RecordID:    r.ID,
			Position:    i,
			ProductID:   l.ProductID,
			ProductCode: l.ProductCode,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			LineTotal:   l.LineTotal,
		}
	}
	for i := range r.Payments {
		m.Payments[i] = PaymentModelFromDomain(&r.Payments[i])
	}
	return m
}

// PaymentEntryModel is the row shape of the payment register query
type PaymentEntryModel struct {
	PaymentModel
	RecordNumber   string
	Kind           ledger.Kind
	CounterpartyID uuid.UUID
}

// ToDomain converts the row to a domain PaymentEntry
func (m *PaymentEntryModel) ToDomain() ledger.PaymentEntry {
	return ledger.PaymentEntry{
		Payment:        m.PaymentModel.ToDomain(),
		RecordNumber:   m.RecordNumber,
		Kind:           m.Kind,
		CounterpartyID: m.CounterpartyID,
	}
}

