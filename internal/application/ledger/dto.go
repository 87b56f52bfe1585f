package ledger

import (
	"time"

	"github.com/erp/ledger/internal/domain/invoice"
	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineRequest is one cart line of an invoice request
type LineRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int64     `json:"quantity"`
	// UnitPrice is honoured for purchases and for returns without an origin.
	// Sales always use the catalog price.
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

// TotalsRequest carries totals computed by the client. They are only checked,
// never trusted.
type TotalsRequest struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// InvoiceRequest represents a request to price or commit an invoice
type InvoiceRequest struct {
	CounterpartyID uuid.UUID      `json:"counterparty_id" binding:"required"`
	OriginID       *uuid.UUID     `json:"origin_id"`
	Lines          []LineRequest  `json:"lines" binding:"required,min=1,dive"`
	TaxRuleID      *uuid.UUID     `json:"tax_rule_id"`
	DiscountRuleID *uuid.UUID     `json:"discount_rule_id"`
	ExpectedTotals *TotalsRequest `json:"expected_totals"`
	DueDate        *time.Time     `json:"due_date"`
	Remark         string         `json:"remark" binding:"max=500"`
	CreatedBy      *uuid.UUID     `json:"-"`
}

// QuoteLineResponse is a priced line of a quote
type QuoteLineResponse struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductCode string          `json:"product_code"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// QuoteResponse is the server-computed price of a draft
type QuoteResponse struct {
	Kind     string              `json:"kind"`
	Lines    []QuoteLineResponse `json:"lines"`
	Subtotal decimal.Decimal     `json:"subtotal"`
	Tax      decimal.Decimal     `json:"tax"`
	Discount decimal.Decimal     `json:"discount"`
	Total    decimal.Decimal     `json:"total"`
}

// PaymentFields holds the fields every payment register accepts
type PaymentFields struct {
	Amount         decimal.Decimal `json:"amount"`
	PaidAt         *time.Time      `json:"paid_at"`
	Remark         string          `json:"remark" binding:"max=500"`
	IdempotencyKey string          `json:"-"`
}

// CashPaymentRequest represents a cash payment
type CashPaymentRequest struct {
	PaymentFields
}

// BankPaymentRequest represents a bank transfer. A missing account number is
// reported as INVALID_METHOD_FIELDS by the ledger record.
type BankPaymentRequest struct {
	PaymentFields
	AccountNumber string `json:"account_number" binding:"max=50"`
}

// ChequePaymentRequest represents a cheque payment
type ChequePaymentRequest struct {
	PaymentFields
	ChequeNumber string `json:"cheque_number" binding:"max=50"`
	BankName     string `json:"bank_name" binding:"max=100"`
}

// UpdateChequeStatusRequest moves a cheque through clearing
type UpdateChequeStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=cleared bounced cancelled"`
}

// ChangeDueDateRequest represents a request to move a record's due date
type ChangeDueDateRequest struct {
	DueDate time.Time `json:"due_date" binding:"required"`
}

// LineResponse is a snapshotted line of a ledger record
type LineResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductCode string          `json:"product_code"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID            uuid.UUID       `json:"id"`
	RecordID      uuid.UUID       `json:"record_id"`
	RecordNumber  string          `json:"record_number,omitempty"`
	Kind          string          `json:"kind,omitempty"`
	Method        string          `json:"method"`
	Amount        decimal.Decimal `json:"amount"`
	AccountNumber string          `json:"account_number,omitempty"`
	ChequeNumber  string          `json:"cheque_number,omitempty"`
	BankName      string          `json:"bank_name,omitempty"`
	ChequeStatus  string          `json:"cheque_status,omitempty"`
	Counted       bool            `json:"counted"`
	Remark        string          `json:"remark"`
	PaidAt        time.Time       `json:"paid_at"`
	CreatedAt     time.Time       `json:"created_at"`
}

// RecordResponse represents a ledger record with its lines and payments
type RecordResponse struct {
	ID               uuid.UUID         `json:"id"`
	TenantID         uuid.UUID         `json:"tenant_id"`
	Number           string            `json:"number"`
	Kind             string            `json:"kind"`
	Side             string            `json:"side"`
	CounterpartyID   uuid.UUID         `json:"counterparty_id"`
	CounterpartyName string            `json:"counterparty_name"`
	OriginID         *uuid.UUID        `json:"origin_id,omitempty"`
	Lines            []LineResponse    `json:"lines"`
	Subtotal         decimal.Decimal   `json:"subtotal"`
	TaxRuleID        *uuid.UUID        `json:"tax_rule_id,omitempty"`
	TaxAmount        decimal.Decimal   `json:"tax_amount"`
	DiscountRuleID   *uuid.UUID        `json:"discount_rule_id,omitempty"`
	DiscountAmount   decimal.Decimal   `json:"discount_amount"`
	Total            decimal.Decimal   `json:"total"`
	AmountSettled    decimal.Decimal   `json:"amount_settled"`
	Balance          decimal.Decimal   `json:"balance"`
	Status           string            `json:"status"`
	Overdue          bool              `json:"overdue"`
	DueDate          time.Time         `json:"due_date"`
	Remark           string            `json:"remark"`
	Payments         []PaymentResponse `json:"payments"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
	Version          int               `json:"version"`
}

// RecordListResponse is a ledger record in list responses
type RecordListResponse struct {
	ID               uuid.UUID       `json:"id"`
	Number           string          `json:"number"`
	Kind             string          `json:"kind"`
	CounterpartyID   uuid.UUID       `json:"counterparty_id"`
	CounterpartyName string          `json:"counterparty_name"`
	Total            decimal.Decimal `json:"total"`
	AmountSettled    decimal.Decimal `json:"amount_settled"`
	Balance          decimal.Decimal `json:"balance"`
	Status           string          `json:"status"`
	Overdue          bool            `json:"overdue"`
	DueDate          time.Time       `json:"due_date"`
	CreatedAt        time.Time       `json:"created_at"`
}

// SettlementResponse is returned after a payment or cheque update
type SettlementResponse struct {
	Payment PaymentResponse `json:"payment"`
	Record  RecordResponse  `json:"record"`
}

// RecordListFilter represents filter options for record lists
type RecordListFilter struct {
	Search         string     `form:"search"`
	CounterpartyID *uuid.UUID `form:"-"`
	Status         string     `form:"status" binding:"omitempty,oneof=pending partially_settled settled"`
	Overdue        bool       `form:"overdue"`
	From           *time.Time `form:"from" time_format:"2006-01-02"`
	To             *time.Time `form:"to" time_format:"2006-01-02"`
	Page           int        `form:"page" binding:"omitempty,min=1"`
	PageSize       int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy        string     `form:"order_by" binding:"omitempty,oneof=created_at due_date total number"`
	OrderDir       string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// PaymentListFilter represents filter options for the payment registers
type PaymentListFilter struct {
	Side         string     `form:"side" binding:"omitempty,oneof=receivable payable"`
	Kind         string     `form:"kind" binding:"omitempty,oneof=sale purchase sales-return purchase-return"`
	Method       string     `form:"method" binding:"omitempty,oneof=cash bank cheque"`
	ChequeStatus string     `form:"cheque_status" binding:"omitempty,oneof=pending cleared bounced cancelled"`
	From         *time.Time `form:"from" time_format:"2006-01-02"`
	To           *time.Time `form:"to" time_format:"2006-01-02"`
	Page         int        `form:"page" binding:"omitempty,min=1"`
	PageSize     int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// money rounds an amount for display. Only responses are rounded.
func money(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ToQuoteResponse converts a priced draft to QuoteResponse
func ToQuoteResponse(d *invoice.Draft) QuoteResponse {
	totals := d.Totals()
	lines := make([]QuoteLineResponse, 0, len(d.Lines()))
	for _, l := range d.Lines() {
		lines = append(lines, QuoteLineResponse{
			ProductID:   l.ProductID,
			ProductCode: l.ProductCode,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   money(l.UnitPrice),
			LineTotal:   money(l.Total()),
		})
	}
	return QuoteResponse{
		Kind:     d.Kind().String(),
		Lines:    lines,
		Subtotal: money(totals.Subtotal),
		Tax:      money(totals.Tax),
		Discount: money(totals.Discount),
		Total:    money(totals.Total),
	}
}

// ToPaymentResponse converts a domain Payment to PaymentResponse
func ToPaymentResponse(p *ledger.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            p.ID,
		RecordID:      p.RecordID,
		Method:        string(p.Method),
		Amount:        money(p.Amount),
		AccountNumber: p.AccountNumber,
		ChequeNumber:  p.ChequeNumber,
		BankName:      p.BankName,
		ChequeStatus:  string(p.ChequeStatus),
		Counted:       p.Counts(),
		Remark:        p.Remark,
		PaidAt:        p.PaidAt,
		CreatedAt:     p.CreatedAt,
	}
}

// ToPaymentEntryResponse converts a register entry to PaymentResponse
func ToPaymentEntryResponse(e *ledger.PaymentEntry) PaymentResponse {
	resp := ToPaymentResponse(&e.Payment)
	resp.RecordNumber = e.RecordNumber
	resp.Kind = string(e.Kind)
	return resp
}

// ToRecordResponse converts a domain Record to RecordResponse
func ToRecordResponse(r *ledger.Record, now time.Time) RecordResponse {
	lines := make([]LineResponse, 0, len(r.Lines))
	for _, l := range r.Lines {
		lines = append(lines, LineResponse{
			ID:          l.ID,
			ProductID:   l.ProductID,
			ProductCode: l.ProductCode,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   money(l.UnitPrice),
			LineTotal:   money(l.LineTotal),
		})
	}
	payments := make([]PaymentResponse, 0, len(r.Payments))
	for i := range r.Payments {
		payments = append(payments, ToPaymentResponse(&r.Payments[i]))
	}

	return RecordResponse{
		ID:               r.ID,
		TenantID:         r.TenantID,
		Number:           r.Number,
		Kind:             r.Kind.String(),
		Side:             string(r.Side()),
		CounterpartyID:   r.CounterpartyID,
		CounterpartyName: r.CounterpartyName,
		OriginID:         r.OriginID,
		Lines:            lines,
		Subtotal:         money(r.Subtotal),
		TaxRuleID:        r.TaxRuleID,
		TaxAmount:        money(r.TaxAmount),
		DiscountRuleID:   r.DiscountRuleID,
		DiscountAmount:   money(r.DiscountAmount),
		Total:            money(r.Total),
		AmountSettled:    money(r.AmountSettled),
		Balance:          money(r.Balance()),
		Status:           r.Status().String(),
		Overdue:          r.IsOverdue(now),
		DueDate:          r.DueDate,
		Remark:           r.Remark,
		Payments:         payments,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
		Version:          r.Version,
	}
}

// ToRecordListResponse converts a domain Record to RecordListResponse
func ToRecordListResponse(r *ledger.Record, now time.Time) RecordListResponse {
	return RecordListResponse{
		ID:               r.ID,
		Number:           r.Number,
		Kind:             r.Kind.String(),
		CounterpartyID:   r.CounterpartyID,
		CounterpartyName: r.CounterpartyName,
		Total:            money(r.Total),
		AmountSettled:    money(r.AmountSettled),
		Balance:          money(r.Balance()),
		Status:           r.Status().String(),
		Overdue:          r.IsOverdue(now),
		DueDate:          r.DueDate,
		CreatedAt:        r.CreatedAt,
	}
}
