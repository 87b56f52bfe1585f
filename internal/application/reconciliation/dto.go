package reconciliation

import (
	"time"

	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ListFilter represents paging options for the open item lists
type ListFilter struct {
	CounterpartyID *uuid.UUID `form:"-"`
	Overdue        bool       `form:"overdue"`
	Page           int        `form:"page" binding:"omitempty,min=1"`
	PageSize       int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// KindSummary is the open balance of one record kind
type KindSummary struct {
	Kind           string          `json:"kind"`
	OpenCount      int64           `json:"open_count"`
	Total          decimal.Decimal `json:"total"`
	Settled        decimal.Decimal `json:"settled"`
	Balance        decimal.Decimal `json:"balance"`
	OverdueCount   int64           `json:"overdue_count"`
	OverdueBalance decimal.Decimal `json:"overdue_balance"`
}

// OpenItem is one record with an outstanding balance
type OpenItem struct {
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
}

// BalanceView is the receivables or payables list with its summary
type BalanceView struct {
	Side    string      `json:"side"`
	Summary KindSummary `json:"summary"`
	Items   []OpenItem  `json:"items"`
	Total   int64       `json:"total"`
	AsOf    time.Time   `json:"as_of"`
}

// Dashboard aggregates every kind's open balance
type Dashboard struct {
	Sales           KindSummary     `json:"sales"`
	Purchases       KindSummary     `json:"purchases"`
	SalesReturns    KindSummary     `json:"sales_returns"`
	PurchaseReturns KindSummary     `json:"purchase_returns"`
	Receivable      decimal.Decimal `json:"receivable"`
	Payable         decimal.Decimal `json:"payable"`
	NetPosition     decimal.Decimal `json:"net_position"`
	OverdueBalance  decimal.Decimal `json:"overdue_balance"`
	AsOf            time.Time       `json:"as_of"`
}

func toKindSummary(s *ledger.BalanceSummary) KindSummary {
	return KindSummary{
		Kind:           s.Kind.String(),
		OpenCount:      s.OpenCount,
		Total:          s.Total.Round(2),
		Settled:        s.Settled.Round(2),
		Balance:        s.Balance.Round(2),
		OverdueCount:   s.OverdueCount,
		OverdueBalance: s.OverdueBalance.Round(2),
	}
}

func toOpenItem(r *ledger.Record, now time.Time) OpenItem {
	return OpenItem{
		ID:               r.ID,
		Number:           r.Number,
		Kind:             r.Kind.String(),
		CounterpartyID:   r.CounterpartyID,
		CounterpartyName: r.CounterpartyName,
		Total:            r.Total.Round(2),
		AmountSettled:    r.AmountSettled.Round(2),
		Balance:          r.Balance().Round(2),
		Status:           r.Status().String(),
		Overdue:          r.IsOverdue(now),
		DueDate:          r.DueDate,
	}
}
