package reconciliation

import (
	"context"
	"time"

	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
)

// Service computes receivable and payable read models straight from ledger
// records on every call. Nothing here is cached or stored.
type Service struct {
	recordRepo ledger.RecordRepository
	now        func() time.Time
}

// NewService creates a new reconciliation Service
func NewService(recordRepo ledger.RecordRepository) *Service {
	return &Service{recordRepo: recordRepo, now: time.Now}
}

// Receivables lists open sales with the sum of their balances
func (s *Service) Receivables(ctx context.Context, tenantID uuid.UUID, filter ListFilter) (*BalanceView, error) {
	return s.balanceView(ctx, tenantID, ledger.KindSale, filter)
}

// Payables lists open purchases with the sum of their balances
func (s *Service) Payables(ctx context.Context, tenantID uuid.UUID, filter ListFilter) (*BalanceView, error) {
	return s.balanceView(ctx, tenantID, ledger.KindPurchase, filter)
}

func (s *Service) balanceView(ctx context.Context, tenantID uuid.UUID, kind ledger.Kind, filter ListFilter) (*BalanceView, error) {
	now := s.now()

	summary, err := s.recordRepo.SummarizeOpen(ctx, tenantID, kind, now)
	if err != nil {
		return nil, err
	}

	recordFilter := ledger.RecordFilter{
		Filter:         shared.DefaultFilter(),
		Kinds:          []ledger.Kind{kind},
		CounterpartyID: filter.CounterpartyID,
		OpenOnly:       true,
	}
	recordFilter.OrderBy = "due_date"
	recordFilter.OrderDir = "asc"
	if filter.Page > 0 {
		recordFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		recordFilter.PageSize = filter.PageSize
	}
	if filter.Overdue {
		recordFilter.OverdueAt = &now
	}

	records, err := s.recordRepo.FindAllForTenant(ctx, tenantID, recordFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.recordRepo.CountForTenant(ctx, tenantID, recordFilter)
	if err != nil {
		return nil, err
	}

	items := make([]OpenItem, 0, len(records))
	for i := range records {
		items = append(items, toOpenItem(&records[i], now))
	}

	return &BalanceView{
		Side:    string(kind.Side()),
		Summary: toKindSummary(summary),
		Items:   items,
		Total:   total,
		AsOf:    now,
	}, nil
}

// Dashboard sums open balances of every kind. Receivable covers sales and
// purchase returns; payable covers purchases and sales returns.
func (s *Service) Dashboard(ctx context.Context, tenantID uuid.UUID) (*Dashboard, error) {
	now := s.now()

	summaries := make(map[ledger.Kind]*ledger.BalanceSummary, len(ledger.AllKinds))
	for _, kind := range ledger.AllKinds {
		summary, err := s.recordRepo.SummarizeOpen(ctx, tenantID, kind, now)
		if err != nil {
			return nil, err
		}
		summaries[kind] = summary
	}

	dash := &Dashboard{
		Sales:           toKindSummary(summaries[ledger.KindSale]),
		Purchases:       toKindSummary(summaries[ledger.KindPurchase]),
		SalesReturns:    toKindSummary(summaries[ledger.KindSalesReturn]),
		PurchaseReturns: toKindSummary(summaries[ledger.KindPurchaseReturn]),
		AsOf:            now,
	}
	for kind, summary := range summaries {
		if kind.Side() == ledger.SideReceivable {
			dash.Receivable = dash.Receivable.Add(summary.Balance)
		} else {
			dash.Payable = dash.Payable.Add(summary.Balance)
		}
		dash.OverdueBalance = dash.OverdueBalance.Add(summary.OverdueBalance)
	}
	dash.NetPosition = dash.Receivable.Sub(dash.Payable).Round(2)
	dash.Receivable = dash.Receivable.Round(2)
	dash.Payable = dash.Payable.Round(2)
	dash.OverdueBalance = dash.OverdueBalance.Round(2)

	return dash, nil
}
