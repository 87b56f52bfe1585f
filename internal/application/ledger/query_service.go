package ledger

import (
	"context"
	"time"

	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
)

// QueryService answers read-only questions about ledger records and payments
type QueryService struct {
	recordRepo ledger.RecordRepository
	now        func() time.Time
}

// NewQueryService creates a new QueryService
func NewQueryService(recordRepo ledger.RecordRepository) *QueryService {
	return &QueryService{recordRepo: recordRepo, now: time.Now}
}

// GetRecord retrieves a ledger record with its lines and payments
func (s *QueryService) GetRecord(ctx context.Context, tenantID, id uuid.UUID) (*RecordResponse, error) {
	record, err := s.recordRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToRecordResponse(record, s.now())
	return &resp, nil
}

// ListRecords lists records of one kind
func (s *QueryService) ListRecords(ctx context.Context, tenantID uuid.UUID, kind ledger.Kind, filter RecordListFilter) ([]RecordListResponse, int64, error) {
	now := s.now()
	domainFilter := ledger.RecordFilter{
		Filter:         pageFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir, filter.Search),
		Kinds:          []ledger.Kind{kind},
		CounterpartyID: filter.CounterpartyID,
		Status:         ledger.Status(filter.Status),
		From:           filter.From,
		To:             filter.To,
	}
	if filter.Overdue {
		domainFilter.OverdueAt = &now
	}

	records, err := s.recordRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.recordRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	items := make([]RecordListResponse, 0, len(records))
	for i := range records {
		items = append(items, ToRecordListResponse(&records[i], now))
	}
	return items, total, nil
}

// ListPayments lists the payment registers
func (s *QueryService) ListPayments(ctx context.Context, tenantID uuid.UUID, filter PaymentListFilter) ([]PaymentResponse, int64, error) {
	domainFilter := ledger.PaymentFilter{
		Filter:       pageFilter(filter.Page, filter.PageSize, "paid_at", "desc", ""),
		Side:         ledger.Side(filter.Side),
		Method:       ledger.Method(filter.Method),
		ChequeStatus: ledger.ChequeStatus(filter.ChequeStatus),
		From:         filter.From,
		To:           filter.To,
	}
	if filter.Kind != "" {
		domainFilter.Kinds = []ledger.Kind{ledger.Kind(filter.Kind)}
	}

	entries, err := s.recordRepo.FindPayments(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.recordRepo.CountPayments(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	items := make([]PaymentResponse, 0, len(entries))
	for i := range entries {
		items = append(items, ToPaymentEntryResponse(&entries[i]))
	}
	return items, total, nil
}

func pageFilter(page, pageSize int, orderBy, orderDir, search string) shared.Filter {
	f := shared.DefaultFilter()
	if page > 0 {
		f.Page = page
	}
	if pageSize > 0 {
		f.PageSize = pageSize
	}
	if orderBy != "" {
		f.OrderBy = orderBy
	}
	if orderDir != "" {
		f.OrderDir = orderDir
	}
	f.Search = search
	return f
}
