package partner

import (
	"context"

	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
)

// CounterpartyService maintains the local customer and supplier list
// used when no external partner directory is configured.
type CounterpartyService struct {
	repo ledger.CounterpartyRepository
}

// NewCounterpartyService creates a new CounterpartyService
func NewCounterpartyService(repo ledger.CounterpartyRepository) *CounterpartyService {
	return &CounterpartyService{repo: repo}
}

// Create registers a counterparty
func (s *CounterpartyService) Create(ctx context.Context, tenantID uuid.UUID, req CreateCounterpartyRequest) (*CounterpartyResponse, error) {
	c, err := ledger.NewCounterparty(tenantID, req.Name, ledger.Role(req.Role), req.Phone, req.Email)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	response := ToCounterpartyResponse(c)
	return &response, nil
}

// GetByID retrieves a counterparty
func (s *CounterpartyService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*CounterpartyResponse, error) {
	c, err := s.repo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	response := ToCounterpartyResponse(c)
	return &response, nil
}

// List lists counterparties, optionally restricted to one role
func (s *CounterpartyService) List(ctx context.Context, tenantID uuid.UUID, filter CounterpartyListFilter) ([]CounterpartyResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	domainFilter.OrderBy = "name"
	domainFilter.OrderDir = "asc"
	domainFilter.Search = filter.Search
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	role := ledger.Role(filter.Role)

	items, err := s.repo.FindAllForTenant(ctx, tenantID, role, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountForTenant(ctx, tenantID, role, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]CounterpartyResponse, len(items))
	for i := range items {
		responses[i] = ToCounterpartyResponse(&items[i])
	}
	return responses, total, nil
}
