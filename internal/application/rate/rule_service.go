package rate

import (
	"context"

	"github.com/erp/ledger/internal/domain/rate"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
)

// RuleService manages the named tax and discount rules
type RuleService struct {
	ruleRepo rate.RuleRepository
}

// NewRuleService creates a new RuleService
func NewRuleService(ruleRepo rate.RuleRepository) *RuleService {
	return &RuleService{ruleRepo: ruleRepo}
}

// CreateTax creates a tax rule
func (s *RuleService) CreateTax(ctx context.Context, tenantID uuid.UUID, req CreateRuleRequest) (*RuleResponse, error) {
	return s.create(ctx, tenantID, rate.CategoryTax, req)
}

// CreateDiscount creates a discount rule
func (s *RuleService) CreateDiscount(ctx context.Context, tenantID uuid.UUID, req CreateRuleRequest) (*RuleResponse, error) {
	return s.create(ctx, tenantID, rate.CategoryDiscount, req)
}

func (s *RuleService) create(ctx context.Context, tenantID uuid.UUID, category rate.Category, req CreateRuleRequest) (*RuleResponse, error) {
	var (
		rule *rate.Rule
		err  error
	)
	if category == rate.CategoryTax {
		rule, err = rate.NewTaxRule(tenantID, req.Name, rate.Kind(req.Kind), req.Value)
	} else {
		rule, err = rate.NewDiscountRule(tenantID, req.Name, rate.Kind(req.Kind), req.Value)
	}
	if err != nil {
		return nil, err
	}
	if req.CreatedBy != nil {
		rule.SetCreatedBy(*req.CreatedBy)
	}

	if err := s.ruleRepo.Save(ctx, rule); err != nil {
		return nil, err
	}

	response := ToRuleResponse(rule)
	return &response, nil
}

// GetByID retrieves a rule by ID
func (s *RuleService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*RuleResponse, error) {
	rule, err := s.ruleRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	response := ToRuleResponse(rule)
	return &response, nil
}

// List lists rules of one category
func (s *RuleService) List(ctx context.Context, tenantID uuid.UUID, category rate.Category, filter RuleListFilter) ([]RuleResponse, int64, error) {
	domainFilter := rate.RuleFilter{Filter: shared.DefaultFilter(), Category: category}
	domainFilter.OrderBy = "name"
	domainFilter.OrderDir = "asc"
	domainFilter.Search = filter.Search
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}

	rules, err := s.ruleRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.ruleRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	items := make([]RuleResponse, len(rules))
	for i := range rules {
		items[i] = ToRuleResponse(&rules[i])
	}
	return items, total, nil
}

// Update changes a rule. Committed ledger records keep the amounts they were priced with.
func (s *RuleService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateRuleRequest) (*RuleResponse, error) {
	rule, err := s.ruleRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	name, kind, value := rule.Name, rule.Kind, rule.Value
	if req.Name != nil {
		name = *req.Name
	}
	if req.Kind != nil {
		kind = rate.Kind(*req.Kind)
	}
	if req.Value != nil {
		value = *req.Value
	}
	if err := rule.Update(name, kind, value); err != nil {
		return nil, err
	}

	if err := s.ruleRepo.Save(ctx, rule); err != nil {
		return nil, err
	}

	response := ToRuleResponse(rule)
	return &response, nil
}

// Delete removes a rule
func (s *RuleService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.ruleRepo.FindByIDForTenant(ctx, tenantID, id); err != nil {
		return err
	}
	return s.ruleRepo.DeleteForTenant(ctx, tenantID, id)
}
