package rate

import (
	"context"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
)

// RuleFilter narrows rule listings
type RuleFilter struct {
	shared.Filter
	Category Category
}

// RuleRepository defines the interface for rule persistence
type RuleRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Rule, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter RuleFilter) ([]Rule, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter RuleFilter) (int64, error)
	Save(ctx context.Context, rule *Rule) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}

// Registry resolves the tax and discount rules named on an invoice.
// It is passed to the invoice builder per request.
type Registry interface {
	TaxRule(ctx context.Context, tenantID, id uuid.UUID) (*Rule, error)
	DiscountRule(ctx context.Context, tenantID, id uuid.UUID) (*Rule, error)
}

// RepositoryRegistry is a Registry backed by a RuleRepository
type RepositoryRegistry struct {
	repo RuleRepository
}

// NewRepositoryRegistry creates a registry over the rule repository
func NewRepositoryRegistry(repo RuleRepository) *RepositoryRegistry {
	return &RepositoryRegistry{repo: repo}
}

// TaxRule returns the tax rule with the given ID
func (r *RepositoryRegistry) TaxRule(ctx context.Context, tenantID, id uuid.UUID) (*Rule, error) {
	return r.lookup(ctx, tenantID, id, CategoryTax)
}

// DiscountRule returns the discount rule with the given ID
func (r *RepositoryRegistry) DiscountRule(ctx context.Context, tenantID, id uuid.UUID) (*Rule, error) {
	return r.lookup(ctx, tenantID, id, CategoryDiscount)
}

func (r *RepositoryRegistry) lookup(ctx context.Context, tenantID, id uuid.UUID, category Category) (*Rule, error) {
	rule, err := r.repo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if rule.Category != category {
		return nil, shared.NewNotFoundError(string(category)+" rule", id)
	}
	return rule, nil
}

var _ Registry = (*RepositoryRegistry)(nil)
