package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/erp/ledger/internal/domain/rate"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormRuleRepository implements rate.RuleRepository using GORM
type GormRuleRepository struct {
	db *gorm.DB
}

// NewGormRuleRepository creates a new GormRuleRepository
func NewGormRuleRepository(db *gorm.DB) *GormRuleRepository {
	return &GormRuleRepository{db: db}
}

// FindByIDForTenant finds a rule by ID within a tenant
func (r *GormRuleRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*rate.Rule, error) {
	var model models.RuleModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("rule", id)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists rules of a tenant, optionally of one category
func (r *GormRuleRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter rate.RuleFilter) ([]rate.Rule, error) {
	var rows []models.RuleModel
	query := applyPaging(r.filtered(ctx, tenantID, filter), filter.Filter, RuleSortFields, "name")
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	rules := make([]rate.Rule, len(rows))
	for i := range rows {
		rules[i] = *rows[i].ToDomain()
	}
	return rules, nil
}

// CountForTenant counts rules matching the filter
func (r *GormRuleRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter rate.RuleFilter) (int64, error) {
	var count int64
	if err := r.filtered(ctx, tenantID, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a rule
func (r *GormRuleRepository) Save(ctx context.Context, rule *rate.Rule) error {
	model := &models.RuleModel{}
	model.FromDomain(rule)
	return r.db.WithContext(ctx).Save(model).Error
}

// DeleteForTenant deletes a rule within a tenant. Records keep the amounts
// they were priced with, so deleting a rule never changes a ledger record.
func (r *GormRuleRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&models.RuleModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("rule", id)
	}
	return nil
}

func (r *GormRuleRepository) filtered(ctx context.Context, tenantID uuid.UUID, filter rate.RuleFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.RuleModel{}).Where("tenant_id = ?", tenantID)
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(filter.Search)+"%")
	}
	return query
}

var _ rate.RuleRepository = (*GormRuleRepository)(nil)
