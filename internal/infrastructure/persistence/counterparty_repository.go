package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCounterpartyRepository implements ledger.CounterpartyRepository using GORM.
// It also serves as the local ledger.CounterpartyDirectory.
type GormCounterpartyRepository struct {
	db *gorm.DB
}

// NewGormCounterpartyRepository creates a new GormCounterpartyRepository
func NewGormCounterpartyRepository(db *gorm.DB) *GormCounterpartyRepository {
	return &GormCounterpartyRepository{db: db}
}

// FindByIDForTenant finds a counterparty by ID within a tenant
func (r *GormCounterpartyRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Counterparty, error) {
	var model models.CounterpartyModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("counterparty", id)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists counterparties, optionally of one role
func (r *GormCounterpartyRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, role ledger.Role, filter shared.Filter) ([]ledger.Counterparty, error) {
	var rows []models.CounterpartyModel
	query := applyPaging(r.filtered(ctx, tenantID, role, filter), filter, CounterpartySortFields, "name")
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]ledger.Counterparty, len(rows))
	for i := range rows {
		items[i] = *rows[i].ToDomain()
	}
	return items, nil
}

// CountForTenant counts counterparties matching the filter
func (r *GormCounterpartyRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, role ledger.Role, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.filtered(ctx, tenantID, role, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a counterparty
func (r *GormCounterpartyRepository) Save(ctx context.Context, counterparty *ledger.Counterparty) error {
	model := &models.CounterpartyModel{}
	model.FromDomain(counterparty)
	return r.db.WithContext(ctx).Save(model).Error
}

// Lookup returns the counterparty if it exists in the tenant with the given role
func (r *GormCounterpartyRepository) Lookup(ctx context.Context, tenantID, id uuid.UUID, role ledger.Role) (*ledger.Counterparty, error) {
	var model models.CounterpartyModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ? AND role = ?", tenantID, id, role).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledger.ErrCounterpartyNotFound(id, role)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormCounterpartyRepository) filtered(ctx context.Context, tenantID uuid.UUID, role ledger.Role, filter shared.Filter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.CounterpartyModel{}).Where("tenant_id = ?", tenantID)
	if role != "" {
		query = query.Where("role = ?", role)
	}
	if filter.Search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(filter.Search)+"%")
	}
	return query
}

var (
	_ ledger.CounterpartyRepository = (*GormCounterpartyRepository)(nil)
	_ ledger.CounterpartyDirectory  = (*GormCounterpartyRepository)(nil)
)
