package models

import (
	"github.com/erp/ledger/internal/domain/rate"
	"github.com/shopspring/decimal"
)

// RuleModel is the persistence model for rate.Rule
type RuleModel struct {
	TenantAggregateModel
	Name     string          `gorm:"type:varchar(100);not null"`
	Category rate.Category   `gorm:"type:varchar(20);not null;index"`
	Kind     rate.Kind       `gorm:"type:varchar(20);not null"`
	Value    decimal.Decimal `gorm:"type:numeric;not null"`
}

// TableName returns the table name for GORM
func (RuleModel) TableName() string {
	return "rate_rules"
}

// ToDomain converts the model to a domain Rule
func (m *RuleModel) ToDomain() *rate.Rule {
	return &rate.Rule{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		Name:                m.Name,
		Category:            m.Category,
		Kind:                m.Kind,
		Value:               m.Value,
	}
}

// FromDomain populates the model from a domain Rule
func (m *RuleModel) FromDomain(r *rate.Rule) {
	m.FromDomainTenantAggregateRoot(r.TenantAggregateRoot)
	m.Name = r.Name
	m.Category = r.Category
	m.Kind = r.Kind
	m.Value = r.Value
}
