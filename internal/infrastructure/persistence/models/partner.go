package models

import (
	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/google/uuid"
)

// CounterpartyModel is the persistence model for ledger.Counterparty
type CounterpartyModel struct {
	BaseModel
	TenantID uuid.UUID   `gorm:"type:uuid;not null;index"`
	Name     string      `gorm:"type:varchar(200);not null"`
	Role     ledger.Role `gorm:"type:varchar(20);not null;index"`
	Phone    string      `gorm:"type:varchar(50)"`
	Email    string      `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (CounterpartyModel) TableName() string {
	return "counterparties"
}

// ToDomain converts the model to a domain Counterparty
func (m *CounterpartyModel) ToDomain() *ledger.Counterparty {
	return &ledger.Counterparty{
		BaseEntity: m.BaseModel.ToDomain(),
		TenantID:   m.TenantID,
		Name:       m.Name,
		Role:       m.Role,
		Phone:      m.Phone,
		Email:      m.Email,
	}
}

// FromDomain populates the model from a domain Counterparty
func (m *CounterpartyModel) FromDomain(c *ledger.Counterparty) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.TenantID = c.TenantID
	m.Name = c.Name
	m.Role = c.Role
	m.Phone = c.Phone
	m.Email = c.Email
}
