package ledger

import (
	"context"
	"strings"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
)

// Role distinguishes customers from suppliers
type Role string

const (
	RoleCustomer Role = "customer"
	RoleSupplier Role = "supplier"
)

// IsValid checks if the role is known
func (r Role) IsValid() bool {
	return r == RoleCustomer || r == RoleSupplier
}

// Counterparty is the customer or supplier a ledger record is made out to
type Counterparty struct {
	shared.BaseEntity
	TenantID uuid.UUID
	Name     string
	Role     Role
	Phone    string
	Email    string
}

// NewCounterparty creates a counterparty
func NewCounterparty(tenantID uuid.UUID, name string, role Role, phone, email string) (*Counterparty, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("INVALID_NAME", "Counterparty name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewValidationError("INVALID_NAME", "Counterparty name cannot exceed 200 characters")
	}
	if !role.IsValid() {
		return nil, shared.NewValidationError("INVALID_ROLE", "Counterparty role must be customer or supplier")
	}
	return &Counterparty{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   tenantID,
		Name:       name,
		Role:       role,
		Phone:      strings.TrimSpace(phone),
		Email:      strings.TrimSpace(email),
	}, nil
}

// CounterpartyDirectory answers whether a customer or supplier exists.
// It is a read-only collaborator; the engine never writes through it.
type CounterpartyDirectory interface {
	Lookup(ctx context.Context, tenantID, id uuid.UUID, role Role) (*Counterparty, error)
}

// CounterpartyRepository stores counterparties locally
type CounterpartyRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Counterparty, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, role Role, filter shared.Filter) ([]Counterparty, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, role Role, filter shared.Filter) (int64, error)
	Save(ctx context.Context, counterparty *Counterparty) error
}

// ErrCounterpartyNotFound is returned when a counterparty is missing or has the wrong role
func ErrCounterpartyNotFound(id uuid.UUID, role Role) *shared.DomainError {
	return shared.NewNotFoundError(string(role), id)
}
