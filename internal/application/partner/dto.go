package partner

import (
	"time"

	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/google/uuid"
)

// CreateCounterpartyRequest represents a request to register a customer or supplier
type CreateCounterpartyRequest struct {
	Name  string `json:"name" binding:"required,min=1,max=200"`
	Role  string `json:"role" binding:"required,oneof=customer supplier"`
	Phone string `json:"phone" binding:"omitempty,max=50"`
	Email string `json:"email" binding:"omitempty,email,max=200"`
}

// CounterpartyResponse represents a counterparty in API responses
type CounterpartyResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CounterpartyListFilter represents filter options for counterparty lists
type CounterpartyListFilter struct {
	Role     string `form:"role" binding:"omitempty,oneof=customer supplier"`
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ToCounterpartyResponse converts a domain Counterparty to CounterpartyResponse
func ToCounterpartyResponse(c *ledger.Counterparty) CounterpartyResponse {
	return CounterpartyResponse{
		ID:        c.ID,
		Name:      c.Name,
		Role:      string(c.Role),
		Phone:     c.Phone,
		Email:     c.Email,
		CreatedAt: c.CreatedAt,
	}
}
