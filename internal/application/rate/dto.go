package rate

import (
	"time"

	"github.com/erp/ledger/internal/domain/rate"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateRuleRequest represents a request to create a tax or discount rule
type CreateRuleRequest struct {
	Name      string          `json:"name" binding:"required,min=1,max=100"`
	Kind      string          `json:"kind" binding:"required,oneof=percentage fixed"`
	Value     decimal.Decimal `json:"value"`
	CreatedBy *uuid.UUID      `json:"-"`
}

// UpdateRuleRequest represents a request to update a rule
type UpdateRuleRequest struct {
	Name  *string          `json:"name" binding:"omitempty,min=1,max=100"`
	Kind  *string          `json:"kind" binding:"omitempty,oneof=percentage fixed"`
	Value *decimal.Decimal `json:"value"`
}

// RuleResponse represents a rule in API responses
type RuleResponse struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Kind      string          `json:"kind"`
	Value     decimal.Decimal `json:"value"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Version   int             `json:"version"`
}

// RuleListFilter represents filter options for rule lists
type RuleListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ToRuleResponse converts a domain Rule to RuleResponse
func ToRuleResponse(r *rate.Rule) RuleResponse {
	return RuleResponse{
		ID:        r.ID,
		Name:      r.Name,
		Category:  string(r.Category),
		Kind:      string(r.Kind),
		Value:     r.Value,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		Version:   r.Version,
	}
}
