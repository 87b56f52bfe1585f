package rate

import (
	"strings"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category tells whether a rule adds to or subtracts from an invoice
type Category string

const (
	CategoryTax      Category = "tax"
	CategoryDiscount Category = "discount"
)

// IsValid checks if the category is known
func (c Category) IsValid() bool {
	return c == CategoryTax || c == CategoryDiscount
}

// Kind is how a rule's value is interpreted
type Kind string

const (
	KindPercentage Kind = "percentage" // value is a percent of the subtotal
	KindFixed      Kind = "fixed"      // value is an absolute amount
)

// IsValid checks if the kind is known
func (k Kind) IsValid() bool {
	return k == KindPercentage || k == KindFixed
}

var hundred = decimal.NewFromInt(100)

// Rule is a named tax or discount applied once per invoice against its subtotal
type Rule struct {
	shared.TenantAggregateRoot
	Name     string
	Category Category
	Kind     Kind
	Value    decimal.Decimal
}

// NewTaxRule creates a tax rule
func NewTaxRule(tenantID uuid.UUID, name string, kind Kind, value decimal.Decimal) (*Rule, error) {
	return newRule(tenantID, name, CategoryTax, kind, value)
}

// NewDiscountRule creates a discount rule
func NewDiscountRule(tenantID uuid.UUID, name string, kind Kind, value decimal.Decimal) (*Rule, error) {
	return newRule(tenantID, name, CategoryDiscount, kind, value)
}

func newRule(tenantID uuid.UUID, name string, category Category, kind Kind, value decimal.Decimal) (*Rule, error) {
	if err := validateRuleName(name); err != nil {
		return nil, err
	}
	if !category.IsValid() {
		return nil, shared.NewValidationError("INVALID_RULE_CATEGORY", "Rule category must be tax or discount")
	}
	if err := validateRuleValue(kind, value); err != nil {
		return nil, err
	}

	return &Rule{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                strings.TrimSpace(name),
		Category:            category,
		Kind:                kind,
		Value:               value,
	}, nil
}

// Update replaces the rule's name, kind and value. The category is fixed.
func (r *Rule) Update(name string, kind Kind, value decimal.Decimal) error {
	if err := validateRuleName(name); err != nil {
		return err
	}
	if err := validateRuleValue(kind, value); err != nil {
		return err
	}
	r.Name = strings.TrimSpace(name)
	r.Kind = kind
	r.Value = value
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
	return nil
}

// IsTax reports whether the rule is a tax rule
func (r *Rule) IsTax() bool {
	return r.Category == CategoryTax
}

// IsDiscount reports whether the rule is a discount rule
func (r *Rule) IsDiscount() bool {
	return r.Category == CategoryDiscount
}

// AmountFor computes the rule's raw amount against a subtotal.
// No rounding is applied; clamping is the invoice's concern.
func (r *Rule) AmountFor(subtotal decimal.Decimal) decimal.Decimal {
	switch r.Kind {
	case KindPercentage:
		return subtotal.Mul(r.Value).Div(hundred)
	case KindFixed:
		return r.Value
	default:
		return decimal.Zero
	}
}

func validateRuleName(name string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewValidationError("INVALID_RULE_NAME", "Rule name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewValidationError("INVALID_RULE_NAME", "Rule name cannot exceed 100 characters")
	}
	return nil
}

func validateRuleValue(kind Kind, value decimal.Decimal) error {
	if !kind.IsValid() {
		return shared.NewValidationError("INVALID_RULE_KIND", "Rule kind must be percentage or fixed")
	}
	if value.IsNegative() {
		return shared.NewValidationError("INVALID_RULE_VALUE", "Rule value cannot be negative")
	}
	if kind == KindPercentage && value.GreaterThan(hundred) {
		return shared.NewValidationError("INVALID_RULE_VALUE", "Percentage value must be between 0 and 100")
	}
	return nil
}
