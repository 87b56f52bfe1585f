package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a sellable item with a unit price and an on-hand quantity.
// On-hand quantity is only changed by committed ledger records.
type Product struct {
	shared.TenantAggregateRoot
	Code      string
	Name      string
	UnitPrice decimal.Decimal
	OnHand    int64
}

// NewProduct creates a new product with its opening stock
func NewProduct(tenantID uuid.UUID, code, name string, unitPrice decimal.Decimal, onHand int64) (*Product, error) {
	if err := validateProductCode(code); err != nil {
		return nil, err
	}
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if err := validateUnitPrice(unitPrice); err != nil {
		return nil, err
	}
	if onHand < 0 {
		return nil, shared.NewValidationError("INVALID_STOCK", "On-hand quantity cannot be negative")
	}

	product := &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.ToUpper(code),
		Name:                name,
		UnitPrice:           unitPrice,
		OnHand:              onHand,
	}

	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// Update changes the product's name and unit price.
// Price changes do not affect lines already snapshotted into ledger records.
func (p *Product) Update(name string, unitPrice decimal.Decimal) error {
	if err := validateProductName(name); err != nil {
		return err
	}
	if err := validateUnitPrice(unitPrice); err != nil {
		return err
	}

	oldPrice := p.UnitPrice
	p.Name = name
	p.UnitPrice = unitPrice
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	if !oldPrice.Equal(unitPrice) {
		p.AddDomainEvent(NewProductPriceChangedEvent(p, oldPrice))
	}

	return nil
}

// CanSupply reports whether quantity can be taken from on-hand stock
func (p *Product) CanSupply(quantity int64) bool {
	return quantity <= p.OnHand
}

// Withdraw removes quantity from stock
func (p *Product) Withdraw(quantity int64) error {
	if quantity <= 0 {
		return shared.ErrInvalidQuantity
	}
	if !p.CanSupply(quantity) {
		return shared.ErrOutOfStock.WithMessage(
			"Product %s: requested %d exceeds on-hand %d", p.Code, quantity, p.OnHand)
	}
	p.OnHand -= quantity
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// Receive adds quantity to stock
func (p *Product) Receive(quantity int64) error {
	if quantity <= 0 {
		return shared.ErrInvalidQuantity
	}
	p.OnHand += quantity
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// String returns a short label used in logs and messages
func (p *Product) String() string {
	return fmt.Sprintf("%s (%s)", p.Name, p.Code)
}

// validateProductCode validates the product code (SKU)
func validateProductCode(code string) error {
	if code == "" {
		return shared.NewValidationError("INVALID_CODE", "Product code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewValidationError("INVALID_CODE", "Product code cannot exceed 50 characters")
	}
	for _, r := range code {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewValidationError("INVALID_CODE", "Product code can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

func validateProductName(name string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewValidationError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewValidationError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}

func validateUnitPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewValidationError("INVALID_PRICE", "Unit price cannot be negative")
	}
	return nil
}
