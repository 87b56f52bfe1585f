package invoice

import (
	"math"
	"time"

	"github.com/erp/ledger/internal/domain/catalog"
	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/domain/rate"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Line is a line item of an uncommitted invoice
type Line struct {
	ProductID   uuid.UUID
	ProductCode string
	ProductName string
	Quantity    int64
	UnitPrice   decimal.Decimal
}

// Total returns quantity times unit price
func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity))
}

// Totals are the priced amounts of an invoice
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// StockMovement is the stock change a committed invoice makes to one product
type StockMovement struct {
	ProductID uuid.UUID
	Quantity  int64
	Direction ledger.StockDirection
}

// Draft builds an invoice in memory. Nothing is persisted and no stock is
// reserved until the draft is committed.
type Draft struct {
	tenantID uuid.UUID
	kind     ledger.Kind
	lines    []Line
	index    map[uuid.UUID]int
	tax      *rate.Rule
	discount *rate.Rule
}

// NewDraft starts an empty invoice of the given kind
func NewDraft(tenantID uuid.UUID, kind ledger.Kind) (*Draft, error) {
	if !kind.IsValid() {
		return nil, shared.NewValidationError("INVALID_KIND", "Unknown ledger record kind")
	}
	return &Draft{
		tenantID: tenantID,
		kind:     kind,
		lines:    make([]Line, 0),
		index:    make(map[uuid.UUID]int),
	}, nil
}

// Kind returns the kind of record the draft will commit to
func (d *Draft) Kind() ledger.Kind {
	return d.kind
}

// Lines returns the line items in insertion order
func (d *Draft) Lines() []Line {
	out := make([]Line, len(d.lines))
	copy(out, d.lines)
	return out
}

// IsEmpty reports whether the draft has no lines
func (d *Draft) IsEmpty() bool {
	return len(d.lines) == 0
}

// AddLine adds quantity of a product at its catalog price
func (d *Draft) AddLine(product *catalog.Product, quantity int64) error {
	if product == nil {
		return shared.NewValidationError("INVALID_PRODUCT", "Product is required")
	}
	return d.AddPricedLine(product, quantity, product.UnitPrice)
}

// AddPricedLine adds quantity of a product at an explicit unit price.
// A product already on the draft has its quantity merged, and the merged
// quantity is checked against stock as one request.
func (d *Draft) AddPricedLine(product *catalog.Product, quantity int64, unitPrice decimal.Decimal) error {
	if product == nil {
		return shared.NewValidationError("INVALID_PRODUCT", "Product is required")
	}
	if !product.BelongsTo(d.tenantID) {
		return shared.NewNotFoundError("product", product.ID)
	}
	if quantity <= 0 {
		return shared.ErrInvalidQuantity
	}
	if unitPrice.IsNegative() {
		return shared.NewValidationError("INVALID_PRICE", "Unit price cannot be negative")
	}

	pos, exists := d.index[product.ID]
	requested := quantity
	if exists {
		if !d.lines[pos].UnitPrice.Equal(unitPrice) {
			return shared.NewValidationError("INVALID_PRICE", "Product is already on the invoice at a different unit price")
		}
		if quantity > math.MaxInt64-d.lines[pos].Quantity {
			return shared.ErrInvalidQuantity.WithMessage("Merged quantity for product %s is too large", product.Code)
		}
		requested += d.lines[pos].Quantity
	}

	if d.kind.RemovesStock() && !product.CanSupply(requested) {
		return shared.ErrOutOfStock.WithMessage("Product %s: requested %d, on hand %d", product.Code, requested, product.OnHand)
	}

	if exists {
		d.lines[pos].Quantity = requested
		return nil
	}
	d.index[product.ID] = len(d.lines)
	d.lines = append(d.lines, Line{
		ProductID:   product.ID,
		ProductCode: product.Code,
		ProductName: product.Name,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
	})
	return nil
}

// RemoveLine drops a product from the draft
func (d *Draft) RemoveLine(productID uuid.UUID) {
	pos, ok := d.index[productID]
	if !ok {
		return
	}
	d.lines = append(d.lines[:pos], d.lines[pos+1:]...)
	delete(d.index, productID)
	for i := pos; i < len(d.lines); i++ {
		d.index[d.lines[i].ProductID] = i
	}
}

// ApplyTax sets the invoice's tax rule. Nil clears it.
func (d *Draft) ApplyTax(rule *rate.Rule) error {
	if rule != nil && !rule.IsTax() {
		return shared.NewValidationError("INVALID_RULE_CATEGORY", "Rule "+rule.Name+" is not a tax rule")
	}
	d.tax = rule
	return nil
}

// ApplyDiscount sets the invoice's discount rule. Nil clears it.
func (d *Draft) ApplyDiscount(rule *rate.Rule) error {
	if rule != nil && !rule.IsDiscount() {
		return shared.NewValidationError("INVALID_RULE_CATEGORY", "Rule "+rule.Name+" is not a discount rule")
	}
	d.discount = rule
	return nil
}

// TaxRule returns the applied tax rule, or nil
func (d *Draft) TaxRule() *rate.Rule {
	return d.tax
}

// DiscountRule returns the applied discount rule, or nil
func (d *Draft) DiscountRule() *rate.Rule {
	return d.discount
}

// Totals prices the draft. Tax and discount are both computed against the
// subtotal; the discount is capped at subtotal plus tax so the total never
// goes below zero. No intermediate value is rounded.
func (d *Draft) Totals() Totals {
	subtotal := decimal.Zero
	for _, l := range d.lines {
		subtotal = subtotal.Add(l.Total())
	}

	tax := decimal.Zero
	if d.tax != nil {
		tax = d.tax.AmountFor(subtotal)
	}

	gross := subtotal.Add(tax)
	discount := decimal.Zero
	if d.discount != nil {
		discount = decimal.Min(d.discount.AmountFor(subtotal), gross)
	}

	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Discount: discount,
		Total:    gross.Sub(discount),
	}
}

// Verify compares client-supplied totals with the computed ones and fails
// with ErrTotalsMismatch when any amount differs by more than tolerance
func (d *Draft) Verify(claimed Totals, tolerance decimal.Decimal) error {
	computed := d.Totals()
	checks := []struct {
		name     string
		got, exp decimal.Decimal
	}{
		{"subtotal", claimed.Subtotal, computed.Subtotal},
		{"tax", claimed.Tax, computed.Tax},
		{"discount", claimed.Discount, computed.Discount},
		{"total", claimed.Total, computed.Total},
	}
	for _, c := range checks {
		if c.got.Sub(c.exp).Abs().GreaterThan(tolerance) {
			return shared.ErrTotalsMismatch.WithMessage("Submitted %s %s does not match computed %s", c.name, c.got.String(), c.exp.String())
		}
	}
	return nil
}

// StockMovements returns the stock change per product that committing makes
func (d *Draft) StockMovements() []StockMovement {
	out := make([]StockMovement, 0, len(d.lines))
	for _, l := range d.lines {
		out = append(out, StockMovement{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Direction: d.kind.StockDirection(),
		})
	}
	return out
}

// FinalizeInput carries the record attributes not held by the draft
type FinalizeInput struct {
	CounterpartyID   uuid.UUID
	CounterpartyName string
	OriginID         *uuid.UUID
	DueDate          time.Time
	Remark           string
	CreatedBy        uuid.UUID
}

// Finalize snapshots the draft into a pending ledger record.
// Stock movement is the caller's job and must happen in the same transaction.
func (d *Draft) Finalize(in FinalizeInput) (*ledger.Record, error) {
	if d.IsEmpty() {
		return nil, shared.NewValidationError("EMPTY_INVOICE", "Invoice must have at least one line")
	}

	totals := d.Totals()
	lines := make([]ledger.Line, 0, len(d.lines))
	for _, l := range d.lines {
		lines = append(lines, ledger.Line{
			ProductID:   l.ProductID,
			ProductCode: l.ProductCode,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
		})
	}

	return ledger.NewRecord(ledger.NewRecordInput{
		TenantID:         d.tenantID,
		Kind:             d.kind,
		CounterpartyID:   in.CounterpartyID,
		CounterpartyName: in.CounterpartyName,
		OriginID:         in.OriginID,
		Lines:            lines,
		Subtotal:         totals.Subtotal,
		TaxRuleID:        ruleID(d.tax),
		TaxAmount:        totals.Tax,
		DiscountRuleID:   ruleID(d.discount),
		DiscountAmount:   totals.Discount,
		DueDate:          in.DueDate,
		Remark:           in.Remark,
		CreatedBy:        in.CreatedBy,
	})
}

func ruleID(r *rate.Rule) *uuid.UUID {
	if r == nil {
		return nil
	}
	id := r.ID
	return &id
}
