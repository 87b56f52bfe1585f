package rate

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRule_Validation(t *testing.T) {
	tenantID := uuid.New()

	tests := []struct {
		name    string
		build   func() (*Rule, error)
		errCode string
	}{
		{"empty name", func() (*Rule, error) {
			return NewTaxRule(tenantID, " ", KindPercentage, decimal.NewFromInt(18))
		}, "INVALID_RULE_NAME"},
		{"unknown kind", func() (*Rule, error) {
			return NewTaxRule(tenantID, "GST", Kind("ratio"), decimal.NewFromInt(18))
		}, "INVALID_RULE_KIND"},
		{"negative fixed", func() (*Rule, error) {
			return NewDiscountRule(tenantID, "Promo", KindFixed, decimal.NewFromInt(-1))
		}, "INVALID_RULE_VALUE"},
		{"percentage above 100", func() (*Rule, error) {
			return NewDiscountRule(tenantID, "Promo", KindPercentage, decimal.NewFromInt(101))
		}, "INVALID_RULE_VALUE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build()
			var domainErr *shared.DomainError
			require.True(t, errors.As(err, &domainErr))
			assert.Equal(t, tt.errCode, domainErr.Code)
		})
	}
}

func TestRule_AmountFor(t *testing.T) {
	tenantID := uuid.New()
	subtotal := decimal.NewFromInt(300)

	gst, err := NewTaxRule(tenantID, "GST 18%", KindPercentage, decimal.NewFromInt(18))
	require.NoError(t, err)
	assert.True(t, gst.AmountFor(subtotal).Equal(decimal.NewFromInt(54)))
	assert.True(t, gst.IsTax())

	flat, err := NewDiscountRule(tenantID, "Flat 50", KindFixed, decimal.NewFromInt(50))
	require.NoError(t, err)
	assert.True(t, flat.AmountFor(subtotal).Equal(decimal.NewFromInt(50)))
	assert.True(t, flat.IsDiscount())

	full, err := NewDiscountRule(tenantID, "Free", KindPercentage, decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.True(t, full.AmountFor(subtotal).Equal(subtotal))
}

func TestRule_Update(t *testing.T) {
	r, err := NewTaxRule(uuid.New(), "VAT", KindPercentage, decimal.NewFromInt(5))
	require.NoError(t, err)

	require.NoError(t, r.Update("VAT fixed", KindFixed, decimal.NewFromInt(12)))
	assert.Equal(t, KindFixed, r.Kind)
	assert.Equal(t, CategoryTax, r.Category)
	assert.Equal(t, 2, r.Version)

	assert.Error(t, r.Update("VAT", KindPercentage, decimal.NewFromInt(150)))
}

type stubRuleRepo struct {
	RuleRepository
	rules map[uuid.UUID]*Rule
}

func (s *stubRuleRepo) FindByIDForTenant(_ context.Context, _ uuid.UUID, id uuid.UUID) (*Rule, error) {
	if r, ok := s.rules[id]; ok {
		return r, nil
	}
	return nil, shared.ErrNotFound
}

func TestRepositoryRegistry(t *testing.T) {
	tenantID := uuid.New()
	tax, _ := NewTaxRule(tenantID, "GST", KindPercentage, decimal.NewFromInt(18))
	discount, _ := NewDiscountRule(tenantID, "Flat", KindFixed, decimal.NewFromInt(50))
	registry := NewRepositoryRegistry(&stubRuleRepo{rules: map[uuid.UUID]*Rule{
		tax.ID:      tax,
		discount.ID: discount,
	}})
	ctx := context.Background()

	got, err := registry.TaxRule(ctx, tenantID, tax.ID)
	require.NoError(t, err)
	assert.Equal(t, tax.ID, got.ID)

	_, err = registry.TaxRule(ctx, tenantID, discount.ID)
	assert.True(t, errors.Is(err, shared.ErrNotFound), "discount rule is not a tax rule")

	_, err = registry.DiscountRule(ctx, tenantID, uuid.New())
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}
