package catalog

import (
	"errors"
	"testing"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProduct(t *testing.T, onHand int64) *Product {
	t.Helper()
	p, err := NewProduct(uuid.New(), "sku-001", "Widget", decimal.NewFromInt(100), onHand)
	require.NoError(t, err)
	return p
}

func TestNewProduct(t *testing.T) {
	tenantID := uuid.New()

	t.Run("creates product with normalized code", func(t *testing.T) {
		p, err := NewProduct(tenantID, "sku-001", "Widget", decimal.NewFromInt(100), 10)
		require.NoError(t, err)

		assert.Equal(t, "SKU-001", p.Code)
		assert.Equal(t, int64(10), p.OnHand)
		assert.Equal(t, tenantID, p.TenantID)
		assert.Equal(t, 1, p.Version)
		require.Len(t, p.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeProductCreated, p.GetDomainEvents()[0].EventType())
	})

	tests := []struct {
		name    string
		code    string
		pName   string
		price   decimal.Decimal
		onHand  int64
		errCode string
	}{
		{"empty code", "", "Widget", decimal.NewFromInt(1), 0, "INVALID_CODE"},
		{"bad code chars", "sku 1", "Widget", decimal.NewFromInt(1), 0, "INVALID_CODE"},
		{"empty name", "SKU", "  ", decimal.NewFromInt(1), 0, "INVALID_NAME"},
		{"negative price", "SKU", "Widget", decimal.NewFromInt(-1), 0, "INVALID_PRICE"},
		{"negative stock", "SKU", "Widget", decimal.NewFromInt(1), -1, "INVALID_STOCK"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProduct(tenantID, tt.code, tt.pName, tt.price, tt.onHand)
			require.Error(t, err)

			var domainErr *shared.DomainError
			require.True(t, errors.As(err, &domainErr))
			assert.Equal(t, tt.errCode, domainErr.Code)
			assert.Equal(t, shared.KindValidation, domainErr.Kind)
		})
	}
}

func TestProduct_Withdraw(t *testing.T) {
	t.Run("removes stock and bumps version", func(t *testing.T) {
		p := newTestProduct(t, 10)

		require.NoError(t, p.Withdraw(3))
		assert.Equal(t, int64(7), p.OnHand)
		assert.Equal(t, 2, p.Version)
	})

	t.Run("exact on-hand quantity is allowed", func(t *testing.T) {
		p := newTestProduct(t, 5)

		require.NoError(t, p.Withdraw(5))
		assert.Equal(t, int64(0), p.OnHand)
	})

	t.Run("rejects more than on hand and leaves stock intact", func(t *testing.T) {
		p := newTestProduct(t, 5)

		err := p.Withdraw(6)
		assert.True(t, errors.Is(err, shared.ErrOutOfStock))
		assert.Equal(t, int64(5), p.OnHand)
		assert.Equal(t, 1, p.Version)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		p := newTestProduct(t, 5)

		assert.True(t, errors.Is(p.Withdraw(0), shared.ErrInvalidQuantity))
		assert.True(t, errors.Is(p.Withdraw(-2), shared.ErrInvalidQuantity))
	})
}

func TestProduct_Receive(t *testing.T) {
	p := newTestProduct(t, 2)

	require.NoError(t, p.Receive(4))
	assert.Equal(t, int64(6), p.OnHand)
	assert.True(t, errors.Is(p.Receive(0), shared.ErrInvalidQuantity))
}

func TestProduct_Update(t *testing.T) {
	p := newTestProduct(t, 1)
	p.ClearDomainEvents()

	require.NoError(t, p.Update("Widget Pro", decimal.NewFromInt(120)))
	assert.Equal(t, "Widget Pro", p.Name)
	assert.True(t, p.UnitPrice.Equal(decimal.NewFromInt(120)))
	require.Len(t, p.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeProductPriceChanged, p.GetDomainEvents()[0].EventType())

	p.ClearDomainEvents()
	require.NoError(t, p.Update("Widget Max", decimal.NewFromInt(120)))
	assert.Empty(t, p.GetDomainEvents(), "same price emits no price event")

	assert.Error(t, p.Update("", decimal.NewFromInt(1)))
}
