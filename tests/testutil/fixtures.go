package testutil

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	catalogapp "github.com/erp/ledger/internal/application/catalog"
	"github.com/erp/ledger/internal/domain/catalog"
	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// Fixtures builds realistic catalog and counterparty data from a seeded faker,
// so a failing run can be replayed with the same seed.
type Fixtures struct {
	Faker    *gofakeit.Faker
	TenantID uuid.UUID
}

// NewFixtures creates fixtures for tenantID. seed 0 picks a random seed.
func NewFixtures(tenantID uuid.UUID, seed uint64) *Fixtures {
	return &Fixtures{
		Faker:    gofakeit.New(seed),
		TenantID: tenantID,
	}
}

// ProductCode returns a valid, upper-case product code
func (f *Fixtures) ProductCode() string {
	return "SKU-" + f.Faker.DigitN(8)
}

// Price returns a unit price between min and max, rounded to cents
func (f *Fixtures) Price(min, max float64) decimal.Decimal {
	return decimal.NewFromFloat(f.Faker.Price(min, max)).Round(2)
}

// Product builds a catalog product with onHand units in stock
func (f *Fixtures) Product(t *testing.T, onHand int64) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(f.TenantID, f.ProductCode(), f.Faker.ProductName(), f.Price(1, 500), onHand)
	require.NoError(t, err)
	return p
}

// ProductRequest builds a create-product request with onHand units in stock
func (f *Fixtures) ProductRequest(onHand int64) catalogapp.CreateProductRequest {
	return catalogapp.CreateProductRequest{
		Code:      f.ProductCode(),
		Name:      f.Faker.ProductName(),
		UnitPrice: f.Price(1, 500),
		OnHand:    onHand,
	}
}

// Customer builds a customer counterparty
func (f *Fixtures) Customer(t *testing.T) *ledger.Counterparty {
	t.Helper()
	return f.counterparty(t, ledger.RoleCustomer)
}

// Supplier builds a supplier counterparty
func (f *Fixtures) Supplier(t *testing.T) *ledger.Counterparty {
	t.Helper()
	return f.counterparty(t, ledger.RoleSupplier)
}

func (f *Fixtures) counterparty(t *testing.T, role ledger.Role) *ledger.Counterparty {
	t.Helper()
	cp, err := ledger.NewCounterparty(f.TenantID, f.Faker.Company(), role, f.Faker.Phone(), f.Faker.Email())
	require.NoError(t, err)
	return cp
}
