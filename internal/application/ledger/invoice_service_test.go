package ledger

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/erp/ledger/internal/domain/catalog"
	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/domain/rate"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type invoiceTestEnv struct {
	tenantID  uuid.UUID
	customer  *ledger.Counterparty
	supplier  *ledger.Counterparty
	product   *catalog.Product
	gst       *rate.Rule
	flat50    *rate.Rule
	products  *MockProductRepository
	records   *MockRecordRepository
	registry  *MockRegistry
	directory *MockDirectory
	publisher *MockEventPublisher
	service   *InvoiceService
}

func newInvoiceTestEnv(t *testing.T) *invoiceTestEnv {
	t.Helper()
	tenantID := uuid.New()

	product, err := catalog.NewProduct(tenantID, "P-1", "Widget", decimal.NewFromInt(100), 10)
	require.NoError(t, err)
	gst, err := rate.NewTaxRule(tenantID, "GST 18%", rate.KindPercentage, decimal.NewFromInt(18))
	require.NoError(t, err)
	flat50, err := rate.NewDiscountRule(tenantID, "Flat 50", rate.KindFixed, decimal.NewFromInt(50))
	require.NoError(t, err)
	customer, err := ledger.NewCounterparty(tenantID, "Acme Retail", ledger.RoleCustomer, "", "")
	require.NoError(t, err)
	supplier, err := ledger.NewCounterparty(tenantID, "Bolt Supply", ledger.RoleSupplier, "", "")
	require.NoError(t, err)

	env := &invoiceTestEnv{
		tenantID:  tenantID,
		customer:  customer,
		supplier:  supplier,
		product:   product,
		gst:       gst,
		flat50:    flat50,
		products:  new(MockProductRepository),
		records:   new(MockRecordRepository),
		registry:  new(MockRegistry),
		directory: new(MockDirectory),
		publisher: new(MockEventPublisher),
	}
	env.service = NewInvoiceService(
		env.products,
		env.records,
		env.registry,
		env.directory,
		NewNoOpTransactionScope(env.products, env.records),
		DefaultOptions(),
		nil,
	)
	env.service.SetEventPublisher(env.publisher)

	env.products.On("FindByIDs", mock.Anything, tenantID, mock.Anything).Return([]catalog.Product{*product}, nil).Maybe()
	env.registry.On("TaxRule", mock.Anything, tenantID, gst.ID).Return(gst, nil).Maybe()
	env.registry.On("DiscountRule", mock.Anything, tenantID, flat50.ID).Return(flat50, nil).Maybe()
	env.directory.On("Lookup", mock.Anything, tenantID, customer.ID, ledger.RoleCustomer).Return(customer, nil).Maybe()
	env.directory.On("Lookup", mock.Anything, tenantID, supplier.ID, ledger.RoleSupplier).Return(supplier, nil).Maybe()
	env.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()

	return env
}

func (e *invoiceTestEnv) saleRequest(qty int64) InvoiceRequest {
	return InvoiceRequest{
		CounterpartyID: e.customer.ID,
		Lines:          []LineRequest{{ProductID: e.product.ID, Quantity: qty}},
		TaxRuleID:      &e.gst.ID,
		DiscountRuleID: &e.flat50.ID,
	}
}

func requireAmount(t *testing.T, want int64, got decimal.Decimal) {
	t.Helper()
	require.True(t, got.Equal(decimal.NewFromInt(want)), "want %d, got %s", want, got)
}

// ==================== Quote ====================

func TestInvoiceService_Quote(t *testing.T) {
	env := newInvoiceTestEnv(t)

	resp, err := env.service.Quote(context.Background(), env.tenantID, ledger.KindSale, env.saleRequest(3))
	require.NoError(t, err)

	requireAmount(t, 300, resp.Subtotal)
	requireAmount(t, 54, resp.Tax)
	requireAmount(t, 50, resp.Discount)
	requireAmount(t, 304, resp.Total)
	env.products.AssertNotCalled(t, "WithdrawStock", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	env.records.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestInvoiceService_Quote_UnknownProduct(t *testing.T) {
	env := newInvoiceTestEnv(t)
	req := env.saleRequest(1)
	req.Lines = append(req.Lines, LineRequest{ProductID: uuid.New(), Quantity: 1})

	_, err := env.service.Quote(context.Background(), env.tenantID, ledger.KindSale, req)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestInvoiceService_Quote_UnknownRule(t *testing.T) {
	env := newInvoiceTestEnv(t)
	missing := uuid.New()
	env.registry.On("TaxRule", mock.Anything, env.tenantID, missing).Return(nil, shared.NewNotFoundError("tax rule", missing))

	req := env.saleRequest(1)
	req.TaxRuleID = &missing
	_, err := env.service.Quote(context.Background(), env.tenantID, ledger.KindSale, req)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

// ==================== Commit ====================

func TestInvoiceService_Commit_Sale(t *testing.T) {
	env := newInvoiceTestEnv(t)
	env.products.On("WithdrawStock", mock.Anything, env.tenantID, env.product.ID, int64(3)).Return(true, nil).Once()
	env.records.On("Create", mock.Anything, mock.AnythingOfType("*ledger.Record")).Return(nil).Once()

	resp, err := env.service.Commit(context.Background(), env.tenantID, ledger.KindSale, env.saleRequest(3))
	require.NoError(t, err)

	requireAmount(t, 304, resp.Total)
	requireAmount(t, 304, resp.Balance)
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, "Acme Retail", resp.CounterpartyName)
	assert.Equal(t, "receivable", resp.Side)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 30), resp.DueDate, time.Minute)

	env.products.AssertExpectations(t)
	env.records.AssertExpectations(t)
	env.publisher.AssertCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestInvoiceService_Commit_StaleStockWritesNothing(t *testing.T) {
	env := newInvoiceTestEnv(t)
	metrics := new(MockMetrics)
	metrics.On("RecordStockConflict", mock.Anything, env.tenantID, "sale").Once()
	env.service.SetMetrics(metrics)
	env.products.On("WithdrawStock", mock.Anything, env.tenantID, env.product.ID, int64(6)).Return(false, nil).Once()

	_, err := env.service.Commit(context.Background(), env.tenantID, ledger.KindSale, env.saleRequest(6))
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrStaleStock))
	assert.Equal(t, shared.KindStock, shared.KindOf(err))

	env.records.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	env.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	metrics.AssertExpectations(t)
}

func TestInvoiceService_Commit_OutOfStockBeforeTransaction(t *testing.T) {
	env := newInvoiceTestEnv(t)

	_, err := env.service.Commit(context.Background(), env.tenantID, ledger.KindSale, env.saleRequest(11))
	assert.True(t, errors.Is(err, shared.ErrOutOfStock))
	env.products.AssertNotCalled(t, "WithdrawStock", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestInvoiceService_Commit_TotalsMismatch(t *testing.T) {
	env := newInvoiceTestEnv(t)
	req := env.saleRequest(3)
	req.ExpectedTotals = &TotalsRequest{
		Subtotal: decimal.NewFromInt(300),
		Tax:      decimal.NewFromInt(54),
		Discount: decimal.NewFromInt(50),
		Total:    decimal.NewFromInt(300),
	}

	_, err := env.service.Commit(context.Background(), env.tenantID, ledger.KindSale, req)
	assert.True(t, errors.Is(err, shared.ErrTotalsMismatch))
	env.products.AssertNotCalled(t, "WithdrawStock", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestInvoiceService_Commit_UnknownCounterparty(t *testing.T) {
	env := newInvoiceTestEnv(t)
	req := env.saleRequest(1)
	req.CounterpartyID = env.supplier.ID
	env.directory.On("Lookup", mock.Anything, env.tenantID, env.supplier.ID, ledger.RoleCustomer).
		Return(nil, ledger.ErrCounterpartyNotFound(env.supplier.ID, ledger.RoleCustomer))

	_, err := env.service.Commit(context.Background(), env.tenantID, ledger.KindSale, req)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestInvoiceService_Commit_PurchaseReceivesStock(t *testing.T) {
	env := newInvoiceTestEnv(t)
	cost := decimal.NewFromInt(70)
	env.products.On("ReceiveStock", mock.Anything, env.tenantID, env.product.ID, int64(20)).Return(nil).Once()
	env.records.On("Create", mock.Anything, mock.AnythingOfType("*ledger.Record")).Return(nil).Once()

	resp, err := env.service.Commit(context.Background(), env.tenantID, ledger.KindPurchase, InvoiceRequest{
		CounterpartyID: env.supplier.ID,
		Lines:          []LineRequest{{ProductID: env.product.ID, Quantity: 20, UnitPrice: &cost}},
	})
	require.NoError(t, err)

	requireAmount(t, 1400, resp.Total)
	assert.Equal(t, "payable", resp.Side)
	assert.Regexp(t, `^PU-`, resp.Number)
	env.products.AssertExpectations(t)
}

func TestInvoiceService_Commit_SalePriceIgnoresClientPrice(t *testing.T) {
	env := newInvoiceTestEnv(t)
	cheap := decimal.NewFromInt(1)
	env.products.On("WithdrawStock", mock.Anything, env.tenantID, env.product.ID, int64(1)).Return(true, nil)
	env.records.On("Create", mock.Anything, mock.Anything).Return(nil)

	resp, err := env.service.Commit(context.Background(), env.tenantID, ledger.KindSale, InvoiceRequest{
		CounterpartyID: env.customer.ID,
		Lines:          []LineRequest{{ProductID: env.product.ID, Quantity: 1, UnitPrice: &cheap}},
	})
	require.NoError(t, err)
	requireAmount(t, 100, resp.Total)
}

// ==================== Returns ====================

func (e *invoiceTestEnv) committedSale(t *testing.T, qty int64) *ledger.Record {
	t.Helper()
	record, err := ledger.NewRecord(ledger.NewRecordInput{
		TenantID:       e.tenantID,
		Kind:           ledger.KindSale,
		CounterpartyID: e.customer.ID,
		Lines: []ledger.Line{{
			ProductID: e.product.ID, ProductCode: e.product.Code, ProductName: e.product.Name,
			Quantity: qty, UnitPrice: decimal.NewFromInt(90),
		}},
		Subtotal: decimal.NewFromInt(90 * qty),
		DueDate:  time.Now().AddDate(0, 0, 30),
	})
	require.NoError(t, err)
	return record
}

func TestInvoiceService_Commit_SalesReturnAgainstOrigin(t *testing.T) {
	env := newInvoiceTestEnv(t)
	origin := env.committedSale(t, 5)
	env.records.On("FindByIDForTenant", mock.Anything, env.tenantID, origin.ID).Return(origin, nil)
	env.records.On("FindByIDForUpdate", mock.Anything, env.tenantID, origin.ID).Return(origin, nil)
	env.records.On("ReturnedQuantities", mock.Anything, env.tenantID, origin.ID).
		Return(map[uuid.UUID]int64{env.product.ID: 3}, nil)
	env.products.On("ReceiveStock", mock.Anything, env.tenantID, env.product.ID, int64(2)).Return(nil).Once()
	env.records.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	resp, err := env.service.Commit(context.Background(), env.tenantID, ledger.KindSalesReturn, InvoiceRequest{
		CounterpartyID: env.customer.ID,
		OriginID:       &origin.ID,
		Lines:          []LineRequest{{ProductID: env.product.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	requireAmount(t, 180, resp.Total)
	require.NotNil(t, resp.OriginID)
	assert.Equal(t, origin.ID, *resp.OriginID)
	env.products.AssertExpectations(t)
}

func TestInvoiceService_Commit_ReturnExceedingOrigin(t *testing.T) {
	env := newInvoiceTestEnv(t)
	origin := env.committedSale(t, 5)
	env.records.On("FindByIDForTenant", mock.Anything, env.tenantID, origin.ID).Return(origin, nil)
	env.records.On("FindByIDForUpdate", mock.Anything, env.tenantID, origin.ID).Return(origin, nil)
	env.records.On("ReturnedQuantities", mock.Anything, env.tenantID, origin.ID).
		Return(map[uuid.UUID]int64{env.product.ID: 4}, nil)

	_, err := env.service.Commit(context.Background(), env.tenantID, ledger.KindSalesReturn, InvoiceRequest{
		CounterpartyID: env.customer.ID,
		OriginID:       &origin.ID,
		Lines:          []LineRequest{{ProductID: env.product.ID, Quantity: 2}},
	})

	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "RETURN_EXCEEDS_ORIGIN", domainErr.Code)
	env.products.AssertNotCalled(t, "ReceiveStock", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestInvoiceService_Commit_ReturnQuantityOverflow(t *testing.T) {
	env := newInvoiceTestEnv(t)
	origin := env.committedSale(t, 5)
	env.records.On("FindByIDForTenant", mock.Anything, env.tenantID, origin.ID).Return(origin, nil)
	env.records.On("FindByIDForUpdate", mock.Anything, env.tenantID, origin.ID).Return(origin, nil)
	env.records.On("ReturnedQuantities", mock.Anything, env.tenantID, origin.ID).
		Return(map[uuid.UUID]int64{env.product.ID: 4}, nil)

	_, err := env.service.Commit(context.Background(), env.tenantID, ledger.KindSalesReturn, InvoiceRequest{
		CounterpartyID: env.customer.ID,
		OriginID:       &origin.ID,
		Lines:          []LineRequest{{ProductID: env.product.ID, Quantity: math.MaxInt64}},
	})

	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "RETURN_EXCEEDS_ORIGIN", domainErr.Code)
	env.records.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestInvoiceService_Quote_LinePricing(t *testing.T) {
	env := newInvoiceTestEnv(t)
	clientPrice := decimal.NewFromInt(7)

	t.Run("sales return without origin uses catalog price", func(t *testing.T) {
		resp, err := env.service.Quote(context.Background(), env.tenantID, ledger.KindSalesReturn, InvoiceRequest{
			CounterpartyID: env.customer.ID,
			Lines:          []LineRequest{{ProductID: env.product.ID, Quantity: 2, UnitPrice: &clientPrice}},
		})
		require.NoError(t, err)
		requireAmount(t, 200, resp.Total)
	})

	t.Run("purchase takes supplier cost", func(t *testing.T) {
		resp, err := env.service.Quote(context.Background(), env.tenantID, ledger.KindPurchase, InvoiceRequest{
			CounterpartyID: env.supplier.ID,
			Lines:          []LineRequest{{ProductID: env.product.ID, Quantity: 2, UnitPrice: &clientPrice}},
		})
		require.NoError(t, err)
		requireAmount(t, 14, resp.Total)
	})
}

func TestInvoiceService_Quote_OriginChecks(t *testing.T) {
	env := newInvoiceTestEnv(t)
	origin := env.committedSale(t, 5)
	env.records.On("FindByIDForTenant", mock.Anything, env.tenantID, origin.ID).Return(origin, nil)

	t.Run("counterparty must match", func(t *testing.T) {
		_, err := env.service.Quote(context.Background(), env.tenantID, ledger.KindSalesReturn, InvoiceRequest{
			CounterpartyID: uuid.New(),
			OriginID:       &origin.ID,
			Lines:          []LineRequest{{ProductID: env.product.ID, Quantity: 1}},
		})
		assert.Equal(t, shared.KindValidation, shared.KindOf(err))
	})

	t.Run("kind must match", func(t *testing.T) {
		_, err := env.service.Quote(context.Background(), env.tenantID, ledger.KindPurchaseReturn, InvoiceRequest{
			CounterpartyID: env.customer.ID,
			OriginID:       &origin.ID,
			Lines:          []LineRequest{{ProductID: env.product.ID, Quantity: 1}},
		})
		assert.Equal(t, shared.KindValidation, shared.KindOf(err))
	})

	t.Run("sales cannot reference an origin", func(t *testing.T) {
		req := env.saleRequest(1)
		req.OriginID = &origin.ID
		_, err := env.service.Quote(context.Background(), env.tenantID, ledger.KindSale, req)
		assert.Equal(t, shared.KindValidation, shared.KindOf(err))
	})

	t.Run("priced at origin price", func(t *testing.T) {
		resp, err := env.service.Quote(context.Background(), env.tenantID, ledger.KindSalesReturn, InvoiceRequest{
			CounterpartyID: env.customer.ID,
			OriginID:       &origin.ID,
			Lines:          []LineRequest{{ProductID: env.product.ID, Quantity: 1}},
		})
		require.NoError(t, err)
		requireAmount(t, 90, resp.Total)
	})
}
