package ledger

import (
	"context"
	"time"

	"github.com/erp/ledger/internal/domain/catalog"
	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/domain/rate"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*catalog.Product, error) {
	args := m.Called(ctx, tenantID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, tenantID, ids)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter catalog.ProductFilter) ([]catalog.Product, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter catalog.ProductFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	args := m.Called(ctx, tenantID, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) SaveWithLock(ctx context.Context, product *catalog.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *MockProductRepository) WithdrawStock(ctx context.Context, tenantID, id uuid.UUID, quantity int64) (bool, error) {
	args := m.Called(ctx, tenantID, id, quantity)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) ReceiveStock(ctx context.Context, tenantID, id uuid.UUID, quantity int64) error {
	return m.Called(ctx, tenantID, id, quantity).Error(0)
}

// MockRecordRepository is a mock implementation of ledger.RecordRepository
type MockRecordRepository struct {
	mock.Mock
}

func (m *MockRecordRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Record, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Record), args.Error(1)
}

func (m *MockRecordRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Record, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Record), args.Error(1)
}

func (m *MockRecordRepository) FindByPaymentIDForUpdate(ctx context.Context, tenantID, paymentID uuid.UUID) (*ledger.Record, error) {
	args := m.Called(ctx, tenantID, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Record), args.Error(1)
}

func (m *MockRecordRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter ledger.RecordFilter) ([]ledger.Record, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]ledger.Record), args.Error(1)
}

func (m *MockRecordRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter ledger.RecordFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRecordRepository) FindPayments(ctx context.Context, tenantID uuid.UUID, filter ledger.PaymentFilter) ([]ledger.PaymentEntry, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]ledger.PaymentEntry), args.Error(1)
}

func (m *MockRecordRepository) CountPayments(ctx context.Context, tenantID uuid.UUID, filter ledger.PaymentFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRecordRepository) Create(ctx context.Context, record *ledger.Record) error {
	return m.Called(ctx, record).Error(0)
}

func (m *MockRecordRepository) SaveWithLock(ctx context.Context, record *ledger.Record) error {
	return m.Called(ctx, record).Error(0)
}

func (m *MockRecordRepository) SummarizeOpen(ctx context.Context, tenantID uuid.UUID, kind ledger.Kind, now time.Time) (*ledger.BalanceSummary, error) {
	args := m.Called(ctx, tenantID, kind, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.BalanceSummary), args.Error(1)
}

func (m *MockRecordRepository) ReturnedQuantities(ctx context.Context, tenantID, originID uuid.UUID) (map[uuid.UUID]int64, error) {
	args := m.Called(ctx, tenantID, originID)
	return args.Get(0).(map[uuid.UUID]int64), args.Error(1)
}

func (m *MockRecordRepository) ExistsOpenWithProduct(ctx context.Context, tenantID, productID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, productID)
	return args.Bool(0), args.Error(1)
}

// MockRegistry is a mock implementation of rate.Registry
type MockRegistry struct {
	mock.Mock
}

func (m *MockRegistry) TaxRule(ctx context.Context, tenantID, id uuid.UUID) (*rate.Rule, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rate.Rule), args.Error(1)
}

func (m *MockRegistry) DiscountRule(ctx context.Context, tenantID, id uuid.UUID) (*rate.Rule, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rate.Rule), args.Error(1)
}

// MockDirectory is a mock implementation of ledger.CounterpartyDirectory
type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) Lookup(ctx context.Context, tenantID, id uuid.UUID, role ledger.Role) (*ledger.Counterparty, error) {
	args := m.Called(ctx, tenantID, id, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Counterparty), args.Error(1)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	return m.Called(ctx, events).Error(0)
}

// MockIdempotencyStore is a mock implementation of shared.IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Forget(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockIdempotencyStore) Close() error {
	return m.Called().Error(0)
}

// MockMetrics is a mock implementation of Metrics
type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) RecordCommitted(ctx context.Context, tenantID uuid.UUID, kind string, total decimal.Decimal) {
	m.Called(ctx, tenantID, kind, total)
}

func (m *MockMetrics) RecordPayment(ctx context.Context, tenantID uuid.UUID, kind, method string, amount decimal.Decimal) {
	m.Called(ctx, tenantID, kind, method, amount)
}

func (m *MockMetrics) RecordChequeOutcome(ctx context.Context, tenantID uuid.UUID, status string, amount decimal.Decimal) {
	m.Called(ctx, tenantID, status, amount)
}

func (m *MockMetrics) RecordStatusChange(ctx context.Context, tenantID uuid.UUID, kind, from, to string) {
	m.Called(ctx, tenantID, kind, from, to)
}

func (m *MockMetrics) RecordStockConflict(ctx context.Context, tenantID uuid.UUID, kind string) {
	m.Called(ctx, tenantID, kind)
}

var (
	_ catalog.ProductRepository    = (*MockProductRepository)(nil)
	_ ledger.RecordRepository      = (*MockRecordRepository)(nil)
	_ rate.Registry                = (*MockRegistry)(nil)
	_ ledger.CounterpartyDirectory = (*MockDirectory)(nil)
	_ shared.EventPublisher        = (*MockEventPublisher)(nil)
	_ shared.IdempotencyStore      = (*MockIdempotencyStore)(nil)
	_ Metrics                      = (*MockMetrics)(nil)
)
