package handler

import (
	"context"

	catalogapp "github.com/erp/ledger/internal/application/catalog"
	ledgerapp "github.com/erp/ledger/internal/application/ledger"
	"github.com/erp/ledger/internal/application/partner"
	rateapp "github.com/erp/ledger/internal/application/rate"
	"github.com/erp/ledger/internal/application/reconciliation"
	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/domain/rate"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) Create(ctx context.Context, tenantID uuid.UUID, req catalogapp.CreateProductRequest) (*catalogapp.ProductResponse, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.ProductResponse), args.Error(1)
}

func (m *MockProductService) GetByID(ctx context.Context, tenantID, productID uuid.UUID) (*catalogapp.ProductResponse, error) {
	args := m.Called(ctx, tenantID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.ProductResponse), args.Error(1)
}

func (m *MockProductService) List(ctx context.Context, tenantID uuid.UUID, filter catalogapp.ProductListFilter) ([]catalogapp.ProductResponse, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]catalogapp.ProductResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductService) Update(ctx context.Context, tenantID, productID uuid.UUID, req catalogapp.UpdateProductRequest) (*catalogapp.ProductResponse, error) {
	args := m.Called(ctx, tenantID, productID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.ProductResponse), args.Error(1)
}

func (m *MockProductService) Delete(ctx context.Context, tenantID, productID uuid.UUID) error {
	args := m.Called(ctx, tenantID, productID)
	return args.Error(0)
}

type MockRuleService struct {
	mock.Mock
}

func (m *MockRuleService) CreateTax(ctx context.Context, tenantID uuid.UUID, req rateapp.CreateRuleRequest) (*rateapp.RuleResponse, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rateapp.RuleResponse), args.Error(1)
}

func (m *MockRuleService) CreateDiscount(ctx context.Context, tenantID uuid.UUID, req rateapp.CreateRuleRequest) (*rateapp.RuleResponse, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rateapp.RuleResponse), args.Error(1)
}

func (m *MockRuleService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*rateapp.RuleResponse, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rateapp.RuleResponse), args.Error(1)
}

func (m *MockRuleService) List(ctx context.Context, tenantID uuid.UUID, category rate.Category, filter rateapp.RuleListFilter) ([]rateapp.RuleResponse, int64, error) {
	args := m.Called(ctx, tenantID, category, filter)
	return args.Get(0).([]rateapp.RuleResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockRuleService) Update(ctx context.Context, tenantID, id uuid.UUID, req rateapp.UpdateRuleRequest) (*rateapp.RuleResponse, error) {
	args := m.Called(ctx, tenantID, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rateapp.RuleResponse), args.Error(1)
}

func (m *MockRuleService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

type MockInvoiceService struct {
	mock.Mock
}

func (m *MockInvoiceService) Quote(ctx context.Context, tenantID uuid.UUID, kind ledger.Kind, req ledgerapp.InvoiceRequest) (*ledgerapp.QuoteResponse, error) {
	args := m.Called(ctx, tenantID, kind, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledgerapp.QuoteResponse), args.Error(1)
}

func (m *MockInvoiceService) Commit(ctx context.Context, tenantID uuid.UUID, kind ledger.Kind, req ledgerapp.InvoiceRequest) (*ledgerapp.RecordResponse, error) {
	args := m.Called(ctx, tenantID, kind, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledgerapp.RecordResponse), args.Error(1)
}

type MockSettlementService struct {
	mock.Mock
}

func (m *MockSettlementService) SettleCash(ctx context.Context, tenantID, recordID uuid.UUID, req ledgerapp.CashPaymentRequest) (*ledgerapp.SettlementResponse, error) {
	args := m.Called(ctx, tenantID, recordID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledgerapp.SettlementResponse), args.Error(1)
}

func (m *MockSettlementService) SettleBank(ctx context.Context, tenantID, recordID uuid.UUID, req ledgerapp.BankPaymentRequest) (*ledgerapp.SettlementResponse, error) {
	args := m.Called(ctx, tenantID, recordID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledgerapp.SettlementResponse), args.Error(1)
}

func (m *MockSettlementService) SettleCheque(ctx context.Context, tenantID, recordID uuid.UUID, req ledgerapp.ChequePaymentRequest) (*ledgerapp.SettlementResponse, error) {
	args := m.Called(ctx, tenantID, recordID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledgerapp.SettlementResponse), args.Error(1)
}

func (m *MockSettlementService) UpdateChequeStatus(ctx context.Context, tenantID, paymentID uuid.UUID, req ledgerapp.UpdateChequeStatusRequest) (*ledgerapp.SettlementResponse, error) {
	args := m.Called(ctx, tenantID, paymentID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledgerapp.SettlementResponse), args.Error(1)
}

func (m *MockSettlementService) ChangeDueDate(ctx context.Context, tenantID, recordID uuid.UUID, req ledgerapp.ChangeDueDateRequest) (*ledgerapp.RecordResponse, error) {
	args := m.Called(ctx, tenantID, recordID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledgerapp.RecordResponse), args.Error(1)
}

type MockLedgerQueryService struct {
	mock.Mock
}

func (m *MockLedgerQueryService) GetRecord(ctx context.Context, tenantID, id uuid.UUID) (*ledgerapp.RecordResponse, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledgerapp.RecordResponse), args.Error(1)
}

func (m *MockLedgerQueryService) ListRecords(ctx context.Context, tenantID uuid.UUID, kind ledger.Kind, filter ledgerapp.RecordListFilter) ([]ledgerapp.RecordListResponse, int64, error) {
	args := m.Called(ctx, tenantID, kind, filter)
	return args.Get(0).([]ledgerapp.RecordListResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockLedgerQueryService) ListPayments(ctx context.Context, tenantID uuid.UUID, filter ledgerapp.PaymentListFilter) ([]ledgerapp.PaymentResponse, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]ledgerapp.PaymentResponse), args.Get(1).(int64), args.Error(2)
}

type MockReconciliationService struct {
	mock.Mock
}

func (m *MockReconciliationService) Receivables(ctx context.Context, tenantID uuid.UUID, filter reconciliation.ListFilter) (*reconciliation.BalanceView, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reconciliation.BalanceView), args.Error(1)
}

func (m *MockReconciliationService) Payables(ctx context.Context, tenantID uuid.UUID, filter reconciliation.ListFilter) (*reconciliation.BalanceView, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reconciliation.BalanceView), args.Error(1)
}

func (m *MockReconciliationService) Dashboard(ctx context.Context, tenantID uuid.UUID) (*reconciliation.Dashboard, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reconciliation.Dashboard), args.Error(1)
}

type MockCounterpartyService struct {
	mock.Mock
}

func (m *MockCounterpartyService) Create(ctx context.Context, tenantID uuid.UUID, req partner.CreateCounterpartyRequest) (*partner.CounterpartyResponse, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.CounterpartyResponse), args.Error(1)
}

func (m *MockCounterpartyService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*partner.CounterpartyResponse, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.CounterpartyResponse), args.Error(1)
}

func (m *MockCounterpartyService) List(ctx context.Context, tenantID uuid.UUID, filter partner.CounterpartyListFilter) ([]partner.CounterpartyResponse, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]partner.CounterpartyResponse), args.Get(1).(int64), args.Error(2)
}

var (
	_ ProductService        = (*MockProductService)(nil)
	_ RuleService           = (*MockRuleService)(nil)
	_ InvoiceService        = (*MockInvoiceService)(nil)
	_ SettlementService     = (*MockSettlementService)(nil)
	_ LedgerQueryService    = (*MockLedgerQueryService)(nil)
	_ ReconciliationService = (*MockReconciliationService)(nil)
	_ CounterpartyService   = (*MockCounterpartyService)(nil)
)
