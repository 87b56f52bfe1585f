package persistence

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	appledger "github.com/erp/ledger/internal/application/ledger"
	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/domain/rate"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type ledgerStack struct {
	db         *gorm.DB
	invoices   *appledger.InvoiceService
	settlement *appledger.SettlementService
	rules      *GormRuleRepository
	products   *GormProductRepository
	records    *GormRecordRepository
}

func newLedgerStack(t *testing.T) *ledgerStack {
	t.Helper()
	db := newSQLiteDB(t)
	products := NewGormProductRepository(db)
	records := NewGormRecordRepository(db)
	rules := NewGormRuleRepository(db)
	scope := NewGormTransactionScope(db)

	return &ledgerStack{
		db: db,
		invoices: appledger.NewInvoiceService(
			products, records,
			rate.NewRepositoryRegistry(rules),
			NewGormCounterpartyRepository(db),
			scope, appledger.DefaultOptions(), nil,
		),
		settlement: appledger.NewSettlementService(scope, nil, appledger.DefaultOptions(), nil),
		rules:      rules,
		products:   products,
		records:    records,
	}
}

func TestLedger_SaleWithTaxAndDiscount(t *testing.T) {
	s := newLedgerStack(t)
	ctx := context.Background()
	tenantID := uuid.New()
	customer := seedCounterparty(t, s.db, tenantID, ledger.RoleCustomer)
	product := seedProduct(t, s.db, tenantID, "P1", 100, 10)

	tax, err := rate.NewTaxRule(tenantID, "VAT 18", rate.KindPercentage, decimal.NewFromInt(18))
	require.NoError(t, err)
	require.NoError(t, s.rules.Save(ctx, tax))
	discount, err := rate.NewDiscountRule(tenantID, "Flat 50", rate.KindFixed, decimal.NewFromInt(50))
	require.NoError(t, err)
	require.NoError(t, s.rules.Save(ctx, discount))

	resp, err := s.invoices.Commit(ctx, tenantID, ledger.KindSale, appledger.InvoiceRequest{
		CounterpartyID: customer.ID,
		Lines:          []appledger.LineRequest{{ProductID: product.ID, Quantity: 3}},
		TaxRuleID:      &tax.ID,
		DiscountRuleID: &discount.ID,
	})
	require.NoError(t, err)
	assert.True(t, resp.Subtotal.Equal(decimal.NewFromInt(300)))
	assert.True(t, resp.TaxAmount.Equal(decimal.NewFromInt(54)))
	assert.True(t, resp.DiscountAmount.Equal(decimal.NewFromInt(50)))
	assert.True(t, resp.Total.Equal(decimal.NewFromInt(304)))
	assert.Equal(t, string(ledger.StatusPending), resp.Status)

	stored, err := s.products.FindByIDForTenant(ctx, tenantID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), stored.OnHand)

	rec, err := s.records.FindByIDForTenant(ctx, tenantID, resp.ID)
	require.NoError(t, err)
	assert.True(t, rec.Total.Equal(decimal.NewFromInt(304)))
	assert.Equal(t, &tax.ID, rec.TaxRuleID)
}

func TestLedger_CashSettlementThenAlreadySettled(t *testing.T) {
	s := newLedgerStack(t)
	ctx := context.Background()
	tenantID := uuid.New()
	customer := seedCounterparty(t, s.db, tenantID, ledger.RoleCustomer)
	product := seedProduct(t, s.db, tenantID, "P1", 100, 10)

	resp, err := s.invoices.Commit(ctx, tenantID, ledger.KindSale, appledger.InvoiceRequest{
		CounterpartyID: customer.ID,
		Lines:          []appledger.LineRequest{{ProductID: product.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	settled, err := s.settlement.SettleCash(ctx, tenantID, resp.ID, appledger.CashPaymentRequest{
		PaymentFields: appledger.PaymentFields{Amount: decimal.NewFromInt(100)},
	})
	require.NoError(t, err)
	assert.Equal(t, string(ledger.StatusSettled), settled.Record.Status)

	_, err = s.settlement.SettleCash(ctx, tenantID, resp.ID, appledger.CashPaymentRequest{
		PaymentFields: appledger.PaymentFields{Amount: decimal.NewFromInt(1)},
	})
	assert.True(t, errors.Is(err, shared.ErrAlreadySettled))

	rec, err := s.records.FindByIDForTenant(ctx, tenantID, resp.ID)
	require.NoError(t, err)
	assert.Len(t, rec.Payments, 1)
}

func TestLedger_ChequeBounceRevertsToPending(t *testing.T) {
	s := newLedgerStack(t)
	ctx := context.Background()
	tenantID := uuid.New()
	supplier := seedCounterparty(t, s.db, tenantID, ledger.RoleSupplier)
	product := seedProduct(t, s.db, tenantID, "P1", 100, 0)

	price := decimal.NewFromInt(100)
	resp, err := s.invoices.Commit(ctx, tenantID, ledger.KindPurchase, appledger.InvoiceRequest{
		CounterpartyID: supplier.ID,
		Lines:          []appledger.LineRequest{{ProductID: product.ID, Quantity: 2, UnitPrice: &price}},
	})
	require.NoError(t, err)

	stored, err := s.products.FindByIDForTenant(ctx, tenantID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stored.OnHand, "purchases receive stock")

	paid, err := s.settlement.SettleCheque(ctx, tenantID, resp.ID, appledger.ChequePaymentRequest{
		PaymentFields: appledger.PaymentFields{Amount: decimal.NewFromInt(200)},
		ChequeNumber:  "CHQ-1",
		BankName:      "First Bank",
	})
	require.NoError(t, err)
	assert.Equal(t, string(ledger.StatusSettled), paid.Record.Status)

	bounced, err := s.settlement.UpdateChequeStatus(ctx, tenantID, paid.Payment.ID, appledger.UpdateChequeStatusRequest{Status: "bounced"})
	require.NoError(t, err)
	assert.Equal(t, string(ledger.StatusPending), bounced.Record.Status)
	assert.True(t, bounced.Record.AmountSettled.IsZero())

	_, err = s.settlement.UpdateChequeStatus(ctx, tenantID, paid.Payment.ID, appledger.UpdateChequeStatusRequest{Status: "cleared"})
	assert.True(t, errors.Is(err, shared.ErrIllegalTransition))
}

func TestLedger_CommitRollsBackEveryLine(t *testing.T) {
	s := newLedgerStack(t)
	ctx := context.Background()
	tenantID := uuid.New()
	customer := seedCounterparty(t, s.db, tenantID, ledger.RoleCustomer)
	plenty := seedProduct(t, s.db, tenantID, "P1", 10, 10)
	scarce := seedProduct(t, s.db, tenantID, "P2", 10, 5)

	// Another writer drains the scarce product between pricing and commit.
	_, err := s.products.WithdrawStock(ctx, tenantID, scarce.ID, 4)
	require.NoError(t, err)

	_, err = s.invoices.Commit(ctx, tenantID, ledger.KindSale, appledger.InvoiceRequest{
		CounterpartyID: customer.ID,
		Lines: []appledger.LineRequest{
			{ProductID: plenty.ID, Quantity: 3},
			{ProductID: scarce.ID, Quantity: 2},
		},
	})
	require.Error(t, err)
	assert.Equal(t, shared.KindStock, shared.KindOf(err))

	stored, err := s.products.FindByIDForTenant(ctx, tenantID, plenty.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), stored.OnHand, "no partial stock movement")

	count, err := s.records.CountForTenant(ctx, tenantID, ledger.RecordFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestLedger_ConcurrentCommitsAgainstScarceStock(t *testing.T) {
	s := newLedgerStack(t)
	ctx := context.Background()
	tenantID := uuid.New()
	customer := seedCounterparty(t, s.db, tenantID, ledger.RoleCustomer)
	product := seedProduct(t, s.db, tenantID, "P1", 100, 10)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		wins     int
		failures []error
	)
	start := make(chan struct{})
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := s.invoices.Commit(ctx, tenantID, ledger.KindSale, appledger.InvoiceRequest{
				CounterpartyID: customer.ID,
				Lines:          []appledger.LineRequest{{ProductID: product.ID, Quantity: 6}},
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				wins++
				return
			}
			failures = append(failures, err)
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, wins)
	require.Len(t, failures, 1)
	assert.Equal(t, shared.KindStock, shared.KindOf(failures[0]), "loser fails with a stock error: %v", failures[0])

	stored, err := s.products.FindByIDForTenant(ctx, tenantID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), stored.OnHand)

	count, err := s.records.CountForTenant(ctx, tenantID, ledger.RecordFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestLedger_ConcurrentSettlementsNeverOverpay(t *testing.T) {
	s := newLedgerStack(t)
	ctx := context.Background()
	tenantID := uuid.New()
	customer := seedCounterparty(t, s.db, tenantID, ledger.RoleCustomer)
	product := seedProduct(t, s.db, tenantID, "P1", 100, 10)

	resp, err := s.invoices.Commit(ctx, tenantID, ledger.KindSale, appledger.InvoiceRequest{
		CounterpartyID: customer.ID,
		Lines:          []appledger.LineRequest{{ProductID: product.ID, Quantity: 1}},
		DueDate:        ptrTime(time.Now().UTC().AddDate(0, 0, 7)),
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.settlement.SettleCash(ctx, tenantID, resp.ID, appledger.CashPaymentRequest{
				PaymentFields: appledger.PaymentFields{Amount: decimal.NewFromInt(60)},
			})
		}()
	}
	wg.Wait()

	rec, err := s.records.FindByIDForTenant(ctx, tenantID, resp.ID)
	require.NoError(t, err)
	assert.Len(t, rec.Payments, 1)
	assert.True(t, rec.AmountSettled.Equal(decimal.NewFromInt(60)))
	assert.False(t, rec.AmountSettled.GreaterThan(rec.Total))
}

func ptrTime(t time.Time) *time.Time {
	return &t
}
