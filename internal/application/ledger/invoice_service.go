package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/erp/ledger/internal/domain/catalog"
	"github.com/erp/ledger/internal/domain/invoice"
	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/domain/rate"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InvoiceService prices carts and commits them into ledger records
type InvoiceService struct {
	productRepo    catalog.ProductRepository
	recordRepo     ledger.RecordRepository
	rates          rate.Registry
	directory      ledger.CounterpartyDirectory
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
	metrics        Metrics
	opts           Options
	logger         *zap.Logger
	now            func() time.Time
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	productRepo catalog.ProductRepository,
	recordRepo ledger.RecordRepository,
	rates rate.Registry,
	directory ledger.CounterpartyDirectory,
	txScope TransactionScope,
	opts Options,
	logger *zap.Logger,
) *InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceService{
		productRepo: productRepo,
		recordRepo:  recordRepo,
		rates:       rates,
		directory:   directory,
		txScope:     txScope,
		opts:        opts,
		logger:      logger,
		now:         time.Now,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *InvoiceService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the business metrics recorder
func (s *InvoiceService) SetMetrics(metrics Metrics) {
	s.metrics = metrics
}

// Quote prices an invoice without writing anything
func (s *InvoiceService) Quote(ctx context.Context, tenantID uuid.UUID, kind ledger.Kind, req InvoiceRequest) (*QuoteResponse, error) {
	origin, err := s.loadOrigin(ctx, s.recordRepo, tenantID, kind, req, false)
	if err != nil {
		return nil, err
	}

	draft, err := s.buildDraft(ctx, tenantID, kind, req, origin)
	if err != nil {
		return nil, err
	}
	if err := s.verifyTotals(draft, req.ExpectedTotals); err != nil {
		return nil, err
	}

	resp := ToQuoteResponse(draft)
	return &resp, nil
}

// Commit turns an invoice into a ledger record. Stock for every line moves
// inside one transaction; if any line no longer has enough stock the whole
// commit fails with ErrStaleStock and nothing is written.
func (s *InvoiceService) Commit(ctx context.Context, tenantID uuid.UUID, kind ledger.Kind, req InvoiceRequest) (*RecordResponse, error) {
	if !kind.IsValid() {
		return nil, shared.NewValidationError("INVALID_KIND", "Unknown ledger record kind")
	}

	counterparty, err := s.directory.Lookup(ctx, tenantID, req.CounterpartyID, kind.CounterpartyRole())
	if err != nil {
		return nil, err
	}

	origin, err := s.loadOrigin(ctx, s.recordRepo, tenantID, kind, req, false)
	if err != nil {
		return nil, err
	}

	// Lines are checked against stock as read now; the transaction below
	// re-checks them against stock as it is at write time.
	draft, err := s.buildDraft(ctx, tenantID, kind, req, origin)
	if err != nil {
		return nil, err
	}
	if err := s.verifyTotals(draft, req.ExpectedTotals); err != nil {
		return nil, err
	}

	now := s.now()
	dueDate := now.AddDate(0, 0, s.opts.DefaultDueDays)
	if req.DueDate != nil {
		dueDate = *req.DueDate
	}
	createdBy := uuid.Nil
	if req.CreatedBy != nil {
		createdBy = *req.CreatedBy
	}

	var record *ledger.Record
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if origin != nil {
			locked, err := s.loadOrigin(ctx, repos.RecordRepo(), tenantID, kind, req, true)
			if err != nil {
				return err
			}
			if err := checkReturnQuantities(ctx, repos.RecordRepo(), tenantID, locked, draft); err != nil {
				return err
			}
		}

		if err := moveStock(ctx, repos.ProductRepo(), tenantID, draft.StockMovements()); err != nil {
			return err
		}

		rec, err := draft.Finalize(invoice.FinalizeInput{
			CounterpartyID:   counterparty.ID,
			CounterpartyName: counterparty.Name,
			OriginID:         req.OriginID,
			DueDate:          dueDate,
			Remark:           req.Remark,
			CreatedBy:        createdBy,
		})
		if err != nil {
			return err
		}
		if err := repos.RecordRepo().Create(ctx, rec); err != nil {
			return err
		}
		record = rec
		return nil
	})
	if err != nil {
		if errors.Is(err, shared.ErrStaleStock) {
			s.logger.Warn("commit lost stock race",
				zap.String("tenant_id", tenantID.String()),
				zap.String("kind", kind.String()),
				zap.Error(err),
			)
			if s.metrics != nil {
				s.metrics.RecordStockConflict(ctx, tenantID, kind.String())
			}
		}
		return nil, err
	}

	s.logger.Info("ledger record committed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("record_id", record.ID.String()),
		zap.String("number", record.Number),
		zap.String("kind", kind.String()),
		zap.String("total", record.Total.String()),
		zap.Int("lines", len(record.Lines)),
	)

	publishEvents(ctx, s.eventPublisher, s.logger, record)

	resp := ToRecordResponse(record, now)
	return &resp, nil
}

// buildDraft assembles a draft from the request against current catalog stock and rules
func (s *InvoiceService) buildDraft(ctx context.Context, tenantID uuid.UUID, kind ledger.Kind, req InvoiceRequest, origin *ledger.Record) (*invoice.Draft, error) {
	draft, err := invoice.NewDraft(tenantID, kind)
	if err != nil {
		return nil, err
	}
	if len(req.Lines) == 0 {
		return nil, shared.NewValidationError("EMPTY_INVOICE", "Invoice must have at least one line")
	}

	ids := make([]uuid.UUID, 0, len(req.Lines))
	for _, l := range req.Lines {
		ids = append(ids, l.ProductID)
	}
	products, err := s.productRepo.FindByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	for _, l := range req.Lines {
		product, ok := byID[l.ProductID]
		if !ok {
			return nil, shared.NewNotFoundError("product", l.ProductID)
		}
		price, err := linePrice(kind, product, l, origin)
		if err != nil {
			return nil, err
		}
		if err := draft.AddPricedLine(product, l.Quantity, price); err != nil {
			return nil, err
		}
	}

	if req.TaxRuleID != nil {
		rule, err := s.rates.TaxRule(ctx, tenantID, *req.TaxRuleID)
		if err != nil {
			return nil, err
		}
		if err := draft.ApplyTax(rule); err != nil {
			return nil, err
		}
	}
	if req.DiscountRuleID != nil {
		rule, err := s.rates.DiscountRule(ctx, tenantID, *req.DiscountRuleID)
		if err != nil {
			return nil, err
		}
		if err := draft.ApplyDiscount(rule); err != nil {
			return nil, err
		}
	}

	return draft, nil
}

func (s *InvoiceService) verifyTotals(draft *invoice.Draft, claimed *TotalsRequest) error {
	if claimed == nil {
		return nil
	}
	return draft.Verify(invoice.Totals{
		Subtotal: claimed.Subtotal,
		Tax:      claimed.Tax,
		Discount: claimed.Discount,
		Total:    claimed.Total,
	}, s.opts.TotalsTolerance)
}

// loadOrigin loads and checks the record a return refers to
func (s *InvoiceService) loadOrigin(ctx context.Context, repo ledger.RecordRepository, tenantID uuid.UUID, kind ledger.Kind, req InvoiceRequest, forUpdate bool) (*ledger.Record, error) {
	if req.OriginID == nil {
		return nil, nil
	}
	if !kind.IsReturn() {
		return nil, shared.NewValidationError("INVALID_ORIGIN", "Only returns can reference an origin record")
	}

	var (
		origin *ledger.Record
		err    error
	)
	if forUpdate {
		origin, err = repo.FindByIDForUpdate(ctx, tenantID, *req.OriginID)
	} else {
		origin, err = repo.FindByIDForTenant(ctx, tenantID, *req.OriginID)
	}
	if err != nil {
		return nil, err
	}

	if origin.Kind != kind.OriginKind() {
		return nil, shared.NewValidationError("INVALID_ORIGIN", "A "+kind.String()+" must reference a "+kind.OriginKind().String())
	}
	if origin.CounterpartyID != req.CounterpartyID {
		return nil, shared.NewValidationError("INVALID_ORIGIN", "Return counterparty differs from the origin record")
	}
	return origin, nil
}

// linePrice picks the unit price for a line. Returns against an origin
// refund at the originally invoiced price. Sales and sales returns without an
// origin use the catalog; purchases take the supplier cost when given.
func linePrice(kind ledger.Kind, product *catalog.Product, line LineRequest, origin *ledger.Record) (decimal.Decimal, error) {
	if origin != nil {
		for _, l := range origin.Lines {
			if l.ProductID == product.ID {
				return l.UnitPrice, nil
			}
		}
		return decimal.Zero, shared.NewValidationError("INVALID_RETURN_LINE", "Product "+product.Code+" is not on the origin record")
	}
	if kind == ledger.KindSale || kind == ledger.KindSalesReturn || line.UnitPrice == nil {
		return product.UnitPrice, nil
	}
	return *line.UnitPrice, nil
}

func checkReturnQuantities(ctx context.Context, repo ledger.RecordRepository, tenantID uuid.UUID, origin *ledger.Record, draft *invoice.Draft) error {
	returned, err := repo.ReturnedQuantities(ctx, tenantID, origin.ID)
	if err != nil {
		return err
	}
	invoiced := origin.QuantityByProduct()
	for _, l := range draft.Lines() {
		if l.Quantity > invoiced[l.ProductID]-returned[l.ProductID] {
			return shared.NewValidationError("RETURN_EXCEEDS_ORIGIN",
				"Returned quantity for "+l.ProductCode+" exceeds the quantity on "+origin.Number)
		}
	}
	return nil
}

// moveStock applies every movement through guarded updates
func moveStock(ctx context.Context, repo catalog.ProductRepository, tenantID uuid.UUID, movements []invoice.StockMovement) error {
	for _, m := range movements {
		switch m.Direction {
		case ledger.StockOut:
			ok, err := repo.WithdrawStock(ctx, tenantID, m.ProductID, m.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return shared.ErrStaleStock.WithMessage("Stock for product %s changed before commit", m.ProductID)
			}
		case ledger.StockIn:
			if err := repo.ReceiveStock(ctx, tenantID, m.ProductID, m.Quantity); err != nil {
				return err
			}
		}
	}
	return nil
}

// publishEvents publishes and clears a record's pending events.
// Publishing happens after commit; a failure is logged, not returned.
func publishEvents(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger, record *ledger.Record) {
	events := record.GetDomainEvents()
	record.ClearDomainEvents()
	if publisher == nil || len(events) == 0 {
		return
	}
	if err := publisher.Publish(ctx, events...); err != nil {
		logger.Warn("failed to publish ledger events",
			zap.String("record_id", record.ID.String()),
			zap.Int("count", len(events)),
			zap.Error(err),
		)
	}
}
