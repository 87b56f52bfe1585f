package handler

import (
	"context"

	ledgerapp "github.com/erp/ledger/internal/application/ledger"
	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// IdempotencyHeader carries the client's key for a payment submission
const IdempotencyHeader = "Idempotency-Key"

// InvoiceService prices and commits invoices
type InvoiceService interface {
	Quote(ctx context.Context, tenantID uuid.UUID, kind ledger.Kind, req ledgerapp.InvoiceRequest) (*ledgerapp.QuoteResponse, error)
	Commit(ctx context.Context, tenantID uuid.UUID, kind ledger.Kind, req ledgerapp.InvoiceRequest) (*ledgerapp.RecordResponse, error)
}

// SettlementService records payments against ledger records
type SettlementService interface {
	SettleCash(ctx context.Context, tenantID, recordID uuid.UUID, req ledgerapp.CashPaymentRequest) (*ledgerapp.SettlementResponse, error)
	SettleBank(ctx context.Context, tenantID, recordID uuid.UUID, req ledgerapp.BankPaymentRequest) (*ledgerapp.SettlementResponse, error)
	SettleCheque(ctx context.Context, tenantID, recordID uuid.UUID, req ledgerapp.ChequePaymentRequest) (*ledgerapp.SettlementResponse, error)
	UpdateChequeStatus(ctx context.Context, tenantID, paymentID uuid.UUID, req ledgerapp.UpdateChequeStatusRequest) (*ledgerapp.SettlementResponse, error)
	ChangeDueDate(ctx context.Context, tenantID, recordID uuid.UUID, req ledgerapp.ChangeDueDateRequest) (*ledgerapp.RecordResponse, error)
}

// LedgerQueryService reads ledger records and payment registers
type LedgerQueryService interface {
	GetRecord(ctx context.Context, tenantID, id uuid.UUID) (*ledgerapp.RecordResponse, error)
	ListRecords(ctx context.Context, tenantID uuid.UUID, kind ledger.Kind, filter ledgerapp.RecordListFilter) ([]ledgerapp.RecordListResponse, int64, error)
	ListPayments(ctx context.Context, tenantID uuid.UUID, filter ledgerapp.PaymentListFilter) ([]ledgerapp.PaymentResponse, int64, error)
}

// kindRoutes maps the URL segment of each record kind
var kindRoutes = []struct {
	segment string
	kind    ledger.Kind
}{
	{"sales", ledger.KindSale},
	{"purchases", ledger.KindPurchase},
	{"sales-returns", ledger.KindSalesReturn},
	{"purchase-returns", ledger.KindPurchaseReturn},
}

// LedgerHandler handles invoice, settlement and ledger query endpoints
type LedgerHandler struct {
	BaseHandler
	invoices    InvoiceService
	settlements SettlementService
	queries     LedgerQueryService
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(invoices InvoiceService, settlements SettlementService, queries LedgerQueryService) *LedgerHandler {
	return &LedgerHandler{
		invoices:    invoices,
		settlements: settlements,
		queries:     queries,
	}
}

// RegisterRoutes mounts /ledger
func (h *LedgerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	l := rg.Group("/ledger")
	for _, route := range kindRoutes {
		l.POST("/"+route.segment+"/quote", h.quote(route.kind))
		l.POST("/"+route.segment, h.commit(route.kind))
		l.GET("/"+route.segment, h.list(route.kind))
	}

	l.GET("/records/:id", h.GetRecord)
	l.PUT("/records/:id/due-date", h.ChangeDueDate)
	l.POST("/records/:id/payments/cash", h.SettleCash)
	l.POST("/records/:id/payments/bank", h.SettleBank)
	l.POST("/records/:id/payments/cheque", h.SettleCheque)

	l.GET("/payments", h.ListPayments)
	l.PUT("/payments/:id/cheque-status", h.UpdateChequeStatus)
}

func (h *LedgerHandler) quote(kind ledger.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, ok := h.tenantID(c)
		if !ok {
			return
		}
		var req ledgerapp.InvoiceRequest
		if !h.bindJSON(c, &req) {
			return
		}

		quote, err := h.invoices.Quote(c.Request.Context(), tenantID, kind, req)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, quote)
	}
}

func (h *LedgerHandler) commit(kind ledger.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, ok := h.tenantID(c)
		if !ok {
			return
		}
		var req ledgerapp.InvoiceRequest
		if !h.bindJSON(c, &req) {
			return
		}
		req.CreatedBy = middleware.GetUserID(c)

		record, err := h.invoices.Commit(c.Request.Context(), tenantID, kind, req)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Created(c, record)
	}
}

func (h *LedgerHandler) list(kind ledger.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, ok := h.tenantID(c)
		if !ok {
			return
		}
		var filter ledgerapp.RecordListFilter
		if !h.bindQuery(c, &filter) {
			return
		}
		if filter.CounterpartyID, ok = h.queryID(c, "counterparty_id"); !ok {
			return
		}

		records, total, err := h.queries.ListRecords(c.Request.Context(), tenantID, kind, filter)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		page, pageSize := pageOrDefault(filter.Page, filter.PageSize)
		h.SuccessWithMeta(c, records, total, page, pageSize)
	}
}

// GetRecord returns a record with its lines, payments, balance and status
func (h *LedgerHandler) GetRecord(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	record, err := h.queries.GetRecord(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, record)
}

// ChangeDueDate moves a record's due date
func (h *LedgerHandler) ChangeDueDate(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req ledgerapp.ChangeDueDateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	record, err := h.settlements.ChangeDueDate(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, record)
}

// SettleCash records a cash payment
func (h *LedgerHandler) SettleCash(c *gin.Context) {
	var req ledgerapp.CashPaymentRequest
	h.settle(c, &req, &req.PaymentFields, func(ctx context.Context, tenantID, recordID uuid.UUID) (*ledgerapp.SettlementResponse, error) {
		return h.settlements.SettleCash(ctx, tenantID, recordID, req)
	})
}

// SettleBank records a bank transfer
func (h *LedgerHandler) SettleBank(c *gin.Context) {
	var req ledgerapp.BankPaymentRequest
	h.settle(c, &req, &req.PaymentFields, func(ctx context.Context, tenantID, recordID uuid.UUID) (*ledgerapp.SettlementResponse, error) {
		return h.settlements.SettleBank(ctx, tenantID, recordID, req)
	})
}

// SettleCheque records a cheque, counted while pending
func (h *LedgerHandler) SettleCheque(c *gin.Context) {
	var req ledgerapp.ChequePaymentRequest
	h.settle(c, &req, &req.PaymentFields, func(ctx context.Context, tenantID, recordID uuid.UUID) (*ledgerapp.SettlementResponse, error) {
		return h.settlements.SettleCheque(ctx, tenantID, recordID, req)
	})
}

// settle binds a payment request into req and runs fn. fields points into req
// so the Idempotency-Key header is seen by fn.
func (h *LedgerHandler) settle(
	c *gin.Context,
	req any,
	fields *ledgerapp.PaymentFields,
	fn func(ctx context.Context, tenantID, recordID uuid.UUID) (*ledgerapp.SettlementResponse, error),
) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	recordID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if !h.bindJSON(c, req) {
		return
	}
	fields.IdempotencyKey = c.GetHeader(IdempotencyHeader)

	resp, err := fn(c.Request.Context(), tenantID, recordID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ListPayments returns the payment registers
func (h *LedgerHandler) ListPayments(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var filter ledgerapp.PaymentListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	payments, total, err := h.queries.ListPayments(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := pageOrDefault(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, payments, total, page, pageSize)
}

// UpdateChequeStatus moves a cheque through clearing
func (h *LedgerHandler) UpdateChequeStatus(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	paymentID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req ledgerapp.UpdateChequeStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.settlements.UpdateChequeStatus(c.Request.Context(), tenantID, paymentID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
