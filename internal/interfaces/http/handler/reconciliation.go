package handler

import (
	"context"

	"github.com/erp/ledger/internal/application/reconciliation"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReconciliationService computes receivable and payable views
type ReconciliationService interface {
	Receivables(ctx context.Context, tenantID uuid.UUID, filter reconciliation.ListFilter) (*reconciliation.BalanceView, error)
	Payables(ctx context.Context, tenantID uuid.UUID, filter reconciliation.ListFilter) (*reconciliation.BalanceView, error)
	Dashboard(ctx context.Context, tenantID uuid.UUID) (*reconciliation.Dashboard, error)
}

// ReconciliationHandler serves the read-only reconciliation views
type ReconciliationHandler struct {
	BaseHandler
	service ReconciliationService
}

// NewReconciliationHandler creates a new ReconciliationHandler
func NewReconciliationHandler(service ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{service: service}
}

// RegisterRoutes mounts /reconciliation
func (h *ReconciliationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	r := rg.Group("/reconciliation")
	r.GET("/receivables", h.view(h.service.Receivables))
	r.GET("/payables", h.view(h.service.Payables))
	r.GET("/dashboard", h.Dashboard)
}

type balanceViewFunc func(ctx context.Context, tenantID uuid.UUID, filter reconciliation.ListFilter) (*reconciliation.BalanceView, error)

func (h *ReconciliationHandler) view(load balanceViewFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, ok := h.tenantID(c)
		if !ok {
			return
		}
		var filter reconciliation.ListFilter
		if !h.bindQuery(c, &filter) {
			return
		}
		if filter.CounterpartyID, ok = h.queryID(c, "counterparty_id"); !ok {
			return
		}

		view, err := load(c.Request.Context(), tenantID, filter)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		page, pageSize := pageOrDefault(filter.Page, filter.PageSize)
		h.SuccessWithMeta(c, view, view.Total, page, pageSize)
	}
}

// Dashboard returns every kind's open balance and the net position
func (h *ReconciliationHandler) Dashboard(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	dashboard, err := h.service.Dashboard(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dashboard)
}
