package handler

import (
	"context"

	"github.com/erp/ledger/internal/application/partner"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CounterpartyService manages locally registered customers and suppliers
type CounterpartyService interface {
	Create(ctx context.Context, tenantID uuid.UUID, req partner.CreateCounterpartyRequest) (*partner.CounterpartyResponse, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*partner.CounterpartyResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, filter partner.CounterpartyListFilter) ([]partner.CounterpartyResponse, int64, error)
}

// CounterpartyHandler handles counterparty endpoints
type CounterpartyHandler struct {
	BaseHandler
	service CounterpartyService
}

// NewCounterpartyHandler creates a new CounterpartyHandler
func NewCounterpartyHandler(service CounterpartyService) *CounterpartyHandler {
	return &CounterpartyHandler{service: service}
}

// RegisterRoutes mounts /counterparties
func (h *CounterpartyHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/counterparties")
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.GetByID)
}

// Create registers a customer or supplier
func (h *CounterpartyHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var req partner.CreateCounterpartyRequest
	if !h.bindJSON(c, &req) {
		return
	}

	cp, err := h.service.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, cp)
}

// GetByID returns one counterparty
func (h *CounterpartyHandler) GetByID(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	cp, err := h.service.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cp)
}

// List returns a page of counterparties, optionally of one role
func (h *CounterpartyHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var filter partner.CounterpartyListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	items, total, err := h.service.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := pageOrDefault(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, items, total, page, pageSize)
}
