package handler

import (
	"context"

	rateapp "github.com/erp/ledger/internal/application/rate"
	"github.com/erp/ledger/internal/domain/rate"
	"github.com/erp/ledger/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RuleService is the rate registry use case surface the handler needs
type RuleService interface {
	CreateTax(ctx context.Context, tenantID uuid.UUID, req rateapp.CreateRuleRequest) (*rateapp.RuleResponse, error)
	CreateDiscount(ctx context.Context, tenantID uuid.UUID, req rateapp.CreateRuleRequest) (*rateapp.RuleResponse, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*rateapp.RuleResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, category rate.Category, filter rateapp.RuleListFilter) ([]rateapp.RuleResponse, int64, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, req rateapp.UpdateRuleRequest) (*rateapp.RuleResponse, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// RateHandler handles tax and discount rule endpoints
type RateHandler struct {
	BaseHandler
	ruleService RuleService
}

// NewRateHandler creates a new RateHandler
func NewRateHandler(ruleService RuleService) *RateHandler {
	return &RateHandler{ruleService: ruleService}
}

// RegisterRoutes mounts /rates
func (h *RateHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rates := rg.Group("/rates")
	rates.POST("/taxes", h.create(rate.CategoryTax))
	rates.GET("/taxes", h.list(rate.CategoryTax))
	rates.POST("/discounts", h.create(rate.CategoryDiscount))
	rates.GET("/discounts", h.list(rate.CategoryDiscount))
	rates.GET("/:id", h.GetByID)
	rates.PUT("/:id", h.Update)
	rates.DELETE("/:id", h.Delete)
}

func (h *RateHandler) create(category rate.Category) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, ok := h.tenantID(c)
		if !ok {
			return
		}
		var req rateapp.CreateRuleRequest
		if !h.bindJSON(c, &req) {
			return
		}
		req.CreatedBy = middleware.GetUserID(c)

		var (
			rule *rateapp.RuleResponse
			err  error
		)
		switch category {
		case rate.CategoryTax:
			rule, err = h.ruleService.CreateTax(c.Request.Context(), tenantID, req)
		case rate.CategoryDiscount:
			rule, err = h.ruleService.CreateDiscount(c.Request.Context(), tenantID, req)
		}
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Created(c, rule)
	}
}

func (h *RateHandler) list(category rate.Category) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, ok := h.tenantID(c)
		if !ok {
			return
		}
		var filter rateapp.RuleListFilter
		if !h.bindQuery(c, &filter) {
			return
		}

		rules, total, err := h.ruleService.List(c.Request.Context(), tenantID, category, filter)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		page, pageSize := pageOrDefault(filter.Page, filter.PageSize)
		h.SuccessWithMeta(c, rules, total, page, pageSize)
	}
}

// GetByID returns one rule of either category
func (h *RateHandler) GetByID(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	rule, err := h.ruleService.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rule)
}

// Update edits a rule. Committed records keep the amounts they were priced with.
func (h *RateHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req rateapp.UpdateRuleRequest
	if !h.bindJSON(c, &req) {
		return
	}

	rule, err := h.ruleService.Update(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rule)
}

// Delete removes a rule
func (h *RateHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.ruleService.Delete(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
