package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/production/repository"
	"github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/production/service"
	"github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/shared/web"
)

type ProductionHandler struct {
	svc *service.ProductionService
}

func NewProductionHandler(svc *service.ProductionService) *ProductionHandler {
	return &ProductionHandler{svc: svc}
}

// List production plans with their stages.
// GET /api/v1/production/plans?status=xxx&order_id=xxx
func (h *ProductionHandler) List(c *gin.Context) {
	page, pageSize := web.GetPagination(c)
	filters := map[string]string{
		"status":   c.Query("status"),
		"order_id": c.Query("order_id"),
	}

	items, total, err := h.svc.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		web.InternalError(c, "failed to list plans: "+err.Error())
		return
	}

	web.Success(c, web.ListResponse{
		Items:      items,
		Pagination: web.ListMeta(page, pageSize, total),
	})
}

// Get one plan.
// GET /api/v1/production/plans/:id
func (h *ProductionHandler) Get(c *gin.Context) {
	plan, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			web.NotFound(c, "plan not found")
			return
		}
		web.InternalError(c, "failed to load plan: "+err.Error())
		return
	}
	web.Success(c, plan)
}

// Create opens shop-floor tracking for an order.
// POST /api/v1/production/plans
func (h *ProductionHandler) Create(c *gin.Context) {
	var req service.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	plan, err := h.svc.CreatePlan(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			web.NotFound(c, "order not found")
		case errors.Is(err, service.ErrPlanExists):
			web.Conflict(c, err.Error())
		default:
			web.InternalError(c, "failed to create plan: "+err.Error())
		}
		return
	}

	web.Created(c, plan)
}

// UpdateStage partially updates one stage's status and counters.
// PATCH /api/v1/production/stages/:id
func (h *ProductionHandler) UpdateStage(c *gin.Context) {
	var req service.UpdateStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	stage, err := h.svc.UpdateStage(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			web.NotFound(c, "stage not found")
			return
		}
		web.InternalError(c, "failed to update stage: "+err.Error())
		return
	}

	web.Success(c, stage)
}
