package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/sales/repository"
	"github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/sales/service"
	"github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/shared/web"
)

type OrderHandler struct {
	svc *service.OrderService
}

func NewOrderHandler(svc *service.OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// List orders.
// GET /api/v1/orders?status=xxx&search=xxx
func (h *OrderHandler) List(c *gin.Context) {
	page, pageSize := web.GetPagination(c)
	filters := map[string]string{
		"status": c.Query("status"),
		"search": c.Query("search"),
	}

	items, total, err := h.svc.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		web.InternalError(c, "failed to list orders: "+err.Error())
		return
	}

	web.Success(c, web.ListResponse{
		Items:      items,
		Pagination: web.ListMeta(page, pageSize, total),
	})
}

// Get order detail.
// GET /api/v1/orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			web.NotFound(c, "order not found")
			return
		}
		web.InternalError(c, "failed to load order: "+err.Error())
		return
	}
	web.Success(c, order)
}

// Create an order directly, without a quote.
// POST /api/v1/orders
func (h *OrderHandler) Create(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	order, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrConflict) {
			web.Conflict(c, "order code already exists")
			return
		}
		web.InternalError(c, "failed to create order: "+err.Error())
		return
	}

	web.Created(c, order)
}

// Convert a quote into a confirmed order.
// POST /api/v1/crm/quotes/:id/convert
func (h *OrderHandler) Convert(c *gin.Context) {
	order, err := h.svc.Convert(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			web.NotFound(c, "quote not found")
		case errors.Is(err, service.ErrConflict):
			web.Conflict(c, "order already exists for this quote")
		case errors.Is(err, service.ErrNotConvertible):
			web.Conflict(c, err.Error())
		default:
			web.InternalError(c, "failed to convert quote: "+err.Error())
		}
		return
	}

	web.Created(c, gin.H{"order_id": order.ID, "order": order})
}

// UpdateItemNotes edits technical notes on order items.
// PUT /api/v1/sales/orders/:id/item-notes
func (h *OrderHandler) UpdateItemNotes(c *gin.Context) {
	var req service.UpdateItemNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	if err := h.svc.UpdateItemNotes(c.Request.Context(), c.Param("id"), &req); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			web.NotFound(c, "order or item not found")
			return
		}
		web.InternalError(c, "failed to update items: "+err.Error())
		return
	}

	web.Success(c, gin.H{"updated": len(req.Items)})
}
