package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/procurement/repository"
	"github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/procurement/service"
	"github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/shared/web"
)

type ProcurementHandler struct {
	svc *service.ProcurementService
}

func NewProcurementHandler(svc *service.ProcurementService) *ProcurementHandler {
	return &ProcurementHandler{svc: svc}
}

// ListRequests lists purchase requests.
// GET /api/v1/procurement/requests?status=xxx&order_id=xxx
func (h *ProcurementHandler) ListRequests(c *gin.Context) {
	page, pageSize := web.GetPagination(c)
	filters := map[string]string{
		"status":   c.Query("status"),
		"order_id": c.Query("order_id"),
		"search":   c.Query("search"),
	}

	items, total, err := h.svc.ListRequests(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		web.InternalError(c, "failed to list purchase requests: "+err.Error())
		return
	}

	web.Success(c, web.ListResponse{
		Items:      items,
		Pagination: web.ListMeta(page, pageSize, total),
	})
}

// GenerateRequests derives purchase requests for an order on demand
// (the manual path when the post-conversion derivation failed).
// POST /api/v1/procurement/requests/generate
func (h *ProcurementHandler) GenerateRequests(c *gin.Context) {
	var req struct {
		OrderID string `json:"order_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		web.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	prs, err := h.svc.GenerateRequestsForOrder(c.Request.Context(), req.OrderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			web.NotFound(c, "order not found")
			return
		}
		web.InternalError(c, "failed to generate purchase requests: "+err.Error())
		return
	}

	web.Success(c, gin.H{"count": len(prs), "requests": prs})
}

// ListPOs lists purchase orders.
// GET /api/v1/procurement/purchase-orders?supplier_id=xxx&status=xxx
func (h *ProcurementHandler) ListPOs(c *gin.Context) {
	page, pageSize := web.GetPagination(c)
	filters := map[string]string{
		"supplier_id": c.Query("supplier_id"),
		"status":      c.Query("status"),
		"search":      c.Query("search"),
	}

	items, total, err := h.svc.ListPOs(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		web.InternalError(c, "failed to list purchase orders: "+err.Error())
		return
	}

	web.Success(c, web.ListResponse{
		Items:      items,
		Pagination: web.ListMeta(page, pageSize, total),
	})
}

// GetPO returns one purchase order with items and source requests.
// GET /api/v1/procurement/purchase-orders/:id
func (h *ProcurementHandler) GetPO(c *gin.Context) {
	po, err := h.svc.GetPO(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			web.NotFound(c, "purchase order not found")
			return
		}
		web.InternalError(c, "failed to load purchase order: "+err.Error())
		return
	}
	web.Success(c, po)
}

// CreatePO consolidates selected requests into a supplier PO.
// POST /api/v1/procurement/purchase-orders
func (h *ProcurementHandler) CreatePO(c *gin.Context) {
	var req service.CreatePORequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	po, err := h.svc.CreatePO(c.Request.Context(), web.GetUserID(c), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptySelection):
			web.BadRequest(c, "no purchase requests selected")
		case errors.Is(err, service.ErrAlreadyOrdered):
			web.Conflict(c, err.Error())
		case errors.Is(err, repository.ErrNotFound):
			web.NotFound(c, "supplier not found")
		default:
			web.InternalError(c, "failed to create purchase order: "+err.Error())
		}
		return
	}

	web.Created(c, po)
}

// SetItemPrice fills in a unit price on one PO line.
// PUT /api/v1/procurement/purchase-orders/:id/items/:itemId/price
func (h *ProcurementHandler) SetItemPrice(c *gin.Context) {
	var req service.SetItemPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	po, err := h.svc.SetItemPrice(c.Request.Context(), c.Param("id"), c.Param("itemId"), &req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			web.NotFound(c, "purchase order or item not found")
			return
		}
		web.InternalError(c, "failed to set item price: "+err.Error())
		return
	}

	web.Success(c, po)
}
