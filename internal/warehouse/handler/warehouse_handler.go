package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/shared/web"
	"github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/warehouse/repository"
	"github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/warehouse/service"
)

type WarehouseHandler struct {
	svc *service.WarehouseService
}

func NewWarehouseHandler(svc *service.WarehouseService) *WarehouseHandler {
	return &WarehouseHandler{svc: svc}
}

// ListMaterials lists the stock book.
// GET /api/v1/warehouse/materials?type=xxx&search=xxx
func (h *WarehouseHandler) ListMaterials(c *gin.Context) {
	page, pageSize := web.GetPagination(c)
	filters := map[string]string{
		"type":   c.Query("type"),
		"search": c.Query("search"),
	}

	items, total, err := h.svc.ListMaterials(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		web.InternalError(c, "failed to list materials: "+err.Error())
		return
	}

	web.Success(c, web.ListResponse{
		Items:      items,
		Pagination: web.ListMeta(page, pageSize, total),
	})
}

// GetMaterial returns one material.
// GET /api/v1/warehouse/materials/:id
func (h *WarehouseHandler) GetMaterial(c *gin.Context) {
	material, err := h.svc.GetMaterial(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			web.NotFound(c, "material not found")
			return
		}
		web.InternalError(c, "failed to load material: "+err.Error())
		return
	}
	web.Success(c, material)
}

// CreateMaterial registers a material with zero opening stock.
// POST /api/v1/warehouse/materials
func (h *WarehouseHandler) CreateMaterial(c *gin.Context) {
	var req service.CreateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	material, err := h.svc.CreateMaterial(c.Request.Context(), &req)
	if err != nil {
		web.InternalError(c, "failed to create material: "+err.Error())
		return
	}

	web.Created(c, material)
}

// LowStock lists materials at or below their alert threshold.
// GET /api/v1/warehouse/materials/low-stock
func (h *WarehouseHandler) LowStock(c *gin.Context) {
	items, err := h.svc.ListLowStock(c.Request.Context())
	if err != nil {
		web.InternalError(c, "failed to list low stock: "+err.Error())
		return
	}
	web.Success(c, items)
}

// ListLogs returns a material's movement trail, newest first.
// GET /api/v1/warehouse/materials/:id/logs
func (h *WarehouseHandler) ListLogs(c *gin.Context) {
	page, pageSize := web.GetPagination(c)

	logs, total, err := h.svc.ListLogs(c.Request.Context(), c.Param("id"), page, pageSize)
	if err != nil {
		web.InternalError(c, "failed to list inventory logs: "+err.Error())
		return
	}

	web.Success(c, web.ListResponse{
		Items:      logs,
		Pagination: web.ListMeta(page, pageSize, total),
	})
}

// Export books an outbound movement.
// POST /api/v1/warehouse/materials/:id/export
func (h *WarehouseHandler) Export(c *gin.Context) {
	var req service.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	material, err := h.svc.Export(c.Request.Context(), c.Param("id"), web.GetUserName(c), &req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			web.NotFound(c, "material not found")
		case errors.Is(err, service.ErrInsufficientStock):
			web.BadRequest(c, "insufficient stock")
		default:
			web.InternalError(c, "failed to export material: "+err.Error())
		}
		return
	}

	web.Success(c, material)
}

// ListReceipts lists inbound receipts.
// GET /api/v1/warehouse/receipts?po_id=xxx
func (h *WarehouseHandler) ListReceipts(c *gin.Context) {
	page, pageSize := web.GetPagination(c)
	filters := map[string]string{
		"po_id":  c.Query("po_id"),
		"search": c.Query("search"),
	}

	items, total, err := h.svc.ListReceipts(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		web.InternalError(c, "failed to list receipts: "+err.Error())
		return
	}

	web.Success(c, web.ListResponse{
		Items:      items,
		Pagination: web.ListMeta(page, pageSize, total),
	})
}

// GetReceipt returns one receipt with its lines.
// GET /api/v1/warehouse/receipts/:id
func (h *WarehouseHandler) GetReceipt(c *gin.Context) {
	receipt, err := h.svc.GetReceipt(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			web.NotFound(c, "receipt not found")
			return
		}
		web.InternalError(c, "failed to load receipt: "+err.Error())
		return
	}
	web.Success(c, receipt)
}

// CreateReceipt books an inbound delivery and reconciles stock.
// POST /api/v1/warehouse/receipts
func (h *WarehouseHandler) CreateReceipt(c *gin.Context) {
	var req service.CreateReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	receipt, err := h.svc.CreateReceipt(c.Request.Context(), web.GetUserName(c), &req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			web.NotFound(c, err.Error())
		case errors.Is(err, service.ErrEmptyReceipt):
			web.BadRequest(c, "receipt has no items")
		default:
			web.InternalError(c, "failed to create receipt: "+err.Error())
		}
		return
	}

	web.Created(c, receipt)
}
