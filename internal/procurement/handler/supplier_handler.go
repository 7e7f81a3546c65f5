package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/procurement/repository"
	"github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/procurement/service"
	"github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/shared/web"
)

type SupplierHandler struct {
	svc *service.ProcurementService
}

func NewSupplierHandler(svc *service.ProcurementService) *SupplierHandler {
	return &SupplierHandler{svc: svc}
}

// List suppliers.
// GET /api/v1/procurement/suppliers
func (h *SupplierHandler) List(c *gin.Context) {
	page, pageSize := web.GetPagination(c)
	filters := map[string]string{
		"status": c.Query("status"),
		"search": c.Query("search"),
	}

	items, total, err := h.svc.ListSuppliers(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		web.InternalError(c, "failed to list suppliers: "+err.Error())
		return
	}

	web.Success(c, web.ListResponse{
		Items:      items,
		Pagination: web.ListMeta(page, pageSize, total),
	})
}

// Create a supplier.
// POST /api/v1/procurement/suppliers
func (h *SupplierHandler) Create(c *gin.Context) {
	var req service.CreateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	supplier, err := h.svc.CreateSupplier(c.Request.Context(), &req)
	if err != nil {
		web.InternalError(c, "failed to create supplier: "+err.Error())
		return
	}

	web.Created(c, supplier)
}

// Update patches a supplier's contact details or status.
// PUT /api/v1/procurement/suppliers/:id
func (h *SupplierHandler) Update(c *gin.Context) {
	var req service.UpdateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	supplier, err := h.svc.UpdateSupplier(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			web.NotFound(c, "supplier not found")
			return
		}
		web.InternalError(c, "failed to update supplier: "+err.Error())
		return
	}

	web.Success(c, supplier)
}
