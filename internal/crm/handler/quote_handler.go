package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/crm/repository"
	"github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/crm/service"
	"github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/shared/web"
)

type QuoteHandler struct {
	svc *service.QuoteService
}

func NewQuoteHandler(svc *service.QuoteService) *QuoteHandler {
	return &QuoteHandler{svc: svc}
}

// List quotes, newest first.
// GET /api/v1/crm/quotes?status=xxx&search=xxx
func (h *QuoteHandler) List(c *gin.Context) {
	page, pageSize := web.GetPagination(c)
	filters := map[string]string{
		"status": c.Query("status"),
		"search": c.Query("search"),
	}

	items, total, err := h.svc.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		web.InternalError(c, "failed to list quotes: "+err.Error())
		return
	}

	web.Success(c, web.ListResponse{
		Items:      items,
		Pagination: web.ListMeta(page, pageSize, total),
	})
}

// Get quote detail.
// GET /api/v1/crm/quotes/:id
func (h *QuoteHandler) Get(c *gin.Context) {
	quote, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			web.NotFound(c, "quote not found")
			return
		}
		web.InternalError(c, "failed to load quote: "+err.Error())
		return
	}
	web.Success(c, quote)
}

// Create a quote; the computed status comes back in the response.
// POST /api/v1/crm/quotes
func (h *QuoteHandler) Create(c *gin.Context) {
	var req service.CreateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	quote, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		web.InternalError(c, "failed to create quote: "+err.Error())
		return
	}

	web.Created(c, quote)
}

// Decide approves or rejects a pending quote.
// POST /api/v1/crm/quotes/:id/approve
func (h *QuoteHandler) Decide(c *gin.Context) {
	var req service.DecideQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	quote, err := h.svc.Decide(c.Request.Context(), c.Param("id"), &req, web.GetUserID(c))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			web.NotFound(c, "quote not found")
		case errors.Is(err, service.ErrInvalidTransition):
			web.Conflict(c, err.Error())
		default:
			web.InternalError(c, "failed to decide quote: "+err.Error())
		}
		return
	}

	web.Success(c, quote)
}

// UpdateItems replaces line items and recomputes the stored total.
// PUT /api/v1/crm/quotes/:id/items
func (h *QuoteHandler) UpdateItems(c *gin.Context) {
	var req struct {
		Items []service.CreateQuoteItem `json:"items" binding:"required,min=1,dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		web.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	quote, err := h.svc.UpdateItems(c.Request.Context(), c.Param("id"), req.Items)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			web.NotFound(c, "quote not found")
			return
		}
		web.InternalError(c, "failed to update quote items: "+err.Error())
		return
	}

	web.Success(c, quote)
}
