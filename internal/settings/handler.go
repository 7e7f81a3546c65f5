package settings

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/shared/web"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// GetApprovalThreshold returns the current threshold value.
// GET /api/v1/settings/approval-threshold
func (h *Handler) GetApprovalThreshold(c *gin.Context) {
	d := h.svc.ApprovalThreshold(c.Request.Context())
	web.Success(c, gin.H{"value": d.String()})
}

// SetApprovalThreshold updates the threshold.
// POST /api/v1/settings/approval-threshold
func (h *Handler) SetApprovalThreshold(c *gin.Context) {
	var req struct {
		Value string `json:"value" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		web.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	err := h.svc.Set(c.Request.Context(), KeyApprovalThreshold, req.Value,
		"Quote approval threshold (VND)")
	if err != nil {
		web.InternalError(c, "failed to update threshold: "+err.Error())
		return
	}
	web.Success(c, gin.H{"value": req.Value})
}

// GetSetting reads an arbitrary key.
// GET /api/v1/settings/:key
func (h *Handler) GetSetting(c *gin.Context) {
	setting, err := h.svc.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			web.NotFound(c, "setting not found")
			return
		}
		web.InternalError(c, "failed to load setting: "+err.Error())
		return
	}
	web.Success(c, setting)
}
