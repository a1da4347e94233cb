package handler

import (
	"net/http"
	"time"

	costingapp "github.com/bakeops/backend/internal/application/costing"
	"github.com/bakeops/backend/internal/infrastructure/logger"
	"github.com/bakeops/backend/internal/infrastructure/printing"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CostingHandler serves job costing endpoints
type CostingHandler struct {
	BaseHandler
	service *costingapp.CostingService
	sheets  *printing.SheetRenderer
	now     func() time.Time
}

// NewCostingHandler creates a new CostingHandler
func NewCostingHandler(service *costingapp.CostingService, sheets *printing.SheetRenderer) *CostingHandler {
	return &CostingHandler{
		service: service,
		sheets:  sheets,
		now:     time.Now,
	}
}

// Estimate costs a job and returns the production summary.
// POST /costing/estimate
func (h *CostingHandler) Estimate(c *gin.Context) {
	var req costingapp.EstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}

	result, err := h.service.Estimate(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, costingapp.ToEstimateResponse(result))
}

// Sheet costs a job and renders the printable production sheet as HTML.
// POST /costing/sheet
func (h *CostingHandler) Sheet(c *gin.Context) {
	var req costingapp.EstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}

	result, err := h.service.Estimate(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out, err := h.sheets.Render(c.Request.Context(), printing.SheetData{
		Title:       result.CakeName,
		FillingName: result.FillingName,
		Profile:     result.Profile.Name,
		Job:         result.Job,
		Summary:     result.Summary,
		GeneratedAt: h.now(),
	})
	if err != nil {
		logger.GetGinLogger(c).Error("Failed to render production sheet",
			zap.String("cake", result.CakeName),
			zap.Error(err))
		h.InternalError(c, "Failed to render production sheet")
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", out)
}

// Sizes lists the size multiplier table of a profile.
// GET /costing/sizes?profile=
func (h *CostingHandler) Sizes(c *gin.Context) {
	sizes, err := h.service.Sizes(c.Query("profile"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sizes)
}

// Profiles lists the configured pricing profiles, default first.
// GET /costing/profiles
func (h *CostingHandler) Profiles(c *gin.Context) {
	h.Success(c, h.service.Profiles())
}
