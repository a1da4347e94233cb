package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/bakeops/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CatalogStats reports what the loaded catalog snapshot holds
type CatalogStats interface {
	RecipeCount() int
	IngredientCount() int
}

// ProfileCounter reports how many pricing profiles are registered
type ProfileCounter interface {
	Len() int
}

// SystemHandler serves health and build information
type SystemHandler struct {
	BaseHandler
	name      string
	version   string
	catalog   CatalogStats
	profiles  ProfileCounter
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(name, version string, catalog CatalogStats, profiles ProfileCounter) *SystemHandler {
	return &SystemHandler{
		name:      name,
		version:   version,
		catalog:   catalog,
		profiles:  profiles,
		startTime: time.Now(),
	}
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	GoVersion   string `json:"go_version"`
	Uptime      string `json:"uptime"`
	Recipes     int    `json:"recipes"`
	Ingredients int    `json:"ingredients"`
	Profiles    int    `json:"profiles"`
}

// GetSystemInfo returns version, uptime and catalog sizes.
// GET /system/info
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	h.Success(c, SystemInfoResponse{
		Name:        h.name,
		Version:     h.version,
		GoVersion:   runtime.Version(),
		Uptime:      time.Since(h.startTime).Round(time.Second).String(),
		Recipes:     h.catalog.RecipeCount(),
		Ingredients: h.catalog.IngredientCount(),
		Profiles:    h.profiles.Len(),
	})
}

// Health reports unhealthy while there is nothing to cost: no recipes in
// the catalog or no pricing profile.
// GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	recipes := h.catalog.RecipeCount()
	profiles := h.profiles.Len()
	body := gin.H{
		"status":   "healthy",
		"time":     time.Now().Format(time.RFC3339),
		"recipes":  recipes,
		"profiles": profiles,
	}

	if recipes == 0 || profiles == 0 {
		logger.GetGinLogger(c).Warn("Health check failed",
			zap.Int("recipes", recipes),
			zap.Int("profiles", profiles))
		body["status"] = "unhealthy"
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}
	c.JSON(http.StatusOK, body)
}
