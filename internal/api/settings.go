package api

import (
	"context"
	"net/http"
	"time"

	"github.com/airwave-tv/airwave/internal/db"
	"github.com/airwave-tv/airwave/internal/logger"
	"github.com/airwave-tv/airwave/internal/schedule"
	"github.com/gin-gonic/gin"
)

// UpdateSettingsRequest represents a partial settings update
type UpdateSettingsRequest struct {
	AdBreakMinutes *int `json:"ad_break_minutes,omitempty" binding:"omitempty,gte=1,lte=30"`
	MinShowMinutes *int `json:"min_show_minutes,omitempty" binding:"omitempty,gte=1"`
}

// SettingsResponse represents the schedule settings
type SettingsResponse struct {
	AdBreakMinutes int       `json:"ad_break_minutes"`
	MinShowMinutes int       `json:"min_show_minutes"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// SettingsHandler handles settings requests
type SettingsHandler struct {
	repos *db.Repositories
	cache *schedule.Cache
}

// NewSettingsHandler creates a new settings handler instance
func NewSettingsHandler(repos *db.Repositories, cache *schedule.Cache) *SettingsHandler {
	return &SettingsHandler{
		repos: repos,
		cache: cache,
	}
}

// Get handles GET /api/settings
func (h *SettingsHandler) Get(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	settings, err := h.repos.Settings.Get(ctx)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to load settings")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "settings_failed",
			Message: "Failed to load settings",
		})
		return
	}

	c.JSON(http.StatusOK, SettingsResponse{
		AdBreakMinutes: settings.AdBreakMinutes,
		MinShowMinutes: settings.MinShowMinutes,
		UpdatedAt:      settings.UpdatedAt,
	})
}

// Update handles PUT /api/settings. Changing a schedule-affecting setting
// invalidates every cached timeline; the new epoch is now.
func (h *SettingsHandler) Update(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	if req.AdBreakMinutes == nil && req.MinShowMinutes == nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "empty_update",
			Message: "No settings provided",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	settings, err := h.repos.Settings.Get(ctx)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to load settings for update")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "settings_failed",
			Message: "Failed to load settings",
		})
		return
	}

	if req.AdBreakMinutes != nil {
		settings.AdBreakMinutes = *req.AdBreakMinutes
	}
	if req.MinShowMinutes != nil {
		settings.MinShowMinutes = *req.MinShowMinutes
	}

	if err := h.repos.Settings.Update(ctx, settings); err != nil {
		logger.Log.Error().Err(err).Msg("Failed to update settings")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "update_failed",
			Message: "Failed to update settings",
		})
		return
	}

	epoch := time.Now().UTC()
	h.cache.InvalidateAll(epoch)

	logger.Log.Info().
		Int("ad_break_minutes", settings.AdBreakMinutes).
		Int("min_show_minutes", settings.MinShowMinutes).
		Time("epoch", epoch).
		Msg("Settings updated, schedules invalidated")

	c.JSON(http.StatusOK, SettingsResponse{
		AdBreakMinutes: settings.AdBreakMinutes,
		MinShowMinutes: settings.MinShowMinutes,
		UpdatedAt:      settings.UpdatedAt,
	})
}

// SetupSettingsRoutes registers settings routes
func SetupSettingsRoutes(apiGroup *gin.RouterGroup, repos *db.Repositories, cache *schedule.Cache) {
	handler := NewSettingsHandler(repos, cache)
	apiGroup.GET("/settings", handler.Get)
	apiGroup.PUT("/settings", handler.Update)
}
