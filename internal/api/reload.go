package api

import (
	"net/http"
	"time"

	"github.com/airwave-tv/airwave/internal/logger"
	"github.com/airwave-tv/airwave/internal/schedule"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReloadResponse reports the outcome of a full schedule reload
type ReloadResponse struct {
	ReloadID string                        `json:"reload_id"`
	Epoch    time.Time                     `json:"epoch"`
	Channels []schedule.ChannelBuildResult `json:"channels"`
}

// ReloadHandler handles explicit schedule reload requests
type ReloadHandler struct {
	cache *schedule.Cache
}

// NewReloadHandler creates a new reload handler instance
func NewReloadHandler(cache *schedule.Cache) *ReloadHandler {
	return &ReloadHandler{cache: cache}
}

// Reload handles POST /api/schedule/reload. A reload starts a brand new
// synchronized schedule beginning now: the epoch resets and every channel
// reshuffles.
func (h *ReloadHandler) Reload(c *gin.Context) {
	reloadID := uuid.New().String()
	epoch := time.Now().UTC()

	logger.Log.Info().
		Str("reload_id", reloadID).
		Time("epoch", epoch).
		Msg("Schedule reload requested")

	h.cache.InvalidateAll(epoch)
	results := h.cache.RebuildAll(c.Request.Context())
	if results == nil {
		results = []schedule.ChannelBuildResult{}
	}

	c.JSON(http.StatusOK, ReloadResponse{
		ReloadID: reloadID,
		Epoch:    epoch,
		Channels: results,
	})
}

// SetupReloadRoutes registers schedule reload routes
func SetupReloadRoutes(apiGroup *gin.RouterGroup, cache *schedule.Cache) {
	handler := NewReloadHandler(cache)
	apiGroup.POST("/schedule/reload", handler.Reload)
}
