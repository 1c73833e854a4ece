package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/airwave-tv/airwave/internal/catalog"
	"github.com/airwave-tv/airwave/internal/logger"
	"github.com/airwave-tv/airwave/internal/models"
	"github.com/airwave-tv/airwave/internal/schedule"
	"github.com/gin-gonic/gin"
)

const (
	defaultGuideHours = 6
	maxGuideHours     = 48
)

// ChannelListResponse represents the discovered channels
type ChannelListResponse struct {
	Channels []catalog.ChannelInfo `json:"channels"`
}

// SegmentResponse carries ad segment metadata for ad entries
type SegmentResponse struct {
	StartOffsetMS     int64 `json:"start_offset_ms"`
	SegmentDurationMS int64 `json:"segment_duration_ms"`
}

// NowPlayingResponse represents the program currently airing on a channel
type NowPlayingResponse struct {
	Channel      string           `json:"channel"`
	OnAir        bool             `json:"on_air"`
	Title        string           `json:"title,omitempty"`
	Path         string           `json:"path,omitempty"`
	Kind         string           `json:"kind,omitempty"`
	ProgramStart *time.Time       `json:"program_start,omitempty"`
	DurationMS   int64            `json:"duration_ms,omitempty"`
	OffsetMS     int64            `json:"offset_ms,omitempty"`
	SeekOffsetMS *int64           `json:"seek_offset_ms,omitempty"`
	IsAd         bool             `json:"is_ad,omitempty"`
	Segment      *SegmentResponse `json:"segment,omitempty"`
}

// GuideEntryResponse represents one guide slot
type GuideEntryResponse struct {
	Start      time.Time `json:"start"`
	Title      string    `json:"title"`
	Path       string    `json:"path"`
	DurationMS int64     `json:"duration_ms"`
	IsAd       bool      `json:"is_ad"`
}

// GuideResponse represents a channel's guide window
type GuideResponse struct {
	Channel     string               `json:"channel"`
	WindowStart time.Time            `json:"window_start"`
	Hours       int                  `json:"hours"`
	Entries     []GuideEntryResponse `json:"entries"`
}

// ChannelHandler handles channel listing, tuning, and guide requests
type ChannelHandler struct {
	library *catalog.Library
	cache   *schedule.Cache
}

// NewChannelHandler creates a new channel handler instance
func NewChannelHandler(library *catalog.Library, cache *schedule.Cache) *ChannelHandler {
	return &ChannelHandler{
		library: library,
		cache:   cache,
	}
}

// ListChannels handles GET /api/channels
func (h *ChannelHandler) ListChannels(c *gin.Context) {
	infos, err := h.library.ChannelInfos()
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to list channels")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "list_failed",
			Message: "Failed to list channels",
		})
		return
	}

	if infos == nil {
		infos = []catalog.ChannelInfo{}
	}
	c.JSON(http.StatusOK, ChannelListResponse{Channels: infos})
}

// NowPlaying handles GET /api/channels/:name/now.
// Off-air channels (no shows) answer with on_air=false rather than an error.
func (h *ChannelHandler) NowPlaying(c *gin.Context) {
	channel := c.Param("name")
	if !h.library.ChannelExists(channel) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "channel_not_found",
			Message: "No such channel: " + channel,
		})
		return
	}

	now := time.Now().UTC()
	pos, err := h.cache.CurrentAt(c.Request.Context(), channel, now)
	if err != nil {
		if errors.Is(err, schedule.ErrNoContent) {
			c.JSON(http.StatusOK, NowPlayingResponse{Channel: channel, OnAir: false})
			return
		}
		logger.Log.Error().
			Err(err).
			Str("channel", channel).
			Msg("Failed to resolve current program")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "resolve_failed",
			Message: "Failed to resolve current program",
		})
		return
	}

	response := NowPlayingResponse{
		Channel:      channel,
		OnAir:        true,
		Path:         pos.Ref.ItemPath(),
		ProgramStart: &pos.ProgramStart,
		DurationMS:   pos.DurationMS,
		OffsetMS:     pos.OffsetMS,
		IsAd:         pos.IsAd,
	}

	if pos.IsAd {
		response.Title = "Commercial Break"
		response.Kind = models.KindCommercial
	} else {
		response.Title = catalog.FormatShowName(pos.Ref.ItemPath())
		response.Kind = models.KindShow
	}

	if ref, isSegment := pos.Ref.(schedule.AdSegmentRef); isSegment {
		response.Segment = &SegmentResponse{
			StartOffsetMS:     ref.StartOffsetMS,
			SegmentDurationMS: ref.SegmentDuration,
		}
	}

	// Seek offset is only reported while still in bounds; a stale position
	// tells the caller to query again.
	if seek, ok := pos.SeekOffset(time.Now().UTC()); ok {
		response.SeekOffsetMS = &seek
	}

	c.JSON(http.StatusOK, response)
}

// Guide handles GET /api/channels/:name/guide?start=RFC3339&hours=N
func (h *ChannelHandler) Guide(c *gin.Context) {
	channel := c.Param("name")
	if !h.library.ChannelExists(channel) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "channel_not_found",
			Message: "No such channel: " + channel,
		})
		return
	}

	windowStart := time.Now().UTC()
	if raw := c.Query("start"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_start",
				Message: "start must be RFC3339",
			})
			return
		}
		windowStart = parsed.UTC()
	}

	hours := defaultGuideHours
	if raw := c.Query("hours"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxGuideHours {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_hours",
				Message: "hours must be an integer between 1 and 48",
			})
			return
		}
		hours = parsed
	}

	entries, err := h.cache.GuideWindow(c.Request.Context(), channel, windowStart, time.Duration(hours)*time.Hour)
	if err != nil {
		logger.Log.Error().
			Err(err).
			Str("channel", channel).
			Msg("Failed to build guide window")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "guide_failed",
			Message: "Failed to build guide window",
		})
		return
	}

	response := GuideResponse{
		Channel:     channel,
		WindowStart: windowStart,
		Hours:       hours,
		Entries:     make([]GuideEntryResponse, 0, len(entries)),
	}
	for _, entry := range entries {
		item := GuideEntryResponse{
			Start:      entry.Start,
			Path:       entry.Ref.ItemPath(),
			DurationMS: entry.DurationMS,
			IsAd:       entry.IsAd,
		}
		if entry.IsAd {
			item.Title = "Commercial Break"
		} else {
			item.Title = catalog.FormatShowName(entry.Ref.ItemPath())
		}
		response.Entries = append(response.Entries, item)
	}

	c.JSON(http.StatusOK, response)
}

// SetupChannelRoutes registers channel routes
func SetupChannelRoutes(apiGroup *gin.RouterGroup, library *catalog.Library, cache *schedule.Cache) {
	handler := NewChannelHandler(library, cache)
	apiGroup.GET("/channels", handler.ListChannels)
	apiGroup.GET("/channels/:name/now", handler.NowPlaying)
	apiGroup.GET("/channels/:name/guide", handler.Guide)
}
