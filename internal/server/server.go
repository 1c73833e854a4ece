// Package server provides the HTTP server setup and routing configuration.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/airwave-tv/airwave/internal/api"
	"github.com/airwave-tv/airwave/internal/catalog"
	"github.com/airwave-tv/airwave/internal/config"
	"github.com/airwave-tv/airwave/internal/db"
	"github.com/airwave-tv/airwave/internal/logger"
	"github.com/airwave-tv/airwave/internal/middleware"
	"github.com/airwave-tv/airwave/internal/schedule"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Server represents the HTTP server
type Server struct {
	config  *config.Config
	db      *db.DB
	repos   *db.Repositories
	library *catalog.Library
	cache   *schedule.Cache
	watcher *catalog.Watcher
	router  *gin.Engine
	server  *http.Server
}

// New creates a new server instance
func New(cfg *config.Config, database *db.DB) *Server {
	repos := db.NewRepositories(database)

	prober := catalog.NewProber(cfg.Library.ProbeTimeout)
	fallbackMS := int64(cfg.Library.FallbackDurationSeconds) * 1000
	library := catalog.NewLibrary(cfg.Library.ChannelsRoot, prober, repos, fallbackMS)

	cache := schedule.NewCache(
		library,
		&orderStore{repos: repos},
		&settingsSource{repos: repos},
		cfg.Schedule.Horizon,
		schedule.DefaultEpoch(time.Now()),
	)

	s := &Server{
		config:  cfg,
		db:      database,
		repos:   repos,
		library: library,
		cache:   cache,
	}

	if cfg.Library.Watch {
		s.watcher = catalog.NewWatcher(library, cfg.Library.WatchDebounce, func() {
			// Content changed on disk: drop every timeline, keep airing
			// from a fresh epoch.
			cache.InvalidateAll(time.Now().UTC())
			cache.RebuildAll(context.Background())
		})
	}

	return s
}

// Cache exposes the schedule cache, mainly for startup warm builds
func (s *Server) Cache() *schedule.Cache {
	return s.cache
}

// setupRouter initializes the Gin router with middleware and routes
func (s *Server) setupRouter() {
	if s.config.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s.router = gin.New()

	s.router.Use(middleware.RequestLogger())
	s.router.Use(gin.Recovery())
	s.router.Use(cors.Default())

	apiGroup := s.router.Group("/api")

	api.SetupHealthRoutes(apiGroup, s.db)
	api.SetupChannelRoutes(apiGroup, s.library, s.cache)
	api.SetupReloadRoutes(apiGroup, s.cache)
	api.SetupSettingsRoutes(apiGroup, s.repos, s.cache)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.setupRouter()

	if s.watcher != nil {
		if err := s.watcher.Start(); err != nil {
			return fmt.Errorf("failed to start library watcher: %w", err)
		}
	}

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	s.server = &http.Server{
		Addr:           addr,
		Handler:        s.router,
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	logger.Log.Info().
		Str("host", s.config.Server.Host).
		Int("port", s.config.Server.Port).
		Str("channels_root", s.config.Library.ChannelsRoot).
		Msg("Starting HTTP server")

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Log.Info().Msg("Shutting down server gracefully")

	if s.watcher != nil {
		s.watcher.Stop()
	}

	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
	}

	logger.Log.Info().Msg("Server stopped")
	return nil
}
