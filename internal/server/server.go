package server

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/devdocai/piiguard/internal/cache"
	"github.com/devdocai/piiguard/internal/config"
	"github.com/devdocai/piiguard/internal/logger"
	"github.com/devdocai/piiguard/internal/privacy"
	"github.com/devdocai/piiguard/internal/reporting"
	"github.com/devdocai/piiguard/internal/security"
	"github.com/devdocai/piiguard/internal/websocket"
)

// Version is the service version reported by /info.
const Version = "1.0.0"

// Server is the PII detection HTTP service
type Server struct {
	config      *config.Config
	logger      *logger.Logger
	detector    *privacy.Detector
	scanCache   *cache.ScanCache
	reports     *reporting.Store
	wsHub       *websocket.Hub
	rateLimiter *security.RateLimiter
	router      *mux.Router
	server      *http.Server
	startTime   time.Time

	totalScans      atomic.Int64
	totalDetections atomic.Int64
}

// Options carries the optional backing services. Nil fields disable the
// corresponding feature rather than failing startup.
type Options struct {
	ScanCache *cache.ScanCache
	Reports   *reporting.Store
}

// New creates a new server instance
func New(cfg *config.Config, log *logger.Logger, detector *privacy.Detector, opts Options) *Server {
	wsHub := websocket.NewHub(&websocket.HubConfig{
		BroadcastScans:          true,
		BroadcastPatternUpdates: true,
		BroadcastSystem:         true,
		BroadcastConnections:    true,
		AllowedOrigins:          cfg.WebSocket.AllowedOrigins,
		ReadBufferSize:          cfg.WebSocket.ReadBufferSize,
		WriteBufferSize:         cfg.WebSocket.WriteBufferSize,
	}, log.WithComponent("websocket").Logger)

	server := &Server{
		config:    cfg,
		logger:    log.WithComponent("server"),
		detector:  detector,
		scanCache: opts.ScanCache,
		reports:   opts.Reports,
		wsHub:     wsHub,
		rateLimiter: security.NewRateLimiter(security.Config{
			Enabled:           cfg.RateLimit.Enabled,
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}),
		router:    mux.NewRouter(),
		startTime: time.Now(),
	}

	server.setupRoutes()

	server.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      server.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return server
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/info", s.handleInfo).Methods("GET")

	if s.config.WebSocket.Enabled {
		s.router.HandleFunc(s.config.WebSocket.Path, s.wsHub.HandleWebSocket).Methods("GET")
	}

	api := s.router.PathPrefix("/v1").Subrouter()
	api.Use(s.loggingMiddleware)
	api.Use(s.rateLimitMiddleware)
	api.HandleFunc("/detect", s.handleDetect).Methods("POST")
	api.HandleFunc("/detect/batch", s.handleDetectBatch).Methods("POST")
	api.HandleFunc("/check", s.handleCheck).Methods("POST")
	api.HandleFunc("/redact", s.handleRedact).Methods("POST")
	api.HandleFunc("/classify", s.handleClassify).Methods("POST")
	api.HandleFunc("/patterns", s.handleListPatterns).Methods("GET")
	api.HandleFunc("/patterns", s.handleRegisterPattern).Methods("POST")
	api.HandleFunc("/reports/summary", s.handleReportSummary).Methods("GET")
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("Starting PIIGuard server",
		zap.Int("port", s.config.Server.Port),
		zap.Strings("locales", s.detector.Library().Locales()),
		zap.Bool("cache_enabled", s.scanCache != nil),
		zap.Bool("reporting_enabled", s.reports != nil),
	)

	go s.wsHub.Run()
	s.rateLimiter.StartCleanupRoutine()

	return s.server.ListenAndServe()
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping PIIGuard server")
	return s.server.Shutdown(ctx)
}

// ReloadPatterns swaps the pattern library contents, used by config hot
// reload. In-flight scans finish with the snapshot they started with.
func (s *Server) ReloadPatterns(recognizers []privacy.RecognizerConfig) error {
	if err := s.detector.Library().Replace(recognizers); err != nil {
		return err
	}
	s.wsHub.BroadcastEvent(websocket.Event{
		Type:      websocket.EventTypePatternUpdate,
		Timestamp: time.Now(),
		Data:      websocket.PatternUpdateEvent{Action: "reloaded"},
	})
	return nil
}

// Router exposes the HTTP handler, used by tests.
func (s *Server) Router() http.Handler {
	return s.router
}
