package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/OldStager01/hostmon/api/handlers"
	"github.com/OldStager01/hostmon/api/middleware"
	"github.com/OldStager01/hostmon/api/websocket"
	"github.com/OldStager01/hostmon/internal/logger"
	"github.com/OldStager01/hostmon/internal/metrics"
	"github.com/OldStager01/hostmon/pkg/config"
	"github.com/OldStager01/hostmon/pkg/models"
)

// Store is what the API reads from.
type Store interface {
	handlers.Reader
	handlers.HealthChecker
}

type ServerConfig struct {
	Mode       string
	API        config.APIConfig
	WebSocket  config.WebSocketConfig
	Prometheus config.PrometheusConfig
	Store      Store
	Loop       handlers.LoopStatus
	Metrics    *metrics.Metrics
	// Events feeds the websocket bridge. Nil disables streaming.
	Events <-chan *models.Event
}

type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	config     ServerConfig
	wsHub      *websocket.Hub
	wsBridge   *websocket.EventBridge
	hubCancel  context.CancelFunc
	mu         sync.Mutex
	closed     bool
}

func NewServer(cfg ServerConfig) *Server {
	if cfg.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.Mode == "test" {
		gin.SetMode(gin.TestMode)
	}

	s := &Server{
		router: gin.New(),
		config: cfg,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.CORS(middleware.CORSConfigFrom(s.config.API.CORS)))
	s.router.Use(middleware.TraceID())
	s.router.Use(middleware.RequestLogger())
	s.router.Use(middleware.SecurityHeaders())

	rateLimiter := middleware.NewRateLimiter(s.config.API.RateLimit, time.Minute)
	s.router.Use(middleware.RateLimit(rateLimiter))
}

func (s *Server) setupRoutes() {
	healthHandler := handlers.NewHealthHandler(s.config.Store, s.config.Loop)
	recordsHandler := handlers.NewRecordsHandler(s.config.Store)

	s.router.GET("/health", healthHandler.Health)
	s.router.GET("/health/ready", healthHandler.Ready)
	s.router.GET("/health/live", healthHandler.Live)

	api := s.router.Group("/api")
	{
		api.GET("/snapshots", recordsHandler.ListSnapshots)
		api.GET("/alerts", recordsHandler.ListAlerts)
	}

	if s.config.Prometheus.Enabled && s.config.Metrics != nil {
		path := s.config.Prometheus.Path
		if path == "" {
			path = "/metrics"
		}
		s.router.GET(path, gin.WrapH(s.config.Metrics.Handler()))
	}

	if s.config.WebSocket.Enabled {
		s.wsHub = websocket.NewHub(&s.config.WebSocket)
		s.router.GET("/ws", websocket.ServeWebSocket(s.wsHub))
	}
}

// Start runs the websocket hub and bridge and serves HTTP until Shutdown.
// It returns nil after a graceful shutdown.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	if s.wsHub != nil {
		ctx, cancel := context.WithCancel(context.Background())
		s.hubCancel = cancel
		go s.wsHub.Run(ctx)

		if s.config.Events != nil {
			s.wsBridge = websocket.NewEventBridge(s.wsHub, s.config.Events)
			s.wsBridge.Start()
		}
	}

	addr := fmt.Sprintf(":%d", s.config.API.Port)
	idleTimeout := s.config.API.IdleTimeout
	if idleTimeout == 0 {
		idleTimeout = 60 * time.Second
	}

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.API.ReadTimeout,
		WriteTimeout: s.config.API.WriteTimeout,
		IdleTimeout:  idleTimeout,
	}
	s.httpServer = httpServer
	s.mu.Unlock()

	logger.Infof("API server listening on %s", addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	if s.wsBridge != nil {
		s.wsBridge.Stop()
	}
	if s.hubCancel != nil {
		s.hubCancel()
	}

	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) WebSocketHub() *websocket.Hub {
	return s.wsHub
}
