package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/serviceops/fleet-autoscaler/api/handlers"
	"github.com/serviceops/fleet-autoscaler/api/middleware"
	"github.com/serviceops/fleet-autoscaler/api/websocket"
	_ "github.com/serviceops/fleet-autoscaler/docs"
	"github.com/serviceops/fleet-autoscaler/internal/metrics"
	"github.com/serviceops/fleet-autoscaler/internal/monitor"
	"github.com/serviceops/fleet-autoscaler/internal/predictor"
	"github.com/serviceops/fleet-autoscaler/pkg/config"
	"github.com/serviceops/fleet-autoscaler/pkg/models"
)

// Deps carries everything the HTTP surface reads from or controls.
// EventStore and DB are nil when the audit database is disabled.
type Deps struct {
	Monitor    *monitor.Monitor
	History    *metrics.History
	Predictor  *predictor.Runner
	Events     <-chan *models.Event
	EventStore handlers.EventStore
	DB         handlers.Pinger
}

type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	config     config.APIConfig
	deps       Deps
	wsHub      *websocket.Hub
	wsBridge   *websocket.EventBridge
}

func NewServer(cfg config.APIConfig, wsCfg config.WebSocketConfig, mode string, deps Deps) *Server {
	if mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	wsHub := websocket.NewHub(wsCfg)

	s := &Server{
		router: router,
		config: cfg,
		deps:   deps,
		wsHub:  wsHub,
	}

	s.setupMiddleware()
	s.setupRoutes()

	go wsHub.Run()

	if deps.Events != nil {
		s.wsBridge = websocket.NewEventBridge(wsHub, deps.Events)
		s.wsBridge.Start()
	}

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.CORS(middleware.CORSFromConfig(s.config.CORS)))
	s.router.Use(middleware.RequestLogger())
	s.router.Use(middleware.TraceID())
}

func (s *Server) setupRoutes() {
	healthHandler := handlers.NewHealthHandler(s.deps.Monitor, s.deps.DB)
	statusHandler := handlers.NewStatusHandler(s.deps.Monitor, s.deps.History)
	policyHandler := handlers.NewPolicyHandler(s.deps.Monitor)
	predictionHandler := handlers.NewPredictionHandler(s.deps.Predictor)
	registrationHandler := handlers.NewRegistrationHandler(s.deps.Monitor)
	monitorHandler := handlers.NewMonitorHandler(s.deps.Monitor)

	s.router.GET("/health", healthHandler.Health)
	s.router.GET("/health/ready", healthHandler.Ready)
	s.router.GET("/health/live", healthHandler.Live)

	s.router.GET("/ws", websocket.ServeWebSocket(s.wsHub))

	s.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/status", statusHandler.Status)

		v1.POST("/monitor/start", monitorHandler.Start)
		v1.POST("/monitor/stop", monitorHandler.Stop)

		v1.GET("/metrics/latest", statusHandler.LatestMetrics)
		v1.GET("/metrics/history", statusHandler.MetricsHistory)
		v1.GET("/metrics/average", statusHandler.MetricsAverage)

		v1.GET("/policies", policyHandler.List)
		v1.POST("/policies", policyHandler.Create)
		v1.GET("/policies/:id", policyHandler.Get)
		v1.DELETE("/policies/:id", policyHandler.Delete)
		v1.POST("/policies/:id/enable", policyHandler.Enable)
		v1.POST("/policies/:id/disable", policyHandler.Disable)

		v1.GET("/predictions", predictionHandler.Predictions)
		v1.GET("/predictions/models", predictionHandler.Models)

		v1.POST("/registrations/database-clusters", registrationHandler.RegisterDatabaseCluster)
		v1.POST("/registrations/cache-strategies", registrationHandler.RegisterCacheStrategy)
		v1.POST("/registrations/dr-plans", registrationHandler.RegisterDisasterRecoveryPlan)

		if s.deps.EventStore != nil {
			eventHandler := handlers.NewEventHandler(s.deps.EventStore)
			v1.GET("/events/recent", eventHandler.Recent)
		}
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	idleTimeout := s.config.IdleTimeout
	if idleTimeout == 0 {
		idleTimeout = 60 * time.Second
	}

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  idleTimeout,
	}

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	// Stop the bridge before the hub so no broadcast races a closing hub.
	if s.wsBridge != nil {
		s.wsBridge.Stop()
	}
	s.wsHub.Stop()

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
