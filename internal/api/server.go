package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"webPageProbeGO/internal/analyzer"
	"webPageProbeGO/internal/config"
	"webPageProbeGO/internal/middleware"
	"webPageProbeGO/internal/models"
)

// Submitter starts batches
type Submitter interface {
	Submit(ctx context.Context, req models.AnalysisRequest) (*analyzer.Job, error)
}

// TaskReader looks up task snapshots
type TaskReader interface {
	Get(ctx context.Context, id string) (*models.Task, error)
}

// Server represents the HTTP server
type Server struct {
	router       *gin.Engine
	httpServer   *http.Server
	orchestrator Submitter
	tasks        TaskReader
	metrics      http.Handler
	logger       *slog.Logger
	config       *config.Config
}

// NewServer creates a new HTTP server. metricsHandler may be nil, in which case /metrics is not served.
func NewServer(cfg *config.Config, orchestrator Submitter, tasks TaskReader, metricsHandler http.Handler, logger *slog.Logger) *Server {
	if gin.Mode() != gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID(), middleware.Logging(logger))
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}))

	s := &Server{
		router: router,
		httpServer: &http.Server{
			Addr:         ":" + cfg.Server.Port,
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		orchestrator: orchestrator,
		tasks:        tasks,
		metrics:      metricsHandler,
		logger:       logger,
		config:       cfg,
	}

	s.registerRoutes()

	return s
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// registerRoutes sets up all the routes for the server
func (s *Server) registerRoutes() {
	s.router.GET("/health", s.healthHandler)
	if s.metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.metrics))
	}

	api := s.router.Group("/api")
	{
		api.POST("/analyze", s.analyzeHandler)
		api.GET("/progress/:id", s.progressHandler)
		api.GET("/export/:id", s.exportHandler)

		results := api.Group("/results")
		results.Use(s.limitBody())
		results.POST("/aggregate", s.aggregateHandler)
		results.POST("/response-times", s.responseTimesHandler)
	}
}

// limitBody caps request bodies at the configured upload size
func (s *Server) limitBody() gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit := s.config.Server.MaxUploadBytes; limit > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}

// healthHandler handles health check requests
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// respondError writes the common error body
func respondError(c *gin.Context, status int, message string, err error) {
	resp := models.ErrorResponse{StatusCode: status, Message: message}
	if err != nil {
		resp.Error = err.Error()
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, resp)
}
