// Package httpapi is the minimal HTTP transport the analysis core
// exposes (spec.md §1 "only the minimal interface the core consumes or
// exposes"), built on gin-gonic/gin the way packages/llm-router/server.go
// composes its engine and route groups.
package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/quantumlayer-dev/solar-placement/internal/model"
	"github.com/quantumlayer-dev/solar-placement/internal/orchestrator"
)

// Server wraps the gin engine and the orchestrator it delegates analysis
// requests to.
type Server struct {
	engine       *gin.Engine
	orchestrator *orchestrator.Orchestrator
	logger       *zap.Logger
	ready        func() bool
}

// NewServer builds the engine, registers middleware, and wires routes.
// ready reports whether the service is warmed up enough to serve traffic
// (e.g. calibrator warm-up complete); pass nil to always report ready.
func NewServer(orch *orchestrator.Orchestrator, logger *zap.Logger, ready func() bool, environment string) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if ready == nil {
		ready = func() bool { return true }
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(LoggerMiddleware(logger))
	engine.Use(CORSMiddleware())

	s := &Server{engine: engine, orchestrator: orch, logger: logger, ready: ready}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.engine.GET("/health", s.handleHealth)
	s.engine.GET("/ready", s.handleReadiness)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.engine.Group("/api/v1")
	{
		v1.POST("/analyze", s.handleAnalyze)
	}
}

// Handler exposes the underlying http.Handler for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleReadiness(c *gin.Context) {
	if !s.ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "warming-up"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// analyzeRequest mirrors spec.md §6's request JSON shape exactly.
type analyzeRequest struct {
	Lat              float64 `json:"lat"`
	Lng              float64 `json:"lng"`
	PlantSizeKW      float64 `json:"plant_size_kw"`
	ElectricityRate  float64 `json:"electricity_rate"`
	PanelAreaM2      float64 `json:"panel_area,omitempty"`
	Efficiency       float64 `json:"efficiency,omitempty"`
	InstallationCost float64 `json:"installation_cost,omitempty"`
	GridDistanceKM   float64 `json:"grid_distance_km,omitempty"`
	AvailableAreaM2  float64 `json:"available_area_m2,omitempty"`
}

func (s *Server) handleAnalyze(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		writeError(c, http.StatusBadRequest, "input_invalid", "could not read request body")
		return
	}

	var q model.Query
	if err := q.UnmarshalJSON(body); err != nil {
		writeError(c, http.StatusBadRequest, "input_invalid", "malformed JSON body")
		return
	}

	if err := q.Validate(); err != nil {
		writeError(c, http.StatusBadRequest, "input_invalid", err.Error())
		return
	}

	resp, err := s.orchestrator.Run(c.Request.Context(), q)
	if err != nil {
		if errors.Is(err, orchestrator.ErrDeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
			writeError(c, http.StatusGatewayTimeout, "deadline_exceeded", "analysis did not complete within the request deadline")
			return
		}
		s.logger.Error("analysis failed", zap.Error(err))
		writeError(c, http.StatusInternalServerError, "internal_error", "unexpected internal failure")
		return
	}

	c.JSON(http.StatusOK, resp)
}

func writeError(c *gin.Context, status int, code, detail string) {
	c.JSON(status, gin.H{"error": code, "detail": detail})
}
