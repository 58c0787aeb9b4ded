// Package web is the HTTP transport: a gin engine exposing the chat,
// analyzer, and public-data endpoints.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/curebird/backend/internal/config"
	"github.com/curebird/backend/internal/core"
	"github.com/curebird/backend/internal/metrics"
	"github.com/curebird/backend/internal/service/analyzer"
	"github.com/curebird/backend/internal/service/assistant"
	"github.com/curebird/backend/internal/service/persona"
	"github.com/curebird/backend/pkg/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// MedicineLookup is the slice of the medicines service the handlers
// consume.
type MedicineLookup interface {
	Lookup(ctx context.Context, disease string) []string
}

// Deps are the domain services the handlers dispatch into.
type Deps struct {
	Assistant *assistant.Assistant
	Persona   *persona.Generator
	Analyzer  *analyzer.Pipeline
	Trends    core.TrendSource
	Medicines MedicineLookup
	Metrics   *metrics.Metrics

	ResourceDistributionPath string
}

type Server struct {
	http *http.Server
	deps Deps
}

func NewServer(ctx context.Context, cfg *config.AppConfig, deps Deps) *Server {
	if !config.IsDebug() {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{deps: deps}

	router := gin.New()
	router.Use(
		requestContext(ctx, deps.Metrics),
		recovery(),
		cors.New(cors.Config{
			AllowOrigins: cfg.CORSOrigins,
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
			MaxAge:       12 * time.Hour,
		}),
	)
	s.routes(router)

	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) routes(router *gin.Engine) {
	router.GET("/api/health", s.handleHealth)
	router.GET("/metrics", gin.WrapH(s.deps.Metrics.Handler()))

	router.GET("/api/disease-trends", s.handleDiseaseTrends)
	router.GET("/api/resource-distribution", s.handleResourceDistribution)
	router.GET("/api/medicines", s.handleMedicines)

	router.POST("/api/analyze-report", s.handleAnalyzeReport)
	router.POST("/api/analyzer/process", s.handleAnalyzerProcess)

	router.POST("/api/health-assistant/chat", s.handleAssistantChat)
	router.GET("/api/health-assistant/context", s.handleAssistantContext)
	router.POST("/api/health-assistant/clear", s.handleAssistantClear)

	router.POST("/api/chat/patient-reply", s.handlePatientReply)
}

func (s *Server) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Str("addr", s.http.Addr).Msg("starting http server")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}
