// Package server exposes the analysis pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"ethoscope/internal/agreement"
	"ethoscope/internal/alignment"
	"ethoscope/internal/config"
	"ethoscope/internal/consensus"
	"ethoscope/internal/friction"
	"ethoscope/internal/llm"
	"ethoscope/internal/review"
	"ethoscope/internal/transparency"
)

// Server wires the analyzers behind the HTTP API. One instance carries all
// process-wide state (friction history, agreements).
type Server struct {
	cfg *config.Config
	log *zap.Logger

	engine       *llm.Engine
	parser       *review.Parser
	detector     *alignment.Detector
	transparency *transparency.Engine
	friction     *friction.Monitor
	consensus    *consensus.Builder
	tracker      *agreement.Tracker
	promptLog    *PromptLog
	metrics      *Metrics
	registry     *prometheus.Registry

	router *gin.Engine
}

// New builds a fully wired server from configuration.
func New(cfg *config.Config, engine *llm.Engine, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	detector := alignment.NewDetector(log.Named("alignment"))
	registry := prometheus.NewRegistry()
	s := &Server{
		cfg:          cfg,
		log:          log,
		engine:       engine,
		parser:       review.NewParser(log.Named("parser")),
		detector:     detector,
		transparency: transparency.NewEngine(log.Named("transparency")),
		friction:     friction.NewMonitor(cfg.Friction.MaxHistory, log.Named("friction")),
		consensus:    consensus.NewBuilder(detector, log.Named("consensus")),
		tracker:      agreement.NewTracker(log.Named("agreement")),
		promptLog:    NewPromptLog(cfg.Server.PromptLogPath, log.Named("promptlog")),
		metrics:      NewMetrics(registry),
		registry:     registry,
	}
	s.router = s.buildRouter()
	return s
}

// ontology returns the configured ontology text, falling back to the
// embedded copy when no external file is configured or readable.
func (s *Server) ontology() string {
	if s.cfg.Ontology.Path != "" {
		data, err := os.ReadFile(s.cfg.Ontology.Path)
		if err != nil {
			s.log.Warn("failed to read configured ontology, using embedded copy",
				zap.String("path", s.cfg.Ontology.Path), zap.Error(err))
		} else {
			return string(data)
		}
	}
	return llm.Ontology()
}

func (s *Server) buildRouter() *gin.Engine {
	if s.cfg.Server.Mode != "" {
		gin.SetMode(s.cfg.Server.Mode)
	}

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	api := r.Group("/api")
	{
		api.GET("/models", s.handleModels)
		api.POST("/analyze", s.handleAnalyze)
		api.POST("/compare", s.handleCompare)

		api.GET("/friction/trend", s.handleFrictionTrend)
		api.GET("/friction/history", s.handleFrictionHistory)
		api.DELETE("/friction/history", s.handleFrictionClear)
		api.GET("/friction/paths", s.handleVoluntaryPaths)
		api.POST("/friction/reframe", s.handleReframe)

		api.POST("/transparency/explain", s.handleExplain)
		api.POST("/transparency/negotiate", s.handleNegotiate)

		api.POST("/agreements", s.handleProposeAgreement)
		api.GET("/agreements", s.handleListAgreements)
		api.GET("/agreements/:id", s.handleGetAgreement)
		api.POST("/agreements/:id/activate", s.handleActivateAgreement)
		api.POST("/agreements/:id/suspend", s.handleSuspendAgreement)
		api.POST("/agreements/:id/compliance", s.handleTrackCompliance)
		api.GET("/agreements/:id/summary", s.handleAgreementSummary)

		api.POST("/benefits", s.handleBenefits)
	}
	return r
}

// Router exposes the handler tree, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Run serves HTTP until the context is cancelled, then shuts down with a
// short drain timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Server.Addr,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", zap.String("addr", s.cfg.Server.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
