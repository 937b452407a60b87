// Package api exposes the pipeline's control surface (spec.md §6): a gin
// HTTP server reporting status/stats/activity/performance data and
// accepting start/stop/reset-stats/env-update commands, grounded on the
// teacher's pkg/api gin handlers (*gin.Context, gin.H, c.ShouldBindJSON).
package api

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/config"
	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/developer"
	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/orchestrator"
	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/planner"
	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/reviewer"
	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/telemetry"
)

// Server owns every dependency the control surface reads from or commands,
// plus a mutex guarding the live-tunable settings (spec.md §6 Configuration
// table) since they're read and written from arbitrary request goroutines.
type Server struct {
	Orchestrator *orchestrator.Orchestrator
	Telemetry    *telemetry.Aggregator
	Planner      *planner.Planner
	Reviewer     *reviewer.Reviewer
	Developer    *developer.Developer
	Config       *config.Config

	Logger *slog.Logger

	settingsMu sync.Mutex
}

func (s *Server) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// NewRouter builds the gin engine with permissive CORS and every spec.md
// §6 route wired to its handler.
func (s *Server) NewRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(permissiveCORS())

	api := r.Group("/api")
	{
		api.GET("/status", s.Status)
		api.GET("/stats", s.Stats)
		api.GET("/activity", s.Activity)
		api.GET("/health", s.Health)
		api.GET("/config", s.GetConfig)
		api.GET("/env", s.GetEnv)
		api.POST("/env/update", s.UpdateEnv)
		api.GET("/performance-data", s.PerformanceData)
		api.GET("/performance/realtime", s.PerformanceRealtime)
		api.GET("/performance/agents", s.PerformanceAgents)
		api.POST("/start-automation", s.StartAutomation)
		api.POST("/stop-automation", s.StopAutomation)
		api.POST("/reset-stats", s.ResetStats)
	}

	return r
}

// Run starts the HTTP server on addr and blocks until ctx is cancelled or
// the server errors, mirroring the teacher's context-bound server
// lifecycle (server shuts down when the parent context is done).
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.NewRouter()}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger().Info("shutting down control surface")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
