// Package server exposes plan building and dataset lookups over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/udisondev/craftplan/internal/db"
	"github.com/udisondev/craftplan/internal/plan"
	"github.com/udisondev/craftplan/internal/resolver"
)

const shutdownTimeout = 10 * time.Second

// PlanStore persists built plans. *db.PlanRepository implements it.
type PlanStore interface {
	Save(ctx context.Context, p *plan.Plan) error
	Get(ctx context.Context, id uuid.UUID) (*plan.Plan, error)
	ListRecent(ctx context.Context, limit int) ([]db.PlanSummary, error)
}

// Server is the HTTP API.
type Server struct {
	router   *gin.Engine
	registry *resolver.Registry
	resOpts  resolver.Options
	planCfg  plan.Config
	store    PlanStore
}

// Option configures a Server.
type Option func(*Server)

// WithPlanStore enables plan persistence.
func WithPlanStore(st PlanStore) Option {
	return func(s *Server) { s.store = st }
}

// New returns a server reading datasets through reg.
func New(reg *resolver.Registry, resOpts resolver.Options, planCfg plan.Config, opts ...Option) *Server {
	s := &Server{
		router:   gin.New(),
		registry: reg,
		resOpts:  resOpts,
		planCfg:  planCfg,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.router.Use(gin.Recovery(), requestLogger())
	s.RegisterRoutes(s.router.Group("/api/v1"))
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// RegisterRoutes registers the API routes on router.
func (s *Server) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/plans", s.BuildPlan)
	router.GET("/plans", s.ListPlans)
	router.GET("/plans/:id", s.GetPlan)
	router.POST("/annotate", s.Annotate)

	router.GET("/references/:type/:id", s.GetReference)
	router.GET("/search", s.Search)
	router.GET("/mods/:id", s.AnalyseMod)
	router.GET("/mods/:id/spawn-weights", s.SpawnWeights)

	router.GET("/datasets", s.ListDatasets)
	router.POST("/datasets/reload", s.ReloadDatasets)
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	slog.Info("http server listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	slog.Info("http server stopped")
	return nil
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"elapsed", time.Since(start))
	}
}
