// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the finder over HTTP with gin.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pdiddy/partfinder/internal/finder"
	"github.com/pdiddy/partfinder/internal/jobs"
	"github.com/pdiddy/partfinder/pkg/types"
)

const (
	DefaultAddr         = ":3000"
	DefaultAllowOrigin  = "*"
	DefaultMaxBodyBytes = 1 << 20

	shutdownTimeout = 10 * time.Second
)

// Service is the request pipeline. *finder.Service implements it.
type Service interface {
	Configured() bool
	Alternatives(ctx context.Context, part string) (*finder.AlternativesResult, error)
	Compare(ctx context.Context, partA, partB string) (*finder.ComparisonResult, error)
}

// Server routes HTTP requests to a Service.
type Server struct {
	svc    Service
	jobs   *jobs.Runner
	cfg    types.ServerConfig
	logger *zap.Logger
	engine *gin.Engine
}

// New builds the router. runner may be nil, in which case the job routes
// are not registered.
func New(svc Service, runner *jobs.Runner, cfg types.ServerConfig, logger *zap.Logger) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.AllowOrigin == "" {
		cfg.AllowOrigin = DefaultAllowOrigin
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{svc: svc, jobs: runner, cfg: cfg, logger: logger}
	s.engine = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(recovery(s.logger), requestID(), accessLog(s.logger), cors(s.cfg.AllowOrigin), limitBody(s.cfg.MaxBodyBytes))

	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, errorBody{Error: "Method not allowed"})
	})
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorBody{Error: "Not found"})
	})

	r.GET("/health", s.health)

	api := r.Group("/api")
	api.POST("/alternatives", s.alternatives)
	api.OPTIONS("/alternatives", preflight)
	api.POST("/compare", s.compare)
	api.OPTIONS("/compare", preflight)
	if s.jobs != nil {
		api.POST("/alternatives/jobs", s.submitAlternatives)
		api.OPTIONS("/alternatives/jobs", preflight)
		api.GET("/jobs/:id", s.job)
	}
	return r
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then drains in-flight requests and
// background jobs.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", s.cfg.Addr), zap.Bool("generation_configured", s.svc.Configured()))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving %s: %w", s.cfg.Addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if s.jobs != nil {
		s.jobs.Wait()
	}
	return nil
}
