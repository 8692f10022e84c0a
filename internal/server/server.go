// Package server exposes the waypoint graph over HTTP for authoring and
// inspection tools: route queries, edge gizmos, node placement and rebuilds.
// When a floor plan path is configured the server also watches it and
// rebuilds the graph against the new obstacles on every change.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"evac-navigator/internal/floorplan"
	"evac-navigator/internal/guidance"
	"evac-navigator/internal/navgraph"
)

// Options configures a Server.
type Options struct {
	Addr            string
	ShutdownTimeout time.Duration
	// FloorPlan, when set, is watched for changes.
	FloorPlan        string
	FloorPlanOptions floorplan.Options
	// Obstacles are the ones the graph was built against, served from
	// /graph/obstacles until the first reload replaces them.
	Obstacles *floorplan.Obstacles
	Logger    *slog.Logger
}

type Server struct {
	graph   *navgraph.Graph
	planner *guidance.Planner
	opts    Options
	logger  *slog.Logger
	engine  *gin.Engine

	mu        sync.RWMutex
	obstacles *floorplan.Obstacles
}

func New(g *navgraph.Graph, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Addr == "" {
		opts.Addr = "localhost:8080"
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 5 * time.Second
	}
	if opts.FloorPlanOptions.Logger == nil {
		opts.FloorPlanOptions.Logger = opts.Logger
	}

	s := &Server{
		graph:     g,
		planner:   guidance.NewPlanner(g),
		opts:      opts,
		logger:    opts.Logger,
		obstacles: opts.Obstacles,
	}
	s.engine = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.logger), cors())

	r.GET("/health", s.handleHealth)
	r.POST("/route", s.handleRoute)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	graph := r.Group("/graph")
	graph.GET("/lines", s.handleLines)
	graph.GET("/obstacles", s.handleObstacles)
	graph.GET("/nodes", s.handleNodes)
	graph.POST("/nodes", s.handleAddNode)
	graph.POST("/nodes/:id/spawn", s.handleSpawnBeside)
	graph.POST("/rebuild", s.handleRebuild)
	return r
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully. The floor
// plan watcher, if any, runs alongside and stops with the server.
func (s *Server) Run(ctx context.Context) error {
	var w *watcher
	if s.opts.FloorPlan != "" {
		var err error
		if w, err = newWatcher(s.opts.FloorPlan, s.reloadFloorPlan, s.logger); err != nil {
			return err
		}
	}

	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("server listening", "addr", s.opts.Addr, "nodes", s.graph.Len(), "edges", s.graph.EdgeCount())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on %s: %w", s.opts.Addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		s.logger.Info("server shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	if w != nil {
		g.Go(func() error { return w.run(ctx) })
	}
	return g.Wait()
}

// reloadFloorPlan swaps in the obstacles of the floor plan on disk and
// reconnects the graph. Nodes are left where they are.
func (s *Server) reloadFloorPlan() error {
	plan, err := floorplan.Load(s.opts.FloorPlan, s.opts.FloorPlanOptions)
	if err != nil {
		return err
	}
	s.graph.SetVisibility(plan.Obstacles)
	s.setObstacles(plan.Obstacles)
	edges := s.graph.RebuildAll()
	s.logger.Info("floor plan reloaded", "path", s.opts.FloorPlan, "obstacles", plan.Obstacles.Len(), "edges", edges)
	return nil
}

func (s *Server) currentObstacles() *floorplan.Obstacles {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.obstacles
}

func (s *Server) setObstacles(o *floorplan.Obstacles) {
	s.mu.Lock()
	s.obstacles = o
	s.mu.Unlock()
}
