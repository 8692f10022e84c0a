package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/paulmach/orb/geojson"

	"evac-navigator/internal/geom"
	"evac-navigator/internal/guidance"
	"evac-navigator/internal/navgraph"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type RouteRequest struct {
	Position *geom.Vec3 `json:"position" binding:"required"`
}

type RouteResponse struct {
	Success   bool             `json:"success"`
	Outcome   guidance.Outcome `json:"outcome"`
	Message   string           `json:"message,omitempty"`
	Nearest   *navgraph.NodeID `json:"nearest,omitempty"`
	Exit      *navgraph.NodeID `json:"exit,omitempty"`
	Path      navgraph.Path    `json:"path"`
	Positions []geom.Vec3      `json:"positions"`
	Cost      float64          `json:"cost"`
}

type AddNodeRequest struct {
	Position *geom.Vec3 `json:"position" binding:"required"`
	Exit     bool       `json:"exit"`
}

type NodeResponse struct {
	Node  navgraph.Node `json:"node"`
	Edges int           `json:"edges"`
}

// GET /health
func (s *Server) handleHealth(c *gin.Context) {
	n := s.graph.Len()
	status := "ready"
	if n == 0 {
		status = "waiting for nodes"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":       status,
		"numNodes":     n,
		"numEdges":     s.graph.EdgeCount(),
		"numExits":     len(s.graph.Exits()),
		"numObstacles": s.currentObstacles().Len(),
	})
}

// GET /graph/obstacles returns the obstacle footprints as a GeoJSON
// FeatureCollection so editors can draw them under the edge gizmos.
func (s *Server) handleObstacles(c *gin.Context) {
	fc := geojson.NewFeatureCollection()
	for _, o := range s.currentObstacles().All() {
		f := geojson.NewFeature(o.Footprint)
		f.Properties["name"] = o.Name
		f.Properties["base"] = o.Base
		f.Properties["top"] = o.Top
		fc.Append(f)
	}
	c.JSON(http.StatusOK, fc)
}

// POST /route plans from a position to the cheapest reachable exit.
func (s *Server) handleRoute(c *gin.Context) {
	var req RouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	plan, outcome := s.planner.Plan(*req.Position)
	resp := RouteResponse{
		Success:   outcome == guidance.OutcomeRouted,
		Outcome:   outcome,
		Path:      navgraph.Path{},
		Positions: []geom.Vec3{},
	}
	switch outcome {
	case guidance.OutcomeNoNodes:
		resp.Message = "graph has no nodes"
	case guidance.OutcomeNoExit:
		resp.Message = "no exit is reachable from the nearest node"
		resp.Nearest = &plan.Nearest
	default:
		resp.Nearest = &plan.Nearest
		resp.Exit = &plan.Exit
		resp.Path = plan.Path
		resp.Positions = plan.Positions
		resp.Cost = plan.Cost
	}

	s.logger.Debug("route planned",
		"position", req.Position.String(),
		"outcome", outcome,
		"hops", len(resp.Path),
		"cost", resp.Cost)
	c.JSON(http.StatusOK, resp)
}

// GET /graph/lines returns every edge once as a segment.
func (s *Server) handleLines(c *gin.Context) {
	lines := s.graph.Lines()
	c.JSON(http.StatusOK, gin.H{
		"lines":    lines,
		"numNodes": s.graph.Len(),
		"numEdges": len(lines),
	})
}

// GET /graph/nodes
func (s *Server) handleNodes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"nodes": s.graph.Nodes()})
}

// POST /graph/nodes places a node and connects only that node.
func (s *Server) handleAddNode(c *gin.Context) {
	var req AddNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	id := s.graph.AddNode(*req.Position, req.Exit)
	s.respondNode(c, http.StatusCreated, id)
}

// POST /graph/nodes/:id/spawn places a node beside an existing one.
func (s *Server) handleSpawnBeside(c *gin.Context) {
	raw, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		s.badRequest(c, err)
		return
	}

	id, err := s.graph.AddNodeBeside(navgraph.NodeID(raw))
	if errors.Is(err, navgraph.ErrNodeNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "NODE_NOT_FOUND"})
		return
	}
	if err != nil {
		s.logger.Error("spawn failed", "node", raw, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Code: "SPAWN_FAILED"})
		return
	}
	s.respondNode(c, http.StatusCreated, id)
}

// POST /graph/rebuild
func (s *Server) handleRebuild(c *gin.Context) {
	edges := s.graph.RebuildAll()
	c.JSON(http.StatusOK, gin.H{
		"numNodes": s.graph.Len(),
		"numEdges": edges,
	})
}

func (s *Server) respondNode(c *gin.Context, status int, id navgraph.NodeID) {
	n, ok := s.graph.Node(id)
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: navgraph.ErrNodeNotFound.Error(), Code: "NODE_NOT_FOUND"})
		return
	}
	c.JSON(status, NodeResponse{Node: n, Edges: s.graph.EdgeCount()})
}

func (s *Server) badRequest(c *gin.Context, err error) {
	s.logger.Warn("invalid request", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_REQUEST"})
}
