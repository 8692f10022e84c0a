package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evac-navigator/internal/geom"
	"evac-navigator/internal/navgraph"
	"evac-navigator/internal/session"
)

var officePlan = filepath.Join("..", "..", "internal", "floorplan", "testdata", "office.geojson")

func TestWalk(t *testing.T) {
	route := []geom.Vec3{geom.V(0, 0, 0), geom.V(4, 0, 0), geom.V(4, 0, 4)}

	tests := []struct {
		name string
		pos  geom.Vec3
		dist float64
		want geom.Vec3
	}{
		{"from the first node", geom.V(0, 0, 0), 1, geom.V(1, 0, 0)},
		{"past the first node", geom.V(1, 0, 0), 1, geom.V(2, 0, 0)},
		{"around a corner", geom.V(3, 0, 0), 2, geom.V(4, 0, 1)},
		{"stops at the end", geom.V(4, 0, 3), 5, geom.V(4, 0, 4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := walk(tt.pos, route, tt.dist)
			assert.InDelta(t, tt.want.X, got.X, 1e-9)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-9)
			assert.InDelta(t, tt.want.Z, got.Z, 1e-9)
		})
	}
}

func TestNearPoint(t *testing.T) {
	r := nearPoint{center: geom.V(1, 0, 1), radius: 0.5}
	assert.True(t, r.Contains(geom.V(1.5, 0, 1)))
	assert.False(t, r.Contains(geom.V(2, 0, 1)))
}

func TestBuildAndSimulate(t *testing.T) {
	out := filepath.Join(t.TempDir(), "office-graph.json")

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetArgs([]string{"build", "--floorplan", officePlan, "--log-level", "error", out})
	require.NoError(t, rootCmd.Execute())

	g, err := navgraph.LoadFile(out)
	require.NoError(t, err)
	assert.Equal(t, 4, g.Len())
	assert.Equal(t, []navgraph.NodeID{3}, g.Exits())

	stdout.Reset()
	rootCmd.SetArgs([]string{"simulate", "--floorplan", officePlan, "--graph", out, "--log-level", "error", "--from", "0,0,0"})
	require.NoError(t, rootCmd.Execute())

	var report session.Report
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &report))
	assert.NotEmpty(t, report.SessionID)
	assert.Equal(t, "office", report.SceneType)
	// the route is about 12.2m and the exit zone starts a meter before the
	// exit node, at 1.4 m/s
	assert.Greater(t, report.TimeToFindExit, 7.0)
	assert.Less(t, report.TimeToFindExit, 9.5)
	assert.Zero(t, report.TimeToTriggerAlarm)
}
