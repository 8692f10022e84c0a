package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "evacnav.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 10.0, cfg.Graph.ConnectionThreshold)
	assert.Equal(t, 2.0, cfg.Graph.SpawnOffset)
	assert.Equal(t, time.Second/30, cfg.TickInterval())

	g := cfg.GuidanceConfig()
	assert.Equal(t, 1.0, g.LookAheadRadius)
	assert.Equal(t, 5.0, g.ArrowUpdateSpeed)
	assert.Equal(t, 2.0, g.MarkerSpacing)
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
graph:
  connection_threshold: 6
guidance:
  marker_spacing: 1.5
server:
  addr: ":9090"
  watch_floorplan: true
session:
  email: trainee@example.com
  age: "27"
  difficulty: Hard
log:
  level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 6.0, cfg.Graph.ConnectionThreshold)
	assert.Equal(t, 2.0, cfg.Graph.SpawnOffset, "untouched fields keep defaults")
	assert.Equal(t, 1.5, cfg.Guidance.MarkerSpacing)
	assert.Equal(t, 1.0, cfg.Guidance.LookAheadRadius)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.True(t, cfg.Server.WatchFloorPlan)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)

	p := cfg.Profile()
	assert.Equal(t, "trainee@example.com", p.Email)
	assert.Equal(t, "Hard", p.Difficulty)
	assert.Equal(t, "office", p.SceneType)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"zero threshold", "graph:\n  connection_threshold: 0\n"},
		{"negative spacing", "guidance:\n  marker_spacing: -1\n"},
		{"tick rate", "guidance:\n  tick_rate: 0\n"},
		{"log level", "log:\n  level: loud\n"},
		{"difficulty", "session:\n  difficulty: Nightmare\n"},
		{"email", "session:\n  email: not-an-email\n"},
		{"addr", "server:\n  addr: nowhere\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "graph: [not, a, map]\n"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidConfig)
}
