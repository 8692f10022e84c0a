// Package config loads evacnav settings from YAML. Fields missing from the
// file keep their Default values; the merged result is checked with struct
// tag validation.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"evac-navigator/internal/guidance"
	"evac-navigator/internal/navgraph"
	"evac-navigator/internal/session"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

var validate = validator.New()

type Config struct {
	Graph     Graph     `yaml:"graph"`
	Guidance  Guidance  `yaml:"guidance"`
	FloorPlan FloorPlan `yaml:"floorplan"`
	Server    Server    `yaml:"server"`
	Session   Session   `yaml:"session"`
	Log       Log       `yaml:"log"`
}

type Graph struct {
	ConnectionThreshold float64 `yaml:"connection_threshold" validate:"gt=0"`
	SpawnOffset         float64 `yaml:"spawn_offset"`
	// Snapshot is a saved graph to load instead of the floor plan's nodes.
	Snapshot string `yaml:"snapshot"`
}

type Guidance struct {
	LookAheadRadius  float64 `yaml:"look_ahead_radius" validate:"gte=0"`
	ArrowHeight      float64 `yaml:"arrow_height"`
	ArrowUpdateSpeed float64 `yaml:"arrow_update_speed" validate:"gte=0"`
	MarkerSpacing    float64 `yaml:"marker_spacing" validate:"gt=0"`
	// TickRate is simulation ticks per second.
	TickRate int `yaml:"tick_rate" validate:"gte=1,lte=240"`
}

type FloorPlan struct {
	Path                  string  `yaml:"path"`
	SimplifyEpsilon       float64 `yaml:"simplify_epsilon" validate:"gte=0"`
	DefaultObstacleHeight float64 `yaml:"default_obstacle_height" validate:"gt=0"`
}

type Server struct {
	Addr            string        `yaml:"addr" validate:"required,hostname_port"`
	WatchFloorPlan  bool          `yaml:"watch_floorplan"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gte=0"`
}

type Session struct {
	Email      string `yaml:"email" validate:"omitempty,email"`
	Age        string `yaml:"age" validate:"omitempty,numeric"`
	SceneType  string `yaml:"scene_type"`
	Difficulty string `yaml:"difficulty" validate:"omitempty,oneof=Easy Medium Hard"`
}

type Log struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

func Default() Config {
	g := guidance.DefaultConfig()
	return Config{
		Graph: Graph{
			ConnectionThreshold: navgraph.DefaultThreshold,
			SpawnOffset:         navgraph.DefaultSpawnOffset,
		},
		Guidance: Guidance{
			LookAheadRadius:  g.LookAheadRadius,
			ArrowHeight:      g.ArrowHeight,
			ArrowUpdateSpeed: g.ArrowUpdateSpeed,
			MarkerSpacing:    g.MarkerSpacing,
			TickRate:         30,
		},
		FloorPlan: FloorPlan{
			DefaultObstacleHeight: 3,
		},
		Server: Server{
			Addr:            "localhost:8080",
			ShutdownTimeout: 5 * time.Second,
		},
		Session: Session{
			SceneType:  "office",
			Difficulty: "Easy",
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads path over Default and validates the result. An empty path
// returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s failed %q (got %v)", ErrInvalidConfig, fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// GuidanceConfig converts the guidance section for the controller.
func (c Config) GuidanceConfig() guidance.Config {
	return guidance.Config{
		LookAheadRadius:  c.Guidance.LookAheadRadius,
		ArrowHeight:      c.Guidance.ArrowHeight,
		ArrowUpdateSpeed: c.Guidance.ArrowUpdateSpeed,
		MarkerSpacing:    c.Guidance.MarkerSpacing,
	}
}

// TickInterval is the simulated time between guidance ticks.
func (c Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.Guidance.TickRate)
}

// GraphOptions returns the graph construction options.
func (c Config) GraphOptions() []navgraph.Option {
	return []navgraph.Option{
		navgraph.WithThreshold(c.Graph.ConnectionThreshold),
		navgraph.WithSpawnOffset(c.Graph.SpawnOffset),
	}
}

func (c Config) Profile() session.Profile {
	return session.Profile{
		Email:      c.Session.Email,
		Age:        c.Session.Age,
		SceneType:  c.Session.SceneType,
		Difficulty: c.Session.Difficulty,
	}
}
