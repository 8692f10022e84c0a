package main

import (
	"github.com/spf13/cobra"

	"evac-navigator/internal/config"
)

var (
	configPath string
	logLevel   string
	floorPlan  string
	snapshot   string

	// cfg is loaded before any subcommand runs.
	cfg config.Config

	rootCmd = &cobra.Command{
		Use:           "evacnav",
		Short:         "Evacuation waypoint navigation for fire-safety drills",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig()
		},
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the waypoint graph over HTTP for authoring tools",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	simulateCmd = &cobra.Command{
		Use:   "simulate",
		Short: "Walk a trainee from a start point to the nearest exit, ticking guidance",
		Args:  cobra.NoArgs,
		RunE:  runSimulate,
	}

	buildCmd = &cobra.Command{
		Use:   "build [output.json]",
		Short: "Build the waypoint graph from a floor plan and save it",
		Args:  cobra.ExactArgs(1),
		RunE:  runBuild,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to evacnav.yaml")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log.level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&floorPlan, "floorplan", "f", "", "override floorplan.path")
	rootCmd.PersistentFlags().StringVar(&snapshot, "graph", "", "load a saved graph instead of the floor plan's waypoints")

	simulateCmd.Flags().Float64SliceVar(&simStart, "from", []float64{0, 0, 0}, "start position x,y,z")
	simulateCmd.Flags().Float64Var(&simSpeed, "speed", 1.4, "walking speed in m/s")
	simulateCmd.Flags().DurationVar(&simTimeout, "max-time", 0, "give up after this much simulated time (default 10m)")
	simulateCmd.Flags().BoolVar(&simFrames, "frames", false, "print every guidance frame as JSON")

	rootCmd.AddCommand(serveCmd, simulateCmd, buildCmd)
}

func loadConfig() error {
	var err error
	if cfg, err = config.Load(configPath); err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if floorPlan != "" {
		cfg.FloorPlan.Path = floorPlan
	}
	if snapshot != "" {
		cfg.Graph.Snapshot = snapshot
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	setupLogging(cfg.Log)
	return nil
}
