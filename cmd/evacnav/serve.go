package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"evac-navigator/internal/server"
)

func runServe(cmd *cobra.Command, args []string) error {
	g, plan, err := loadGraph(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := server.Options{
		Addr:             cfg.Server.Addr,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
		FloorPlanOptions: floorPlanOptions(cfg),
		Logger:           slog.Default(),
	}
	if plan != nil {
		opts.Obstacles = plan.Obstacles
	}
	if cfg.Server.WatchFloorPlan {
		opts.FloorPlan = cfg.FloorPlan.Path
	}
	return server.New(g, opts).Run(ctx)
}
