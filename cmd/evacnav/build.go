package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

func runBuild(cmd *cobra.Command, args []string) error {
	g, _, err := loadGraph(cfg)
	if err != nil {
		return err
	}
	if err := g.SaveFile(args[0]); err != nil {
		return err
	}
	slog.Info("graph built", "nodes", g.Len(), "edges", g.EdgeCount(), "exits", len(g.Exits()), "out", args[0])
	return nil
}
