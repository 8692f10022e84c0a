package session

import (
	"context"
	"log/slog"
)

// Reporter delivers a finished drill's report.
type Reporter interface {
	Report(ctx context.Context, r Report) error
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(ctx context.Context, r Report) error

func (f ReporterFunc) Report(ctx context.Context, r Report) error {
	return f(ctx, r)
}

// LogReporter writes reports to a logger at info level.
type LogReporter struct {
	Logger *slog.Logger
}

func (l LogReporter) Report(ctx context.Context, r Report) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "session report",
		"session", r.SessionID,
		"email", r.Email,
		"age", r.Age,
		"scene_type", r.SceneType,
		"difficulty", r.Difficulty,
		"time_to_find_extinguisher", r.TimeToFindExtinguisher,
		"time_to_extinguish_fire", r.TimeToExtinguishFire,
		"time_to_trigger_alarm", r.TimeToTriggerAlarm,
		"time_to_find_exit", r.TimeToFindExit,
	)
	return nil
}
