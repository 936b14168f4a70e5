package core

import (
	"context"
	"log/slog"
)

const (
	LevelTrace slog.Level = slog.LevelDebug - 4
)

func Trace(msg string, args ...any) {
	slog.Log(context.Background(), LevelTrace, msg, args...)
}

func LogState(name string, state *coreState) {
	slog.Debug("StateCheckpoint",
		"Core", name,
		"PC", state.PC,
		"Steps", state.Steps,
		"Halted", state.Halted,
		"Err", state.Err,
		"Frame", state.Frame,
	)
}
