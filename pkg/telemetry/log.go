// pkg/telemetry/log.go
// Copyright(c) 2025 tankersim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package telemetry

import (
	"context"
	"log/slog"

	"github.com/tankerops/tankersim/pkg/log"
	"github.com/tankerops/tankersim/pkg/sim"
)

// LogSink writes each record to the log at the given level.
type LogSink struct {
	lg    *log.Logger
	level slog.Level
}

func NewLogSink(lg *log.Logger, level slog.Level) *LogSink {
	return &LogSink{lg: lg, level: level}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Send(ctx context.Context, r sim.Record) error {
	if s.lg != nil {
		s.lg.Log(ctx, s.level, "Telemetry", slog.Any("record", r))
	}
	return nil
}
