// pkg/sim/scheduler.go
// Copyright(c) 2025 tankersim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"context"
	"time"
)

const (
	DefaultInitialDelay = 10 * time.Second
	DefaultPeriod       = 60 * time.Second
)

// Scheduler runs a FlightSimulator's ticks: the first after InitialDelay
// and then every Period until the mission is complete.
type Scheduler struct {
	InitialDelay time.Duration
	Period       time.Duration
}

func DefaultScheduler() Scheduler {
	return Scheduler{InitialDelay: DefaultInitialDelay, Period: DefaultPeriod}
}

// Run ticks fs from the calling goroutine, so ticks never overlap. It
// returns the result of the tick that completed the mission, or the last
// tick's result along with ctx.Err() if ctx is canceled first. A tick
// that has started always runs to completion. Running a mission that is
// already complete returns ErrMissionComplete.
func (s Scheduler) Run(ctx context.Context, fs *FlightSimulator) (TickResult, error) {
	if fs.State() == MissionComplete {
		return TickResult{Complete: true}, ErrMissionComplete
	}

	period := s.Period
	if period <= 0 {
		period = DefaultPeriod
	}

	timer := time.NewTimer(max(s.InitialDelay, 0))
	defer timer.Stop()

	var last TickResult
	select {
	case <-ctx.Done():
		return last, ctx.Err()
	case <-timer.C:
	}

	if last = fs.OnTick(); last.Complete {
		return last, nil
	}

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case <-ticker.C:
			if last = fs.OnTick(); last.Complete {
				return last, nil
			}
		}
	}
}
