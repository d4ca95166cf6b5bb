// pkg/sim/errors.go
// Copyright(c) 2025 tankersim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"errors"
)

var (
	ErrDispatcherClosed = errors.New("Telemetry dispatcher is closed")
	ErrMissionComplete  = errors.New("Mission is complete")
	ErrQueueFull        = errors.New("Telemetry queue is full")
)
