// pkg/sim/state.go
// Copyright(c) 2025 tankersim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

// MissionState is the state of a mission; the only transition is from
// MissionRunning to MissionComplete.
type MissionState int

const (
	MissionRunning MissionState = iota
	MissionComplete
)

func (s MissionState) String() string {
	switch s {
	case MissionRunning:
		return "running"
	case MissionComplete:
		return "complete"
	default:
		return "unknown"
	}
}

func (s MissionState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
