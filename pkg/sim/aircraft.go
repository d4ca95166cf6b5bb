// pkg/sim/aircraft.go
// Copyright(c) 2025 tankersim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"log/slog"
	"time"

	"github.com/tankerops/tankersim/pkg/math"
)

// AircraftState holds the kinematic and fuel state of a single tanker.
// The speed in km/h and mph are derived from the speed in knots and are
// only updated through SetSpeedKts.
type AircraftState struct {
	TailNumber string
	LaunchTime time.Time

	Latitude  float64 // degrees
	Longitude float64 // degrees
	FuelLoad  float64 // pounds of transferable fuel
	Altitude  int     // feet
	Heading   int     // degrees magnetic

	speedKts int
	speedKmh float64
	speedMph float64
}

// NewAircraftState returns an aircraft with the given tail number and
// fuel load; all of the kinematic fields are zero.
func NewAircraftState(tail string, fuel float64, now time.Time) *AircraftState {
	return &AircraftState{
		TailNumber: tail,
		LaunchTime: now.UTC(),
		FuelLoad:   fuel,
	}
}

// NewAircraftStateAt returns an aircraft seeded with a complete state,
// e.g. to resume a mission at a specific point.
func NewAircraftStateAt(tail string, fuel, lat, lon float64, altitude, heading, speedKts int,
	now time.Time) *AircraftState {
	ac := NewAircraftState(tail, fuel, now)
	ac.Latitude, ac.Longitude = lat, lon
	ac.Altitude = altitude
	ac.Heading = heading
	ac.SetSpeedKts(speedKts)
	return ac
}

// SetSpeedKts sets the aircraft's speed and recomputes the derived speeds.
func (ac *AircraftState) SetSpeedKts(kts int) {
	ac.speedKts = kts
	ac.speedKmh = math.KnotsToKmh(float64(kts))
	ac.speedMph = math.KnotsToMph(float64(kts))
}

func (ac AircraftState) SpeedKts() int {
	return ac.speedKts
}

func (ac AircraftState) SpeedKmh() float64 {
	return ac.speedKmh
}

func (ac AircraftState) SpeedMph() float64 {
	return ac.speedMph
}

func (ac AircraftState) Position() math.Point2LL {
	return math.Point2LL{ac.Longitude, ac.Latitude}
}

func (ac AircraftState) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("tail", ac.TailNumber),
		slog.Float64("lat", ac.Latitude),
		slog.Float64("lon", ac.Longitude),
		slog.Float64("fuel", ac.FuelLoad),
		slog.Int("speed_kts", ac.speedKts),
		slog.Int("heading", ac.Heading),
		slog.Int("altitude", ac.Altitude))
}
