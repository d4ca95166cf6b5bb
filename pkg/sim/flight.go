// pkg/sim/flight.go
// Copyright(c) 2025 tankersim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/tankerops/tankersim/pkg/log"
	"github.com/tankerops/tankersim/pkg/math"
	"github.com/tankerops/tankersim/pkg/rand"
)

const (
	// DefaultMinFuel is the Bingo fuel, in pounds.
	DefaultMinFuel = 3000
	// DefaultMaxTransferRate is the KC-135's maximum boom transfer rate in
	// pounds per minute.
	DefaultMaxTransferRate = 6500
)

// TransferRateSource provides the fuel transfer rate, in pounds per
// minute, for a tick. max is the configured maximum transfer rate.
type TransferRateSource interface {
	TransferRate(max float64) float64
}

type TransferRateFunc func(max float64) float64

func (f TransferRateFunc) TransferRate(max float64) float64 {
	return f(max)
}

// UniformTransferRate returns a source that draws a rate uniformly from
// [0,max) each time it is called. If r is nil, the package-level random
// source is used.
func UniformTransferRate(r *rand.Rand) TransferRateSource {
	return TransferRateFunc(func(max float64) float64 {
		if r == nil {
			return rand.Float64() * max
		}
		return r.Float64() * max
	})
}

// FixedTransferRate returns a source that always returns rate.
func FixedTransferRate(rate float64) TransferRateSource {
	return TransferRateFunc(func(float64) float64 { return rate })
}

type SimulatorConfig struct {
	MinFuel         float64 // pounds
	MaxTransferRate float64 // pounds per minute
	TransferRates   TransferRateSource
	Now             func() time.Time
	// Console, if non-nil, receives a human-readable status report after
	// each position update and when the aircraft reaches Bingo fuel.
	Console io.Writer
}

func DefaultSimulatorConfig() SimulatorConfig {
	return SimulatorConfig{
		MinFuel:         DefaultMinFuel,
		MaxTransferRate: DefaultMaxTransferRate,
		TransferRates:   UniformTransferRate(nil),
		Now:             time.Now,
	}
}

// TickResult summarizes what happened during a single tick.
type TickResult struct {
	ElapsedMinutes float64
	// Updated is true if enough time had elapsed for position and fuel to
	// be recomputed.
	Updated      bool
	TransferRate float64 // pounds per minute
	Distance     float64 // meters
	// EndAzimuth is the geodesic's azimuth at the new position. It is
	// not applied to the aircraft's heading.
	EndAzimuth float64
	Record     Record
	Complete   bool
}

// FlightSimulator advances a single aircraft's state and decides when its
// mission is complete. It is the only thing that modifies the aircraft
// after it is created.
type FlightSimulator struct {
	mu   sync.Mutex
	ac   AircraftState
	cfg  SimulatorConfig
	sink Sink
	lg   *log.Logger

	state              MissionState
	totalFlightMinutes int
	previousTick       time.Time
	fuelRemaining      float64
}

// NewFlightSimulator returns a simulator for the given aircraft; the
// first tick measures elapsed time from the aircraft's launch time. The
// aircraft is copied, so later changes to *ac are not seen by the
// simulator. A nil sink discards telemetry.
func NewFlightSimulator(ac *AircraftState, cfg SimulatorConfig, sink Sink, lg *log.Logger) *FlightSimulator {
	if cfg.MaxTransferRate <= 0 {
		cfg.MaxTransferRate = DefaultMaxTransferRate
	}
	if cfg.TransferRates == nil {
		cfg.TransferRates = UniformTransferRate(nil)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &FlightSimulator{
		ac:            *ac,
		cfg:           cfg,
		sink:          sink,
		lg:            lg.With(slog.String("tail", ac.TailNumber)),
		state:         MissionRunning,
		previousTick:  ac.LaunchTime,
		fuelRemaining: ac.FuelLoad,
	}
}

// OnTick runs a tick at the current time.
func (fs *FlightSimulator) OnTick() TickResult {
	return fs.Tick(fs.cfg.Now())
}

// Tick advances the simulation to now. If at least a minute has passed
// since the previous tick, fuel is burned at a freshly drawn transfer rate
// and the aircraft is moved along its heading; shorter ticks leave the
// aircraft unchanged. Either way a telemetry record is sent. Once the
// remaining fuel is at or below the minimum the mission is complete and
// subsequent calls do nothing.
func (fs *FlightSimulator) Tick(now time.Time) TickResult {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.state == MissionComplete {
		return TickResult{Complete: true}
	}

	elapsed := now.Sub(fs.previousTick).Minutes()
	fs.previousTick = now
	if elapsed > 0 {
		fs.totalFlightMinutes += int(elapsed)
	}

	result := TickResult{ElapsedMinutes: elapsed}

	if elapsed >= 1 {
		rate := fs.cfg.TransferRates.TransferRate(fs.cfg.MaxTransferRate)
		fs.fuelRemaining = fs.ac.FuelLoad - rate*elapsed
		fs.ac.FuelLoad = fs.fuelRemaining

		dist := math.KmhDistance(fs.ac.SpeedKmh(), elapsed)
		pos, az := math.WGS84.Direct(fs.ac.Position(), float64(fs.ac.Heading), dist)
		fs.ac.Latitude, fs.ac.Longitude = pos.Latitude(), pos.Longitude()

		result.Updated = true
		result.TransferRate = rate
		result.Distance = dist
		result.EndAzimuth = az

		fs.lg.Info("Checking aircraft status",
			slog.String("position", fmt.Sprintf("%.4f by %.4f", fs.ac.Latitude, fs.ac.Longitude)),
			slog.Int("elapsed_flight_minutes", fs.totalFlightMinutes),
			slog.String("transfer_fuel_remaining", fmt.Sprintf("%.2f lbs", fs.fuelRemaining)),
			slog.Float64("transfer_rate", rate),
			slog.Float64("track_drift", math.HeadingDifference(az, float64(fs.ac.Heading))))

		if w := fs.cfg.Console; w != nil {
			fmt.Fprintf(w, "Checking Aircraft %s status at %s\n", fs.ac.TailNumber, now.UTC().Format(time.RFC3339))
			fmt.Fprintf(w, "Current Position: %.4f by %.4f\n", fs.ac.Latitude, fs.ac.Longitude)
			fmt.Fprintf(w, "Elapsed Flight Time %d minutes\n", fs.totalFlightMinutes)
			fmt.Fprintf(w, "Transfer Fuel Remaining: %.2f lbs\n\n", fs.fuelRemaining)
		}
	}

	result.Record = NewRecord(&fs.ac, now)
	if fs.sink != nil {
		if err := fs.sink.Send(context.Background(), result.Record); err != nil {
			fs.lg.Warn("Unable to send telemetry", slog.String("sink", fs.sink.Name()),
				slog.Any("error", err))
		}
	}

	if fs.fuelRemaining <= fs.cfg.MinFuel {
		fs.state = MissionComplete
		result.Complete = true
		fs.lg.Info("Aircraft is Bingo, returning to base",
			slog.Float64("fuel_remaining", fs.fuelRemaining),
			slog.Int("elapsed_flight_minutes", fs.totalFlightMinutes))
		if fs.cfg.Console != nil {
			fmt.Fprintf(fs.cfg.Console, "Aircraft %s is Bingo, Returning to base\n", fs.ac.TailNumber)
		}
	}

	return result
}

func (fs *FlightSimulator) TotalFlightMinutes() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.totalFlightMinutes
}

func (fs *FlightSimulator) FuelRemaining() float64 {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.fuelRemaining
}

func (fs *FlightSimulator) State() MissionState {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.state
}

// Aircraft returns a copy of the aircraft's current state.
func (fs *FlightSimulator) Aircraft() AircraftState {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.ac
}
