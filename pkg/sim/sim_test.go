// pkg/sim/sim_test.go
// Copyright(c) 2025 tankersim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	testLaunch = time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC)
	aripLat    = 32.582167
	aripLon    = -114.459419
)

// recordingSink remembers everything that is sent to it.
type recordingSink struct {
	mu      sync.Mutex
	records []Record
	err     error
}

func (s *recordingSink) Send(ctx context.Context, r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, r)
	return s.err
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Record(nil), s.records...)
}

var errSinkDown = errors.New("sink is down")

// fakeClock advances by step each time Now is called.
type fakeClock struct {
	mu   sync.Mutex
	t    time.Time
	step time.Duration
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(c.step)
	return c.t
}

func makeTestAircraft() *AircraftState {
	return NewAircraftStateAt("61-0015", 200000, aripLat, aripLon, 30000, 90, 300, testLaunch)
}

func makeTestSimulator(ac *AircraftState, rate float64, sink Sink) *FlightSimulator {
	cfg := DefaultSimulatorConfig()
	cfg.TransferRates = FixedTransferRate(rate)
	return NewFlightSimulator(ac, cfg, sink, nil)
}
