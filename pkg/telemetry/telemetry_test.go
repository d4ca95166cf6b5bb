// pkg/telemetry/telemetry_test.go
// Copyright(c) 2025 tankersim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tankerops/tankersim/pkg/log"
	"github.com/tankerops/tankersim/pkg/sim"
)

var testLaunch = time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC)

func makeTestRecords(n int) []sim.Record {
	ac := sim.NewAircraftStateAt("61-0015", 200000, 32.582167, -114.459419, 30000, 90, 300, testLaunch)
	var recs []sim.Record
	for i := range n {
		ac.FuelLoad -= 6500
		ac.Longitude += 0.01
		recs = append(recs, sim.NewRecord(ac, testLaunch.Add(time.Duration(i+1)*time.Minute)))
	}
	return recs
}

type memSink struct {
	mu   sync.Mutex
	recs []sim.Record
	err  error
	name string
}

func (s *memSink) Send(ctx context.Context, r sim.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = append(s.recs, r)
	return s.err
}

func (s *memSink) Name() string { return s.name }

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	s := NewLogSink(log.NewWriter(&buf, slog.LevelInfo), slog.LevelInfo)
	rec := makeTestRecords(1)[0]
	assert.Equal(t, "log", s.Name())

	require.NoError(t, s.Send(context.Background(), rec))
	var line struct {
		Msg    string
		Record map[string]any
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line), buf.String())
	assert.Equal(t, "Telemetry", line.Msg)
	assert.Equal(t, "61-0015", line.Record["tail"])
	assert.Equal(t, 193500.0, line.Record["fuel"])
	assert.Equal(t, "2025-06-01T14:01:00Z", line.Record["timestamp"])

	// Records below the logger's level are dropped.
	buf.Reset()
	require.NoError(t, NewLogSink(log.NewWriter(&buf, slog.LevelInfo), slog.LevelDebug).Send(context.Background(), rec))
	assert.Empty(t, buf.String())

	// No logger is fine too.
	assert.NoError(t, NewLogSink(nil, slog.LevelInfo).Send(context.Background(), rec))
}

func TestFanout(t *testing.T) {
	a := &memSink{name: "a"}
	b := &memSink{name: "b", err: errors.New("offline")}
	c := &memSink{name: "c"}
	f := Fanout{a, b, c}
	assert.Equal(t, "fanout(a,b,c)", f.Name())

	rec := makeTestRecords(1)[0]
	err := f.Send(context.Background(), rec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "b: offline")

	// Every sink got the record even though one of them failed.
	for _, s := range []*memSink{a, b, c} {
		assert.Equal(t, []sim.Record{rec}, s.recs, s.name)
	}

	assert.NoError(t, Fanout{a, c}.Send(context.Background(), rec))
	assert.NoError(t, Fanout{}.Send(context.Background(), rec))
}

func TestFanoutReportsEveryFailure(t *testing.T) {
	errA, errB := errors.New("a down"), errors.New("b down")
	a := &memSink{name: "a", err: errA}
	b := &memSink{name: "b", err: errB}
	c := &memSink{name: "c"}

	err := Fanout{a, b, c}.Send(context.Background(), makeTestRecords(1)[0])
	require.Error(t, err)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
	assert.Contains(t, err.Error(), "a: a down")
	assert.Contains(t, err.Error(), "b: b down")
	assert.Len(t, c.recs, 1)
}
