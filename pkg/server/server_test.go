// pkg/server/server_test.go
// Copyright(c) 2025 tankersim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tankerops/tankersim/pkg/sim"
)

var testLaunch = time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC)

func makeTestServer(t *testing.T, opts Options) (*Server, *sim.FlightSimulator, *httptest.Server) {
	ac := sim.NewAircraftStateAt("61-0015", 200000, 32.582167, -114.459419, 30000, 90, 300, testLaunch)
	cfg := sim.DefaultSimulatorConfig()
	cfg.TransferRates = sim.FixedTransferRate(1000)

	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.NewRegistry()
	}
	s := New(opts, nil)
	fs := sim.NewFlightSimulator(ac, cfg, s, nil)
	s.Attach(fs)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, fs, ts
}

func get(t *testing.T, url string) (int, string) {
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(b)
}

func TestStatus(t *testing.T) {
	_, fs, ts := makeTestServer(t, Options{})
	fs.Tick(testLaunch.Add(10 * time.Minute))

	code, body := get(t, ts.URL+"/status")
	require.Equal(t, http.StatusOK, code)

	var status map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &status))
	assert.Equal(t, "61-0015", status["tailNo"])
	assert.Equal(t, "running", status["state"])
	assert.Equal(t, 10.0, status["totalFlightMinutes"])
	assert.Equal(t, 190000.0, status["fuelRemaining"])
	assert.Equal(t, 1.0, status["records"])
	assert.Equal(t, "90 (E)", status["heading"])
	assert.True(t, strings.HasPrefix(status["position"].(string), "N032."), status["position"])
	assert.Contains(t, status, "cpuPercent")
	assert.Contains(t, status, "sysMemory")
}

func TestLatest(t *testing.T) {
	_, fs, ts := makeTestServer(t, Options{})

	code, _ := get(t, ts.URL+"/telemetry/latest")
	assert.Equal(t, http.StatusNotFound, code)

	fs.Tick(testLaunch.Add(10 * time.Minute))
	fs.Tick(testLaunch.Add(20 * time.Minute))

	code, body := get(t, ts.URL+"/telemetry/latest")
	require.Equal(t, http.StatusOK, code)
	var rec sim.Record
	require.NoError(t, json.Unmarshal([]byte(body), &rec))
	assert.Equal(t, 180000.0, rec.RemainingFuel)
	assert.Equal(t, "2025-06-01T14:20:00Z", rec.Timestamp)
}

func TestRecent(t *testing.T) {
	_, fs, ts := makeTestServer(t, Options{RecentSize: 3})

	code, body := get(t, ts.URL+"/telemetry/recent")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "[]\n", body)

	for i := 1; i <= 5; i++ {
		fs.Tick(testLaunch.Add(time.Duration(i) * time.Minute))
	}

	code, body = get(t, ts.URL+"/telemetry/recent")
	require.Equal(t, http.StatusOK, code)
	var recs []sim.Record
	require.NoError(t, json.Unmarshal([]byte(body), &recs))
	require.Len(t, recs, 3)
	assert.Equal(t, []float64{197000, 196000, 195000},
		[]float64{recs[0].RemainingFuel, recs[1].RemainingFuel, recs[2].RemainingFuel})

	code, body = get(t, ts.URL+"/telemetry/recent?limit=1")
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal([]byte(body), &recs))
	require.Len(t, recs, 1)
	assert.Equal(t, 195000.0, recs[0].RemainingFuel)

	code, _ = get(t, ts.URL+"/telemetry/recent?limit=x")
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = get(t, ts.URL+"/telemetry/recent?since=2025-06-01T14:04:00Z")
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal([]byte(body), &recs))
	require.Len(t, recs, 2)
	assert.Equal(t, "2025-06-01T14:04:00Z", recs[0].Timestamp)

	code, body = get(t, ts.URL+"/telemetry/recent?since=2025-06-01T14:04:00Z&limit=1")
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal([]byte(body), &recs))
	require.Len(t, recs, 1)
	assert.Equal(t, "2025-06-01T14:05:00Z", recs[0].Timestamp)

	code, _ = get(t, ts.URL+"/telemetry/recent?since=yesterday")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestRecentExpires(t *testing.T) {
	s, _, ts := makeTestServer(t, Options{RecentTTL: 50 * time.Millisecond})
	require.NoError(t, s.Send(context.Background(), sim.Record{TailNumber: "61-0015"}))

	time.Sleep(200 * time.Millisecond)

	_, body := get(t, ts.URL+"/telemetry/recent")
	assert.Equal(t, "[]\n", body)

	// The latest record is kept regardless.
	code, _ := get(t, ts.URL+"/telemetry/latest")
	assert.Equal(t, http.StatusOK, code)
}

func TestMetricsAndPage(t *testing.T) {
	reg := prometheus.NewRegistry()
	g := prometheus.NewGauge(prometheus.GaugeOpts{Name: "tanker_test_gauge"})
	reg.MustRegister(g)
	g.Set(42)

	_, fs, ts := makeTestServer(t, Options{Gatherer: reg})
	fs.Tick(testLaunch.Add(10 * time.Minute))

	code, body := get(t, ts.URL+"/metrics")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "tanker_test_gauge 42")

	code, body = get(t, ts.URL+"/")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Mission 61-0015")
	assert.Contains(t, body, "190000.00")

	resp, err := http.Post(ts.URL+"/status", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestServeShutdown(t *testing.T) {
	s, _, _ := makeTestServer(t, Options{})

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, listener) }()

	code, _ := get(t, "http://"+listener.Addr().String()+"/status")
	assert.Equal(t, http.StatusOK, code)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server didn't shut down")
	}
}

func TestNoMission(t *testing.T) {
	s := New(Options{Gatherer: prometheus.NewRegistry()}, nil)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	code, _ := get(t, ts.URL+"/status")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	code, _ = get(t, ts.URL+"/")
	assert.Equal(t, http.StatusServiceUnavailable, code)
}
