// pkg/server/server.go
// Copyright(c) 2025 tankersim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package server provides an HTTP API that reports the status of a
// mission and the telemetry it has produced.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/http/pprof"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tankerops/tankersim/pkg/log"
	"github.com/tankerops/tankersim/pkg/sim"
)

const (
	DefaultRecentSize = 256
	DefaultRecentTTL  = 2 * time.Hour
)

// Mission is the view of a running simulation that the server reports.
// *sim.FlightSimulator implements it.
type Mission interface {
	State() sim.MissionState
	TotalFlightMinutes() int
	FuelRemaining() float64
	Aircraft() sim.AircraftState
}

type Options struct {
	// RecentSize and RecentTTL bound the records returned by
	// /telemetry/recent.
	RecentSize int
	RecentTTL  time.Duration
	// Gatherer is served at /metrics; if nil, the default Prometheus
	// gatherer is used.
	Gatherer prometheus.Gatherer
}

// Server is also a sim.Sink so that it sees every telemetry record.
type Server struct {
	gatherer prometheus.Gatherer
	lg       *log.Logger
	start    time.Time

	mu      sync.Mutex
	mission Mission
	latest  *sim.Record
	recent  *expirable.LRU[int64, sim.Record]
	seq     int64
	records int64

	router *mux.Router
}

// New returns a Server; Attach must be called before the mission's status
// is available.
func New(opts Options, lg *log.Logger) *Server {
	if opts.RecentSize <= 0 {
		opts.RecentSize = DefaultRecentSize
	}
	if opts.RecentTTL <= 0 {
		opts.RecentTTL = DefaultRecentTTL
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}

	s := &Server{
		gatherer: opts.Gatherer,
		lg:       lg,
		start:    time.Now(),
		recent:   expirable.NewLRU[int64, sim.Record](opts.RecentSize, nil, opts.RecentTTL),
	}
	s.router = s.makeRouter()
	return s
}

func (s *Server) makeRouter() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/", s.pageHandler).Methods(http.MethodGet)
	r.HandleFunc("/status", s.statusHandler).Methods(http.MethodGet)
	r.HandleFunc("/telemetry/latest", s.latestHandler).Methods(http.MethodGet)
	r.HandleFunc("/telemetry/recent", s.recentHandler).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	r.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	r.HandleFunc("/debug/pprof/profile", pprof.Profile)
	r.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	r.HandleFunc("/debug/pprof/trace", pprof.Trace)
	r.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)

	r.Use(s.logRequests)

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.lg.Debug("Served request", slog.String("method", r.Method),
			slog.String("url", r.URL.String()), slog.Duration("duration", time.Since(start)))
	})
}

// Attach sets the mission that the server reports on.
func (s *Server) Attach(m Mission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mission = m
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Name() string { return "status" }

func (s *Server) Send(ctx context.Context, r sim.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.latest = &r
	s.seq++
	s.records++
	s.recent.Add(s.seq, r)
	return nil
}

// ListenAndServe serves the API on addr until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listener)
}

func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.lg.Warnf("HTTP server shutdown: %v", err)
		}
	}()

	s.lg.Infof("Launching HTTP server on %s", listener.Addr())
	if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
