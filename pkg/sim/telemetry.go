// pkg/sim/telemetry.go
// Copyright(c) 2025 tankersim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tankerops/tankersim/pkg/log"
)

// Record is the telemetry snapshot sent once per tick. The field names
// on the wire match the payload that downstream dashboards expect.
type Record struct {
	TailNumber    string  `json:"tailNo" msgpack:"tailNo"`
	Speed         int     `json:"speed" msgpack:"speed"`
	Heading       int     `json:"heading" msgpack:"heading"`
	Altitude      int     `json:"altitude" msgpack:"altitude"`
	RemainingFuel float64 `json:"remainingFuel" msgpack:"remainingFuel"`
	Latitude      float64 `json:"currentLat" msgpack:"currentLat"`
	Longitude     float64 `json:"currentLon" msgpack:"currentLon"`
	Timestamp     string  `json:"timestamp" msgpack:"timestamp"` // RFC3339, UTC
}

func NewRecord(ac *AircraftState, now time.Time) Record {
	return Record{
		TailNumber:    ac.TailNumber,
		Speed:         ac.SpeedKts(),
		Heading:       ac.Heading,
		Altitude:      ac.Altitude,
		RemainingFuel: ac.FuelLoad,
		Latitude:      ac.Latitude,
		Longitude:     ac.Longitude,
		Timestamp:     now.UTC().Format(time.RFC3339),
	}
}

// Time parses the record's timestamp.
func (r Record) Time() (time.Time, error) {
	return time.Parse(time.RFC3339, r.Timestamp)
}

func (r Record) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("tail", r.TailNumber),
		slog.Float64("fuel", r.RemainingFuel),
		slog.Float64("lat", r.Latitude),
		slog.Float64("lon", r.Longitude),
		slog.String("timestamp", r.Timestamp))
}

// Sink receives telemetry records.
type Sink interface {
	Send(ctx context.Context, r Record) error
	Name() string
}

///////////////////////////////////////////////////////////////////////////
// Dispatcher

const (
	DefaultQueueSize   = 64
	DefaultSendTimeout = 10 * time.Second
)

type DispatcherOptions struct {
	QueueSize   int
	SendTimeout time.Duration
}

type DispatchStats struct {
	Delivered int64
	Failed    int64
	Dropped   int64
}

// Dispatcher delivers records to a Sink from a separate goroutine so that
// the caller never waits on the sink. Delivery is best-effort: records
// are dropped if the queue is full, and failed deliveries are logged and
// not retried. A Dispatcher is itself a Sink.
type Dispatcher struct {
	sink    Sink
	timeout time.Duration
	lg      *log.Logger

	mu     sync.Mutex
	ch     chan Record
	closed bool
	done   chan struct{}

	delivered, failed, dropped atomic.Int64
}

func NewDispatcher(sink Sink, opts DispatcherOptions, lg *log.Logger) *Dispatcher {
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = DefaultSendTimeout
	}

	d := &Dispatcher{
		sink:    sink,
		timeout: opts.SendTimeout,
		lg:      lg,
		ch:      make(chan Record, opts.QueueSize),
		done:    make(chan struct{}),
	}
	go d.deliver()
	return d
}

func (d *Dispatcher) Name() string {
	return "dispatch:" + d.sink.Name()
}

// Send queues r for delivery and returns immediately. The only errors
// returned are ErrQueueFull and ErrDispatcherClosed; delivery errors are
// logged by the Dispatcher.
func (d *Dispatcher) Send(ctx context.Context, r Record) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrDispatcherClosed
	}

	select {
	case d.ch <- r:
		return nil
	default:
		d.dropped.Add(1)
		d.lg.Warn("Dropping telemetry record", slog.String("sink", d.sink.Name()), slog.Any("record", r))
		return ErrQueueFull
	}
}

func (d *Dispatcher) deliver() {
	defer d.lg.CatchAndReportCrash()
	defer close(d.done)

	for r := range d.ch {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		err := d.sink.Send(ctx, r)
		cancel()

		if err != nil {
			d.failed.Add(1)
			d.lg.Warn("Unable to deliver telemetry", slog.String("sink", d.sink.Name()),
				slog.Any("error", err), slog.Any("record", r))
		} else {
			d.delivered.Add(1)
		}
	}
}

// Close stops accepting new records and waits for the queued ones to be
// delivered or for ctx to be done, whichever comes first.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.ch)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) Stats() DispatchStats {
	return DispatchStats{
		Delivered: d.delivered.Load(),
		Failed:    d.failed.Load(),
		Dropped:   d.dropped.Load(),
	}
}
