// pkg/telemetry/metrics.go
// Copyright(c) 2025 tankersim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package telemetry

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tankerops/tankersim/pkg/sim"
)

// MetricsSink exports the most recent record of each aircraft as
// Prometheus gauges.
type MetricsSink struct {
	fuel      *prometheus.GaugeVec
	latitude  *prometheus.GaugeVec
	longitude *prometheus.GaugeVec
	speed     *prometheus.GaugeVec
	heading   *prometheus.GaugeVec
	altitude  *prometheus.GaugeVec
	records   *prometheus.CounterVec
}

func NewMetricsSink(reg prometheus.Registerer) (*MetricsSink, error) {
	gauge := func(name, help string) *prometheus.GaugeVec {
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: name, Help: help}, []string{"tail"})
	}

	m := &MetricsSink{
		fuel:      gauge("tanker_fuel_remaining_pounds", "Transferable fuel remaining"),
		latitude:  gauge("tanker_latitude_degrees", "Current latitude"),
		longitude: gauge("tanker_longitude_degrees", "Current longitude"),
		speed:     gauge("tanker_speed_knots", "Current speed"),
		heading:   gauge("tanker_heading_degrees", "Current magnetic heading"),
		altitude:  gauge("tanker_altitude_feet", "Current altitude"),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tanker_telemetry_records_total",
			Help: "Number of telemetry records reported",
		}, []string{"tail"}),
	}

	for _, c := range []prometheus.Collector{m.fuel, m.latitude, m.longitude, m.speed,
		m.heading, m.altitude, m.records} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *MetricsSink) Name() string { return "metrics" }

func (m *MetricsSink) Send(ctx context.Context, r sim.Record) error {
	m.fuel.WithLabelValues(r.TailNumber).Set(r.RemainingFuel)
	m.latitude.WithLabelValues(r.TailNumber).Set(r.Latitude)
	m.longitude.WithLabelValues(r.TailNumber).Set(r.Longitude)
	m.speed.WithLabelValues(r.TailNumber).Set(float64(r.Speed))
	m.heading.WithLabelValues(r.TailNumber).Set(float64(r.Heading))
	m.altitude.WithLabelValues(r.TailNumber).Set(float64(r.Altitude))
	m.records.WithLabelValues(r.TailNumber).Inc()
	return nil
}
