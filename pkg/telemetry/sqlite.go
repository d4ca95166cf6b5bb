// pkg/telemetry/sqlite.go
// Copyright(c) 2025 tankersim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package telemetry

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	_ "modernc.org/sqlite"

	"github.com/tankerops/tankersim/pkg/sim"
)

// SQLiteSink stores records in a local SQLite database.
type SQLiteSink struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS telemetry (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tail_no TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		speed INTEGER,
		heading INTEGER,
		altitude INTEGER,
		remaining_fuel REAL,
		lat REAL,
		lon REAL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	return &SQLiteSink{db: db}, nil
}

func (s *SQLiteSink) Name() string { return "sqlite" }

func (s *SQLiteSink) Send(ctx context.Context, r sim.Record) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO telemetry
		(tail_no, timestamp, speed, heading, altitude, remaining_fuel, lat, lon)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.TailNumber, r.Timestamp, r.Speed, r.Heading, r.Altitude, r.RemainingFuel, r.Latitude, r.Longitude)
	if err != nil {
		return fmt.Errorf("insert telemetry: %w", err)
	}
	return nil
}

// Records returns the stored records for the given tail number, oldest
// first.
func (s *SQLiteSink) Records(ctx context.Context, tail string) ([]sim.Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT tail_no, timestamp, speed, heading, altitude,
		remaining_fuel, lat, lon FROM telemetry WHERE tail_no = ? ORDER BY id`, tail)
	if err != nil {
		return nil, fmt.Errorf("query telemetry: %w", err)
	}
	defer rows.Close()

	var recs []sim.Record
	for rows.Next() {
		var r sim.Record
		if err := rows.Scan(&r.TailNumber, &r.Timestamp, &r.Speed, &r.Heading, &r.Altitude,
			&r.RemainingFuel, &r.Latitude, &r.Longitude); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

// ExportCSV writes all of the stored records to w as CSV.
func (s *SQLiteSink) ExportCSV(ctx context.Context, w io.Writer) error {
	rows, err := s.db.QueryContext(ctx, `SELECT tail_no, timestamp, speed, heading, altitude,
		remaining_fuel, lat, lon FROM telemetry ORDER BY id`)
	if err != nil {
		return fmt.Errorf("query telemetry: %w", err)
	}
	defer rows.Close()

	cw := csv.NewWriter(w)
	cw.Write([]string{"tailNo", "timestamp", "speed", "heading", "altitude", "remainingFuel", "currentLat", "currentLon"})

	for rows.Next() {
		var tail, ts string
		var speed, hdg, alt int
		var fuel, lat, lon float64
		if err := rows.Scan(&tail, &ts, &speed, &hdg, &alt, &fuel, &lat, &lon); err != nil {
			return fmt.Errorf("scan row: %w", err)
		}
		cw.Write([]string{
			tail,
			ts,
			strconv.Itoa(speed),
			strconv.Itoa(hdg),
			strconv.Itoa(alt),
			strconv.FormatFloat(fuel, 'f', 2, 64),
			strconv.FormatFloat(lat, 'f', 6, 64),
			strconv.FormatFloat(lon, 'f', 6, 64),
		})
	}
	if err := rows.Err(); err != nil {
		return err
	}

	cw.Flush()
	return cw.Error()
}

func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
