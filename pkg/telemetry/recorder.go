// pkg/telemetry/recorder.go
// Copyright(c) 2025 tankersim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package telemetry

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/tankerops/tankersim/pkg/sim"
)

var ErrRecorderClosed = errors.New("Flight recorder is closed")

// Recorder is a flight recorder: it writes each record as a msgpack value
// to a zstd-compressed file. The stream is flushed after every record so
// that the records of a truncated recording can still be recovered.
type Recorder struct {
	mu   sync.Mutex
	path string
	f    *os.File
	zw   *zstd.Encoder
	enc  *msgpack.Encoder
	n    int
}

func NewRecorder(path string) (*Recorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	zw, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedBetterCompression), zstd.WithEncoderConcurrency(1))
	if err != nil {
		f.Close()
		return nil, err
	}

	return &Recorder{
		path: path,
		f:    f,
		zw:   zw,
		enc:  msgpack.NewEncoder(zw),
	}, nil
}

func (r *Recorder) Name() string { return "recorder" }

func (r *Recorder) Path() string { return r.path }

func (r *Recorder) Send(ctx context.Context, rec sim.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.f == nil {
		return ErrRecorderClosed
	}
	if err := r.enc.Encode(rec); err != nil {
		return err
	}
	if err := r.zw.Flush(); err != nil {
		return err
	}
	r.n++
	return nil
}

// Count returns the number of records written.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.n
}

func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.f == nil {
		return nil
	}
	err := errors.Join(r.zw.Close(), r.f.Close())
	r.f = nil
	return err
}

// ReadRecording decodes all of the records in a recording written by a
// Recorder. If the recording is truncated, the records before the point
// of truncation are returned along with the error.
func ReadRecording(rd io.Reader) ([]sim.Record, error) {
	zr, err := zstd.NewReader(rd, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var recs []sim.Record
	dec := msgpack.NewDecoder(zr)
	for {
		var rec sim.Record
		if err := dec.Decode(&rec); errors.Is(err, io.EOF) {
			return recs, nil
		} else if err != nil {
			return recs, err
		}
		recs = append(recs, rec)
	}
}

// ReadRecordingFile is a convenience wrapper around ReadRecording.
func ReadRecordingFile(path string) ([]sim.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadRecording(f)
}
