// pkg/archive/archive.go
// Copyright(c) 2025 tankersim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package archive stores completed flight recordings in object storage
// or on the local filesystem.
package archive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
)

type Backend interface {
	// Store writes the contents of r to the object with the given key,
	// returning the number of bytes stored.
	Store(ctx context.Context, key string, r io.Reader) (int64, error)
	Name() string
	Close() error
}

type Config struct {
	// Kind is one of "gcs", "s3", "local", or "dryrun". An empty Kind
	// disables archiving.
	Kind   string
	Bucket string
	Prefix string

	// GCSCredentials is a service account JSON; if empty, the
	// application default credentials are used.
	GCSCredentials string

	Region          string
	Endpoint        string // optional, for S3-compatible services
	AccessKeyID     string // optional; otherwise the default AWS credential chain
	SecretAccessKey string

	Dir string // for "local"
}

// NewBackend returns the backend described by cfg. It returns a nil
// Backend and no error if archiving is disabled.
func NewBackend(ctx context.Context, cfg Config) (Backend, error) {
	switch strings.ToLower(cfg.Kind) {
	case "":
		return nil, nil
	case "gcs":
		g, err := MakeGCSBackend(ctx, cfg.Bucket, []byte(cfg.GCSCredentials))
		if err != nil {
			return nil, err
		}
		return g, nil
	case "s3":
		var opts []func(*config.LoadOptions) error
		if cfg.AccessKeyID != "" {
			opts = append(opts, WithStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey))
		}
		s, err := MakeS3Backend(ctx, cfg.Bucket, cfg.Region, cfg.Endpoint, opts...)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "local":
		if cfg.Dir == "" {
			return nil, fmt.Errorf("local archive: no directory specified")
		}
		return LocalBackend{Dir: cfg.Dir}, nil
	case "dryrun":
		return DryRunBackend{}, nil
	default:
		return nil, fmt.Errorf("%s: unknown archive backend", cfg.Kind)
	}
}

// Key returns the object key for a mission's recording.
func Key(prefix, tail string, launch time.Time) string {
	return path.Join(prefix, tail, launch.UTC().Format(time.RFC3339)+".msgpack.zst")
}

// Upload stores the file at filename under key.
func Upload(ctx context.Context, b Backend, key, filename string) (int64, error) {
	f, err := os.Open(filename)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n, err := b.Store(ctx, key, f)
	if err != nil {
		return n, fmt.Errorf("%s: %s: %w", b.Name(), key, err)
	}
	return n, nil
}

type CountingWriter struct {
	io.Writer
	N int64
}

func (w *CountingWriter) Write(b []byte) (int, error) {
	n, err := w.Writer.Write(b)
	w.N += int64(n)
	return n, err
}

///////////////////////////////////////////////////////////////////////////
// DryRunBackend

// DryRunBackend reads everything it is given and stores nothing.
type DryRunBackend struct{}

func (DryRunBackend) Store(ctx context.Context, key string, r io.Reader) (int64, error) {
	cw := &CountingWriter{Writer: io.Discard}
	_, err := io.Copy(cw, r)
	return cw.N, err
}

func (DryRunBackend) Name() string { return "dryrun" }

func (DryRunBackend) Close() error { return nil }
