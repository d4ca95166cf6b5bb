// pkg/archive/local.go
// Copyright(c) 2025 tankersim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package archive

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalBackend stores objects as files under Dir.
type LocalBackend struct {
	Dir string
}

func (l LocalBackend) Store(ctx context.Context, key string, r io.Reader) (int64, error) {
	fn := filepath.Join(l.Dir, filepath.FromSlash(key))
	if rel, err := filepath.Rel(l.Dir, fn); err != nil || strings.HasPrefix(rel, "..") {
		return 0, errors.New(key + ": key escapes archive directory")
	}

	if err := os.MkdirAll(filepath.Dir(fn), 0o755); err != nil {
		return 0, err
	}

	// Write to a temporary file and rename so that a partial upload is
	// never visible under the final name.
	f, err := os.CreateTemp(filepath.Dir(fn), ".upload-*")
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(f.Name())
		return n, err
	}
	return n, os.Rename(f.Name(), fn)
}

func (l LocalBackend) Name() string { return "local" }

func (l LocalBackend) Close() error { return nil }
