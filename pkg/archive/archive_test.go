// pkg/archive/archive_test.go
// Copyright(c) 2025 tankersim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package archive

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestFile(t *testing.T, contents string) string {
	fn := filepath.Join(t.TempDir(), "recording.msgpack.zst")
	require.NoError(t, os.WriteFile(fn, []byte(contents), 0o644))
	return fn
}

func TestKey(t *testing.T) {
	launch := time.Date(2025, 6, 1, 7, 0, 0, 0, time.FixedZone("MST", -7*3600))
	assert.Equal(t, "missions/61-0015/2025-06-01T14:00:00Z.msgpack.zst", Key("missions", "61-0015", launch))
	assert.Equal(t, "61-0015/2025-06-01T14:00:00Z.msgpack.zst", Key("", "61-0015", launch))
}

func TestLocalBackendUpload(t *testing.T) {
	dir := t.TempDir()
	b, err := NewBackend(context.Background(), Config{Kind: "local", Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, "local", b.Name())
	defer b.Close()

	fn := writeTestFile(t, "recorded flight")
	n, err := Upload(context.Background(), b, "missions/61-0015/flight.msgpack.zst", fn)
	require.NoError(t, err)
	assert.Equal(t, int64(len("recorded flight")), n)

	got, err := os.ReadFile(filepath.Join(dir, "missions", "61-0015", "flight.msgpack.zst"))
	require.NoError(t, err)
	assert.Equal(t, "recorded flight", string(got))

	// No temporary files are left behind.
	entries, err := os.ReadDir(filepath.Join(dir, "missions", "61-0015"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLocalBackendRejectsEscapingKey(t *testing.T) {
	b := LocalBackend{Dir: t.TempDir()}
	_, err := b.Store(context.Background(), "../../etc/passwd", strings.NewReader("x"))
	assert.Error(t, err)
}

func TestDryRunBackend(t *testing.T) {
	b, err := NewBackend(context.Background(), Config{Kind: "DryRun"})
	require.NoError(t, err)

	n, err := Upload(context.Background(), b, "k", writeTestFile(t, "0123456789"))
	require.NoError(t, err)
	assert.Equal(t, int64(10), n)
}

func TestNewBackendErrors(t *testing.T) {
	b, err := NewBackend(context.Background(), Config{})
	assert.NoError(t, err)
	assert.Nil(t, b)

	_, err = NewBackend(context.Background(), Config{Kind: "ftp"})
	assert.Error(t, err)
	_, err = NewBackend(context.Background(), Config{Kind: "local"})
	assert.Error(t, err)
	_, err = NewBackend(context.Background(), Config{Kind: "s3"})
	assert.Error(t, err)
	_, err = NewBackend(context.Background(), Config{Kind: "gcs"})
	assert.Error(t, err)
}

func TestUploadMissingFile(t *testing.T) {
	_, err := Upload(context.Background(), DryRunBackend{}, "k", filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestS3BackendStore(t *testing.T) {
	var mu sync.Mutex
	var method, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		method, path = r.Method, r.URL.Path
		mu.Unlock()
		io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	b, err := NewBackend(context.Background(), Config{
		Kind:            "s3",
		Bucket:          "tanker-flights",
		Region:          "us-east-1",
		Endpoint:        srv.URL,
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "secret",
	})
	require.NoError(t, err)
	assert.Equal(t, "s3", b.Name())

	n, err := Upload(context.Background(), b, "missions/61-0015/flight.msgpack.zst", writeTestFile(t, "recorded flight"))
	require.NoError(t, err)
	assert.Equal(t, int64(len("recorded flight")), n)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/tanker-flights/missions/61-0015/flight.msgpack.zst", path)
}

func TestS3BackendRequiresSeeker(t *testing.T) {
	b, err := MakeS3Backend(context.Background(), "bucket", "us-east-1", "http://127.0.0.1:1",
		WithStaticCredentials("id", "secret"))
	require.NoError(t, err)
	_, err = b.Store(context.Background(), "k", io.LimitReader(strings.NewReader("abc"), 3))
	assert.Error(t, err)
}
