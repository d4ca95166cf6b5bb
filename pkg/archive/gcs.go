// pkg/archive/gcs.go
// Copyright(c) 2025 tankersim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package archive

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

type GCSBackend struct {
	client *storage.Client
	bucket *storage.BucketHandle
}

func MakeGCSBackend(ctx context.Context, bucketName string, credsJSON []byte, opts ...option.ClientOption) (*GCSBackend, error) {
	if bucketName == "" {
		return nil, fmt.Errorf("bucket name cannot be empty")
	}
	if len(credsJSON) > 0 {
		opts = append(opts, option.WithCredentialsJSON(credsJSON))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return &GCSBackend{
		client: client,
		bucket: client.Bucket(bucketName),
	}, nil
}

func (g *GCSBackend) Store(ctx context.Context, key string, r io.Reader) (int64, error) {
	objw := g.bucket.Object(key).NewWriter(ctx)
	objw.ContentType = "application/zstd"

	n, err := io.Copy(objw, r)
	if err != nil {
		objw.Close()
		return n, err
	}
	return n, objw.Close()
}

func (g *GCSBackend) Name() string { return "gcs" }

func (g *GCSBackend) Close() error { return g.client.Close() }
