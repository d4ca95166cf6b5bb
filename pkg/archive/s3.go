// pkg/archive/s3.go
// Copyright(c) 2025 tankersim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package archive

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type S3Backend struct {
	client *s3.Client
	bucket string
}

// MakeS3Backend returns a backend for the given bucket. Credentials come
// from the usual AWS sources (environment, shared config, instance
// role). If endpoint is given, it is used with path-style addressing,
// e.g. for MinIO.
func MakeS3Backend(ctx context.Context, bucket, region, endpoint string,
	optFns ...func(*config.LoadOptions) error) (*S3Backend, error) {
	if bucket == "" {
		return nil, fmt.Errorf("bucket name cannot be empty")
	}
	if region != "" {
		optFns = append(optFns, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Backend{client: client, bucket: bucket}, nil
}

// WithStaticCredentials returns a config option that uses the given key
// pair rather than the default credential chain.
func WithStaticCredentials(keyID, secret string) func(*config.LoadOptions) error {
	return config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(keyID, secret, ""))
}

// Store uploads r, which must be seekable, e.g. an *os.File, so that its
// length can be determined.
func (s *S3Backend) Store(ctx context.Context, key string, r io.Reader) (int64, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		return 0, fmt.Errorf("%s: S3 uploads require a seekable reader", key)
	}
	n, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          rs,
		ContentLength: aws.Int64(n),
		ContentType:   aws.String("application/zstd"),
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (s *S3Backend) Name() string { return "s3" }

func (s *S3Backend) Close() error { return nil }
