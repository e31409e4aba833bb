// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

package backup

import (
	"context"
	"fmt"
	"os"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/tomtom215/filmvault/internal/config"
	"github.com/tomtom215/filmvault/internal/metrics"
)

// Mirror copies completed backups offsite. Mirror failures never change a
// backup's recorded status.
type Mirror interface {
	Upload(ctx context.Context, filename, localPath string) error
	Delete(ctx context.Context, filename string) error
}

// s3Client is the subset of *s3.Client the mirror uses.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Mirror stores backups in an S3-compatible bucket under a key prefix.
type S3Mirror struct {
	client s3Client
	bucket string
	prefix string
}

// NewS3Mirror builds a mirror from configuration. A custom endpoint (MinIO,
// R2) switches to path-style addressing.
func NewS3Mirror(cfg *config.MirrorConfig) *S3Mirror {
	opts := s3.Options{
		Region:      cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
		opts.UsePathStyle = true
	}
	return &S3Mirror{
		client: s3.New(opts),
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
	}
}

func (m *S3Mirror) key(filename string) string {
	return path.Join(m.prefix, filename)
}

// Upload puts the file at localPath under the mirror key for filename.
func (m *S3Mirror) Upload(ctx context.Context, filename, localPath string) (err error) {
	defer func() { metrics.RecordMirrorOperation("upload", err) }()

	f, err := os.Open(localPath) //nolint:gosec // G304: path comes from the backup directory
	if err != nil {
		return fmt.Errorf("open %s for mirror: %w", filename, err)
	}
	defer closeQuietly(f)

	stat, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s for mirror: %w", filename, err)
	}

	_, err = m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(m.bucket),
		Key:           aws.String(m.key(filename)),
		Body:          f,
		ContentLength: aws.Int64(stat.Size()),
	})
	if err != nil {
		return fmt.Errorf("upload %s to s3://%s: %w", filename, m.bucket, err)
	}
	return nil
}

// Delete removes the mirror copy of filename.
func (m *S3Mirror) Delete(ctx context.Context, filename string) (err error) {
	defer func() { metrics.RecordMirrorOperation("delete", err) }()

	_, err = m.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(m.key(filename)),
	})
	if err != nil {
		return fmt.Errorf("delete %s from s3://%s: %w", filename, m.bucket, err)
	}
	return nil
}
