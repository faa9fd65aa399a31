// Package minio archives run artifacts in an S3-compatible bucket.
package minio

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Config holds the bucket connection settings
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	Bucket    string
	Prefix    string
	UseSSL    bool
}

// ArtifactSink implements gateways.ArtifactSink on top of minio-go
type ArtifactSink struct {
	mc     *minio.Client
	bucket string
	prefix string
}

// NewArtifactSink connects to the configured endpoint
func NewArtifactSink(cfg Config) (*ArtifactSink, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}

	return &ArtifactSink{
		mc:     mc,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
	}, nil
}

// ObjectKey returns the bucket key of an artifact
func (s *ArtifactSink) ObjectKey(runID, name string) string {
	return path.Join(s.prefix, runID, name)
}

// Register uploads path unless the run already has an object with this name
func (s *ArtifactSink) Register(ctx context.Context, runID, name, filePath string) (bool, error) {
	if runID == "" || name == "" {
		return false, fmt.Errorf("run id and artifact name are required")
	}
	key := s.ObjectKey(runID, name)

	_, err := s.mc.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return false, nil
	}
	if code := minio.ToErrorResponse(err).Code; code != "NoSuchKey" && code != "NotFound" {
		return false, fmt.Errorf("failed to check artifact %s: %w", key, err)
	}

	_, err = s.mc.FPutObject(ctx, s.bucket, key, filePath, minio.PutObjectOptions{
		ContentType: contentType(name),
		UserMetadata: map[string]string{
			"run-id": runID,
		},
	})
	if err != nil {
		return false, fmt.Errorf("failed to upload artifact %s: %w", key, err)
	}

	return true, nil
}

func contentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm":
		return "text/html; charset=utf-8"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
