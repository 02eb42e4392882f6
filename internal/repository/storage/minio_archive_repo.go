package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/milanfarm/farmbook/farmbook-backend/internal/config"
)

var _ ArchiveRepository = (*MinIOArchiveRepository)(nil)

// MinIOArchiveRepository implements ArchiveRepository using MinIO
type MinIOArchiveRepository struct {
	client     *minio.Client
	bucketName string
}

// NewMinIOArchiveRepository creates a new MinIO archive repository
func NewMinIOArchiveRepository(ctx context.Context, cfg config.MinIOConfig) (*MinIOArchiveRepository, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	repo := &MinIOArchiveRepository{client: client, bucketName: cfg.BucketName}
	if err := repo.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

// ensureBucket creates the bucket if it doesn't exist. Exports stay private.
func (r *MinIOArchiveRepository) ensureBucket(ctx context.Context) error {
	exists, err := r.client.BucketExists(ctx, r.bucketName)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	if err := r.client.MakeBucket(ctx, r.bucketName, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Put uploads an export file
func (r *MinIOArchiveRepository) Put(ctx context.Context, objectPath string, data []byte, contentType string) error {
	_, err := r.client.PutObject(ctx, r.bucketName, objectPath, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload export: %w", err)
	}
	return nil
}

// PresignedURL generates a presigned URL for temporary access
func (r *MinIOArchiveRepository) PresignedURL(ctx context.Context, objectPath string, expiry time.Duration) (string, error) {
	u, err := r.client.PresignedGetObject(ctx, r.bucketName, objectPath, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return u.String(), nil
}
