package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/meetmate-team/meetmate-backend/pkg/config"
)

// BucketFetcher downloads audio addressed as s3://bucket/key from an
// S3-compatible endpoint. Used when recordings are synced into a bucket
// instead of the record store's own object storage.
type BucketFetcher struct {
	client *minio.Client
	logger *zap.Logger
}

// NewBucketFetcher creates a bucket-backed audio fetcher
func NewBucketFetcher(cfg *config.StorageConfig, logger *zap.Logger) (*BucketFetcher, error) {
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &BucketFetcher{
		client: minioClient,
		logger: logger,
	}, nil
}

// Fetch downloads the object behind an s3://bucket/key reference. The access
// token is unused; bucket credentials come from the client.
func (b *BucketFetcher) Fetch(ctx context.Context, ref, _ string) ([]byte, error) {
	bucket, key, ok := SplitBucketRef(ref)
	if !ok {
		return nil, fmt.Errorf("invalid bucket reference: %s", ref)
	}

	obj, err := b.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to open object %s: %w", ref, err)
	}
	defer obj.Close()

	audio, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", ref, err)
	}

	if b.logger != nil {
		b.logger.Info("📥 Downloaded audio from bucket",
			zap.String("bucket", bucket),
			zap.String("key", key),
			zap.Int("bytes", len(audio)),
		)
	}

	return audio, nil
}
