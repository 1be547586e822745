package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dmcconeghy/CL-backend-assessment/apperr"
	"github.com/dmcconeghy/CL-backend-assessment/config"
	"github.com/dmcconeghy/CL-backend-assessment/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ImageStore holds user image assets in a MinIO bucket. A user's image field
// is the object name inside the bucket.
type ImageStore struct {
	client *minio.Client
	bucket string
}

// NewImageStore connects to MinIO and ensures the image bucket exists.
func NewImageStore(cfg *config.Config) (*ImageStore, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
		Region: cfg.MinioRegion,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.MinioBucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{Region: cfg.MinioRegion}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.MinioBucket, err)
		}
		logger.Info("Created image bucket", logger.String("bucket", cfg.MinioBucket))
	}

	return &ImageStore{client: client, bucket: cfg.MinioBucket}, nil
}

// PutImage uploads an image asset under the given object name.
func (s *ImageStore) PutImage(ctx context.Context, name string, r io.Reader, size int64, contentType string) error {
	if contentType == "" {
		contentType = contentTypeFor(name)
	}
	_, err := s.client.PutObject(ctx, s.bucket, name, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("failed to upload image %s: %w", name, err)
	}
	return nil
}

// GetImage opens an image asset for reading and returns its content type.
// The caller must close the reader.
func (s *ImageStore) GetImage(ctx context.Context, name string) (io.ReadCloser, string, error) {
	object, err := s.client.GetObject(ctx, s.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", fmt.Errorf("failed to open image %s: %w", name, err)
	}

	// GetObject is lazy; Stat surfaces a missing object.
	info, err := object.Stat()
	if err != nil {
		object.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, "", apperr.Wrap(apperr.ErrNotFound, "image %s", name)
		}
		return nil, "", fmt.Errorf("failed to stat image %s: %w", name, err)
	}

	contentType := info.ContentType
	if contentType == "" {
		contentType = contentTypeFor(name)
	}
	return object, contentType, nil
}

// Ping verifies the bucket is reachable.
func (s *ImageStore) Ping(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to reach MinIO: %w", err)
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist", s.bucket)
	}
	return nil
}

func contentTypeFor(name string) string {
	switch {
	case strings.HasSuffix(name, ".png"):
		return "image/png"
	case strings.HasSuffix(name, ".jpg"), strings.HasSuffix(name, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(name, ".gif"):
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}
