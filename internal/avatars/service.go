// Package avatars stores profile photos in object storage.
package avatars

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ErrNotConfigured means no object store was wired; avatars then stay as
// inline data URLs in the resume content.
var ErrNotConfigured = errors.New("avatar storage not configured")

var allowedTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

const maxAvatarBytes = 5 << 20

type Service struct {
	client *minio.Client
	bucket string
}

// New connects to MinIO and ensures the bucket exists. Pass an empty
// endpoint to run without object storage.
func New(ctx context.Context, endpoint, accessKey, secretKey, bucket string, useSSL bool) (*Service, error) {
	if endpoint == "" {
		return nil, ErrNotConfigured
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}
	return &Service{client: client, bucket: bucket}, nil
}

// Upload stores an avatar and returns its object key. A nil service
// reports ErrNotConfigured so handlers can degrade gracefully.
func (s *Service) Upload(ctx context.Context, userID, contentType string, data []byte) (string, error) {
	if s == nil {
		return "", ErrNotConfigured
	}
	ext, ok := allowedTypes[contentType]
	if !ok {
		return "", fmt.Errorf("unsupported avatar type %q", contentType)
	}
	if len(data) == 0 || len(data) > maxAvatarBytes {
		return "", fmt.Errorf("avatar size %d out of bounds", len(data))
	}

	key := fmt.Sprintf("%s/%s%s", userID, uuid.NewString(), ext)
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload avatar: %w", err)
	}
	return key, nil
}

// PresignedURL returns a time-limited download link for an avatar key.
func (s *Service) PresignedURL(ctx context.Context, key string) (string, error) {
	if s == nil {
		return "", ErrNotConfigured
	}
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, 15*time.Minute, nil)
	if err != nil {
		return "", fmt.Errorf("presign avatar: %w", err)
	}
	return u.String(), nil
}
