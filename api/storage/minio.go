package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"visionRelay/api/dto"
)

// Store issues presigned POST credentials for direct-to-bucket uploads.
// The credential is scoped to one exact key and a bounded content length,
// so a client can neither overwrite other blobs nor upload oversized
// files.
type Store struct {
	client *minio.Client
	bucket string
}

type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

func Connect(opts Options) (*Store, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connect object storage: %w", err)
	}

	return &Store{client: client, bucket: opts.Bucket}, nil
}

func (s *Store) PresignUpload(ctx context.Context, key string, maxSize int64, ttl time.Duration) (*dto.UploadInfo, error) {
	policy := minio.NewPostPolicy()
	if err := policy.SetBucket(s.bucket); err != nil {
		return nil, err
	}
	if err := policy.SetKey(key); err != nil {
		return nil, err
	}
	if err := policy.SetExpires(time.Now().UTC().Add(ttl)); err != nil {
		return nil, err
	}
	if err := policy.SetContentLengthRange(0, maxSize); err != nil {
		return nil, err
	}

	uploadURL, formData, err := s.client.PresignedPostPolicy(ctx, policy)
	if err != nil {
		return nil, fmt.Errorf("presign upload: %w", err)
	}

	return &dto.UploadInfo{
		URL:    uploadURL.String(),
		Fields: formData,
	}, nil
}
