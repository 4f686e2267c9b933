package storage

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog/log"
)

// MinioStorage uploads to a self-hosted MinIO bucket.
type MinioStorage struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewMinioStorage connects and makes sure the bucket exists.
func NewMinioStorage(ctx context.Context, endpoint, accessKey, secretKey, bucket, publicURL string, useSSL bool) (*MinioStorage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MinIO: %w", err)
	}

	if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: "us-east-1"}); err != nil {
		exists, errBucketExists := client.BucketExists(ctx, bucket)
		if errBucketExists != nil || !exists {
			return nil, fmt.Errorf("failed to create bucket %q: %w", bucket, err)
		}
		log.Debug().Str("bucket", bucket).Msg("[storage] bucket already exists")
	}

	if publicURL == "" {
		scheme := "http"
		if useSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s/%s", scheme, endpoint, bucket)
	}

	return &MinioStorage{client: client, bucket: bucket, publicURL: strings.TrimSuffix(publicURL, "/")}, nil
}

func (ms *MinioStorage) SaveFile(fileHeader *multipart.FileHeader, filename string) (Upload, error) {
	kind, contentType, err := sniff(fileHeader)
	if err != nil {
		return Upload{}, err
	}

	normalizedFilename := normalizeFilename(filename)
	src, err := fileHeader.Open()
	if err != nil {
		return Upload{}, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	key := fmt.Sprintf("uploads/%s", normalizedFilename)
	_, err = ms.client.PutObject(context.Background(), ms.bucket, key, src, fileHeader.Size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		log.Error().Err(err).Str("bucket", ms.bucket).Msg("[storage] failed to upload file to MinIO")
		return Upload{}, fmt.Errorf("failed to upload to MinIO: %w", err)
	}

	return Upload{
		PublicURL:    fmt.Sprintf("%s/%s", ms.publicURL, key),
		ResourceType: kind,
		ContentType:  contentType,
	}, nil
}
