package storage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog/log"
)

// MinIOUploadStore keeps report attachments in an object-storage bucket
// instead of the local disk. Stored names are identical to the disk backend,
// so report documents carry plain filenames either way.
type MinIOUploadStore struct {
	client     *minio.Client
	bucketName string
}

// NewMinIOUploadStore creates the client and ensures the bucket exists.
func NewMinIOUploadStore(endpoint, accessKey, secretKey, bucketName string, useSSL bool) (*MinIOUploadStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, bucketName)
	if err != nil {
		log.Warn().Err(err).Msgf("Failed to check bucket existence for %s (will continue)", bucketName)
	} else if !exists {
		if err := client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", bucketName, err)
		}
		log.Info().Msgf("Bucket %s created successfully", bucketName)
	}

	log.Info().
		Str("endpoint", endpoint).
		Str("bucket", bucketName).
		Msg("MinIO upload store initialized")

	return &MinIOUploadStore{client: client, bucketName: bucketName}, nil
}

// Save uploads the file under a generated unique name and returns that name.
func (s *MinIOUploadStore) Save(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	if fh.Size > MaxUploadBytes {
		return "", ErrFileTooLarge
	}

	name := uploadFilename(fh.Filename)
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	_, err = s.client.PutObject(ctx, s.bucketName, name, src, fh.Size, minio.PutObjectOptions{
		ContentType: fh.Header.Get("Content-Type"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload attachment: %w", err)
	}

	log.Info().Str("filename", name).Str("bucket", s.bucketName).Msg("Attachment stored")
	return name, nil
}

// Open streams a stored attachment back for the /uploads/ route.
func (s *MinIOUploadStore) Open(ctx context.Context, filename string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucketName, filename, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch attachment: %w", err)
	}
	// GetObject is lazy; surface missing objects now.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, err
	}
	return obj, nil
}

// HealthCheck verifies the MinIO connection.
func (s *MinIOUploadStore) HealthCheck(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return fmt.Errorf("MinIO health check failed: %w", err)
	}
	if !exists {
		return fmt.Errorf("bucket '%s' does not exist", s.bucketName)
	}
	return nil
}
