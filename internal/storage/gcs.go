package storage

import (
	"context"
	"fmt"

	gstorage "cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
)

// GCSStore implements ObjectStore on a Google Cloud Storage bucket.
// Stored objects are granted public read and retrieved through the
// standard storage.googleapis.com URL.
type GCSStore struct {
	bucket     *gstorage.BucketHandle
	bucketName string
	logger     *zap.Logger
}

// NewGCSStore creates a store backed by the named bucket
func NewGCSStore(ctx context.Context, bucketName string, logger *zap.Logger) (*GCSStore, error) {
	client, err := gstorage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &GCSStore{
		bucket:     client.Bucket(bucketName),
		bucketName: bucketName,
		logger:     logger,
	}, nil
}

// Store writes content to the bucket and makes the object publicly readable
func (s *GCSStore) Store(ctx context.Context, name string, content []byte) (StoredObject, error) {
	obj := s.bucket.Object(name)

	writer := obj.NewWriter(ctx)
	writer.ContentType = "application/pdf"
	if _, err := writer.Write(content); err != nil {
		_ = writer.Close()
		s.logger.Error("Failed to write object",
			zap.String("bucket", s.bucketName),
			zap.String("object", name),
			zap.Error(err))
		return StoredObject{}, fmt.Errorf("failed to write to bucket: %w", err)
	}
	if err := writer.Close(); err != nil {
		if gerr, ok := err.(*googleapi.Error); ok {
			s.logger.Error("Bucket write rejected",
				zap.String("object", name),
				zap.Int("code", gerr.Code))
		}
		return StoredObject{}, fmt.Errorf("failed to finalize bucket write: %w", err)
	}

	// Public-read grant so the document link resolves without credentials.
	if err := obj.ACL().Set(ctx, gstorage.AllUsers, gstorage.RoleReader); err != nil {
		s.logger.Error("Failed to set public-read ACL",
			zap.String("object", name),
			zap.Error(err))
		return StoredObject{}, fmt.Errorf("failed to grant public read: %w", err)
	}

	s.logger.Debug("Object stored",
		zap.String("bucket", s.bucketName),
		zap.String("object", name),
		zap.Int("size", len(content)))

	return StoredObject{
		Name:      name,
		PublicURL: fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucketName, name),
	}, nil
}

// Delete removes an object from the bucket. Missing objects are not an error.
func (s *GCSStore) Delete(ctx context.Context, name string) error {
	err := s.bucket.Object(name).Delete(ctx)
	if err == gstorage.ErrObjectNotExist {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}
