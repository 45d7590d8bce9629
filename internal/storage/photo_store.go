package storage

import (
	"context"
	"fmt"

	gcs "cloud.google.com/go/storage"
)

// PhotoStore writes recovery photos to the Firebase default bucket and
// returns their public retrieval URLs.
type PhotoStore struct {
	bucket     *gcs.BucketHandle
	bucketName string
}

func NewPhotoStore(bucket *gcs.BucketHandle, bucketName string) *PhotoStore {
	return &PhotoStore{
		bucket:     bucket,
		bucketName: bucketName,
	}
}

// Upload writes the photo bytes at path and returns the retrieval URL
func (s *PhotoStore) Upload(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	w := s.bucket.Object(path).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := w.Write(data); err != nil {
		w.Close()
		return "", fmt.Errorf("failed to write photo: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to upload photo: %w", err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucketName, path), nil
}

// Delete removes the object at path. Callers treat a failure here as
// best-effort cleanup: the object may already be gone.
func (s *PhotoStore) Delete(ctx context.Context, path string) error {
	return s.bucket.Object(path).Delete(ctx)
}
