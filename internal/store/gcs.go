package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
)

// splitObject turns "bucket/path/to/object" into its two parts.
func splitObject(path string) (string, string, error) {
	bucket, object, ok := strings.Cut(path, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("store: gcs location %q must be bucket/object", path)
	}
	return bucket, object, nil
}

func loadGCS(ctx context.Context, client *storage.Client, path string) ([]byte, error) {
	if client == nil {
		return nil, errors.New("store: gcs client is not configured")
	}
	bucket, object, err := splitObject(path)
	if err != nil {
		return nil, err
	}

	r, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func saveGCS(ctx context.Context, client *storage.Client, path string, data []byte) error {
	if client == nil {
		return errors.New("store: gcs client is not configured")
	}
	bucket, object, err := splitObject(path)
	if err != nil {
		return err
	}

	w := client.Bucket(bucket).Object(object).NewWriter(ctx)
	w.ContentType = contentType(path)
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize GCS write: %w", err)
	}
	return nil
}

// isGCSNotFound reports missing buckets or objects.
func isGCSNotFound(err error) bool {
	if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
		return true
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusNotFound
	}
	return false
}
