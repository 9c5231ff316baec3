package gcp

import (
	"context"
	"fmt"
	"io"
	"os"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/Lllllllleong/voicejournal/internal/credentials"
)

// GetEnv is a helper to read an environment variable or return a default value.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// NewStorageClient creates a Cloud Storage client authenticated with the
// decoded credential.
func NewStorageClient(ctx context.Context, cred *credentials.Credential) (*storage.Client, error) {
	if cred == nil {
		return nil, fmt.Errorf("credential must be provided to create a storage client")
	}
	credJSON, err := cred.JSON()
	if err != nil {
		return nil, err
	}

	client, err := storage.NewClient(ctx, option.WithCredentialsJSON(credJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create Storage client: %w", err)
	}
	return client, nil
}

// UploadObject streams r into the named object, overwriting any previous
// content. Re-uploads for the same day land on the same object name, so the
// latest recording always wins at the blob level.
func UploadObject(ctx context.Context, bucket *storage.BucketHandle, objectName, contentType string, r io.Reader) (int64, error) {
	w := bucket.Object(objectName).NewWriter(ctx)
	w.ContentType = contentType

	n, err := io.Copy(w, r)
	if err != nil {
		_ = w.Close()
		return 0, fmt.Errorf("failed to write to GCS object %s: %w", objectName, err)
	}
	if err := w.Close(); err != nil {
		return 0, fmt.Errorf("failed to finalize GCS write for %s: %w", objectName, err)
	}
	return n, nil
}

// DownloadObject reads the whole named object into memory. Recordings are
// short daily clips, small enough to hold for transcription.
func DownloadObject(ctx context.Context, bucket *storage.BucketHandle, objectName string) ([]byte, error) {
	r, err := bucket.Object(objectName).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open GCS object %s: %w", objectName, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read GCS object %s: %w", objectName, err)
	}
	return data, nil
}
