package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"cloud.google.com/go/storage"

	"github.com/Lllllllleong/voicejournal/internal/apperr"
	"github.com/Lllllllleong/voicejournal/internal/credentials"
	"github.com/Lllllllleong/voicejournal/internal/gcp"
	"github.com/Lllllllleong/voicejournal/internal/models"
	"github.com/Lllllllleong/voicejournal/internal/store"
)

// BlobUploader writes one object to the media bucket.
type BlobUploader interface {
	Upload(ctx context.Context, objectName, contentType string, r io.Reader) (int64, error)
}

// BlobDownloader reads one object from the media bucket.
type BlobDownloader interface {
	Download(ctx context.Context, objectName string) ([]byte, error)
}

// MediaWriter is the slice of the store the upload path needs.
type MediaWriter interface {
	SetMedia(ctx context.Context, k models.DayKey, entry *models.MediaEntry) error
}

// bucketBlobs adapts a storage bucket handle to the blob interfaces.
type bucketBlobs struct {
	bucket *storage.BucketHandle
}

func (b *bucketBlobs) Upload(ctx context.Context, objectName, contentType string, r io.Reader) (int64, error) {
	return gcp.UploadObject(ctx, b.bucket, objectName, contentType, r)
}

func (b *bucketBlobs) Download(ctx context.Context, objectName string) ([]byte, error) {
	return gcp.DownloadObject(ctx, b.bucket, objectName)
}

// UploadConfig holds configuration for the upload service.
type UploadConfig struct {
	MediaBucket string
}

// UploadInput is one parsed multipart recording upload.
type UploadInput struct {
	Key         models.DayKey
	ContentType string
	Body        io.Reader
}

// UploadFunction holds the dependencies for the upload logic.
type UploadFunction struct {
	blobs BlobUploader
	media MediaWriter
	now   func() time.Time
}

// NewUploader creates an UploadFunction with real clients, built from the
// decoded credential.
func NewUploader(ctx context.Context, loader *credentials.Loader) (*UploadFunction, error) {
	cred, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load credential: %w", err)
	}

	mediaBucket := gcp.GetEnv("MEDIA_BUCKET", "")
	if mediaBucket == "" {
		return nil, fmt.Errorf("MEDIA_BUCKET environment variable must be set")
	}

	storageClient, err := gcp.NewStorageClient(ctx, cred)
	if err != nil {
		return nil, err
	}
	firestoreClient, err := gcp.NewFirestoreClient(ctx, cred)
	if err != nil {
		return nil, err
	}

	return &UploadFunction{
		blobs: &bucketBlobs{bucket: storageClient.Bucket(mediaBucket)},
		media: store.NewMediaStore(firestoreClient),
		now:   time.Now,
	}, nil
}

// Process stores the recording blob and overwrites the day's media entry
// with a fresh source version taken from the upload time. The returned
// response is final: nothing the analysis pipeline does later can retract
// it.
func (f *UploadFunction) Process(ctx context.Context, in *UploadInput) (*models.UploadResponse, error) {
	if err := in.Key.Validate(); err != nil {
		return nil, apperr.Wrap(apperr.CodeInvalidRequest, "invalid upload key", err)
	}
	logCtx := slog.With("pairId", in.Key.PairID, "dateKey", in.Key.DateKey, "role", in.Key.Role)

	objectName := store.AudioObjectName(in.Key)
	size, err := f.blobs.Upload(ctx, objectName, in.ContentType, in.Body)
	if err != nil {
		logCtx.Error("Failed to store recording blob", "error", err, "object", objectName)
		return nil, fmt.Errorf("failed to store recording: %w", err)
	}

	uploadedAt := f.now()
	sourceVersion := uploadedAt.UnixMilli()
	entry := &models.MediaEntry{
		StoragePath:   objectName,
		ContentType:   in.ContentType,
		SizeBytes:     size,
		SourceVersion: sourceVersion,
		UploadedAt:    uploadedAt,
	}
	if err := f.media.SetMedia(ctx, in.Key, entry); err != nil {
		logCtx.Error("Failed to write media entry", "error", err)
		return nil, err
	}

	logCtx.Info("Recording uploaded.", "object", objectName, "sourceVersion", sourceVersion, "sizeBytes", size)
	return &models.UploadResponse{
		Success:       true,
		StoragePath:   objectName,
		SourceVersion: sourceVersion,
	}, nil
}
