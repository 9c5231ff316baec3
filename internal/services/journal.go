package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Lllllllleong/voicejournal/internal/apperr"
	"github.com/Lllllllleong/voicejournal/internal/credentials"
	"github.com/Lllllllleong/voicejournal/internal/gcp"
	"github.com/Lllllllleong/voicejournal/internal/models"
	"github.com/Lllllllleong/voicejournal/internal/store"
)

// JournalStore is the slice of the store the journal surface needs.
type JournalStore interface {
	SetJournal(ctx context.Context, k models.DayKey, entry *models.JournalEntry) error
	GetJournal(ctx context.Context, k models.DayKey) (*models.JournalEntry, error)
}

// JournalFunction holds the dependencies for the per-day journal image.
type JournalFunction struct {
	blobs   BlobUploader
	journal JournalStore
	now     func() time.Time
}

// JournalUploadInput is one parsed multipart journal image upload.
type JournalUploadInput struct {
	Key         models.DayKey
	ContentType string
	Caption     string
	Body        io.Reader
}

// NewJournal creates a JournalFunction with real clients, built from the
// decoded credential.
func NewJournal(ctx context.Context, loader *credentials.Loader) (*JournalFunction, error) {
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

	return &JournalFunction{
		blobs:   &bucketBlobs{bucket: storageClient.Bucket(mediaBucket)},
		journal: store.NewMediaStore(firestoreClient),
		now:     time.Now,
	}, nil
}

// Upload stores the day's single journal image, replacing any previous one.
func (f *JournalFunction) Upload(ctx context.Context, in *JournalUploadInput) (*models.JournalResponse, error) {
	if err := in.Key.Validate(); err != nil {
		return nil, apperr.Wrap(apperr.CodeInvalidRequest, "invalid journal key", err)
	}

	objectName := store.JournalObjectName(in.Key)
	if _, err := f.blobs.Upload(ctx, objectName, in.ContentType, in.Body); err != nil {
		slog.Error("Failed to store journal image", "error", err, "object", objectName)
		return nil, fmt.Errorf("failed to store journal image: %w", err)
	}

	entry := &models.JournalEntry{
		StoragePath: objectName,
		ContentType: in.ContentType,
		Caption:     in.Caption,
		UploadedAt:  f.now(),
	}
	if err := f.journal.SetJournal(ctx, in.Key, entry); err != nil {
		return nil, err
	}

	slog.Info("Journal image uploaded.", "key", in.Key.String(), "object", objectName)
	return &models.JournalResponse{Success: true, Entry: entry}, nil
}

// Fetch returns the day's journal entry, with a nil entry when none exists.
func (f *JournalFunction) Fetch(ctx context.Context, k models.DayKey) (*models.JournalResponse, error) {
	if err := k.Validate(); err != nil {
		return nil, apperr.Wrap(apperr.CodeInvalidRequest, "invalid journal key", err)
	}
	entry, err := f.journal.GetJournal(ctx, k)
	if err != nil {
		return nil, err
	}
	return &models.JournalResponse{Success: true, Entry: entry}, nil
}
