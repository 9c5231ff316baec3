package store

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Lllllllleong/voicejournal/internal/models"
)

// MediaStore wraps the Firestore client with the document layout of the
// voice-journal data. All mutation is by whole-document set; there are no
// in-place field increments.
type MediaStore struct {
	client *firestore.Client
}

// NewMediaStore creates a MediaStore over an existing Firestore client.
func NewMediaStore(client *firestore.Client) *MediaStore {
	return &MediaStore{client: client}
}

// SetMedia overwrites the day's media entry. A re-upload for the same day
// replaces the previous entry whole.
func (s *MediaStore) SetMedia(ctx context.Context, k models.DayKey, entry *models.MediaEntry) error {
	if _, err := s.client.Doc(MediaPath(k)).Set(ctx, entry); err != nil {
		return fmt.Errorf("failed to write media entry %s: %w", k, err)
	}
	return nil
}

// GetMedia reads the day's media entry, or nil if none exists.
func (s *MediaStore) GetMedia(ctx context.Context, k models.DayKey) (*models.MediaEntry, error) {
	snap, err := s.client.Doc(MediaPath(k)).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read media entry %s: %w", k, err)
	}
	var entry models.MediaEntry
	if err := snap.DataTo(&entry); err != nil {
		return nil, fmt.Errorf("failed to decode media entry %s: %w", k, err)
	}
	return &entry, nil
}

// SetJournal overwrites the day's journal entry.
func (s *MediaStore) SetJournal(ctx context.Context, k models.DayKey, entry *models.JournalEntry) error {
	if _, err := s.client.Doc(JournalPath(k)).Set(ctx, entry); err != nil {
		return fmt.Errorf("failed to write journal entry %s: %w", k, err)
	}
	return nil
}

// GetJournal reads the day's journal entry, or nil if none exists.
func (s *MediaStore) GetJournal(ctx context.Context, k models.DayKey) (*models.JournalEntry, error) {
	snap, err := s.client.Doc(JournalPath(k)).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read journal entry %s: %w", k, err)
	}
	var entry models.JournalEntry
	if err := snap.DataTo(&entry); err != nil {
		return nil, fmt.Errorf("failed to decode journal entry %s: %w", k, err)
	}
	return &entry, nil
}

// GetAnalysis reads the day's analysis record, or nil if none exists.
func (s *MediaStore) GetAnalysis(ctx context.Context, k models.DayKey) (*models.AnalysisRecord, error) {
	snap, err := s.client.Doc(AnalysisPath(k)).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read analysis record %s: %w", k, err)
	}
	var rec models.AnalysisRecord
	if err := snap.DataTo(&rec); err != nil {
		return nil, fmt.Errorf("failed to decode analysis record %s: %w", k, err)
	}
	return &rec, nil
}
