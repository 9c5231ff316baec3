package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/voicejournal/internal/models"
)

type fakeJournalStore struct {
	entries map[string]*models.JournalEntry
}

func (s *fakeJournalStore) SetJournal(_ context.Context, k models.DayKey, entry *models.JournalEntry) error {
	s.entries[k.String()] = entry
	return nil
}

func (s *fakeJournalStore) GetJournal(_ context.Context, k models.DayKey) (*models.JournalEntry, error) {
	return s.entries[k.String()], nil
}

func TestJournalUploadAndFetch(t *testing.T) {
	uploader := &fakeUploader{}
	journal := &fakeJournalStore{entries: make(map[string]*models.JournalEntry)}
	uploadedAt := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)
	f := &JournalFunction{
		blobs:   uploader,
		journal: journal,
		now:     func() time.Time { return uploadedAt },
	}
	key := models.DayKey{PairID: "pair-1", DateKey: "2026-08-29", Role: models.RoleParent}

	resp, err := f.Upload(context.Background(), &JournalUploadInput{
		Key:         key,
		ContentType: "image/png",
		Caption:     "first day of school",
		Body:        bytes.NewReader([]byte("png-bytes")),
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "pairs/pair-1/2026-08-29/parent/journal.jpg", uploader.objectName)

	fetched, err := f.Fetch(context.Background(), key)
	require.NoError(t, err)
	require.NotNil(t, fetched.Entry)
	assert.Equal(t, "first day of school", fetched.Entry.Caption)
	assert.Equal(t, "image/png", fetched.Entry.ContentType)
	assert.Equal(t, uploadedAt, fetched.Entry.UploadedAt)
}

func TestJournalFetchMissingDay(t *testing.T) {
	f := &JournalFunction{
		blobs:   &fakeUploader{},
		journal: &fakeJournalStore{entries: make(map[string]*models.JournalEntry)},
		now:     time.Now,
	}

	resp, err := f.Fetch(context.Background(), models.DayKey{
		PairID: "pair-1", DateKey: "2026-08-29", Role: models.RoleChild,
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Entry)
}
