package services

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/voicejournal/internal/apperr"
	"github.com/Lllllllleong/voicejournal/internal/models"
)

type fakeUploader struct {
	objectName  string
	contentType string
	data        []byte
}

func (u *fakeUploader) Upload(_ context.Context, objectName, contentType string, r io.Reader) (int64, error) {
	u.objectName = objectName
	u.contentType = contentType
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	u.data = data
	return int64(len(data)), nil
}

type fakeMediaWriter struct {
	key   models.DayKey
	entry *models.MediaEntry
}

func (w *fakeMediaWriter) SetMedia(_ context.Context, k models.DayKey, entry *models.MediaEntry) error {
	w.key, w.entry = k, entry
	return nil
}

func TestUploadProcess(t *testing.T) {
	uploader := &fakeUploader{}
	writer := &fakeMediaWriter{}
	uploadedAt := time.Date(2026, 8, 29, 7, 30, 0, 0, time.UTC)
	f := &UploadFunction{
		blobs: uploader,
		media: writer,
		now:   func() time.Time { return uploadedAt },
	}

	resp, err := f.Process(context.Background(), &UploadInput{
		Key:         models.DayKey{PairID: "pair-1", DateKey: "2026-08-29", Role: models.RoleChild},
		ContentType: "audio/webm",
		Body:        bytes.NewReader([]byte("opus-bytes")),
	})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, "pairs/pair-1/2026-08-29/child/audio.webm", resp.StoragePath)
	assert.Equal(t, uploadedAt.UnixMilli(), resp.SourceVersion)

	assert.Equal(t, resp.StoragePath, uploader.objectName)
	assert.Equal(t, "audio/webm", uploader.contentType)
	assert.Equal(t, []byte("opus-bytes"), uploader.data)

	require.NotNil(t, writer.entry)
	assert.Equal(t, resp.SourceVersion, writer.entry.SourceVersion)
	assert.Equal(t, int64(len("opus-bytes")), writer.entry.SizeBytes)
}

func TestUploadRejectsBadKey(t *testing.T) {
	f := &UploadFunction{blobs: &fakeUploader{}, media: &fakeMediaWriter{}, now: time.Now}

	_, err := f.Process(context.Background(), &UploadInput{
		Key:  models.DayKey{PairID: "pair-1", DateKey: "29-08-2026", Role: models.RoleChild},
		Body: bytes.NewReader(nil),
	})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInvalidRequest, apperr.CodeOf(err))
}
