package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/voicejournal/internal/apperr"
	"github.com/Lllllllleong/voicejournal/internal/models"
)

var testKey = models.DayKey{PairID: "pair-1", DateKey: "2026-08-29", Role: models.RoleParent}

// fakeStore keeps records in memory and enforces the same stale-write rule
// as the Firestore transaction.
type fakeStore struct {
	media   map[string]*models.MediaEntry
	records map[string]*models.AnalysisRecord
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		media:   make(map[string]*models.MediaEntry),
		records: make(map[string]*models.AnalysisRecord),
	}
}

func (s *fakeStore) GetMedia(_ context.Context, k models.DayKey) (*models.MediaEntry, error) {
	return s.media[k.String()], nil
}

func (s *fakeStore) StartAnalysis(_ context.Context, k models.DayKey, sourceVersion int64) error {
	s.records[k.String()] = &models.AnalysisRecord{
		AIStatus:      models.AIStatusRunning,
		SourceVersion: sourceVersion,
	}
	return nil
}

func (s *fakeStore) FinishAnalysis(_ context.Context, k models.DayKey, held int64, result *models.AnalysisRecord) error {
	if stored, ok := s.records[k.String()]; ok && stored.SourceVersion != held {
		return apperr.New(apperr.CodeSourceVersionMismatch, "record has moved on")
	}
	out := *result
	out.SourceVersion = held
	s.records[k.String()] = &out
	return nil
}

type fakeBlobs struct {
	objects map[string][]byte
	err     error
}

func (b *fakeBlobs) Download(_ context.Context, objectName string) ([]byte, error) {
	if b.err != nil {
		return nil, b.err
	}
	data, ok := b.objects[objectName]
	if !ok {
		return nil, fmt.Errorf("object %s not found", objectName)
	}
	return data, nil
}

type fakeTranscriber struct {
	transcript string
	err        error
	delay      time.Duration
}

func (t *fakeTranscriber) Transcribe(_ context.Context, _ []byte, _ string) (string, error) {
	if t.delay > 0 {
		time.Sleep(t.delay)
	}
	return t.transcript, t.err
}

type fakeScorer struct {
	text string
	err  error
}

func (s *fakeScorer) Score(_ context.Context, _ string) (string, error) {
	return s.text, s.err
}

func newTestAnalyzer(store *fakeStore, blobs *fakeBlobs, t *fakeTranscriber, s *fakeScorer) *AnalyzeFunction {
	return &AnalyzeFunction{
		analyses:    store,
		blobs:       blobs,
		transcriber: t,
		scorer:      s,
		httpClient:  http.DefaultClient,
		config:      AnalyzerConfig{Timeout: time.Minute},
		now:         time.Now,
	}
}

func seedMedia(s *fakeStore, version int64) {
	s.media[testKey.String()] = &models.MediaEntry{
		StoragePath:   "pairs/pair-1/2026-08-29/parent/audio.webm",
		ContentType:   "audio/webm",
		SourceVersion: version,
		UploadedAt:    time.UnixMilli(version),
	}
}

func TestAnalyzeSuccess(t *testing.T) {
	store := newFakeStore()
	seedMedia(store, 1000)
	blobs := &fakeBlobs{objects: map[string][]byte{
		"pairs/pair-1/2026-08-29/parent/audio.webm": []byte("opus"),
	}}
	f := newTestAnalyzer(store, blobs, &fakeTranscriber{transcript: "today was good"}, &fakeScorer{text: "a warm reflection"})

	resp, err := f.Process(context.Background(), &models.AnalyzeRequest{
		PairID: testKey.PairID, DateKey: testKey.DateKey, Role: testKey.Role, SourceVersion: 1000,
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "today was good", resp.Transcription)
	assert.Equal(t, "a warm reflection", resp.Analysis)

	rec := store.records[testKey.String()]
	require.NotNil(t, rec)
	assert.Equal(t, models.AIStatusDone, rec.AIStatus)
	assert.Equal(t, int64(1000), rec.SourceVersion)
}

func TestAnalyzeDerivesVersionFromUpload(t *testing.T) {
	store := newFakeStore()
	seedMedia(store, 2000)
	blobs := &fakeBlobs{objects: map[string][]byte{
		"pairs/pair-1/2026-08-29/parent/audio.webm": []byte("opus"),
	}}
	f := newTestAnalyzer(store, blobs, &fakeTranscriber{transcript: "t"}, &fakeScorer{text: "a"})

	// No explicit sourceVersion: the job takes the upload's own stamp.
	_, err := f.Process(context.Background(), &models.AnalyzeRequest{
		PairID: testKey.PairID, DateKey: testKey.DateKey, Role: testKey.Role,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2000), store.records[testKey.String()].SourceVersion)
}

func TestAnalyzeStaleJobIsRejected(t *testing.T) {
	// Two uploads a second apart each trigger analysis. The second job
	// finishes first; when the slow first job completes, its write must be
	// rejected and the stored text must remain the second job's.
	store := newFakeStore()
	blobs := &fakeBlobs{objects: map[string][]byte{
		"pairs/pair-1/2026-08-29/parent/audio.webm": []byte("opus"),
	}}

	// First job starts against the first upload.
	seedMedia(store, 1000)
	require.NoError(t, store.StartAnalysis(context.Background(), testKey, 1000))

	// Second upload lands; its analysis runs to completion.
	seedMedia(store, 2000)
	fast := newTestAnalyzer(store, blobs, &fakeTranscriber{transcript: "second take"}, &fakeScorer{text: "fresher reflection"})
	_, err := fast.Process(context.Background(), &models.AnalyzeRequest{
		PairID: testKey.PairID, DateKey: testKey.DateKey, Role: testKey.Role, SourceVersion: 2000,
	})
	require.NoError(t, err)

	// The slow first job finally finishes and tries to write with its old
	// version.
	err = store.FinishAnalysis(context.Background(), testKey, 1000, &models.AnalysisRecord{
		AIStatus: models.AIStatusDone, AIText: "stale reflection",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeSourceVersionMismatch, apperr.CodeOf(err))

	rec := store.records[testKey.String()]
	assert.Equal(t, "fresher reflection", rec.AIText)
	assert.Equal(t, int64(2000), rec.SourceVersion)
}

func TestAnalyzeTranscriptionFailureIsRecorded(t *testing.T) {
	store := newFakeStore()
	seedMedia(store, 1000)
	blobs := &fakeBlobs{objects: map[string][]byte{
		"pairs/pair-1/2026-08-29/parent/audio.webm": []byte("opus"),
	}}
	f := newTestAnalyzer(store, blobs,
		&fakeTranscriber{err: apperr.New(apperr.CodeLLMAnalyzeFailed, "stt down")},
		&fakeScorer{text: "unused"})

	_, err := f.Process(context.Background(), &models.AnalyzeRequest{
		PairID: testKey.PairID, DateKey: testKey.DateKey, Role: testKey.Role, SourceVersion: 1000,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeLLMAnalyzeFailed, apperr.CodeOf(err))

	rec := store.records[testKey.String()]
	require.NotNil(t, rec)
	assert.Equal(t, models.AIStatusError, rec.AIStatus)
	assert.Contains(t, rec.ErrorDetail, "stt down")
}

func TestAnalyzeDownloadFailure(t *testing.T) {
	store := newFakeStore()
	seedMedia(store, 1000)
	f := newTestAnalyzer(store, &fakeBlobs{err: fmt.Errorf("bucket unreachable")},
		&fakeTranscriber{transcript: "t"}, &fakeScorer{text: "a"})

	_, err := f.Process(context.Background(), &models.AnalyzeRequest{
		PairID: testKey.PairID, DateKey: testKey.DateKey, Role: testKey.Role, SourceVersion: 1000,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeStorageDownloadFailed, apperr.CodeOf(err))
	assert.Equal(t, models.AIStatusError, store.records[testKey.String()].AIStatus)
}

func TestAnalyzeNoRecording(t *testing.T) {
	f := newTestAnalyzer(newFakeStore(), &fakeBlobs{}, &fakeTranscriber{}, &fakeScorer{})

	_, err := f.Process(context.Background(), &models.AnalyzeRequest{
		PairID: testKey.PairID, DateKey: testKey.DateKey, Role: testKey.Role,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInvalidRequest, apperr.CodeOf(err))
}

func TestAnalyzeTimeout(t *testing.T) {
	store := newFakeStore()
	seedMedia(store, 1000)
	blobs := &fakeBlobs{objects: map[string][]byte{
		"pairs/pair-1/2026-08-29/parent/audio.webm": []byte("opus"),
	}}
	f := newTestAnalyzer(store, blobs,
		&fakeTranscriber{transcript: "slow", delay: 200 * time.Millisecond},
		&fakeScorer{text: "a"})
	f.config.Timeout = 20 * time.Millisecond

	_, err := f.Process(context.Background(), &models.AnalyzeRequest{
		PairID: testKey.PairID, DateKey: testKey.DateKey, Role: testKey.Role, SourceVersion: 1000,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeTimeout, apperr.CodeOf(err))
}

func TestAnalyzeLegacyURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "audio/webm")
		_, _ = w.Write([]byte("opus"))
	}))
	defer srv.Close()

	store := newFakeStore()
	f := newTestAnalyzer(store, &fakeBlobs{}, &fakeTranscriber{transcript: "legacy words"}, &fakeScorer{text: "legacy reflection"})

	resp, err := f.Process(context.Background(), &models.AnalyzeRequest{AudioURL: srv.URL})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "legacy words", resp.Transcription)
	// Legacy requests have no keyed record to touch.
	assert.Empty(t, store.records)
}
