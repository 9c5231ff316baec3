package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/Lllllllleong/voicejournal/internal/ai"
	"github.com/Lllllllleong/voicejournal/internal/apperr"
	"github.com/Lllllllleong/voicejournal/internal/credentials"
	"github.com/Lllllllleong/voicejournal/internal/gcp"
	"github.com/Lllllllleong/voicejournal/internal/models"
	"github.com/Lllllllleong/voicejournal/internal/store"
)

// AnalysisStore is the slice of the store the analysis pipeline needs.
type AnalysisStore interface {
	GetMedia(ctx context.Context, k models.DayKey) (*models.MediaEntry, error)
	StartAnalysis(ctx context.Context, k models.DayKey, sourceVersion int64) error
	FinishAnalysis(ctx context.Context, k models.DayKey, held int64, result *models.AnalysisRecord) error
}

// AnalyzerConfig holds configuration for the analyze service.
type AnalyzerConfig struct {
	VertexAIRegion string
	LanguageCode   string
	// Timeout is the wall-clock safety margin under the platform's hard
	// request limit.
	Timeout time.Duration
}

// AnalyzeFunction holds the dependencies for the analysis pipeline.
type AnalyzeFunction struct {
	analyses    AnalysisStore
	blobs       BlobDownloader
	transcriber ai.Transcriber
	scorer      ai.Scorer
	httpClient  *http.Client
	config      AnalyzerConfig
	now         func() time.Time
}

// NewAnalyzer creates an AnalyzeFunction with real clients, built from the
// decoded credential.
func NewAnalyzer(ctx context.Context, loader *credentials.Loader) (*AnalyzeFunction, error) {
	cred, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load credential: %w", err)
	}

	mediaBucket := gcp.GetEnv("MEDIA_BUCKET", "")
	if mediaBucket == "" {
		return nil, fmt.Errorf("MEDIA_BUCKET environment variable must be set")
	}
	config := AnalyzerConfig{
		VertexAIRegion: gcp.GetEnv("VERTEX_AI_REGION", "us-central1"),
		LanguageCode:   gcp.GetEnv("SPEECH_LANGUAGE", "en-US"),
		Timeout:        500 * time.Second,
	}

	storageClient, err := gcp.NewStorageClient(ctx, cred)
	if err != nil {
		return nil, err
	}
	firestoreClient, err := gcp.NewFirestoreClient(ctx, cred)
	if err != nil {
		return nil, err
	}
	speechClient, err := gcp.NewSpeechClient(ctx, cred)
	if err != nil {
		return nil, err
	}
	vertexClient, err := gcp.NewVertexClient(ctx, cred, config.VertexAIRegion)
	if err != nil {
		return nil, err
	}

	return &AnalyzeFunction{
		analyses:    store.NewMediaStore(firestoreClient),
		blobs:       &bucketBlobs{bucket: storageClient.Bucket(mediaBucket)},
		transcriber: ai.NewSpeechTranscriber(speechClient, config.LanguageCode),
		scorer:      ai.NewGeminiScorer(vertexClient),
		httpClient:  http.DefaultClient,
		config:      config,
		now:         time.Now,
	}, nil
}

// Process runs the analysis pipeline, racing it against the wall-clock
// safety margin. On timeout the in-flight network calls are abandoned, not
// aborted, and the caller gets a timeout failure; the recording itself is
// already safe.
func (f *AnalyzeFunction) Process(ctx context.Context, req *models.AnalyzeRequest) (*models.AnalyzeResponse, error) {
	type outcome struct {
		resp *models.AnalyzeResponse
		err  error
	}
	results := make(chan outcome, 1)
	go func() {
		resp, err := f.run(ctx, req)
		results <- outcome{resp, err}
	}()

	select {
	case o := <-results:
		return o.resp, o.err
	case <-time.After(f.config.Timeout):
		return nil, apperr.New(apperr.CodeTimeout, "analysis exceeded the time budget; the recording is saved and can be re-analyzed")
	}
}

func (f *AnalyzeFunction) run(ctx context.Context, req *models.AnalyzeRequest) (*models.AnalyzeResponse, error) {
	if req.Legacy() {
		return f.runLegacy(ctx, req.AudioURL)
	}

	k := models.DayKey{PairID: req.PairID, DateKey: req.DateKey, Role: req.Role}
	if err := k.Validate(); err != nil {
		return nil, apperr.Wrap(apperr.CodeInvalidRequest, "invalid analyze key", err)
	}
	logCtx := slog.With("pairId", k.PairID, "dateKey", k.DateKey, "role", k.Role)

	entry, err := f.analyses.GetMedia(ctx, k)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, apperr.New(apperr.CodeInvalidRequest, "no recording uploaded for that day")
	}

	// The version this job will hold for its whole lifetime: the client's
	// explicit stamp, or the uploaded recording's own.
	held := req.SourceVersion
	if held == 0 {
		held = entry.SourceVersion
	}
	logCtx = logCtx.With("sourceVersion", held)

	if err := f.analyses.StartAnalysis(ctx, k, held); err != nil {
		return nil, err
	}
	logCtx.Info("Analysis started.")

	audio, err := f.blobs.Download(ctx, entry.StoragePath)
	if err != nil {
		failure := apperr.Wrap(apperr.CodeStorageDownloadFailed, "could not download the recording", err)
		f.recordFailure(ctx, logCtx, k, held, "", failure)
		return nil, failure
	}

	transcript, err := f.transcriber.Transcribe(ctx, audio, entry.ContentType)
	if err != nil {
		f.recordFailure(ctx, logCtx, k, held, "", err)
		return nil, err
	}

	aiText, err := f.scorer.Score(ctx, transcript)
	if err != nil {
		f.recordFailure(ctx, logCtx, k, held, transcript, err)
		return nil, err
	}

	result := &models.AnalysisRecord{
		AIStatus:   models.AIStatusDone,
		Transcript: transcript,
		AIText:     aiText,
		FinishedAt: f.now(),
	}
	if err := f.analyses.FinishAnalysis(ctx, k, held, result); err != nil {
		if apperr.CodeOf(err) == apperr.CodeSourceVersionMismatch {
			// A newer upload superseded this job while it ran. Normal
			// concurrent behavior; the fresher result stands.
			logCtx.Info("Stale analysis discarded.", "reason", err)
			return nil, err
		}
		return nil, err
	}

	logCtx.Info("Analysis complete.")
	return &models.AnalyzeResponse{
		Success:       true,
		Transcription: transcript,
		Analysis:      aiText,
	}, nil
}

// runLegacy analyzes a bare audio URL. There is no keyed record to guard,
// so the result is returned without touching Firestore.
func (f *AnalyzeFunction) runLegacy(ctx context.Context, audioURL string) (*models.AnalyzeResponse, error) {
	slog.Info("Legacy analysis request.", "audioURL", audioURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, audioURL, nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInvalidRequest, "invalid audio URL", err)
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeStorageDownloadFailed, "could not fetch the audio URL", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, apperr.New(apperr.CodeStorageDownloadFailed,
			fmt.Sprintf("audio URL returned status %d", resp.StatusCode))
	}
	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeStorageDownloadFailed, "could not read the audio URL", err)
	}

	transcript, err := f.transcriber.Transcribe(ctx, audio, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}
	aiText, err := f.scorer.Score(ctx, transcript)
	if err != nil {
		return nil, err
	}

	return &models.AnalyzeResponse{
		Success:       true,
		Transcription: transcript,
		Analysis:      aiText,
	}, nil
}

// recordFailure writes the failure into the analysis record through the same
// version guard as a success. A guard rejection here just means a newer
// upload owns the record now, so the stale failure is dropped silently.
func (f *AnalyzeFunction) recordFailure(ctx context.Context, logCtx *slog.Logger, k models.DayKey, held int64, transcript string, cause error) {
	logCtx.Error("Analysis failed.", "error", cause)
	rec := &models.AnalysisRecord{
		AIStatus:    models.AIStatusError,
		Transcript:  transcript,
		ErrorDetail: cause.Error(),
		FinishedAt:  f.now(),
	}
	if err := f.analyses.FinishAnalysis(ctx, k, held, rec); err != nil {
		if apperr.CodeOf(err) == apperr.CodeSourceVersionMismatch {
			logCtx.Info("Stale failure discarded.", "reason", err)
			return
		}
		logCtx.Error("Failed to record analysis failure", "error", err)
	}
}
