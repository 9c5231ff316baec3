package store

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Lllllllleong/voicejournal/internal/apperr"
	"github.com/Lllllllleong/voicejournal/internal/models"
)

// versionAllowsWrite is the stale-write rule: a terminal analysis write is
// allowed when no version is stored yet, or when the stored version is
// exactly the one the job captured at start. Anything else means a newer
// upload has superseded this job.
func versionAllowsWrite(stored int64, storedExists bool, held int64) bool {
	return !storedExists || stored == held
}

// StartAnalysis marks the record as running under the job's source version.
// This write is unconditional: a new upload always restarts the cycle.
func (s *MediaStore) StartAnalysis(ctx context.Context, k models.DayKey, sourceVersion int64) error {
	rec := &models.AnalysisRecord{
		AIStatus:      models.AIStatusRunning,
		SourceVersion: sourceVersion,
		StartedAt:     time.Now(),
		AIUpdatedAt:   time.Now(),
	}
	if _, err := s.client.Doc(AnalysisPath(k)).Set(ctx, rec); err != nil {
		return fmt.Errorf("failed to write running analysis record %s: %w", k, err)
	}
	return nil
}

// FinishAnalysis persists a terminal analysis result, but only if the
// record's stored sourceVersion is still absent or equal to the version this
// job captured at start. The compare and the write happen inside one
// Firestore transaction, so a slow stale job cannot clobber a fresher
// result between the read and the write.
//
// A rejected write returns a source_version_mismatch error. Callers must
// treat it as a normal concurrent-upload outcome, not a fault.
func (s *MediaStore) FinishAnalysis(ctx context.Context, k models.DayKey, held int64, result *models.AnalysisRecord) error {
	ref := s.client.Doc(AnalysisPath(k))

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		stored, storedExists := int64(0), false
		var current models.AnalysisRecord

		snap, err := tx.Get(ref)
		switch {
		case status.Code(err) == codes.NotFound:
			// No record yet; the write proceeds and seeds the version.
		case err != nil:
			return fmt.Errorf("failed to read analysis record %s: %w", k, err)
		default:
			// DataAt distinguishes an absent field from a zero one, which
			// DataTo cannot.
			if v, derr := snap.DataAt("sourceVersion"); derr == nil {
				if i, ok := v.(int64); ok {
					stored, storedExists = i, true
				}
			}
			_ = snap.DataTo(&current)
		}

		if !versionAllowsWrite(stored, storedExists, held) {
			return apperr.New(apperr.CodeSourceVersionMismatch,
				fmt.Sprintf("analysis for %s holds version %d but record has moved to %d", k, held, stored))
		}

		out := *result
		out.SourceVersion = held
		out.AIUpdatedAt = time.Now()
		if out.StartedAt.IsZero() {
			out.StartedAt = current.StartedAt
		}
		return tx.Set(ref, &out)
	})
	if err != nil {
		if apperr.CodeOf(err) == apperr.CodeSourceVersionMismatch {
			return err
		}
		return fmt.Errorf("failed to finish analysis %s: %w", k, err)
	}
	return nil
}
