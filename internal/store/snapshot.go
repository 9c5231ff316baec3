package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Lllllllleong/voicejournal/internal/models"
)

// SnapshotDay freezes both roles' media, analysis, and journal documents for
// one day into a snapshot document, then clears the day. The reads fan out
// concurrently; the snapshot id is returned for a later restore.
func (s *MediaStore) SnapshotDay(ctx context.Context, pairID, dateKey string) (string, error) {
	snapshot := &models.DaySnapshot{
		PairID:    pairID,
		DateKey:   dateKey,
		CreatedAt: time.Now(),
		Media:     make(map[string]*models.MediaEntry),
		Analysis:  make(map[string]*models.AnalysisRecord),
		Journal:   make(map[string]*models.JournalEntry),
	}

	eg, gctx := errgroup.WithContext(ctx)
	for _, role := range []string{models.RoleParent, models.RoleChild} {
		k := models.DayKey{PairID: pairID, DateKey: dateKey, Role: role}
		eg.Go(func() error {
			entry, err := s.GetMedia(gctx, k)
			if err != nil {
				return err
			}
			if entry != nil {
				snapshot.Media[k.Role] = entry
			}
			return nil
		})
		eg.Go(func() error {
			rec, err := s.GetAnalysis(gctx, k)
			if err != nil {
				return err
			}
			if rec != nil {
				snapshot.Analysis[k.Role] = rec
			}
			return nil
		})
		eg.Go(func() error {
			entry, err := s.GetJournal(gctx, k)
			if err != nil {
				return err
			}
			if entry != nil {
				snapshot.Journal[k.Role] = entry
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return "", fmt.Errorf("failed to read day %s/%s for snapshot: %w", pairID, dateKey, err)
	}

	snapshotID := uuid.New().String()
	if _, err := s.client.Doc(SnapshotPath(pairID, snapshotID)).Set(ctx, snapshot); err != nil {
		return "", fmt.Errorf("failed to write snapshot %s: %w", snapshotID, err)
	}

	// The snapshot is durable; now clear the day.
	if err := s.clearDay(ctx, pairID, dateKey); err != nil {
		return "", err
	}
	return snapshotID, nil
}

// RestoreDay writes a snapshot's documents back over their day and returns
// the restored dateKey.
func (s *MediaStore) RestoreDay(ctx context.Context, pairID, snapshotID string) (string, error) {
	snap, err := s.client.Doc(SnapshotPath(pairID, snapshotID)).Get(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read snapshot %s: %w", snapshotID, err)
	}
	var snapshot models.DaySnapshot
	if err := snap.DataTo(&snapshot); err != nil {
		return "", fmt.Errorf("failed to decode snapshot %s: %w", snapshotID, err)
	}

	eg, gctx := errgroup.WithContext(ctx)
	for role, entry := range snapshot.Media {
		k := models.DayKey{PairID: pairID, DateKey: snapshot.DateKey, Role: role}
		eg.Go(func() error { return s.SetMedia(gctx, k, entry) })
	}
	for role, rec := range snapshot.Analysis {
		k := models.DayKey{PairID: pairID, DateKey: snapshot.DateKey, Role: role}
		eg.Go(func() error {
			_, err := s.client.Doc(AnalysisPath(k)).Set(gctx, rec)
			return err
		})
	}
	for role, entry := range snapshot.Journal {
		k := models.DayKey{PairID: pairID, DateKey: snapshot.DateKey, Role: role}
		eg.Go(func() error { return s.SetJournal(gctx, k, entry) })
	}
	if err := eg.Wait(); err != nil {
		return "", fmt.Errorf("failed to restore snapshot %s: %w", snapshotID, err)
	}
	return snapshot.DateKey, nil
}

// clearDay deletes both roles' documents for the day. Deleting a missing
// document is a no-op in Firestore, so absent roles need no special casing.
func (s *MediaStore) clearDay(ctx context.Context, pairID, dateKey string) error {
	eg, gctx := errgroup.WithContext(ctx)
	for _, role := range []string{models.RoleParent, models.RoleChild} {
		k := models.DayKey{PairID: pairID, DateKey: dateKey, Role: role}
		for _, path := range []string{MediaPath(k), AnalysisPath(k), JournalPath(k)} {
			eg.Go(func() error {
				_, err := s.client.Doc(path).Delete(gctx)
				return err
			})
		}
	}
	if err := eg.Wait(); err != nil {
		return fmt.Errorf("failed to clear day %s/%s: %w", pairID, dateKey, err)
	}
	return nil
}
