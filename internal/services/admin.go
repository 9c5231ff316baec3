package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Lllllllleong/voicejournal/internal/apperr"
	"github.com/Lllllllleong/voicejournal/internal/credentials"
	"github.com/Lllllllleong/voicejournal/internal/gcp"
	"github.com/Lllllllleong/voicejournal/internal/models"
	"github.com/Lllllllleong/voicejournal/internal/store"
)

// SnapshotStore is the slice of the store the admin surface needs.
type SnapshotStore interface {
	SnapshotDay(ctx context.Context, pairID, dateKey string) (string, error)
	RestoreDay(ctx context.Context, pairID, snapshotID string) (string, error)
}

// AdminFunction holds the dependencies for the admin reset/restore surface.
type AdminFunction struct {
	snapshots SnapshotStore
}

// NewAdmin creates an AdminFunction with a real store, built from the
// decoded credential.
func NewAdmin(ctx context.Context, loader *credentials.Loader) (*AdminFunction, error) {
	cred, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load credential: %w", err)
	}
	firestoreClient, err := gcp.NewFirestoreClient(ctx, cred)
	if err != nil {
		return nil, err
	}
	return &AdminFunction{snapshots: store.NewMediaStore(firestoreClient)}, nil
}

// Reset snapshots a day's documents and clears the day. The snapshot id in
// the response is the handle for a later restore.
func (f *AdminFunction) Reset(ctx context.Context, req *models.AdminResetRequest) (*models.AdminResetResponse, error) {
	if req.PairID == "" || !models.ValidDateKey(req.DateKey) {
		return nil, apperr.New(apperr.CodeInvalidRequest, "pairId and a YYYY-MM-DD dateKey are required")
	}

	snapshotID, err := f.snapshots.SnapshotDay(ctx, req.PairID, req.DateKey)
	if err != nil {
		slog.Error("Day reset failed", "error", err, "pairId", req.PairID, "dateKey", req.DateKey)
		return nil, err
	}
	slog.Info("Day reset.", "pairId", req.PairID, "dateKey", req.DateKey, "snapshotId", snapshotID)
	return &models.AdminResetResponse{Success: true, SnapshotID: snapshotID}, nil
}

// Restore writes a snapshot back over its day.
func (f *AdminFunction) Restore(ctx context.Context, req *models.AdminRestoreRequest) (*models.AdminRestoreResponse, error) {
	if req.PairID == "" || req.SnapshotID == "" {
		return nil, apperr.New(apperr.CodeInvalidRequest, "pairId and snapshotId are required")
	}

	dateKey, err := f.snapshots.RestoreDay(ctx, req.PairID, req.SnapshotID)
	if err != nil {
		slog.Error("Day restore failed", "error", err, "pairId", req.PairID, "snapshotId", req.SnapshotID)
		return nil, err
	}
	slog.Info("Day restored.", "pairId", req.PairID, "dateKey", dateKey, "snapshotId", req.SnapshotID)
	return &models.AdminRestoreResponse{Success: true, DateKey: dateKey}, nil
}
