// Package store is the Firestore data-access layer for pair media days:
// media entries, analysis records, journal entries, and admin snapshots.
package store

import (
	"fmt"
	"strings"

	"github.com/Lllllllleong/voicejournal/internal/models"
)

// PairMediaCollection is the root collection for all per-pair documents.
const PairMediaCollection = "pair_media"

// MediaPath returns the document path of a day's media entry.
func MediaPath(k models.DayKey) string {
	return fmt.Sprintf("%s/%s/days/%s/media/%s", PairMediaCollection, k.PairID, k.DateKey, k.Role)
}

// AnalysisPath returns the document path of a day's analysis record.
func AnalysisPath(k models.DayKey) string {
	return fmt.Sprintf("%s/%s/days/%s/analysis/%s", PairMediaCollection, k.PairID, k.DateKey, k.Role)
}

// JournalPath returns the document path of a day's journal entry.
func JournalPath(k models.DayKey) string {
	return fmt.Sprintf("%s/%s/days/%s/journal/%s", PairMediaCollection, k.PairID, k.DateKey, k.Role)
}

// SnapshotPath returns the document path of an admin snapshot.
func SnapshotPath(pairID, snapshotID string) string {
	return fmt.Sprintf("%s/%s/snapshots/%s", PairMediaCollection, pairID, snapshotID)
}

// AudioObjectName returns the Cloud Storage object name for a day's
// recording. Re-uploads share the name, so the newest blob always replaces
// the previous one.
func AudioObjectName(k models.DayKey) string {
	return fmt.Sprintf("pairs/%s/%s/%s/audio.webm", k.PairID, k.DateKey, k.Role)
}

// JournalObjectName returns the Cloud Storage object name for a day's
// journal image.
func JournalObjectName(k models.DayKey) string {
	return fmt.Sprintf("pairs/%s/%s/%s/journal.jpg", k.PairID, k.DateKey, k.Role)
}

// ParseAudioObjectName recovers the day key from a recording's object name.
// The second return is false for objects that are not recordings (journal
// images land in the same bucket).
func ParseAudioObjectName(objectName string) (models.DayKey, bool) {
	parts := strings.Split(objectName, "/")
	if len(parts) != 5 || parts[0] != "pairs" || parts[4] != "audio.webm" {
		return models.DayKey{}, false
	}
	k := models.DayKey{PairID: parts[1], DateKey: parts[2], Role: parts[3]}
	if err := k.Validate(); err != nil {
		return models.DayKey{}, false
	}
	return k, true
}
