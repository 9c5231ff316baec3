package models

import (
	"fmt"
	"regexp"
	"time"
)

// Firestore document layout:
//
//	pair_media/{pairId}/days/{dateKey}/media/{role}
//	pair_media/{pairId}/days/{dateKey}/analysis/{role}
//	pair_media/{pairId}/days/{dateKey}/journal/{role}
//	pair_media/{pairId}/snapshots/{snapshotId}

// Analysis status values.
const (
	AIStatusRunning = "running"
	AIStatusDone    = "done"
	AIStatusError   = "error"
)

// Roles of the two paired participants.
const (
	RoleParent = "parent"
	RoleChild  = "child"
)

var dateKeyPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ValidDateKey reports whether s is a YYYY-MM-DD calendar date.
func ValidDateKey(s string) bool {
	if !dateKeyPattern.MatchString(s) {
		return false
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// DayKey identifies one day's exchange slot for one participant.
type DayKey struct {
	PairID  string
	DateKey string
	Role    string
}

// Validate checks the key's shape. Role must be one of the two participant
// roles and DateKey must be a YYYY-MM-DD calendar date.
func (k DayKey) Validate() error {
	if k.PairID == "" {
		return fmt.Errorf("pairId must not be empty")
	}
	if !ValidDateKey(k.DateKey) {
		return fmt.Errorf("dateKey %q is not a YYYY-MM-DD calendar date", k.DateKey)
	}
	if k.Role != RoleParent && k.Role != RoleChild {
		return fmt.Errorf("role %q must be %q or %q", k.Role, RoleParent, RoleChild)
	}
	return nil
}

func (k DayKey) String() string {
	return fmt.Sprintf("%s/%s/%s", k.PairID, k.DateKey, k.Role)
}

// AnalysisRecord tracks the AI pipeline for one day's recording. A write of
// a terminal status is valid only while the stored SourceVersion still
// matches the version the job captured at start; a re-upload bumps the
// version and thereby invalidates any analysis still in flight.
type AnalysisRecord struct {
	AIStatus      string    `firestore:"aiStatus" json:"aiStatus"`
	SourceVersion int64     `firestore:"sourceVersion" json:"sourceVersion"`
	AIText        string    `firestore:"aiText,omitempty" json:"aiText,omitempty"`
	Transcript    string    `firestore:"transcript,omitempty" json:"transcript,omitempty"`
	ErrorDetail   string    `firestore:"errorDetail,omitempty" json:"errorDetail,omitempty"`
	StartedAt     time.Time `firestore:"startedAt,omitempty" json:"startedAt,omitempty"`
	FinishedAt    time.Time `firestore:"finishedAt,omitempty" json:"finishedAt,omitempty"`
	AIUpdatedAt   time.Time `firestore:"aiUpdatedAt,omitempty" json:"aiUpdatedAt,omitempty"`
}

// MediaEntry points at one day's uploaded recording in Cloud Storage. It is
// overwritten whole on re-upload for the same day.
type MediaEntry struct {
	StoragePath   string    `firestore:"storagePath" json:"storagePath"`
	ContentType   string    `firestore:"contentType" json:"contentType"`
	SizeBytes     int64     `firestore:"sizeBytes,omitempty" json:"sizeBytes,omitempty"`
	SourceVersion int64     `firestore:"sourceVersion" json:"sourceVersion"`
	UploadedAt    time.Time `firestore:"uploadedAt" json:"uploadedAt"`
}

// JournalEntry is the single per-day journal image for one participant.
type JournalEntry struct {
	StoragePath string    `firestore:"storagePath" json:"storagePath"`
	ContentType string    `firestore:"contentType" json:"contentType"`
	Caption     string    `firestore:"caption,omitempty" json:"caption,omitempty"`
	UploadedAt  time.Time `firestore:"uploadedAt" json:"uploadedAt"`
}

// DaySnapshot freezes one day's documents so an admin reset can be undone.
type DaySnapshot struct {
	PairID    string    `firestore:"pairId"`
	DateKey   string    `firestore:"dateKey"`
	CreatedAt time.Time `firestore:"createdAt"`

	Media    map[string]*MediaEntry     `firestore:"media,omitempty"`
	Analysis map[string]*AnalysisRecord `firestore:"analysis,omitempty"`
	Journal  map[string]*JournalEntry   `firestore:"journal,omitempty"`
}
