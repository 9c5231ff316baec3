package models

// These structs define the JSON payloads exchanged between the web client
// and the worker Cloud Functions.

// UploadResponse is returned by the upload-audio function. Upload success is
// final: whatever later happens to analysis never retracts it.
type UploadResponse struct {
	Success       bool   `json:"success"`
	StoragePath   string `json:"storagePath"`
	SourceVersion int64  `json:"sourceVersion"`
}

// AnalyzeRequest is the input of the analyze function. Either the keyed form
// (pairId/dateKey/role plus the sourceVersion the client got from upload) or
// the legacy form carrying a bare audio URL.
type AnalyzeRequest struct {
	PairID        string `json:"pairId,omitempty"`
	DateKey       string `json:"dateKey,omitempty"`
	Role          string `json:"role,omitempty"`
	SourceVersion int64  `json:"sourceVersion,omitempty"`

	// Legacy: analyze a URL directly, with no keyed record to guard.
	AudioURL string `json:"audioURL,omitempty"`
}

// Legacy reports whether the request is the old unkeyed form.
func (r *AnalyzeRequest) Legacy() bool { return r.AudioURL != "" && r.PairID == "" }

// AnalyzeResponse is the output of the analyze function.
type AnalyzeResponse struct {
	Success       bool   `json:"success"`
	Transcription string `json:"transcription,omitempty"`
	Analysis      string `json:"analysis,omitempty"`
}

// EnvCheckResponse reports whether the credential configuration is sane.
// It never carries the secret itself.
type EnvCheckResponse struct {
	OK           bool     `json:"ok"`
	Code         string   `json:"code,omitempty"`
	BrokenFields []string `json:"brokenFields,omitempty"`
}

// JournalResponse is returned by journal GET and POST.
type JournalResponse struct {
	Success bool          `json:"success"`
	Entry   *JournalEntry `json:"entry,omitempty"`
}

// AdminResetRequest snapshots and clears one day.
type AdminResetRequest struct {
	PairID  string `json:"pairId"`
	DateKey string `json:"dateKey"`
}

// AdminResetResponse carries the snapshot id needed for a later restore.
type AdminResetResponse struct {
	Success    bool   `json:"success"`
	SnapshotID string `json:"snapshotId"`
}

// AdminRestoreRequest writes a snapshot back over its day.
type AdminRestoreRequest struct {
	PairID     string `json:"pairId"`
	SnapshotID string `json:"snapshotId"`
}

// AdminRestoreResponse is the output of admin restore.
type AdminRestoreResponse struct {
	Success bool   `json:"success"`
	DateKey string `json:"dateKey"`
}
