package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDayKeyValidate(t *testing.T) {
	tests := []struct {
		name    string
		key     DayKey
		wantErr bool
	}{
		{"valid parent", DayKey{"pair-1", "2026-08-29", RoleParent}, false},
		{"valid child", DayKey{"pair-1", "2026-02-28", RoleChild}, false},
		{"empty pair", DayKey{"", "2026-08-29", RoleParent}, true},
		{"bad date shape", DayKey{"pair-1", "2026/08/29", RoleParent}, true},
		{"impossible date", DayKey{"pair-1", "2026-02-31", RoleParent}, true},
		{"unknown role", DayKey{"pair-1", "2026-08-29", "admin"}, true},
		{"empty role", DayKey{"pair-1", "2026-08-29", ""}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.key.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAnalyzeRequestLegacy(t *testing.T) {
	assert.True(t, (&AnalyzeRequest{AudioURL: "https://x/audio.webm"}).Legacy())
	assert.False(t, (&AnalyzeRequest{PairID: "p", DateKey: "2026-08-29", Role: RoleParent}).Legacy())
	// A keyed request with a stray audioURL stays keyed.
	assert.False(t, (&AnalyzeRequest{PairID: "p", AudioURL: "https://x"}).Legacy())
}
