package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionAllowsWrite(t *testing.T) {
	tests := []struct {
		name         string
		stored       int64
		storedExists bool
		held         int64
		want         bool
	}{
		{"no stored version seeds freely", 0, false, 1700000000000, true},
		{"matching version may overwrite", 1700000000000, true, 1700000000000, true},
		{"older job is rejected", 1700000001000, true, 1700000000000, false},
		{"newer job against stale record is rejected too", 1700000000000, true, 1700000001000, false},
		{"zero stored version still counts as stored", 0, true, 1700000000000, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, versionAllowsWrite(tt.stored, tt.storedExists, tt.held))
		})
	}
}
