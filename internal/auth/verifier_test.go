package auth

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/voicejournal/internal/apperr"
)

type fakeVerifier struct {
	uid string
	err error
}

func (f *fakeVerifier) Verify(_ context.Context, _ string) (string, error) {
	return f.uid, f.err
}

func TestFromRequest(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		verifier Verifier
		wantUID  string
		wantErr  bool
	}{
		{"valid bearer token", "Bearer tok-1", &fakeVerifier{uid: "user-1"}, "user-1", false},
		{"missing header", "", &fakeVerifier{uid: "user-1"}, "", true},
		{"not a bearer token", "Basic abc", &fakeVerifier{uid: "user-1"}, "", true},
		{"empty bearer token", "Bearer ", &fakeVerifier{uid: "user-1"}, "", true},
		{"verifier rejects", "Bearer tok-1", &fakeVerifier{err: apperr.New(apperr.CodeAuthFailed, "nope")}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			uid, err := FromRequest(context.Background(), tt.verifier, r)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, apperr.CodeAuthFailed, apperr.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantUID, uid)
		})
	}
}
