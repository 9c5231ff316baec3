// Package auth verifies the caller's identity token. Token issuance and the
// key infrastructure behind it belong to the managed identity service; this
// package only consumes its validation endpoint.
package auth

import (
	"context"
	"net/http"
	"strings"

	"google.golang.org/api/idtoken"

	"github.com/Lllllllleong/voicejournal/internal/apperr"
)

// Verifier checks a bearer token and returns the caller's subject id.
type Verifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// IDTokenVerifier validates Google-signed ID tokens against an audience.
type IDTokenVerifier struct {
	audience string
}

// NewIDTokenVerifier creates a verifier for the given audience (the
// deployed function's URL).
func NewIDTokenVerifier(audience string) *IDTokenVerifier {
	return &IDTokenVerifier{audience: audience}
}

func (v *IDTokenVerifier) Verify(ctx context.Context, token string) (string, error) {
	payload, err := idtoken.Validate(ctx, token, v.audience)
	if err != nil {
		return "", apperr.Wrap(apperr.CodeAuthFailed, "identity token rejected", err)
	}
	return payload.Subject, nil
}

// FromRequest verifies the Authorization bearer token of r and returns the
// caller's subject id.
func FromRequest(ctx context.Context, v Verifier, r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", apperr.New(apperr.CodeAuthFailed, "missing Authorization header")
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header || token == "" {
		return "", apperr.New(apperr.CodeAuthFailed, "Authorization header is not a bearer token")
	}
	uid, err := v.Verify(ctx, token)
	if err != nil {
		if apperr.CodeOf(err) == apperr.CodeAuthFailed {
			return "", err
		}
		return "", apperr.Wrap(apperr.CodeAuthFailed, "token verification failed", err)
	}
	return uid, nil
}
