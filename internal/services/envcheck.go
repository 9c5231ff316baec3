package services

import (
	"errors"

	"github.com/Lllllllleong/voicejournal/internal/apperr"
	"github.com/Lllllllleong/voicejournal/internal/credentials"
	"github.com/Lllllllleong/voicejournal/internal/models"
)

// EnvCheckFunction reports whether the credential configuration decodes.
// It shares the process-wide Loader, so the check observes exactly what the
// other handlers would get, cached failure included.
type EnvCheckFunction struct {
	loader *credentials.Loader
}

// NewEnvCheck creates an EnvCheckFunction over the shared loader.
func NewEnvCheck(loader *credentials.Loader) *EnvCheckFunction {
	return &EnvCheckFunction{loader: loader}
}

// Process runs the check. The response names the broken fields when
// validation failed; it never carries the secret value itself.
func (f *EnvCheckFunction) Process() *models.EnvCheckResponse {
	if _, err := f.loader.Load(); err != nil {
		resp := &models.EnvCheckResponse{OK: false, Code: string(apperr.CodeOf(err))}
		var ae *apperr.Error
		if errors.As(err, &ae) {
			resp.BrokenFields = ae.BrokenFields
		}
		return resp
	}
	return &models.EnvCheckResponse{OK: true}
}
