package gcp

import (
	"context"
	"fmt"

	speech "cloud.google.com/go/speech/apiv1"
	"google.golang.org/api/option"

	"github.com/Lllllllleong/voicejournal/internal/credentials"
)

// NewSpeechClient creates a Speech-to-Text client authenticated with the
// decoded credential.
func NewSpeechClient(ctx context.Context, cred *credentials.Credential) (*speech.Client, error) {
	if cred == nil {
		return nil, fmt.Errorf("credential must be provided to create a speech client")
	}
	credJSON, err := cred.JSON()
	if err != nil {
		return nil, err
	}

	client, err := speech.NewClient(ctx, option.WithCredentialsJSON(credJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create Speech client: %w", err)
	}
	return client, nil
}
