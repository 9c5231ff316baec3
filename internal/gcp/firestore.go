package gcp

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"

	"github.com/Lllllllleong/voicejournal/internal/credentials"
)

// NewFirestoreClient creates a Firestore client authenticated with the
// decoded credential. It centralizes client creation for all services.
func NewFirestoreClient(ctx context.Context, cred *credentials.Credential) (*firestore.Client, error) {
	if cred == nil {
		return nil, fmt.Errorf("credential must be provided to create a firestore client")
	}
	credJSON, err := cred.JSON()
	if err != nil {
		return nil, err
	}

	client, err := firestore.NewClient(ctx, cred.ProjectID, option.WithCredentialsJSON(credJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	return client, nil
}
