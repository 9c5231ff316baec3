package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	executions "cloud.google.com/go/workflows/executions/apiv1"
	"cloud.google.com/go/workflows/executions/apiv1/executionspb"
	"google.golang.org/api/option"

	"github.com/Lllllllleong/voicejournal/internal/credentials"
	"github.com/Lllllllleong/voicejournal/internal/gcp"
	"github.com/Lllllllleong/voicejournal/internal/store"
)

// TriggerConfig holds configuration for the audio-finalize trigger.
type TriggerConfig struct {
	ProjectID        string
	WorkflowID       string
	WorkflowLocation string
}

// TriggerFunction reacts to a finalized recording object by starting the
// analysis workflow, so re-uploads re-analyze without a client call.
type TriggerFunction struct {
	executionsClient *executions.Client
	config           TriggerConfig
}

// NewTrigger creates a TriggerFunction with a real executions client, built
// from the decoded credential.
func NewTrigger(ctx context.Context, loader *credentials.Loader) (*TriggerFunction, error) {
	cred, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load credential: %w", err)
	}
	credJSON, err := cred.JSON()
	if err != nil {
		return nil, err
	}

	config := TriggerConfig{
		ProjectID:        cred.ProjectID,
		WorkflowID:       gcp.GetEnv("WORKFLOW_ID", "recording-analysis"),
		WorkflowLocation: gcp.GetEnv("WORKFLOW_LOCATION", "us-central1"),
	}

	executionsClient, err := executions.NewClient(ctx, option.WithCredentialsJSON(credJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create Workflows Executions client: %w", err)
	}

	slog.Info("Trigger logic initialized.", "workflow", config.WorkflowID)
	return &TriggerFunction{executionsClient: executionsClient, config: config}, nil
}

// Process derives the day key from the finalized object and starts one
// workflow execution for it. Non-recording objects are ignored.
func (f *TriggerFunction) Process(ctx context.Context, bucket, objectName string) error {
	k, ok := store.ParseAudioObjectName(objectName)
	if !ok {
		slog.Debug("Ignoring non-recording object.", "bucket", bucket, "object", objectName)
		return nil
	}

	payload, err := json.Marshal(map[string]string{
		"pairId":  k.PairID,
		"dateKey": k.DateKey,
		"role":    k.Role,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal workflow payload: %w", err)
	}

	req := &executionspb.CreateExecutionRequest{
		Parent: fmt.Sprintf("projects/%s/locations/%s/workflows/%s",
			f.config.ProjectID, f.config.WorkflowLocation, f.config.WorkflowID),
		Execution: &executionspb.Execution{
			Argument: string(payload),
		},
	}
	if _, err := f.executionsClient.CreateExecution(ctx, req); err != nil {
		return fmt.Errorf("failed to trigger analysis workflow for %s: %w", k, err)
	}

	slog.Info("Analysis workflow triggered.", "pairId", k.PairID, "dateKey", k.DateKey, "role", k.Role)
	return nil
}
