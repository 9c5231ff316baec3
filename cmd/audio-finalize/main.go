package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/cloudevents/sdk-go/v2/event"

	"github.com/Lllllllleong/voicejournal/internal/credentials"
	"github.com/Lllllllleong/voicejournal/internal/services"
)

var (
	loader          = credentials.NewLoader("")
	triggerInstance *services.TriggerFunction
	once            sync.Once
	initErr         error
)

// GCSEvent is the payload of a GCS object-finalize event.
type GCSEvent struct {
	Bucket string `json:"bucket"`
	Name   string `json:"name"`
}

func init() {
	functions.CloudEvent("HandleAudioFinalize", handleAudioFinalize)
}

// main is required by the Go Functions Framework.
func main() {}

func handleAudioFinalize(ctx context.Context, e event.Event) error {
	once.Do(func() {
		triggerInstance, initErr = services.NewTrigger(context.Background(), loader)
	})
	if initErr != nil {
		log.Printf("CRITICAL: Trigger initialization failed: %v", initErr)
		return initErr
	}

	var gcsEvent GCSEvent
	if err := json.Unmarshal(e.Data(), &gcsEvent); err != nil {
		return fmt.Errorf("failed to parse GCS event payload: %w", err)
	}

	return triggerInstance.Process(ctx, gcsEvent.Bucket, gcsEvent.Name)
}
