package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

	"github.com/Lllllllleong/voicejournal/internal/apperr"
	"github.com/Lllllllleong/voicejournal/internal/auth"
	"github.com/Lllllllleong/voicejournal/internal/credentials"
	"github.com/Lllllllleong/voicejournal/internal/models"
	"github.com/Lllllllleong/voicejournal/internal/services"
)

var (
	loader          = credentials.NewLoader("")
	analyzeInstance *services.AnalyzeFunction
	verifier        auth.Verifier
	once            sync.Once
	initErr         error
)

func init() {
	functions.HTTP("HandleAnalyze", handleAnalyze)
}

// main is required by the Go Functions Framework.
func main() {}

func handleAnalyze(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		analyzeInstance, initErr = services.NewAnalyzer(context.Background(), loader)
		if audience := os.Getenv("AUTH_AUDIENCE"); audience != "" {
			verifier = auth.NewIDTokenVerifier(audience)
		}
	})
	if initErr != nil {
		log.Printf("CRITICAL: Analyzer initialization failed: %v", initErr)
		apperr.WriteJSON(w, initErr)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	if verifier != nil {
		if _, err := auth.FromRequest(r.Context(), verifier, r); err != nil {
			apperr.WriteJSON(w, err)
			return
		}
	}

	var req models.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.CodeInvalidRequest, "could not parse JSON body", err))
		return
	}

	resp, err := analyzeInstance.Process(r.Context(), &req)
	if err != nil {
		// Failures here include the benign source_version_mismatch and the
		// AI-stage errors; WriteJSON keeps those non-5xx so the client UI,
		// which already confirmed the upload, is never blocked.
		apperr.WriteJSON(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("ERROR: Failed to write response: %v", err)
	}
}
