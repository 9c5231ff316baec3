package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

	"github.com/Lllllllleong/voicejournal/internal/apperr"
	"github.com/Lllllllleong/voicejournal/internal/auth"
	"github.com/Lllllllleong/voicejournal/internal/credentials"
	"github.com/Lllllllleong/voicejournal/internal/models"
	"github.com/Lllllllleong/voicejournal/internal/services"
)

var (
	loader        = credentials.NewLoader("")
	adminInstance *services.AdminFunction
	verifier      auth.Verifier
	once          sync.Once
	initErr       error
)

func init() {
	functions.HTTP("HandleAdmin", handleAdmin)
}

// main is required by the Go Functions Framework.
func main() {}

func handleAdmin(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		adminInstance, initErr = services.NewAdmin(context.Background(), loader)
		if audience := os.Getenv("AUTH_AUDIENCE"); audience != "" {
			verifier = auth.NewIDTokenVerifier(audience)
		}
	})
	if initErr != nil {
		log.Printf("CRITICAL: Admin initialization failed: %v", initErr)
		apperr.WriteJSON(w, initErr)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	// Admin surfaces are never open: a missing AUTH_AUDIENCE is a deploy
	// mistake, not an invitation.
	if verifier == nil {
		apperr.WriteJSON(w, apperr.New(apperr.CodeAuthFailed, "admin endpoint has no verifier configured"))
		return
	}
	if _, err := auth.FromRequest(r.Context(), verifier, r); err != nil {
		apperr.WriteJSON(w, err)
		return
	}

	switch {
	case strings.HasSuffix(r.URL.Path, "/admin-reset"):
		handleReset(w, r)
	case strings.HasSuffix(r.URL.Path, "/admin-restore"):
		handleRestore(w, r)
	default:
		http.NotFound(w, r)
	}
}

func handleReset(w http.ResponseWriter, r *http.Request) {
	var req models.AdminResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.CodeInvalidRequest, "could not parse JSON body", err))
		return
	}
	resp, err := adminInstance.Reset(r.Context(), &req)
	if err != nil {
		apperr.WriteJSON(w, err)
		return
	}
	writeJSON(w, resp)
}

func handleRestore(w http.ResponseWriter, r *http.Request) {
	var req models.AdminRestoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.CodeInvalidRequest, "could not parse JSON body", err))
		return
	}
	resp, err := adminInstance.Restore(r.Context(), &req)
	if err != nil {
		apperr.WriteJSON(w, err)
		return
	}
	writeJSON(w, resp)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: Failed to write response: %v", err)
	}
}
