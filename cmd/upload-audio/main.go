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

const maxUploadBytes = 32 << 20

var (
	loader         = credentials.NewLoader("")
	uploadInstance *services.UploadFunction
	verifier       auth.Verifier
	once           sync.Once
	initErr        error
)

func init() {
	functions.HTTP("HandleUploadAudio", handleUploadAudio)
}

// main is required by the Go Functions Framework.
func main() {}

func handleUploadAudio(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		uploadInstance, initErr = services.NewUploader(context.Background(), loader)
		if audience := os.Getenv("AUTH_AUDIENCE"); audience != "" {
			verifier = auth.NewIDTokenVerifier(audience)
		}
	})
	if initErr != nil {
		log.Printf("CRITICAL: Uploader initialization failed: %v", initErr)
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

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.CodeInvalidRequest, "could not parse multipart form", err))
		return
	}
	file, header, err := r.FormFile("audio")
	if err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.CodeInvalidRequest, "missing audio part", err))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "audio/webm"
	}

	resp, err := uploadInstance.Process(r.Context(), &services.UploadInput{
		Key: models.DayKey{
			PairID:  r.FormValue("pairId"),
			DateKey: r.FormValue("dateKey"),
			Role:    r.FormValue("role"),
		},
		ContentType: contentType,
		Body:        file,
	})
	if err != nil {
		apperr.WriteJSON(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("ERROR: Failed to write response: %v", err)
	}
}
