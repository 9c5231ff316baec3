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

const maxImageBytes = 16 << 20

var (
	loader          = credentials.NewLoader("")
	journalInstance *services.JournalFunction
	verifier        auth.Verifier
	once            sync.Once
	initErr         error
)

func init() {
	functions.HTTP("HandleJournal", handleJournal)
}

// main is required by the Go Functions Framework.
func main() {}

func handleJournal(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		journalInstance, initErr = services.NewJournal(context.Background(), loader)
		if audience := os.Getenv("AUTH_AUDIENCE"); audience != "" {
			verifier = auth.NewIDTokenVerifier(audience)
		}
	})
	if initErr != nil {
		log.Printf("CRITICAL: Journal initialization failed: %v", initErr)
		apperr.WriteJSON(w, initErr)
		return
	}

	switch r.Method {
	case http.MethodGet:
		fetchJournal(w, r)
	case http.MethodPost:
		uploadJournal(w, r)
	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

func fetchJournal(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp, err := journalInstance.Fetch(r.Context(), models.DayKey{
		PairID:  q.Get("pairId"),
		DateKey: q.Get("dateKey"),
		Role:    q.Get("role"),
	})
	if err != nil {
		apperr.WriteJSON(w, err)
		return
	}
	writeJSON(w, resp)
}

func uploadJournal(w http.ResponseWriter, r *http.Request) {
	if verifier != nil {
		if _, err := auth.FromRequest(r.Context(), verifier, r); err != nil {
			apperr.WriteJSON(w, err)
			return
		}
	}

	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.CodeInvalidRequest, "could not parse multipart form", err))
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.CodeInvalidRequest, "missing image part", err))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	resp, err := journalInstance.Upload(r.Context(), &services.JournalUploadInput{
		Key: models.DayKey{
			PairID:  r.FormValue("pairId"),
			DateKey: r.FormValue("dateKey"),
			Role:    r.FormValue("role"),
		},
		ContentType: contentType,
		Caption:     r.FormValue("caption"),
		Body:        file,
	})
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
