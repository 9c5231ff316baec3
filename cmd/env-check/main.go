package main

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

	"github.com/Lllllllleong/voicejournal/internal/credentials"
	"github.com/Lllllllleong/voicejournal/internal/services"
)

var envCheckInstance = services.NewEnvCheck(credentials.NewLoader(""))

func init() {
	functions.HTTP("HandleEnvCheck", handleEnvCheck)
}

// main is required by the Go Functions Framework.
func main() {}

func handleEnvCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := envCheckInstance.Process()

	w.Header().Set("Content-Type", "application/json")
	if !resp.OK {
		w.WriteHeader(http.StatusInternalServerError)
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("ERROR: Failed to write response: %v", err)
	}
}
