package mcp

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/verdantscape/knowledge-engine/internal/engine"
)

// HealthResponse represents the JSON response from the health check endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Corpus    string `json:"corpus"`
	Chunks    int    `json:"chunks"`
	Timestamp string `json:"timestamp"`
}

// NewHealthHandler creates an HTTP handler for the /health endpoint. The
// server is healthy once bootstrap has completed and the corpus is
// queryable; before that it reports 503 so orchestrators wait for the
// embedding pass to finish.
func NewHealthHandler(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := HealthResponse{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}
		w.Header().Set("Content-Type", "application/json")

		svc, err := eng.Service()
		if err != nil {
			response.Status = "unhealthy"
			response.Corpus = "not ready"
			w.WriteHeader(http.StatusServiceUnavailable) // 503
			json.NewEncoder(w).Encode(response)
			return
		}

		response.Status = "healthy"
		response.Corpus = "ready"
		response.Chunks = svc.Store().Size()
		w.WriteHeader(http.StatusOK) // 200
		json.NewEncoder(w).Encode(response)
	}
}
