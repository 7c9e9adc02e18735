package handler

import "net/http"

// HealthResponse is the liveness payload. It does not touch the store.
type HealthResponse struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
}

// HandleHealth reports that the process is up.
//
// HTTP: GET /health
func HandleHealth(serviceName string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, HealthResponse{OK: true, Service: serviceName})
	}
}
