package handlers

import (
	"encoding/json"
	"net/http"
)

// HealthHandler answers liveness probes for the dashboard service. It does
// not touch the upstream session or the database; reachability there is
// visible through /api/v1/metrics/requests instead.
type HealthHandler struct{}

// Handle implements GET /healthz.
func (HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	payload := map[string]string{
		"status":  "ok",
		"service": "vidlens",
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
