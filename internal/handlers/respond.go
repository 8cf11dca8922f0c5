package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vidlens/backend/internal/apiclient"
	"github.com/vidlens/backend/internal/logging"
)

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
		return
	}

	logger := logging.FromContext(ctx)
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status, "response", payload)
	case status >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", status, "response", payload)
	}
}

// upstreamStatus maps a pipeline error onto the status this service should
// answer with. Upstream 4xx statuses pass through; everything else reads as
// a bad gateway.
func upstreamStatus(err error) int {
	if errors.Is(err, apiclient.ErrSessionExpired) {
		return http.StatusUnauthorized
	}

	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Status >= http.StatusBadRequest && apiErr.Status < http.StatusInternalServerError {
			return apiErr.Status
		}
		return http.StatusBadGateway
	}
	return http.StatusBadGateway
}
