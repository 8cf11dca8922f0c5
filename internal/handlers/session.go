package handlers

import (
	"net/http"

	"github.com/vidlens/backend/internal/logging"
)

// SessionHandler exposes the guest-session lifecycle.
type SessionHandler struct {
	Sessions SessionService
}

// Handle implements /api/v1/session: GET reports the current session, POST
// starts a fresh guest session, DELETE ends it.
func (h SessionHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Sessions == nil {
		logger.Error("session service unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "session service unavailable"})
		return
	}

	switch r.Method {
	case http.MethodGet:
		respondJSON(ctx, w, http.StatusOK, h.Sessions.CurrentSession())

	case http.MethodPost:
		if _, err := h.Sessions.GuestLogin(ctx); err != nil {
			logger.Error("guest login failed", "error", err)
			respondJSON(ctx, w, http.StatusBadGateway, map[string]string{"error": "unable to start a guest session"})
			return
		}
		respondJSON(ctx, w, http.StatusCreated, h.Sessions.CurrentSession())

	case http.MethodDelete:
		h.Sessions.Logout(ctx)
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
