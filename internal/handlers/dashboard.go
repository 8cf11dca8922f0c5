package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/vidlens/backend/internal/logging"
	"github.com/vidlens/backend/internal/models"
)

// DashboardHandler serves the dashboard's housekeeping surfaces: search
// history, advanced filters, notifications and request metrics.
type DashboardHandler struct {
	Log   HistoryLog
	Store FilterStore
	Feed  NotificationFeed
	Perf  PerfSource
}

// History implements /api/v1/history: GET lists recent searches, DELETE
// forgets them.
func (h DashboardHandler) History(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Log == nil {
		logger.Error("history log unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "history service unavailable"})
		return
	}

	switch r.Method {
	case http.MethodGet:
		respondJSON(ctx, w, http.StatusOK, map[string]any{"entries": h.Log.Entries()})

	case http.MethodDelete:
		if err := h.Log.Clear(); err != nil {
			logger.Error("clear history", "error", err)
			respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to clear history"})
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// Filters implements /api/v1/filters: GET returns the active filters, PUT
// replaces them, DELETE restores the defaults.
func (h DashboardHandler) Filters(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Store == nil {
		logger.Error("filter store unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "filter service unavailable"})
		return
	}

	switch r.Method {
	case http.MethodGet:
		respondJSON(ctx, w, http.StatusOK, h.Store.Get())

	case http.MethodPut:
		var f models.AdvancedFilters
		if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if f.MinViews < 0 || f.MinLikes < 0 || f.MinComments < 0 || f.MaxResults < 0 {
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "filter thresholds must not be negative"})
			return
		}
		if err := h.Store.Set(f); err != nil {
			logger.Error("persist filters", "error", err)
			respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to persist filters"})
			return
		}
		respondJSON(ctx, w, http.StatusOK, f)

	case http.MethodDelete:
		if err := h.Store.Reset(); err != nil {
			logger.Error("reset filters", "error", err)
			respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to reset filters"})
			return
		}
		respondJSON(ctx, w, http.StatusOK, h.Store.Get())

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// Notifications implements /api/v1/notifications: GET lists recent pipeline
// events newest first, DELETE dismisses them.
func (h DashboardHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Feed == nil {
		logger.Error("notification feed unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "notification service unavailable"})
		return
	}

	switch r.Method {
	case http.MethodGet:
		respondJSON(ctx, w, http.StatusOK, map[string]any{"notifications": h.Feed.Recent()})

	case http.MethodDelete:
		h.Feed.Clear()
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// Metrics implements /api/v1/metrics/requests: GET returns the retained
// upstream request samples oldest first, DELETE resets the buffer.
func (h DashboardHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Perf == nil {
		logger.Error("performance log unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "metrics service unavailable"})
		return
	}

	switch r.Method {
	case http.MethodGet:
		samples := h.Perf.Snapshot()
		respondJSON(ctx, w, http.StatusOK, map[string]any{
			"samples": samples,
			"count":   len(samples),
		})

	case http.MethodDelete:
		h.Perf.Reset()
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
