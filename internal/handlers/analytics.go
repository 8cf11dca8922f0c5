package handlers

import (
	"errors"
	"net/http"

	"github.com/vidlens/backend/internal/analytics"
	"github.com/vidlens/backend/internal/logging"
)

// AnalyticsHandler serves derived metrics over the current selection.
type AnalyticsHandler struct {
	Board SelectionBoard
}

// Summary handles GET /api/v1/analytics/summary.
func (h AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	if h.Board == nil {
		logging.FromContext(ctx).Error("selection board unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "analytics service unavailable"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, analytics.Summarize(h.Board.Videos()))
}

// Correlation handles GET /api/v1/analytics/correlation?x=views&y=likes.
// The axes default to views and engagement.
func (h AnalyticsHandler) Correlation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	if h.Board == nil {
		logging.FromContext(ctx).Error("selection board unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "analytics service unavailable"})
		return
	}

	xName := r.URL.Query().Get("x")
	if xName == "" {
		xName = "views"
	}
	yName := r.URL.Query().Get("y")
	if yName == "" {
		yName = "engagement"
	}

	vids := h.Board.Videos()

	x, err := analytics.Series(vids, xName)
	if err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	y, err := analytics.Series(vids, yName)
	if err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	coefficient, err := analytics.Pearson(x, y)
	if err != nil {
		if errors.Is(err, analytics.ErrSeriesTooShort) {
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "select at least two videos to correlate"})
			return
		}
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{
		"x":           xName,
		"y":           yName,
		"count":       len(vids),
		"coefficient": coefficient,
	})
}
