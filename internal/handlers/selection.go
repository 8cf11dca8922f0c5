package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/vidlens/backend/internal/logging"
	"github.com/vidlens/backend/internal/models"
)

// SelectionHandler exposes the selection board.
type SelectionHandler struct {
	Board SelectionBoard
}

type selectionState struct {
	Videos   []models.Video        `json:"videos"`
	Count    int                   `json:"count"`
	Metadata models.SearchMetadata `json:"metadata"`
}

// Handle implements /api/v1/selection: GET returns the board, DELETE clears
// it.
func (h SelectionHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Board == nil {
		logger.Error("selection board unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "selection service unavailable"})
		return
	}

	switch r.Method {
	case http.MethodGet:
		respondJSON(ctx, w, http.StatusOK, h.state())

	case http.MethodDelete:
		if err := h.Board.Clear(ctx); err != nil {
			logger.Error("clear selection", "error", err)
			respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to clear selection"})
			return
		}
		respondJSON(ctx, w, http.StatusOK, h.state())

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// Add handles POST /api/v1/selection/add with a video payload.
func (h SelectionHandler) Add(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(v models.Video) error {
		return h.Board.Add(r.Context(), v)
	})
}

// Toggle handles POST /api/v1/selection/toggle with a video payload.
func (h SelectionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Board == nil {
		logger.Error("selection board unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "selection service unavailable"})
		return
	}

	video, ok := decodeVideo(w, r)
	if !ok {
		return
	}

	selected, err := h.Board.Toggle(ctx, video)
	if err != nil {
		logger.Error("toggle selection", "videoId", video.VideoID, "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to update selection"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{
		"selected":  selected,
		"selection": h.state(),
	})
}

// Remove handles POST /api/v1/selection/remove with a {"videoId": ...}
// payload.
func (h SelectionHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Board == nil {
		logger.Error("selection board unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "selection service unavailable"})
		return
	}

	var req struct {
		VideoID string `json:"videoId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	req.VideoID = strings.TrimSpace(req.VideoID)
	if req.VideoID == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "videoId is required"})
		return
	}

	if err := h.Board.Remove(ctx, req.VideoID); err != nil {
		logger.Error("remove from selection", "videoId", req.VideoID, "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to update selection"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, h.state())
}

// SelectAll handles POST /api/v1/selection/all with a {"videos": [...]}
// payload. Already-selected videos stay put; duplicates land once.
func (h SelectionHandler) SelectAll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Board == nil {
		logger.Error("selection board unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "selection service unavailable"})
		return
	}

	var req struct {
		Videos []models.Video `json:"videos"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if len(req.Videos) == 0 {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "videos are required"})
		return
	}
	for _, v := range req.Videos {
		if v.VideoID == "" {
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "every video needs a videoId"})
			return
		}
	}

	if err := h.Board.SelectAll(ctx, req.Videos); err != nil {
		logger.Error("select all", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to update selection"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, h.state())
}

func (h SelectionHandler) mutate(w http.ResponseWriter, r *http.Request, op func(models.Video) error) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Board == nil {
		logger.Error("selection board unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "selection service unavailable"})
		return
	}

	video, ok := decodeVideo(w, r)
	if !ok {
		return
	}

	if err := op(video); err != nil {
		logger.Error("update selection", "videoId", video.VideoID, "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to update selection"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, h.state())
}

func (h SelectionHandler) state() selectionState {
	return selectionState{
		Videos:   h.Board.Videos(),
		Count:    h.Board.Count(),
		Metadata: h.Board.Metadata(),
	}
}

func decodeVideo(w http.ResponseWriter, r *http.Request) (models.Video, bool) {
	ctx := r.Context()

	var video models.Video
	if err := json.NewDecoder(r.Body).Decode(&video); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return models.Video{}, false
	}
	if strings.TrimSpace(video.VideoID) == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "videoId is required"})
		return models.Video{}, false
	}
	return video, true
}
