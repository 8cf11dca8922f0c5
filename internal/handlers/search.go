package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/vidlens/backend/internal/logging"
	"github.com/vidlens/backend/internal/quota"
	"github.com/vidlens/backend/internal/videos"
)

// SearchHandler exposes upstream search, trending and per-record lookups.
type SearchHandler struct {
	Searcher  SearchService
	Details   DetailProvider
	Channels  ChannelProvider
	Selection SelectionBoard
	History   HistoryLog
	Quota     QuotaTracker
	Filters   FilterStore
	Limiter   RateLimiter
}

// Search handles GET /api/v1/search. Each successful call spends one unit of
// the daily quota, records the query in the history and applies the stored
// advanced filters to the result set.
func (h SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Searcher == nil {
		logger.Error("search service unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "search service unavailable"})
		return
	}

	if !allowRequest(h.Limiter, r, "search") {
		respondJSON(ctx, w, http.StatusTooManyRequests, map[string]string{"error": "too many search requests"})
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "query parameter q is required"})
		return
	}

	searchType := r.URL.Query().Get("type")
	if searchType == "" {
		searchType = "video"
	}
	maxResults, _ := strconv.Atoi(r.URL.Query().Get("maxResults"))

	if h.Quota != nil {
		if err := h.Quota.Spend(); err != nil {
			if errors.Is(err, quota.ErrExhausted) {
				respondJSON(ctx, w, http.StatusTooManyRequests, map[string]any{
					"error":    "daily search quota exhausted",
					"quota":    h.quotaStatus(),
					"resetsAt": h.Quota.ResetsAt(),
				})
				return
			}
			logger.Error("spend quota", "error", err)
			respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to account quota"})
			return
		}
	}

	ctx, span := logging.StartSpan(ctx, "youtube-search")
	defer span.End()

	vids, meta, err := h.Searcher.Search(ctx, query, searchType, maxResults)
	if err != nil {
		logger.Error("upstream search failed", "query", query, "error", err)
		respondJSON(ctx, w, upstreamStatus(err), map[string]string{"error": "search failed"})
		return
	}

	if h.Filters != nil {
		vids = videos.ApplyFilters(vids, h.Filters.Get())
	}
	if h.History != nil {
		if err := h.History.Record(query, searchType); err != nil {
			logger.Warn("record search history", "error", err)
		}
	}
	if h.Selection != nil {
		if err := h.Selection.SetSearchMetadata(ctx, meta.Query, meta.Type, meta.TotalResults); err != nil {
			logger.Warn("persist search metadata", "error", err)
		}
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{
		"videos":   vids,
		"metadata": meta,
		"quota":    h.quotaStatus(),
	})
}

// Trending handles GET /api/v1/trending.
func (h SearchHandler) Trending(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Searcher == nil {
		logger.Error("search service unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "search service unavailable"})
		return
	}

	if !allowRequest(h.Limiter, r, "trending") {
		respondJSON(ctx, w, http.StatusTooManyRequests, map[string]string{"error": "too many requests"})
		return
	}

	vids, err := h.Searcher.Trending(ctx, r.URL.Query().Get("region"), r.URL.Query().Get("category"))
	if err != nil {
		logger.Error("trending lookup failed", "error", err)
		respondJSON(ctx, w, upstreamStatus(err), map[string]string{"error": "trending lookup failed"})
		return
	}

	if h.Filters != nil {
		vids = videos.ApplyFilters(vids, h.Filters.Get())
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"videos": vids})
}

// VideoDetail handles GET /api/v1/videos/{id}.
func (h SearchHandler) VideoDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	id := strings.TrimPrefix(r.URL.Path, "/api/v1/videos/")
	if id == "" || strings.Contains(id, "/") {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "video id is required"})
		return
	}

	if h.Details == nil {
		logger.Error("detail provider unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "detail service unavailable"})
		return
	}

	video, err := h.Details.Video(ctx, id)
	if err != nil {
		logger.Warn("video detail lookup failed", "videoId", id, "error", err)
		respondJSON(ctx, w, upstreamStatus(err), map[string]string{"error": "video lookup failed"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, video)
}

// ChannelDetail handles GET /api/v1/channels/{id}.
func (h SearchHandler) ChannelDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	id := strings.TrimPrefix(r.URL.Path, "/api/v1/channels/")
	if id == "" || strings.Contains(id, "/") {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "channel id is required"})
		return
	}

	if h.Channels == nil {
		logger.Error("channel provider unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "channel service unavailable"})
		return
	}

	channel, err := h.Channels.Channel(ctx, id)
	if err != nil {
		logger.Warn("channel lookup failed", "channelId", id, "error", err)
		respondJSON(ctx, w, upstreamStatus(err), map[string]string{"error": "channel lookup failed"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, channel)
}

func (h SearchHandler) quotaStatus() map[string]any {
	if h.Quota == nil {
		return nil
	}
	return map[string]any{
		"used":      h.Quota.Used(),
		"limit":     h.Quota.Limit(),
		"remaining": h.Quota.Remaining(),
		"resetsAt":  h.Quota.ResetsAt(),
	}
}
