package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vidlens/backend/internal/apiclient"
	"github.com/vidlens/backend/internal/history"
	"github.com/vidlens/backend/internal/models"
	"github.com/vidlens/backend/internal/quota"
	"github.com/vidlens/backend/internal/videos"
)

func newSearchHandler(t *testing.T, svc *stubSearch, dailyLimit int) SearchHandler {
	t.Helper()
	st := newStateFile(t)
	return SearchHandler{
		Searcher:  svc,
		Selection: newBoard(t),
		History:   history.NewLog(st),
		Quota:     quota.NewTracker(st, dailyLimit),
		Filters:   videos.NewFilterStore(st),
		Limiter:   allowAll{},
	}
}

func TestSearchHappyPath(t *testing.T) {
	svc := &stubSearch{videos: []models.Video{
		{VideoID: "a", Title: "First", ViewCount: 100},
		{VideoID: "b", Title: "Second", ViewCount: 5000},
	}}
	handler := newSearchHandler(t, svc, 10)

	rec := httptest.NewRecorder()
	handler.Search(rec, httptest.NewRequest(http.MethodGet, "/api/v1/search?q=golang", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Videos   []models.Video        `json:"videos"`
		Metadata models.SearchMetadata `json:"metadata"`
		Quota    struct {
			Used      int `json:"used"`
			Remaining int `json:"remaining"`
		} `json:"quota"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Videos) != 2 || resp.Metadata.Query != "golang" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if resp.Quota.Used != 1 || resp.Quota.Remaining != 9 {
		t.Fatalf("unexpected quota %+v", resp.Quota)
	}

	entries := handler.History.Entries()
	if len(entries) != 1 || entries[0].Query != "golang" {
		t.Fatalf("expected search recorded in history, got %+v", entries)
	}
	if meta := handler.Selection.Metadata(); meta.Query != "golang" {
		t.Fatalf("expected search metadata persisted, got %+v", meta)
	}
}

func TestSearchAppliesStoredFilters(t *testing.T) {
	svc := &stubSearch{videos: []models.Video{
		{VideoID: "small", ViewCount: 10},
		{VideoID: "big", ViewCount: 100000},
	}}
	handler := newSearchHandler(t, svc, 10)
	if err := handler.Filters.Set(models.AdvancedFilters{MinViews: 1000}); err != nil {
		t.Fatalf("set filters: %v", err)
	}

	rec := httptest.NewRecorder()
	handler.Search(rec, httptest.NewRequest(http.MethodGet, "/api/v1/search?q=go", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}

	var resp struct {
		Videos []models.Video `json:"videos"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Videos) != 1 || resp.Videos[0].VideoID != "big" {
		t.Fatalf("expected filter to keep only the big video, got %+v", resp.Videos)
	}
}

func TestSearchRequiresQuery(t *testing.T) {
	handler := newSearchHandler(t, &stubSearch{}, 10)

	rec := httptest.NewRecorder()
	handler.Search(rec, httptest.NewRequest(http.MethodGet, "/api/v1/search", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestSearchQuotaExhausted(t *testing.T) {
	svc := &stubSearch{videos: []models.Video{{VideoID: "a"}}}
	handler := newSearchHandler(t, svc, 1)

	rec := httptest.NewRecorder()
	handler.Search(rec, httptest.NewRequest(http.MethodGet, "/api/v1/search?q=one", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected first search to pass, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.Search(rec, httptest.NewRequest(http.MethodGet, "/api/v1/search?q=two", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", rec.Code)
	}
	if svc.searches != 1 {
		t.Fatalf("exhausted quota must not reach upstream, got %d searches", svc.searches)
	}
}

func TestSearchRateLimited(t *testing.T) {
	handler := newSearchHandler(t, &stubSearch{}, 10)
	handler.Limiter = denyAll{}

	rec := httptest.NewRecorder()
	handler.Search(rec, httptest.NewRequest(http.MethodGet, "/api/v1/search?q=go", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", rec.Code)
	}
}

func TestSearchUpstreamErrorMapping(t *testing.T) {
	svc := &stubSearch{err: &apiclient.APIError{Status: http.StatusServiceUnavailable, Message: "down"}}
	handler := newSearchHandler(t, svc, 10)

	rec := httptest.NewRecorder()
	handler.Search(rec, httptest.NewRequest(http.MethodGet, "/api/v1/search?q=go", nil))
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 for upstream 503, got %d", rec.Code)
	}
}

func TestVideoDetail(t *testing.T) {
	handler := SearchHandler{Details: stubDetails{video: models.Video{VideoID: "abc", Title: "Found"}}}

	rec := httptest.NewRecorder()
	handler.VideoDetail(rec, httptest.NewRequest(http.MethodGet, "/api/v1/videos/abc", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}

	var v models.Video
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if v.VideoID != "abc" {
		t.Fatalf("unexpected video %+v", v)
	}
}

func TestVideoDetailRequiresID(t *testing.T) {
	handler := SearchHandler{Details: stubDetails{}}

	rec := httptest.NewRecorder()
	handler.VideoDetail(rec, httptest.NewRequest(http.MethodGet, "/api/v1/videos/", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestVideoDetailNotFoundPassesThrough(t *testing.T) {
	handler := SearchHandler{Details: stubDetails{err: &apiclient.APIError{Status: http.StatusNotFound, Message: "missing"}}}

	rec := httptest.NewRecorder()
	handler.VideoDetail(rec, httptest.NewRequest(http.MethodGet, "/api/v1/videos/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}
