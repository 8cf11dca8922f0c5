package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func postJSON(t *testing.T, handler http.HandlerFunc, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	handler(rec, req)
	return rec
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) selectionState {
	t.Helper()
	var s selectionState
	if err := json.Unmarshal(rec.Body.Bytes(), &s); err != nil {
		t.Fatalf("decode selection state: %v", err)
	}
	return s
}

func TestSelectionAddAndGet(t *testing.T) {
	handler := SelectionHandler{Board: newBoard(t)}

	rec := postJSON(t, handler.Add, "/api/v1/selection/add", `{"videoId":"a","title":"First"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if s := decodeState(t, rec); s.Count != 1 || s.Videos[0].VideoID != "a" {
		t.Fatalf("unexpected state %+v", s)
	}

	// Adding the same id again is a no-op.
	rec = postJSON(t, handler.Add, "/api/v1/selection/add", `{"videoId":"a","title":"First"}`)
	if s := decodeState(t, rec); s.Count != 1 {
		t.Fatalf("expected add to stay idempotent, got %+v", s)
	}

	rec = httptest.NewRecorder()
	handler.Handle(rec, httptest.NewRequest(http.MethodGet, "/api/v1/selection", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if s := decodeState(t, rec); s.Count != 1 {
		t.Fatalf("unexpected state %+v", s)
	}
}

func TestSelectionAddRejectsMissingID(t *testing.T) {
	handler := SelectionHandler{Board: newBoard(t)}

	rec := postJSON(t, handler.Add, "/api/v1/selection/add", `{"title":"no id"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestSelectionToggle(t *testing.T) {
	handler := SelectionHandler{Board: newBoard(t)}

	rec := postJSON(t, handler.Toggle, "/api/v1/selection/toggle", `{"videoId":"a"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var resp struct {
		Selected  bool           `json:"selected"`
		Selection selectionState `json:"selection"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Selected || resp.Selection.Count != 1 {
		t.Fatalf("expected selected after first toggle, got %+v", resp)
	}

	rec = postJSON(t, handler.Toggle, "/api/v1/selection/toggle", `{"videoId":"a"}`)
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Selected || resp.Selection.Count != 0 {
		t.Fatalf("expected unselected after second toggle, got %+v", resp)
	}
}

func TestSelectionRemove(t *testing.T) {
	board := newBoard(t)
	handler := SelectionHandler{Board: board}

	postJSON(t, handler.Add, "/api/v1/selection/add", `{"videoId":"a"}`)
	postJSON(t, handler.Add, "/api/v1/selection/add", `{"videoId":"b"}`)

	rec := postJSON(t, handler.Remove, "/api/v1/selection/remove", `{"videoId":"a"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if s := decodeState(t, rec); s.Count != 1 || s.Videos[0].VideoID != "b" {
		t.Fatalf("unexpected state %+v", s)
	}
}

func TestSelectionSelectAll(t *testing.T) {
	handler := SelectionHandler{Board: newBoard(t)}

	postJSON(t, handler.Add, "/api/v1/selection/add", `{"videoId":"a"}`)

	rec := postJSON(t, handler.SelectAll, "/api/v1/selection/all",
		`{"videos":[{"videoId":"a"},{"videoId":"b"},{"videoId":"b"},{"videoId":"c"}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if s := decodeState(t, rec); s.Count != 3 {
		t.Fatalf("expected deduplicated merge of 3, got %+v", s)
	}
}

func TestSelectionSelectAllRequiresVideos(t *testing.T) {
	handler := SelectionHandler{Board: newBoard(t)}

	rec := postJSON(t, handler.SelectAll, "/api/v1/selection/all", `{"videos":[]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestSelectionClear(t *testing.T) {
	handler := SelectionHandler{Board: newBoard(t)}

	postJSON(t, handler.Add, "/api/v1/selection/add", `{"videoId":"a"}`)

	rec := httptest.NewRecorder()
	handler.Handle(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/selection", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if s := decodeState(t, rec); s.Count != 0 {
		t.Fatalf("expected empty selection, got %+v", s)
	}
}
