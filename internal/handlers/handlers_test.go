package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/vidlens/backend/internal/models"
	"github.com/vidlens/backend/internal/selection"
	"github.com/vidlens/backend/internal/state"
	"github.com/vidlens/backend/internal/upstream"
)

func newBoard(t *testing.T) *selection.Manager {
	t.Helper()
	return selection.NewManager(selection.NewInMemoryStore())
}

func newStateFile(t *testing.T) *state.File {
	t.Helper()
	return state.NewFile(filepath.Join(t.TempDir(), "state.json"))
}

type stubSessions struct {
	session  upstream.Session
	loginErr error
	logins   int
	logouts  int
}

func (s *stubSessions) EnsureSession(context.Context) error { return nil }
func (s *stubSessions) CurrentSession() upstream.Session    { return s.session }
func (s *stubSessions) GuestLogin(context.Context) (string, error) {
	s.logins++
	if s.loginErr != nil {
		return "", s.loginErr
	}
	s.session.Authenticated = true
	return "tok", nil
}
func (s *stubSessions) Logout(context.Context) {
	s.logouts++
	s.session = upstream.Session{}
}

type stubSearch struct {
	videos   []models.Video
	meta     models.SearchMetadata
	err      error
	searches int
}

func (s *stubSearch) Search(_ context.Context, query, searchType string, _ int) ([]models.Video, models.SearchMetadata, error) {
	s.searches++
	if s.err != nil {
		return nil, models.SearchMetadata{}, s.err
	}
	meta := s.meta
	if meta.Query == "" {
		meta = models.SearchMetadata{Query: query, Type: searchType, TotalResults: int64(len(s.videos))}
	}
	return s.videos, meta, nil
}

func (s *stubSearch) Trending(context.Context, string, string) ([]models.Video, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.videos, nil
}

type stubDetails struct {
	video models.Video
	err   error
}

func (s stubDetails) Video(context.Context, string) (models.Video, error) {
	if s.err != nil {
		return models.Video{}, s.err
	}
	return s.video, nil
}

type allowAll struct{}

func (allowAll) Allow(string) bool { return true }

type denyAll struct{}

func (denyAll) Allow(string) bool { return false }

func TestSessionHandlerLifecycle(t *testing.T) {
	sessions := &stubSessions{}
	handler := SessionHandler{Sessions: sessions}

	rec := httptest.NewRecorder()
	handler.Handle(rec, httptest.NewRequest(http.MethodGet, "/api/v1/session", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.Handle(rec, httptest.NewRequest(http.MethodPost, "/api/v1/session", nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", rec.Code)
	}
	if sessions.logins != 1 {
		t.Fatalf("expected 1 login got %d", sessions.logins)
	}

	rec = httptest.NewRecorder()
	handler.Handle(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/session", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", rec.Code)
	}
	if sessions.logouts != 1 {
		t.Fatalf("expected 1 logout got %d", sessions.logouts)
	}

	rec = httptest.NewRecorder()
	handler.Handle(rec, httptest.NewRequest(http.MethodPatch, "/api/v1/session", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 got %d", rec.Code)
	}
}

func TestSessionHandlerLoginFailure(t *testing.T) {
	handler := SessionHandler{Sessions: &stubSessions{loginErr: errors.New("upstream down")}}

	rec := httptest.NewRecorder()
	handler.Handle(rec, httptest.NewRequest(http.MethodPost, "/api/v1/session", nil))
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 got %d", rec.Code)
	}
}
