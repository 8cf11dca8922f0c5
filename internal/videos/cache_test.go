package videos

import (
	"context"
	"testing"
	"time"

	"github.com/vidlens/backend/internal/models"
)

type stubDetailProvider struct {
	video models.Video
	err   error
	calls int
}

func (s *stubDetailProvider) Video(context.Context, string) (models.Video, error) {
	s.calls++
	if s.err != nil {
		return models.Video{}, s.err
	}
	return s.video, nil
}

func TestDetailCacheLookup(t *testing.T) {
	base := &stubDetailProvider{video: models.Video{VideoID: "abc", Title: "Test"}}
	cache := NewDetailCache(base, time.Minute)

	ctx := context.Background()

	v, err := cache.Video(ctx, "abc")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if v.Title != "Test" {
		t.Fatalf("unexpected video: %+v", v)
	}
	if base.calls != 1 {
		t.Fatalf("expected base called once got %d", base.calls)
	}

	if _, err := cache.Video(ctx, "abc"); err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if base.calls != 1 {
		t.Fatalf("expected cached result got %d calls", base.calls)
	}
}

func TestDetailCacheErrors(t *testing.T) {
	cache := NewDetailCache(nil, time.Minute)
	if _, err := cache.Video(context.Background(), "abc"); err != ErrProviderUnavailable {
		t.Fatalf("expected provider unavailable got %v", err)
	}

	base := &stubDetailProvider{err: ErrProviderUnavailable}
	cache = NewDetailCache(base, time.Minute)
	if _, err := cache.Video(context.Background(), "abc"); err != ErrProviderUnavailable {
		t.Fatalf("expected provider unavailable got %v", err)
	}
}

func TestDetailCacheExpiry(t *testing.T) {
	base := &stubDetailProvider{video: models.Video{VideoID: "abc"}}
	cache := NewDetailCache(base, time.Millisecond)

	if _, err := cache.Video(context.Background(), "abc"); err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if base.calls != 1 {
		t.Fatalf("expected 1 call got %d", base.calls)
	}

	time.Sleep(2 * time.Millisecond)

	if _, err := cache.Video(context.Background(), "abc"); err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if base.calls != 2 {
		t.Fatalf("expected cache miss after expiry got %d calls", base.calls)
	}
}

func TestDetailCacheDistinctIDs(t *testing.T) {
	base := &stubDetailProvider{video: models.Video{VideoID: "x"}}
	cache := NewDetailCache(base, time.Minute)

	if _, err := cache.Video(context.Background(), "one"); err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if _, err := cache.Video(context.Background(), "two"); err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if base.calls != 2 {
		t.Fatalf("expected separate ids to miss independently got %d calls", base.calls)
	}
}
