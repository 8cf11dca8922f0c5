package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/vidlens/backend/internal/models"
)

func sampleVideos() []models.Video {
	return []models.Video{
		{
			VideoID:      "a1",
			Title:        "First, with a comma",
			ChannelTitle: "Chan A",
			ViewCount:    1000,
			LikeCount:    40,
			CommentCount: 10,
			PublishedAt:  time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
			Duration:     "PT4M13S",
			Category:     "Education",
			Tags:         []string{"go", "tutorial"},
		},
		{
			VideoID:      "b2",
			Title:        "Second",
			ChannelTitle: "Chan B",
			ViewCount:    0,
			LikeCount:    5,
			CommentCount: 5,
		},
	}
}

func TestBuildCSV(t *testing.T) {
	data, err := BuildCSV(sampleVideos())
	if err != nil {
		t.Fatalf("build csv: %v", err)
	}

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header plus 2 rows got %d", len(records))
	}

	header := strings.Join(records[0], ",")
	want := "videoId,title,channel,views,likes,comments,engagementRate,duration,publishedAt,category,tags"
	if header != want {
		t.Fatalf("unexpected header %q", header)
	}

	first := records[1]
	if first[0] != "a1" || first[1] != "First, with a comma" {
		t.Fatalf("unexpected first row %v", first)
	}
	if first[6] != "5.00" {
		t.Fatalf("expected engagement 5.00 got %q", first[6])
	}
	if first[8] != "2024-03-01T12:00:00Z" {
		t.Fatalf("unexpected publishedAt %q", first[8])
	}
	if first[10] != "go|tutorial" {
		t.Fatalf("unexpected tags %q", first[10])
	}

	// Zero views yields zero engagement, not a division error.
	if records[2][6] != "0.00" {
		t.Fatalf("expected 0.00 engagement got %q", records[2][6])
	}
	if records[2][8] != "" {
		t.Fatalf("expected empty publishedAt got %q", records[2][8])
	}
}

func TestBuildCSVEmptySelection(t *testing.T) {
	data, err := BuildCSV(nil)
	if err != nil {
		t.Fatalf("build csv: %v", err)
	}
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected header only got %d rows", len(records))
	}
}

func TestBuildPrintable(t *testing.T) {
	vids := sampleVideos()
	vids[0].Title = `<script>alert("x")</script>`

	data, err := BuildPrintable(vids, time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("build printable: %v", err)
	}
	doc := string(data)

	if !strings.Contains(doc, "window.print()") {
		t.Fatal("expected print trigger in document")
	}
	if strings.Contains(doc, "<script>alert") {
		t.Fatal("video title must be escaped")
	}
	if !strings.Contains(doc, "Chan A") || !strings.Contains(doc, "2 videos") {
		t.Fatal("expected report body content")
	}
}

func TestFilename(t *testing.T) {
	now := time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)
	if got := Filename(models.ExportKindCSV, now); got != "youtube-analytics-2024-03-02.csv" {
		t.Fatalf("unexpected csv filename %q", got)
	}
	if got := Filename(models.ExportKindPrint, now); got != "youtube-analytics-2024-03-02.html" {
		t.Fatalf("unexpected print filename %q", got)
	}
}

type stubStorage struct {
	mu    sync.Mutex
	saved map[string][]byte
	err   error
}

func (s *stubStorage) Save(_ context.Context, name string, r io.Reader) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saved == nil {
		s.saved = map[string][]byte{}
	}
	s.saved[name] = data
	return "https://cdn.example.com/" + name, nil
}

type stubUpdater struct {
	mu     sync.Mutex
	ready  map[string]string
	failed map[string]bool
}

func (u *stubUpdater) MarkReady(_ context.Context, id, location string, _ int64) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.ready == nil {
		u.ready = map[string]string{}
	}
	u.ready[id] = location
	return nil
}

func (u *stubUpdater) MarkFailed(_ context.Context, id string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.failed == nil {
		u.failed = map[string]bool{}
	}
	u.failed[id] = true
	return nil
}

func TestArchiverUploadsAndMarksReady(t *testing.T) {
	storage := &stubStorage{}
	updater := &stubUpdater{}
	arch := NewArchiver(storage, updater, ArchiverConfig{Workers: 1}, nil)

	artifact := models.ExportArtifact{ID: "art-1", Kind: models.ExportKindCSV}
	if err := arch.Enqueue(context.Background(), artifact, []byte("videoId\n")); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := arch.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	if loc := updater.ready["art-1"]; loc != "https://cdn.example.com/exports/art-1.csv" {
		t.Fatalf("unexpected location %q", loc)
	}
	if _, ok := storage.saved["exports/art-1.csv"]; !ok {
		t.Fatal("expected document uploaded")
	}
}

func TestArchiverMarksFailedOnStorageError(t *testing.T) {
	storage := &stubStorage{err: errors.New("bucket gone")}
	updater := &stubUpdater{}
	arch := NewArchiver(storage, updater, ArchiverConfig{Workers: 1}, nil)

	artifact := models.ExportArtifact{ID: "art-2", Kind: models.ExportKindPrint}
	if err := arch.Enqueue(context.Background(), artifact, []byte("<html>")); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := arch.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	if !updater.failed["art-2"] {
		t.Fatal("expected artifact marked failed")
	}
}

func TestArchiverEnqueueDuringShutdownDoesNotPanic(t *testing.T) {
	arch := NewArchiver(&stubStorage{}, &stubUpdater{}, ArchiverConfig{Workers: 2}, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			artifact := models.ExportArtifact{ID: fmt.Sprintf("race-%d", i), Kind: models.ExportKindCSV}
			// Rejections are expected once shutdown wins the race; only a
			// panic on the jobs channel would fail this test.
			_ = arch.Enqueue(context.Background(), artifact, []byte("videoId\n"))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := arch.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	<-done
}

func TestArchiverRejectsAfterShutdown(t *testing.T) {
	arch := NewArchiver(&stubStorage{}, &stubUpdater{}, ArchiverConfig{}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := arch.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	err := arch.Enqueue(context.Background(), models.ExportArtifact{ID: "late"}, nil)
	if err == nil {
		t.Fatal("expected enqueue to fail after shutdown")
	}
}
