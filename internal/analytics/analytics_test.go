package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/vidlens/backend/internal/models"
)

func TestEngagementRateZeroViews(t *testing.T) {
	v := models.Video{LikeCount: 10, CommentCount: 5, ViewCount: 0}
	if got := EngagementRate(v); got != 0 {
		t.Fatalf("expected 0 for zero views got %v", got)
	}
}

func TestEngagementRateComputed(t *testing.T) {
	v := models.Video{ViewCount: 1000, LikeCount: 40, CommentCount: 10}
	if got := EngagementRate(v); got != 5 {
		t.Fatalf("expected 5%% got %v", got)
	}
}

func TestEngagementRatePrefersPrecomputed(t *testing.T) {
	v := models.Video{ViewCount: 1000, LikeCount: 40, CommentCount: 10, EngagementRate: 7.25}
	if got := EngagementRate(v); got != 7.25 {
		t.Fatalf("expected precomputed 7.25 got %v", got)
	}
}

func TestPearsonFixtures(t *testing.T) {
	cases := []struct {
		name string
		x, y []float64
		want float64
	}{
		{"perfect positive", []float64{1, 2, 3}, []float64{1, 2, 3}, 1},
		{"perfect negative", []float64{1, 2, 3}, []float64{3, 2, 1}, -1},
		{"degenerate constant", []float64{1, 1, 1}, []float64{1, 2, 3}, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Pearson(tc.x, tc.y)
			if err != nil {
				t.Fatalf("pearson: %v", err)
			}
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("expected %v got %v", tc.want, got)
			}
		})
	}
}

func TestPearsonErrors(t *testing.T) {
	if _, err := Pearson([]float64{1, 2}, []float64{1}); err != ErrSeriesLengthMismatch {
		t.Fatalf("expected length mismatch got %v", err)
	}
	if _, err := Pearson([]float64{1}, []float64{1}); err != ErrSeriesTooShort {
		t.Fatalf("expected too short got %v", err)
	}
}

func TestSeries(t *testing.T) {
	videos := []models.Video{
		{ViewCount: 100, LikeCount: 4, CommentCount: 1},
		{ViewCount: 200, LikeCount: 8, CommentCount: 2},
	}

	views, err := Series(videos, "views")
	if err != nil {
		t.Fatalf("series: %v", err)
	}
	if views[0] != 100 || views[1] != 200 {
		t.Fatalf("unexpected views series %v", views)
	}

	engagement, err := Series(videos, "engagement")
	if err != nil {
		t.Fatalf("series: %v", err)
	}
	if engagement[0] != 5 || engagement[1] != 5 {
		t.Fatalf("unexpected engagement series %v", engagement)
	}

	if _, err := Series(videos, "subscribers"); err == nil {
		t.Fatal("expected error for unknown series name")
	}
}

func day(weekday time.Weekday) time.Time {
	// 2024-01-01 is a Monday; offset to reach the requested weekday.
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	offset := (int(weekday) - int(base.Weekday()) + 7) % 7
	return base.AddDate(0, 0, offset)
}

func TestSummarize(t *testing.T) {
	videos := []models.Video{
		{VideoID: "a", ViewCount: 100, LikeCount: 10, CommentCount: 0, PublishedAt: day(time.Friday)},
		{VideoID: "b", ViewCount: 300, LikeCount: 30, CommentCount: 0, PublishedAt: day(time.Monday)},
		{VideoID: "c", ViewCount: 200, LikeCount: 0, CommentCount: 20, PublishedAt: day(time.Friday)},
	}

	s := Summarize(videos)

	if s.Count != 3 || s.TotalViews != 600 || s.TotalLikes != 40 || s.TotalComments != 20 {
		t.Fatalf("unexpected totals %+v", s)
	}
	if s.AverageViews != 200 {
		t.Fatalf("expected average views 200 got %v", s.AverageViews)
	}
	if s.MostViewed == nil || s.MostViewed.VideoID != "b" {
		t.Fatalf("unexpected most viewed %+v", s.MostViewed)
	}
	if s.TopPublishDay != "Friday" {
		t.Fatalf("expected Friday got %q", s.TopPublishDay)
	}
	if math.Abs(s.AverageEngagement-10) > 1e-9 {
		t.Fatalf("expected average engagement 10 got %v", s.AverageEngagement)
	}
}

func TestSummarizeTieResolution(t *testing.T) {
	videos := []models.Video{
		{VideoID: "first", ViewCount: 500, PublishedAt: day(time.Tuesday)},
		{VideoID: "second", ViewCount: 500, PublishedAt: day(time.Wednesday)},
	}

	s := Summarize(videos)
	if s.MostViewed.VideoID != "first" {
		t.Fatalf("ties must resolve to first encountered, got %s", s.MostViewed.VideoID)
	}
	if s.TopPublishDay != "Tuesday" {
		t.Fatalf("day ties must resolve to first encountered, got %s", s.TopPublishDay)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.Count != 0 || s.MostViewed != nil || s.TopPublishDay != "" {
		t.Fatalf("unexpected empty summary %+v", s)
	}
}
