package analytics

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/vidlens/backend/internal/models"
)

var (
	// ErrSeriesLengthMismatch indicates the two series cannot be correlated.
	ErrSeriesLengthMismatch = errors.New("series lengths differ")
	// ErrSeriesTooShort indicates fewer than two points per series.
	ErrSeriesTooShort = errors.New("series needs at least two points")
)

// EngagementRate returns the video's engagement as a percentage. A
// precomputed upstream rate wins when the record carries one; otherwise the
// rate is (likes+comments)/views*100, and 0 when there are no views.
func EngagementRate(v models.Video) float64 {
	if v.EngagementRate > 0 {
		return v.EngagementRate
	}
	if v.ViewCount == 0 {
		return 0
	}
	return float64(v.LikeCount+v.CommentCount) / float64(v.ViewCount) * 100
}

// Pearson computes the Pearson correlation coefficient of two equal-length
// series. A degenerate denominator (either series constant) yields 0
// rather than NaN.
func Pearson(x, y []float64) (float64, error) {
	if len(x) != len(y) {
		return 0, ErrSeriesLengthMismatch
	}
	if len(x) < 2 {
		return 0, ErrSeriesTooShort
	}

	n := float64(len(x))
	var sumX, sumY, sumXY, sumXX, sumYY float64
	for i := range x {
		sumX += x[i]
		sumY += y[i]
		sumXY += x[i] * y[i]
		sumXX += x[i] * x[i]
		sumYY += y[i] * y[i]
	}

	denominator := math.Sqrt((n*sumXX - sumX*sumX) * (n*sumYY - sumY*sumY))
	if denominator == 0 {
		return 0, nil
	}
	return (n*sumXY - sumX*sumY) / denominator, nil
}

// Series extracts a named numeric series from a video set, for correlation
// between dashboard axes.
func Series(videos []models.Video, name string) ([]float64, error) {
	out := make([]float64, len(videos))
	for i, v := range videos {
		switch name {
		case "views":
			out[i] = float64(v.ViewCount)
		case "likes":
			out[i] = float64(v.LikeCount)
		case "comments":
			out[i] = float64(v.CommentCount)
		case "engagement":
			out[i] = EngagementRate(v)
		default:
			return nil, fmt.Errorf("unknown series %q", name)
		}
	}
	return out, nil
}

// Summary aggregates the selected set for the dashboard overview tab.
type Summary struct {
	Count             int           `json:"count"`
	TotalViews        int64         `json:"totalViews"`
	TotalLikes        int64         `json:"totalLikes"`
	TotalComments     int64         `json:"totalComments"`
	AverageViews      float64       `json:"averageViews"`
	AverageEngagement float64       `json:"averageEngagement"`
	MostViewed        *models.Video `json:"mostViewed,omitempty"`
	TopPublishDay     string        `json:"topPublishDay,omitempty"`
}

// Summarize folds the selected set into aggregate statistics. Ties for the
// most-viewed video and the modal publish day resolve to the first
// encountered in iteration order.
func Summarize(videos []models.Video) Summary {
	s := Summary{Count: len(videos)}
	if len(videos) == 0 {
		return s
	}

	var engagementSum float64
	dayCounts := make(map[time.Weekday]int)
	dayOrder := make([]time.Weekday, 0, 7)
	mostViewedIdx := 0

	for i, v := range videos {
		s.TotalViews += v.ViewCount
		s.TotalLikes += v.LikeCount
		s.TotalComments += v.CommentCount
		engagementSum += EngagementRate(v)

		if v.ViewCount > videos[mostViewedIdx].ViewCount {
			mostViewedIdx = i
		}

		if !v.PublishedAt.IsZero() {
			day := v.PublishedAt.Weekday()
			if _, seen := dayCounts[day]; !seen {
				dayOrder = append(dayOrder, day)
			}
			dayCounts[day]++
		}
	}

	s.AverageViews = float64(s.TotalViews) / float64(len(videos))
	s.AverageEngagement = engagementSum / float64(len(videos))

	mv := videos[mostViewedIdx]
	s.MostViewed = &mv

	best := -1
	for _, day := range dayOrder {
		if dayCounts[day] > best {
			best = dayCounts[day]
			s.TopPublishDay = day.String()
		}
	}

	return s
}
