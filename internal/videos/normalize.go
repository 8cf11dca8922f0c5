package videos

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/vidlens/backend/internal/models"
)

// flexInt decodes a count that may arrive as a JSON number or as a string,
// which is how the YouTube statistics block reports totals.
type flexInt int64

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexInt(n)
	return nil
}

// flexTime decodes an RFC 3339 timestamp, degrading to zero on any other
// shape rather than failing the whole record.
type flexTime time.Time

func (f *flexTime) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		*f = flexTime(time.Time{})
		return nil
	}
	*f = flexTime(t)
	return nil
}

type thumbnailSet struct {
	Default struct {
		URL string `json:"url"`
	} `json:"default"`
	Medium struct {
		URL string `json:"url"`
	} `json:"medium"`
	High struct {
		URL string `json:"url"`
	} `json:"high"`
}

// best prefers the largest thumbnail available.
func (t thumbnailSet) best() string {
	switch {
	case t.High.URL != "":
		return t.High.URL
	case t.Medium.URL != "":
		return t.Medium.URL
	default:
		return t.Default.URL
	}
}

// RawVideo tolerates every shape a video record may arrive in: the flat
// dashboard shape with top-level counts, and the legacy nested
// snippet/statistics shape where the id may itself be an object.
type RawVideo struct {
	VideoID        string          `json:"videoId"`
	ID             json.RawMessage `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	ChannelID      string          `json:"channelId"`
	ChannelTitle   string          `json:"channelTitle"`
	ViewCount      flexInt         `json:"viewCount"`
	LikeCount      flexInt         `json:"likeCount"`
	CommentCount   flexInt         `json:"commentCount"`
	PublishedAt    flexTime        `json:"publishedAt"`
	Duration       string          `json:"duration"`
	Category       string          `json:"category"`
	Tags           []string        `json:"tags"`
	Thumbnails     thumbnailSet    `json:"thumbnails"`
	EngagementRate float64         `json:"engagementRate"`

	Snippet *struct {
		Title        string       `json:"title"`
		Description  string       `json:"description"`
		ChannelID    string       `json:"channelId"`
		ChannelTitle string       `json:"channelTitle"`
		PublishedAt  flexTime     `json:"publishedAt"`
		CategoryID   string       `json:"categoryId"`
		Tags         []string     `json:"tags"`
		Thumbnails   thumbnailSet `json:"thumbnails"`
	} `json:"snippet"`
	Statistics *struct {
		ViewCount    flexInt `json:"viewCount"`
		LikeCount    flexInt `json:"likeCount"`
		CommentCount flexInt `json:"commentCount"`
	} `json:"statistics"`
	ContentDetails *struct {
		Duration string `json:"duration"`
	} `json:"contentDetails"`
}

// NormalizeID is the single source of truth for video identity. It tries
// the flat videoId field, then a nested id.videoId, then a plain string id,
// in that order, and returns "" when none yields an identifier.
func NormalizeID(raw RawVideo) string {
	if raw.VideoID != "" {
		return raw.VideoID
	}
	if len(raw.ID) == 0 {
		return ""
	}

	var nested struct {
		VideoID string `json:"videoId"`
	}
	if err := json.Unmarshal(raw.ID, &nested); err == nil && nested.VideoID != "" {
		return nested.VideoID
	}

	var plain string
	if err := json.Unmarshal(raw.ID, &plain); err == nil {
		return plain
	}
	return ""
}

// Normalize flattens a raw record into the dashboard model. It reports
// false when no identity can be derived; such records are skipped rather
// than failing the batch.
func (raw RawVideo) Normalize() (models.Video, bool) {
	id := NormalizeID(raw)
	if id == "" {
		return models.Video{}, false
	}

	v := models.Video{
		VideoID:        id,
		Title:          raw.Title,
		Description:    raw.Description,
		ChannelID:      raw.ChannelID,
		ChannelTitle:   raw.ChannelTitle,
		ViewCount:      int64(raw.ViewCount),
		LikeCount:      int64(raw.LikeCount),
		CommentCount:   int64(raw.CommentCount),
		PublishedAt:    time.Time(raw.PublishedAt),
		Duration:       raw.Duration,
		Category:       raw.Category,
		Tags:           raw.Tags,
		Thumbnail:      raw.Thumbnails.best(),
		EngagementRate: raw.EngagementRate,
	}

	if s := raw.Snippet; s != nil {
		if v.Title == "" {
			v.Title = s.Title
		}
		if v.Description == "" {
			v.Description = s.Description
		}
		if v.ChannelID == "" {
			v.ChannelID = s.ChannelID
		}
		if v.ChannelTitle == "" {
			v.ChannelTitle = s.ChannelTitle
		}
		if v.PublishedAt.IsZero() {
			v.PublishedAt = time.Time(s.PublishedAt)
		}
		if len(v.Tags) == 0 {
			v.Tags = s.Tags
		}
		if v.Thumbnail == "" {
			v.Thumbnail = s.Thumbnails.best()
		}
	}
	if st := raw.Statistics; st != nil {
		if v.ViewCount == 0 {
			v.ViewCount = int64(st.ViewCount)
		}
		if v.LikeCount == 0 {
			v.LikeCount = int64(st.LikeCount)
		}
		if v.CommentCount == 0 {
			v.CommentCount = int64(st.CommentCount)
		}
	}
	if cd := raw.ContentDetails; cd != nil && v.Duration == "" {
		v.Duration = cd.Duration
	}

	return v, true
}

// NormalizeAll flattens a batch, dropping records without identity.
func NormalizeAll(raws []RawVideo) []models.Video {
	out := make([]models.Video, 0, len(raws))
	for _, raw := range raws {
		if v, ok := raw.Normalize(); ok {
			out = append(out, v)
		}
	}
	return out
}
