package models

import "time"

// Video is the flat record the dashboard works with once an upstream payload
// has been normalized. Counts are absolute totals as reported by YouTube.
type Video struct {
	VideoID      string    `json:"videoId"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	ChannelID    string    `json:"channelId,omitempty"`
	ChannelTitle string    `json:"channelTitle"`
	ViewCount    int64     `json:"viewCount"`
	LikeCount    int64     `json:"likeCount"`
	CommentCount int64     `json:"commentCount"`
	PublishedAt  time.Time `json:"publishedAt"`
	Duration     string    `json:"duration,omitempty"`
	Category     string    `json:"category,omitempty"`
	Tags         []string  `json:"tags,omitempty"`
	Thumbnail    string    `json:"thumbnail,omitempty"`

	// EngagementRate is the upstream-precomputed percentage when present.
	// Zero means "not provided"; derived metrics fall back to computing it.
	EngagementRate float64 `json:"engagementRate,omitempty"`
}

// Channel summarises a YouTube channel lookup.
type Channel struct {
	ChannelID   string `json:"channelId"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Subscribers int64  `json:"subscriberCount"`
	ViewCount   int64  `json:"viewCount"`
	VideoCount  int64  `json:"videoCount"`
	Thumbnail   string `json:"thumbnail,omitempty"`
}

// SearchMetadata describes the most recent search the selection belongs to.
type SearchMetadata struct {
	Query        string `json:"query"`
	Type         string `json:"type"`
	TotalResults int64  `json:"totalResults"`
}

// AdvancedFilters is the user-editable predicate narrowing a result set.
type AdvancedFilters struct {
	MinViews       int64     `json:"minViews,omitempty"`
	MinLikes       int64     `json:"minLikes,omitempty"`
	MinComments    int64     `json:"minComments,omitempty"`
	PublishedAfter time.Time `json:"publishedAfter,omitempty"`
	Category       string    `json:"category,omitempty"`
	Duration       string    `json:"duration,omitempty"`
	MaxResults     int       `json:"maxResults,omitempty"`
}

// PerformanceSample records one completed upstream HTTP exchange.
type PerformanceSample struct {
	URL       string        `json:"url"`
	Method    string        `json:"method"`
	Status    int           `json:"status"`
	Duration  time.Duration `json:"duration"`
	Timestamp time.Time     `json:"timestamp"`
	Error     string        `json:"error,omitempty"`
}

// HistoryEntry is one remembered search.
type HistoryEntry struct {
	Query string    `json:"query"`
	Type  string    `json:"type"`
	At    time.Time `json:"at"`
}

// SelectionSnapshot is the persisted form of the selection board.
type SelectionSnapshot struct {
	SelectedVideos []Video   `json:"selectedVideos"`
	SearchQuery    string    `json:"searchQuery"`
	SearchType     string    `json:"searchType"`
	TotalResults   int64     `json:"totalResults"`
	Timestamp      time.Time `json:"timestamp"`
	ExpiresAt      time.Time `json:"expiresAt"`
}

// ExportArtifact tracks a generated export document through archival.
type ExportArtifact struct {
	ID        string
	Kind      string
	Status    string
	Location  string
	Size      int64
	CreatedAt time.Time
}

const (
	ExportKindCSV   = "csv"
	ExportKindPrint = "print"

	ExportStatusPending = "pending"
	ExportStatusReady   = "ready"
	ExportStatusFailed  = "failed"
)
