package handlers

import (
	"context"
	"time"

	"github.com/vidlens/backend/internal/events"
	"github.com/vidlens/backend/internal/models"
	"github.com/vidlens/backend/internal/upstream"
)

// SessionService drives the upstream guest-session lifecycle.
type SessionService interface {
	EnsureSession(ctx context.Context) error
	CurrentSession() upstream.Session
	GuestLogin(ctx context.Context) (string, error)
	Logout(ctx context.Context)
}

// SearchService runs upstream searches and trending lookups.
type SearchService interface {
	Search(ctx context.Context, query, searchType string, maxResults int) ([]models.Video, models.SearchMetadata, error)
	Trending(ctx context.Context, region, category string) ([]models.Video, error)
}

// DetailProvider resolves one video's full record.
type DetailProvider interface {
	Video(ctx context.Context, id string) (models.Video, error)
}

// ChannelProvider resolves one channel's summary.
type ChannelProvider interface {
	Channel(ctx context.Context, id string) (models.Channel, error)
}

// SelectionBoard captures the selection operations exposed over HTTP.
type SelectionBoard interface {
	Add(ctx context.Context, v models.Video) error
	Remove(ctx context.Context, id string) error
	Toggle(ctx context.Context, v models.Video) (bool, error)
	SelectAll(ctx context.Context, vs []models.Video) error
	Clear(ctx context.Context) error
	SetSearchMetadata(ctx context.Context, query, searchType string, total int64) error
	Videos() []models.Video
	Metadata() models.SearchMetadata
	Count() int
	IsSelected(id string) bool
}

// HistoryLog remembers recent searches.
type HistoryLog interface {
	Record(query, searchType string) error
	Entries() []models.HistoryEntry
	Clear() error
}

// QuotaTracker meters upstream searches against the daily allowance.
type QuotaTracker interface {
	Spend() error
	Used() int
	Limit() int
	Remaining() int
	ResetsAt() time.Time
}

// FilterStore persists the user's advanced filters.
type FilterStore interface {
	Get() models.AdvancedFilters
	Set(models.AdvancedFilters) error
	Reset() error
}

// PerfSource exposes the retained upstream request samples.
type PerfSource interface {
	Snapshot() []models.PerformanceSample
	Reset()
}

// NotificationFeed exposes recent pipeline events.
type NotificationFeed interface {
	Recent() []events.Event
	Clear()
}

// ExportArtifacts records generated export documents. Optional: nil when no
// database is configured.
type ExportArtifacts interface {
	Create(ctx context.Context, artifact models.ExportArtifact) error
	List(ctx context.Context, limit int) ([]models.ExportArtifact, error)
}

// ExportArchiver schedules background archival of export documents.
// Optional: nil when no object store is configured.
type ExportArchiver interface {
	Enqueue(ctx context.Context, artifact models.ExportArtifact, content []byte) error
}
