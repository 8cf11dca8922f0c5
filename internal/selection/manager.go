package selection

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/vidlens/backend/internal/models"
)

// SnapshotTTL is how long a persisted snapshot stays loadable.
const SnapshotTTL = 24 * time.Hour

// Manager owns the selection board: an ordered set of videos keyed by
// normalized id plus the metadata of the search they came from. At most one
// entry exists per id. Every mutation persists a fresh snapshot through the
// configured store.
type Manager struct {
	mu     sync.Mutex
	videos []models.Video
	meta   models.SearchMetadata

	store Store
	now   func() time.Time
}

// NewManager constructs an empty board persisting through store.
func NewManager(store Store) *Manager {
	if store == nil {
		panic("selection: store must not be nil")
	}
	return &Manager{
		videos: make([]models.Video, 0),
		store:  store,
		now:    time.Now,
	}
}

// WithNowFunc overrides the time source. Useful for tests.
func (m *Manager) WithNowFunc(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Restore loads the persisted snapshot. Snapshots past their expiry, or
// malformed ones, are discarded and the board starts empty.
func (m *Manager) Restore(ctx context.Context) error {
	snap, err := m.store.Load(ctx)
	if err != nil {
		if errors.Is(err, ErrSnapshotNotFound) {
			return nil
		}
		return err
	}

	if !snap.ExpiresAt.After(m.now()) {
		_ = m.store.Delete(ctx)
		return nil
	}

	m.mu.Lock()
	m.videos = append(m.videos[:0], snap.SelectedVideos...)
	m.meta = models.SearchMetadata{
		Query:        snap.SearchQuery,
		Type:         snap.SearchType,
		TotalResults: snap.TotalResults,
	}
	m.mu.Unlock()
	return nil
}

// Add appends the video unless one with the same id is already selected.
func (m *Manager) Add(ctx context.Context, v models.Video) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.indexLocked(v.VideoID) >= 0 {
		return nil
	}
	m.videos = append(m.videos, v)
	return m.persistLocked(ctx)
}

// Remove drops every entry with the given id.
func (m *Manager) Remove(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.videos[:0]
	for _, v := range m.videos {
		if v.VideoID != id {
			kept = append(kept, v)
		}
	}
	m.videos = kept
	return m.persistLocked(ctx)
}

// Toggle removes the video when present and adds it otherwise: exactly one
// transition per call. It reports whether the video is selected afterwards.
func (m *Manager) Toggle(ctx context.Context, v models.Video) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if idx := m.indexLocked(v.VideoID); idx >= 0 {
		m.videos = append(m.videos[:idx], m.videos[idx+1:]...)
		return false, m.persistLocked(ctx)
	}
	m.videos = append(m.videos, v)
	return true, m.persistLocked(ctx)
}

// SelectAll merges the given videos into the selection. Ids already
// selected are skipped, and duplicates within the input land exactly once.
func (m *Manager) SelectAll(ctx context.Context, vs []models.Video) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, v := range vs {
		if m.indexLocked(v.VideoID) >= 0 {
			continue
		}
		m.videos = append(m.videos, v)
	}
	return m.persistLocked(ctx)
}

// Clear resets the selection and search metadata and removes the persisted
// snapshot.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.videos = m.videos[:0]
	m.meta = models.SearchMetadata{}
	return m.store.Delete(ctx)
}

// SetSearchMetadata overwrites the remembered search description.
func (m *Manager) SetSearchMetadata(ctx context.Context, query, searchType string, total int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.meta = models.SearchMetadata{Query: query, Type: searchType, TotalResults: total}
	return m.persistLocked(ctx)
}

// IsSelected reports membership for a normalized id.
func (m *Manager) IsSelected(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.indexLocked(id) >= 0
}

// Count returns the number of selected videos.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.videos)
}

// HasSelection reports whether anything is selected.
func (m *Manager) HasSelection() bool {
	return m.Count() > 0
}

// IDs returns the selected ids in selection order.
func (m *Manager) IDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, len(m.videos))
	for i, v := range m.videos {
		ids[i] = v.VideoID
	}
	return ids
}

// Videos returns a copy of the selected videos in selection order.
func (m *Manager) Videos() []models.Video {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Video, len(m.videos))
	copy(out, m.videos)
	return out
}

// Metadata returns the remembered search description.
func (m *Manager) Metadata() models.SearchMetadata {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.meta
}

// AllSelected reports whether every input video is selected. An empty
// input reports false, never vacuously true.
func (m *Manager) AllSelected(vs []models.Video) bool {
	if len(vs) == 0 {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, v := range vs {
		if m.indexLocked(v.VideoID) < 0 {
			return false
		}
	}
	return true
}

func (m *Manager) indexLocked(id string) int {
	for i, v := range m.videos {
		if v.VideoID == id {
			return i
		}
	}
	return -1
}

func (m *Manager) persistLocked(ctx context.Context) error {
	now := m.now()
	snap := models.SelectionSnapshot{
		SelectedVideos: append([]models.Video{}, m.videos...),
		SearchQuery:    m.meta.Query,
		SearchType:     m.meta.Type,
		TotalResults:   m.meta.TotalResults,
		Timestamp:      now,
		ExpiresAt:      now.Add(SnapshotTTL),
	}
	return m.store.Save(ctx, snap)
}
