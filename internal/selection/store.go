package selection

import (
	"context"
	"errors"

	"github.com/vidlens/backend/internal/models"
	"github.com/vidlens/backend/internal/state"
)

// ErrSnapshotNotFound indicates no usable snapshot is persisted. Expired
// and malformed snapshots surface the same way: as absent.
var ErrSnapshotNotFound = errors.New("selection snapshot not found")

// Store persists selection snapshots so the board survives restarts.
type Store interface {
	Save(ctx context.Context, snap models.SelectionSnapshot) error
	Load(ctx context.Context) (models.SelectionSnapshot, error)
	Delete(ctx context.Context) error
}

// FileStore keeps the snapshot in the JSON state file, the service-side
// analogue of the original browser-storage entry.
type FileStore struct {
	state *state.File
}

// NewFileStore returns a Store backed by the provided state file.
func NewFileStore(st *state.File) *FileStore {
	return &FileStore{state: st}
}

// Save persists the snapshot.
func (s *FileStore) Save(_ context.Context, snap models.SelectionSnapshot) error {
	return s.state.Set(state.KeySelection, snap)
}

// Load retrieves the persisted snapshot. A missing entry, an undecodable
// entry, or one without a selectedVideos array reports ErrSnapshotNotFound.
func (s *FileStore) Load(_ context.Context) (models.SelectionSnapshot, error) {
	var snap models.SelectionSnapshot
	if !s.state.Get(state.KeySelection, &snap) {
		return models.SelectionSnapshot{}, ErrSnapshotNotFound
	}
	if snap.SelectedVideos == nil {
		return models.SelectionSnapshot{}, ErrSnapshotNotFound
	}
	return snap, nil
}

// Delete removes the persisted snapshot.
func (s *FileStore) Delete(_ context.Context) error {
	return s.state.Delete(state.KeySelection)
}

// NewInMemoryStore returns a Store backed by process memory, for tests and
// ephemeral runs.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// InMemoryStore implements Store without persistence.
type InMemoryStore struct {
	snap  models.SelectionSnapshot
	saved bool
}

// Save records the snapshot.
func (s *InMemoryStore) Save(_ context.Context, snap models.SelectionSnapshot) error {
	s.snap = snap
	s.saved = true
	return nil
}

// Load returns the recorded snapshot, if any.
func (s *InMemoryStore) Load(_ context.Context) (models.SelectionSnapshot, error) {
	if !s.saved || s.snap.SelectedVideos == nil {
		return models.SelectionSnapshot{}, ErrSnapshotNotFound
	}
	return s.snap, nil
}

// Delete forgets the recorded snapshot.
func (s *InMemoryStore) Delete(_ context.Context) error {
	s.snap = models.SelectionSnapshot{}
	s.saved = false
	return nil
}
