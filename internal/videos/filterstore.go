package videos

import (
	"sync"

	"github.com/vidlens/backend/internal/models"
	"github.com/vidlens/backend/internal/state"
)

// FilterStore persists the user's advanced filters across restarts.
type FilterStore struct {
	mu      sync.Mutex
	current models.AdvancedFilters

	state *state.File
}

// NewFilterStore returns a FilterStore preloaded from the state file.
func NewFilterStore(st *state.File) *FilterStore {
	fs := &FilterStore{state: st}
	var f models.AdvancedFilters
	if st.Get(state.KeyFilters, &f) {
		fs.current = f
	}
	return fs
}

// Get returns the active filters.
func (fs *FilterStore) Get() models.AdvancedFilters {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.current
}

// Set replaces and persists the active filters.
func (fs *FilterStore) Set(f models.AdvancedFilters) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.current = f
	return fs.state.Set(state.KeyFilters, f)
}

// Reset restores the defaults and removes the persisted entry.
func (fs *FilterStore) Reset() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.current = models.AdvancedFilters{}
	return fs.state.Delete(state.KeyFilters)
}
