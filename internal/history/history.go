package history

import (
	"strings"
	"sync"
	"time"

	"github.com/vidlens/backend/internal/models"
	"github.com/vidlens/backend/internal/state"
)

// MaxEntries caps the remembered search history.
const MaxEntries = 20

// Log remembers recent searches, most recent first. Repeating a query moves
// it to the front instead of duplicating it. The log persists through the
// state file so it survives restarts.
type Log struct {
	mu      sync.Mutex
	entries []models.HistoryEntry

	state *state.File
	now   func() time.Time
}

// NewLog returns a Log backed by the state file, preloaded with whatever
// history the file already holds.
func NewLog(st *state.File) *Log {
	l := &Log{state: st, now: time.Now}
	var entries []models.HistoryEntry
	if st.Get(state.KeyHistory, &entries) {
		if len(entries) > MaxEntries {
			entries = entries[:MaxEntries]
		}
		l.entries = entries
	}
	return l
}

// WithNowFunc overrides the time source. Useful for tests.
func (l *Log) WithNowFunc(now func() time.Time) *Log {
	l.now = now
	return l
}

// Record notes a search. Blank queries are ignored. A query already in the
// log moves to the front with a fresh timestamp; otherwise the new entry is
// prepended and the oldest entry drops once the cap is reached.
func (l *Log) Record(query, searchType string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	kept := make([]models.HistoryEntry, 0, len(l.entries)+1)
	kept = append(kept, models.HistoryEntry{Query: query, Type: searchType, At: l.now()})
	for _, e := range l.entries {
		if strings.EqualFold(e.Query, query) {
			continue
		}
		kept = append(kept, e)
	}
	if len(kept) > MaxEntries {
		kept = kept[:MaxEntries]
	}
	l.entries = kept

	return l.state.Set(state.KeyHistory, l.entries)
}

// Entries returns the history, most recent first.
func (l *Log) Entries() []models.HistoryEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]models.HistoryEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Clear forgets the history.
func (l *Log) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = nil
	return l.state.Delete(state.KeyHistory)
}
