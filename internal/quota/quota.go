package quota

import (
	"errors"
	"sync"
	"time"

	"github.com/vidlens/backend/internal/state"
)

// DefaultDailyLimit is the number of upstream searches allowed per UTC day
// when no override is configured.
const DefaultDailyLimit = 100

// ErrExhausted indicates the daily allowance is spent.
var ErrExhausted = errors.New("daily search quota exhausted")

type record struct {
	Used int    `json:"used"`
	Day  string `json:"day"`
}

// Tracker counts upstream searches against a daily allowance. The counter
// resets at UTC midnight and persists through the state file.
type Tracker struct {
	mu    sync.Mutex
	used  int
	day   string
	limit int

	state *state.File
	now   func() time.Time
}

// NewTracker returns a Tracker with the given daily limit, preloaded from
// the state file. A non-positive limit falls back to DefaultDailyLimit.
func NewTracker(st *state.File, limit int) *Tracker {
	if limit <= 0 {
		limit = DefaultDailyLimit
	}
	t := &Tracker{limit: limit, state: st, now: time.Now}

	var rec record
	if st.Get(state.KeyQuota, &rec) {
		t.used = rec.Used
		t.day = rec.Day
	}
	return t
}

// WithNowFunc overrides the time source. Useful for tests.
func (t *Tracker) WithNowFunc(now func() time.Time) *Tracker {
	t.now = now
	return t
}

// Spend consumes one unit of the allowance. It returns ErrExhausted, without
// consuming, once the day's allowance is gone.
func (t *Tracker) Spend() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.rolloverLocked()
	if t.used >= t.limit {
		return ErrExhausted
	}
	t.used++
	return t.persistLocked()
}

// Remaining reports how many units are left today.
func (t *Tracker) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.rolloverLocked()
	return t.limit - t.used
}

// Used reports how many units today has consumed.
func (t *Tracker) Used() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.rolloverLocked()
	return t.used
}

// Limit returns the configured daily allowance.
func (t *Tracker) Limit() int {
	return t.limit
}

// ResetsAt returns the next UTC midnight, when the counter rolls over.
func (t *Tracker) ResetsAt() time.Time {
	now := t.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
}

func (t *Tracker) rolloverLocked() {
	today := t.now().UTC().Format("2006-01-02")
	if t.day != today {
		t.day = today
		t.used = 0
	}
}

func (t *Tracker) persistLocked() error {
	return t.state.Set(state.KeyQuota, record{Used: t.used, Day: t.day})
}
