package quota

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/vidlens/backend/internal/state"
)

func newTestTracker(t *testing.T, limit int) *Tracker {
	t.Helper()
	st := state.NewFile(filepath.Join(t.TempDir(), "state.json"))
	return NewTracker(st, limit)
}

func TestSpendCountsDown(t *testing.T) {
	tr := newTestTracker(t, 3)

	for i := 0; i < 3; i++ {
		if err := tr.Spend(); err != nil {
			t.Fatalf("spend %d: %v", i, err)
		}
	}
	if tr.Remaining() != 0 {
		t.Fatalf("expected 0 remaining got %d", tr.Remaining())
	}
	if err := tr.Spend(); err != ErrExhausted {
		t.Fatalf("expected ErrExhausted got %v", err)
	}
	if tr.Used() != 3 {
		t.Fatalf("exhausted spend must not consume, used %d", tr.Used())
	}
}

func TestRolloverAtUTCMidnight(t *testing.T) {
	tr := newTestTracker(t, 2)

	day1 := time.Date(2024, 6, 1, 23, 50, 0, 0, time.UTC)
	tr.WithNowFunc(func() time.Time { return day1 })

	if err := tr.Spend(); err != nil {
		t.Fatalf("spend: %v", err)
	}
	if err := tr.Spend(); err != nil {
		t.Fatalf("spend: %v", err)
	}
	if err := tr.Spend(); err != ErrExhausted {
		t.Fatalf("expected ErrExhausted got %v", err)
	}

	// Twenty minutes later it is a new UTC day.
	tr.WithNowFunc(func() time.Time { return day1.Add(20 * time.Minute) })
	if tr.Remaining() != 2 {
		t.Fatalf("expected full allowance after rollover got %d", tr.Remaining())
	}
	if err := tr.Spend(); err != nil {
		t.Fatalf("spend after rollover: %v", err)
	}
}

func TestDefaultLimit(t *testing.T) {
	tr := newTestTracker(t, 0)
	if tr.Limit() != DefaultDailyLimit {
		t.Fatalf("expected default limit %d got %d", DefaultDailyLimit, tr.Limit())
	}
}

func TestTrackerSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	tr := NewTracker(state.NewFile(path), 10).WithNowFunc(func() time.Time { return now })
	if err := tr.Spend(); err != nil {
		t.Fatalf("spend: %v", err)
	}
	if err := tr.Spend(); err != nil {
		t.Fatalf("spend: %v", err)
	}

	reloaded := NewTracker(state.NewFile(path), 10).WithNowFunc(func() time.Time { return now })
	if reloaded.Used() != 2 {
		t.Fatalf("expected 2 used after reload got %d", reloaded.Used())
	}
}

func TestResetsAt(t *testing.T) {
	tr := newTestTracker(t, 5)
	tr.WithNowFunc(func() time.Time {
		return time.Date(2024, 6, 1, 15, 30, 0, 0, time.UTC)
	})

	want := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)
	if got := tr.ResetsAt(); !got.Equal(want) {
		t.Fatalf("expected reset at %v got %v", want, got)
	}
}
