package apiclient

import (
	"sync"

	"github.com/vidlens/backend/internal/models"
)

// DefaultPerfCapacity bounds the number of retained samples.
const DefaultPerfCapacity = 100

// PerfLog is a bounded ring buffer of completed-exchange samples. It is
// constructed once at startup and handed to the pipeline client; it is
// cleared only by an explicit Reset and lives for the whole process.
type PerfLog struct {
	mu      sync.Mutex
	samples []models.PerformanceSample
	start   int
	count   int
}

// NewPerfLog returns a ring buffer retaining the most recent capacity
// samples, evicting the oldest first.
func NewPerfLog(capacity int) *PerfLog {
	if capacity <= 0 {
		capacity = DefaultPerfCapacity
	}
	return &PerfLog{samples: make([]models.PerformanceSample, capacity)}
}

// Append records a sample, evicting the oldest when full.
func (p *PerfLog) Append(sample models.PerformanceSample) {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx := (p.start + p.count) % len(p.samples)
	p.samples[idx] = sample
	if p.count < len(p.samples) {
		p.count++
		return
	}
	p.start = (p.start + 1) % len(p.samples)
}

// Snapshot returns the retained samples, oldest first.
func (p *PerfLog) Snapshot() []models.PerformanceSample {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]models.PerformanceSample, 0, p.count)
	for i := 0; i < p.count; i++ {
		out = append(out, p.samples[(p.start+i)%len(p.samples)])
	}
	return out
}

// Len reports how many samples are currently retained.
func (p *PerfLog) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count
}

// Reset discards all retained samples.
func (p *PerfLog) Reset() {
	p.mu.Lock()
	p.start, p.count = 0, 0
	p.mu.Unlock()
}
