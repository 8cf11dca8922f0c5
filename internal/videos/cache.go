package videos

import (
	"context"
	"sync"
	"time"

	"github.com/vidlens/backend/internal/models"
)

// DetailProvider resolves full video details for a normalized id.
type DetailProvider interface {
	Video(ctx context.Context, id string) (models.Video, error)
}

type cacheEntry struct {
	video   models.Video
	expires time.Time
}

// DetailCache wraps a DetailProvider with a TTL-based in-memory cache keyed
// by normalized video id. Dashboard tabs re-request the same details many
// times; the cache keeps those hits off the upstream quota.
type DetailCache struct {
	base DetailProvider
	ttl  time.Duration

	mu    sync.RWMutex
	items map[string]cacheEntry
}

// NewDetailCache returns a DetailProvider that caches lookups for the
// provided TTL.
func NewDetailCache(base DetailProvider, ttl time.Duration) *DetailCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &DetailCache{
		base:  base,
		ttl:   ttl,
		items: make(map[string]cacheEntry),
	}
}

// Video returns cached details when available, otherwise it delegates to
// the underlying provider and stores the result.
func (c *DetailCache) Video(ctx context.Context, id string) (models.Video, error) {
	if c == nil || c.base == nil {
		return models.Video{}, ErrProviderUnavailable
	}

	now := time.Now()

	c.mu.RLock()
	entry, ok := c.items[id]
	c.mu.RUnlock()
	if ok && now.Before(entry.expires) {
		return entry.video, nil
	}

	video, err := c.base.Video(ctx, id)
	if err != nil {
		return models.Video{}, err
	}

	c.mu.Lock()
	c.items[id] = cacheEntry{video: video, expires: now.Add(c.ttl)}
	c.mu.Unlock()

	return video, nil
}
