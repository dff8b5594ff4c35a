// Package cache holds the watchdog's view of monitored resources between
// scheduler ticks. It is the only owner of long-lived host resource handles:
// every handle it takes from enumeration is released exactly once, either
// when a rebuild replaces it, when compaction drops its entry, or at
// shutdown.
package cache

import (
	"log/slog"
	"time"

	"github.com/me/sourcewatch/internal/classify"
	"github.com/me/sourcewatch/pkg/host"
	"github.com/me/sourcewatch/pkg/model"
)

// Entry is one monitored resource reference.
type Entry struct {
	// Resource is the host handle, exclusively owned by the cache.
	Resource host.Resource

	// Spec is the monitored-type descriptor the resource classified as.
	Spec model.MonitoredTypeSpec

	// LastCheckedAt is when a scheduler last checked this entry; zero until
	// the first check after a rebuild.
	LastCheckedAt time.Time

	// Invalid marks an entry whose handle no longer resolves. Set by the
	// scheduler, removed (and the handle released) at the next compaction.
	Invalid bool
}

// Cache is an ordered sequence of entries, rebuilt wholesale on refresh.
// All mutation happens on the single timer-invocation path; the cache itself
// takes no locks.
type Cache struct {
	api       host.ResourceAPI
	registry  *classify.Registry
	logger    *slog.Logger
	entries   []*Entry
	rebuiltAt time.Time
}

// New creates an empty cache.
func New(api host.ResourceAPI, registry *classify.Registry, logger *slog.Logger) *Cache {
	return &Cache{
		api:      api,
		registry: registry,
		logger:   logger.With("component", "cache"),
	}
}

// Rebuild discards the current entries (releasing their handles), enumerates
// all host resources, and stores one fresh entry per classified match, in
// enumeration order. The replacement is unconditional; entries are never
// diffed against the previous set.
func (c *Cache) Rebuild(now time.Time) {
	c.releaseEntries()

	handles := c.api.EnumerateResources()
	entries := make([]*Entry, 0, len(handles))
	for _, h := range handles {
		if h == nil {
			continue
		}
		spec, ok := c.registry.Classify(c.api.GetTypeID(h))
		if !ok {
			c.api.ReleaseResource(h)
			continue
		}
		entries = append(entries, &Entry{Resource: h, Spec: spec})
	}

	c.entries = entries
	c.rebuiltAt = now
	c.logger.Debug("cache rebuilt", "entries", len(entries), "enumerated", len(handles))
}

// Compact drops all entries marked invalid, releasing their handles and
// preserving the order of the rest. Running it twice in a row is a no-op
// the second time.
func (c *Cache) Compact() {
	kept := c.entries[:0]
	dropped := 0
	for _, e := range c.entries {
		if e.Invalid {
			c.api.ReleaseResource(e.Resource)
			dropped++
			continue
		}
		kept = append(kept, e)
	}
	c.entries = kept
	if dropped > 0 {
		c.logger.Debug("cache compacted", "dropped", dropped, "remaining", len(kept))
	}
}

// ReleaseAll releases every held handle and empties the cache. Called at
// shutdown and when the cache's scheduler is torn down.
func (c *Cache) ReleaseAll() {
	c.releaseEntries()
	c.rebuiltAt = time.Time{}
}

func (c *Cache) releaseEntries() {
	for _, e := range c.entries {
		c.api.ReleaseResource(e.Resource)
	}
	c.entries = nil
}

// Len returns the number of entries, including ones marked invalid.
func (c *Cache) Len() int {
	return len(c.entries)
}

// At returns the entry at index i.
func (c *Cache) At(i int) *Entry {
	return c.entries[i]
}

// RebuiltAt returns when the cache was last rebuilt, zero if never.
func (c *Cache) RebuiltAt() time.Time {
	return c.rebuiltAt
}
