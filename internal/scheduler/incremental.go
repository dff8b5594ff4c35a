package scheduler

import (
	"log/slog"
	"time"

	"github.com/me/sourcewatch/internal/cache"
	"github.com/me/sourcewatch/internal/config"
	"github.com/me/sourcewatch/internal/reactivate"
	"github.com/me/sourcewatch/pkg/host"
)

// Incremental amortizes a full scan-and-restart pass across many short ticks
// by advancing a cursor through the resource cache, checking at most
// SourcesPerCheck entries per tick. Cache rebuilds run on their own, longer
// period and consume the whole tick when due.
type Incremental struct {
	api    host.ResourceAPI
	cache  *cache.Cache
	att    *reactivate.Attempter
	cfg    config.State
	logger *slog.Logger

	cursor     int
	lastEnumAt time.Time

	ticks       uint64
	checked     uint64
	rebuilds    uint64
	compactions uint64
}

// NewIncremental creates an incremental scheduler over the given cache.
func NewIncremental(api host.ResourceAPI, c *cache.Cache, att *reactivate.Attempter, cfg config.State, logger *slog.Logger) *Incremental {
	return &Incremental{
		api:    api,
		cache:  c,
		att:    att,
		cfg:    cfg,
		logger: logger.With("component", "incremental"),
	}
}

// Prime populates the cache immediately and starts the rebuild period from
// now, so the first ticks check instead of rebuilding.
func (s *Incremental) Prime(now time.Time) {
	s.cache.Rebuild(now)
	s.cursor = 0
	s.lastEnumAt = now
	s.rebuilds++
}

// Tick runs one scheduling step. Rebuild and checking are mutually
// exclusive within a tick; rebuild takes priority.
func (s *Incremental) Tick(now time.Time) {
	s.ticks++

	if now.Sub(s.lastEnumAt) > s.cfg.RebuildInterval {
		s.cache.Rebuild(now)
		s.cursor = 0
		s.lastEnumAt = now
		s.rebuilds++
		return
	}

	n := s.cache.Len()
	if n == 0 {
		return
	}

	quota := s.cfg.SourcesPerCheck
	if quota > n {
		quota = n
	}

	wrapped := false
	for i := 0; i < quota; i++ {
		e := s.cache.At(s.cursor)
		if _, alive := s.api.GetName(e.Resource); alive {
			s.att.Attempt(e.Resource, e.Spec)
			e.LastCheckedAt = now
			s.checked++
		} else {
			// Stale handle: skip the attempt, prune at the next compaction.
			e.Invalid = true
		}
		s.cursor++
		if s.cursor >= n {
			s.cursor = 0
			wrapped = true
			break
		}
	}

	if wrapped {
		s.cache.Compact()
		s.compactions++
	}
}

// Cursor returns the current cache index.
func (s *Incremental) Cursor() int {
	return s.cursor
}

// Stats returns the scheduler's counters for diagnostics.
func (s *Incremental) Stats() IncrementalStats {
	return IncrementalStats{
		Ticks:       s.ticks,
		Checked:     s.checked,
		Rebuilds:    s.rebuilds,
		Compactions: s.compactions,
	}
}

// IncrementalStats are the incremental scheduler's counters.
type IncrementalStats struct {
	Ticks       uint64 `json:"ticks"`
	Checked     uint64 `json:"checked"`
	Rebuilds    uint64 `json:"rebuilds"`
	Compactions uint64 `json:"compactions"`
}
