// Package timer provides a host.Timer backed by time.Ticker. One goroutine
// per registration, but a shared dispatch mutex serializes callback
// invocation, preserving the host contract that at most one tick callback
// runs at a time.
package timer

import (
	"log/slog"
	"sync"
	"time"

	"github.com/me/sourcewatch/pkg/host"
)

type registration struct {
	stopCh chan struct{}
	doneCh chan struct{}
}

// Timer implements host.Timer.
type Timer struct {
	mu     sync.Mutex // guards regs
	runMu  sync.Mutex // serializes callback dispatch
	regs   map[string]*registration
	logger *slog.Logger
}

var _ host.Timer = (*Timer)(nil)

// New creates a Timer.
func New(logger *slog.Logger) *Timer {
	return &Timer{
		regs:   make(map[string]*registration),
		logger: logger.With("component", "timer"),
	}
}

// RegisterTick installs fn under id, firing every period. Registering an
// existing id replaces the previous callback, waiting out its in-flight
// tick first.
func (t *Timer) RegisterTick(id string, fn func(now time.Time), period time.Duration) {
	t.UnregisterTick(id)

	reg := &registration{
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	t.mu.Lock()
	t.regs[id] = reg
	t.mu.Unlock()

	t.logger.Debug("tick registered", "id", id, "period", period)

	go func() {
		defer close(reg.doneCh)
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for {
			select {
			case <-reg.stopCh:
				return
			case now := <-ticker.C:
				t.runMu.Lock()
				fn(now)
				t.runMu.Unlock()
			}
		}
	}()
}

// UnregisterTick removes the callback registered under id. Idempotent.
// Blocks until any in-flight tick of that callback has completed.
func (t *Timer) UnregisterTick(id string) {
	t.mu.Lock()
	reg, ok := t.regs[id]
	if ok {
		delete(t.regs, id)
	}
	t.mu.Unlock()
	if !ok {
		return
	}
	close(reg.stopCh)
	<-reg.doneCh
	t.logger.Debug("tick unregistered", "id", id)
}

// Close unregisters everything.
func (t *Timer) Close() {
	t.mu.Lock()
	ids := make([]string, 0, len(t.regs))
	for id := range t.regs {
		ids = append(ids, id)
	}
	t.mu.Unlock()
	for _, id := range ids {
		t.UnregisterTick(id)
	}
}
