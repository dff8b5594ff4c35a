package fakehost

import (
	"sync"
	"time"

	"github.com/me/sourcewatch/pkg/host"
)

type tickEntry struct {
	fn     func(now time.Time)
	period time.Duration
}

// ManualTimer implements host.Timer with explicit clock control. Ticks fire
// only when the test calls Advance or Fire, in registration order.
type ManualTimer struct {
	mu    sync.Mutex
	order []string
	regs  map[string]tickEntry
}

var _ host.Timer = (*ManualTimer)(nil)

// NewManualTimer creates an empty manual timer.
func NewManualTimer() *ManualTimer {
	return &ManualTimer{regs: make(map[string]tickEntry)}
}

func (t *ManualTimer) RegisterTick(id string, fn func(now time.Time), period time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.regs[id]; !ok {
		t.order = append(t.order, id)
	}
	t.regs[id] = tickEntry{fn: fn, period: period}
}

func (t *ManualTimer) UnregisterTick(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.regs[id]; !ok {
		return
	}
	delete(t.regs, id)
	for i, v := range t.order {
		if v == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

// Registered returns the ids of all registered callbacks, in order.
func (t *ManualTimer) Registered() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Period returns the period a callback was registered with.
func (t *ManualTimer) Period(id string) (time.Duration, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.regs[id]
	return e.period, ok
}

// Advance fires every registered callback once, in registration order.
func (t *ManualTimer) Advance(now time.Time) {
	t.mu.Lock()
	fns := make([]func(time.Time), 0, len(t.order))
	for _, id := range t.order {
		fns = append(fns, t.regs[id].fn)
	}
	t.mu.Unlock()
	for _, fn := range fns {
		fn(now)
	}
}

// Fire fires one registered callback by id.
func (t *ManualTimer) Fire(id string, now time.Time) {
	t.mu.Lock()
	e, ok := t.regs[id]
	t.mu.Unlock()
	if ok {
		e.fn(now)
	}
}
