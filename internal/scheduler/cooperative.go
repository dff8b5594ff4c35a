package scheduler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/me/sourcewatch/internal/classify"
	"github.com/me/sourcewatch/internal/reactivate"
	"github.com/me/sourcewatch/pkg/host"
)

// idleTicks is how many ticks the cooperative task suspends between passes.
const idleTicks = 30

type coopState int

const (
	stateScanning coopState = iota
	stateIdling
)

// coopTask is one suspended scan pass: an explicit state machine standing in
// for a coroutine, advanced one step per tick. Scanning processes one
// resource per step; Idling burns one tick per step.
type coopTask struct {
	state         coopState
	batch         []host.Resource
	index         int
	idleRemaining int
}

// Cooperative is the alternative amortization strategy: instead of a cursor
// over a cache it re-enumerates at the start of every pass and suspends
// after each resource. Simpler bookkeeping, costlier enumeration.
type Cooperative struct {
	api    host.ResourceAPI
	reg    *classify.Registry
	att    *reactivate.Attempter
	logger *slog.Logger

	task *coopTask

	ticks  uint64
	steps  uint64
	passes uint64
	resets uint64
}

// NewCooperative creates a cooperative scheduler.
func NewCooperative(api host.ResourceAPI, reg *classify.Registry, att *reactivate.Attempter, logger *slog.Logger) *Cooperative {
	return &Cooperative{
		api:    api,
		reg:    reg,
		att:    att,
		logger: logger.With("component", "cooperative"),
	}
}

// Tick resumes the suspended task exactly once, creating a fresh one first
// if none exists. A step failure discards the task; the next tick starts
// over. Self-healing: the error is logged, never propagated.
func (s *Cooperative) Tick(now time.Time) {
	s.ticks++
	if s.task == nil {
		s.task = &coopTask{
			state: stateScanning,
			batch: s.api.EnumerateResources(),
		}
	}
	if err := s.step(); err != nil {
		s.logger.Error("scan pass failed, restarting next tick", "error", err)
		s.discardTask()
		s.resets++
	}
}

func (s *Cooperative) step() error {
	t := s.task

	if t.state == stateIdling {
		if t.idleRemaining > 0 {
			t.idleRemaining--
			return nil
		}
		// Idle period over: start a fresh pass with a fresh enumeration.
		t.state = stateScanning
		t.batch = s.api.EnumerateResources()
		t.index = 0
	}

	if t.index >= len(t.batch) {
		// Pass complete; every handle has been released along the way.
		t.batch = nil
		t.state = stateIdling
		t.idleRemaining = idleTicks
		s.passes++
		return nil
	}

	r := t.batch[t.index]
	t.index++
	if r == nil {
		return errors.New("enumeration returned an unresolvable slot")
	}
	defer s.api.ReleaseResource(r)

	s.steps++
	spec, ok := s.reg.Classify(s.api.GetTypeID(r))
	if !ok {
		return nil
	}
	if _, alive := s.api.GetName(r); !alive {
		return nil
	}
	s.att.Attempt(r, spec)
	return nil
}

// discardTask drops the current task, releasing any handles it still holds.
func (s *Cooperative) discardTask() {
	if s.task == nil {
		return
	}
	for _, r := range s.task.batch[s.task.index:] {
		if r != nil {
			s.api.ReleaseResource(r)
		}
	}
	s.task = nil
}

// Teardown releases the task's remaining handles. Called when the scheduler
// is uninstalled.
func (s *Cooperative) Teardown() {
	s.discardTask()
}

// Stats returns the scheduler's counters for diagnostics.
func (s *Cooperative) Stats() CooperativeStats {
	return CooperativeStats{
		Ticks:  s.ticks,
		Steps:  s.steps,
		Passes: s.passes,
		Resets: s.resets,
	}
}

// CooperativeStats are the cooperative scheduler's counters.
type CooperativeStats struct {
	Ticks  uint64 `json:"ticks"`
	Steps  uint64 `json:"steps"`
	Passes uint64 `json:"passes"`
	Resets uint64 `json:"resets"`
}
