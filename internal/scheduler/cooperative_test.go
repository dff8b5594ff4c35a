package scheduler

import (
	"testing"
	"time"

	"github.com/me/sourcewatch/internal/classify"
	"github.com/me/sourcewatch/internal/fakehost"
	"github.com/me/sourcewatch/internal/reactivate"
)

// newCooperative builds a cooperative scheduler over a host with three
// monitored captures and one unmonitored source.
func newCooperative(t *testing.T) (*Cooperative, *fakehost.Host) {
	t.Helper()
	h := fakehost.New()
	h.AddResource("display_capture", "screen", map[string]bool{"restart_capture": true})
	h.AddResource("game_capture", "game", map[string]bool{"restart": true})
	h.AddResource("text_source", "lower third", nil)
	h.AddResource("audio_input_capture", "mic", map[string]bool{"reactivate": true})
	logger := testLogger()
	reg := classify.NewRegistry(classify.DefaultSpecs())
	att := reactivate.New(h, logger)
	return NewCooperative(h, reg, att, logger), h
}

func TestCooperative_FirstTickScansFirstResource(t *testing.T) {
	s, h := newCooperative(t)

	// No task exists: the tick creates one and its first resume performs
	// the first resource's reactivation attempt, then suspends.
	s.Tick(time.Now())

	trig := h.Triggers()
	if len(trig) != 1 || trig[0].ResourceName != "screen" {
		t.Fatalf("triggers = %+v, want one for screen", trig)
	}
	if got := s.Stats().Steps; got != 1 {
		t.Errorf("steps = %d, want 1", got)
	}
	// Three of the four enumerated handles are still held by the task.
	if got := h.HandlesOutstanding(); got != 3 {
		t.Errorf("outstanding handles = %d, want 3", got)
	}
}

func TestCooperative_FullPassThenIdle(t *testing.T) {
	s, h := newCooperative(t)
	now := time.Now()

	// Ticks 1-4 process one resource each (the unmonitored one is a no-op
	// step); tick 5 completes the pass.
	for i := 0; i < 5; i++ {
		s.Tick(now)
	}
	if got := s.Stats().Passes; got != 1 {
		t.Fatalf("passes = %d, want 1", got)
	}
	if got := len(h.Triggers()); got != 3 {
		t.Errorf("triggers = %d, want 3 (monitored resources only)", got)
	}
	if got := h.HandlesOutstanding(); got != 0 {
		t.Errorf("outstanding handles = %d, want 0 after a pass", got)
	}

	// 30 idle ticks, then the next tick starts a fresh pass with a fresh
	// enumeration and scans the first resource.
	for i := 0; i < 30; i++ {
		s.Tick(now)
	}
	if got := len(h.Triggers()); got != 3 {
		t.Fatalf("triggers = %d during idle, want still 3", got)
	}
	s.Tick(now)
	if got := len(h.Triggers()); got != 4 {
		t.Errorf("triggers = %d after idle, want 4", got)
	}
	if trig := h.Triggers(); trig[3].ResourceName != "screen" {
		t.Errorf("pass restarted at %q, want screen", trig[3].ResourceName)
	}
}

func TestCooperative_SkipsStaleResources(t *testing.T) {
	s, h := newCooperative(t)
	h.MarkStale("game")

	for i := 0; i < 5; i++ {
		s.Tick(time.Now())
	}
	for _, ev := range h.Triggers() {
		if ev.ResourceName == "game" {
			t.Error("stale resource must not be attempted")
		}
	}
	if got := len(h.Triggers()); got != 2 {
		t.Errorf("triggers = %d, want 2", got)
	}
	if got := h.HandlesOutstanding(); got != 0 {
		t.Errorf("outstanding handles = %d, want 0", got)
	}
}

func TestCooperative_SelfHealingRestart(t *testing.T) {
	s, h := newCooperative(t)
	h.InjectNilResource()
	now := time.Now()

	// The faulty enumeration kills the task; the remaining handles are
	// released and nothing is attempted this tick.
	s.Tick(now)
	if got := s.Stats().Resets; got != 1 {
		t.Fatalf("resets = %d, want 1", got)
	}
	if got := len(h.Triggers()); got != 0 {
		t.Errorf("triggers = %d, want 0", got)
	}
	if got := h.HandlesOutstanding(); got != 0 {
		t.Errorf("outstanding handles = %d, want 0 after discard", got)
	}

	// The next tick silently creates a fresh task and scans normally.
	s.Tick(now)
	trig := h.Triggers()
	if len(trig) != 1 || trig[0].ResourceName != "screen" {
		t.Errorf("triggers = %+v, want one for screen", trig)
	}
	if got := s.Stats().Resets; got != 1 {
		t.Errorf("resets = %d, want still 1", got)
	}
}

func TestCooperative_TeardownReleasesHandles(t *testing.T) {
	s, h := newCooperative(t)

	s.Tick(time.Now()) // mid-pass, task holds three handles
	s.Teardown()

	if got := h.HandlesOutstanding(); got != 0 {
		t.Errorf("outstanding handles = %d, want 0 after teardown", got)
	}
	if got := h.DoubleReleases(); got != 0 {
		t.Errorf("double releases = %d, want 0", got)
	}
}
