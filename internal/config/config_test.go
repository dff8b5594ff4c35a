package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/me/sourcewatch/internal/fakehost"
)

func TestDefault(t *testing.T) {
	s := Default()
	if s.CheckInterval != 500*time.Millisecond {
		t.Errorf("CheckInterval = %v, want 500ms", s.CheckInterval)
	}
	if s.SourcesPerCheck != 1 {
		t.Errorf("SourcesPerCheck = %d, want 1", s.SourcesPerCheck)
	}
	if s.UseCooperativeMode {
		t.Error("UseCooperativeMode should default to false")
	}
	if s.RebuildInterval != 10*time.Second {
		t.Errorf("RebuildInterval = %v, want 10s", s.RebuildInterval)
	}
}

func TestClamped(t *testing.T) {
	s := State{
		CheckInterval:   10 * time.Millisecond,
		SourcesPerCheck: 50,
		RebuildInterval: 10 * time.Minute,
	}.Clamped()

	if s.CheckInterval != MinCheckInterval {
		t.Errorf("CheckInterval = %v, want %v", s.CheckInterval, MinCheckInterval)
	}
	if s.SourcesPerCheck != MaxSourcesPerCheck {
		t.Errorf("SourcesPerCheck = %d, want %d", s.SourcesPerCheck, MaxSourcesPerCheck)
	}
	if s.RebuildInterval != MaxRebuildInterval {
		t.Errorf("RebuildInterval = %v, want %v", s.RebuildInterval, MaxRebuildInterval)
	}

	s = State{
		CheckInterval:   time.Hour,
		SourcesPerCheck: 0,
		RebuildInterval: 0,
	}.Clamped()

	if s.CheckInterval != MaxCheckInterval {
		t.Errorf("CheckInterval = %v, want %v", s.CheckInterval, MaxCheckInterval)
	}
	if s.SourcesPerCheck != MinSourcesPerCheck {
		t.Errorf("SourcesPerCheck = %d, want %d", s.SourcesPerCheck, MinSourcesPerCheck)
	}
	if s.RebuildInterval != MinRebuildInterval {
		t.Errorf("RebuildInterval = %v, want %v", s.RebuildInterval, MinRebuildInterval)
	}
}

func TestFromSettings(t *testing.T) {
	st := fakehost.NewSettings()

	// Unset keys fall back to defaults.
	if got := FromSettings(st); got != Default() {
		t.Errorf("FromSettings(empty) = %+v, want defaults", got)
	}

	st.SetInt(KeyCheckIntervalMs, 250)
	st.SetInt(KeySourcesPerCheck, 3)
	st.SetBool(KeyUseCooperative, true)
	st.SetInt(KeyRebuildIntervalMs, 5000)

	got := FromSettings(st)
	if got.CheckInterval != 250*time.Millisecond {
		t.Errorf("CheckInterval = %v, want 250ms", got.CheckInterval)
	}
	if got.SourcesPerCheck != 3 {
		t.Errorf("SourcesPerCheck = %d, want 3", got.SourcesPerCheck)
	}
	if !got.UseCooperativeMode {
		t.Error("UseCooperativeMode should be true")
	}
	if got.RebuildInterval != 5*time.Second {
		t.Errorf("RebuildInterval = %v, want 5s", got.RebuildInterval)
	}

	// Out-of-range persisted values are clamped on read.
	st.SetInt(KeyCheckIntervalMs, 7)
	st.SetInt(KeySourcesPerCheck, 9000)
	got = FromSettings(st)
	if got.CheckInterval != MinCheckInterval {
		t.Errorf("CheckInterval = %v, want clamped %v", got.CheckInterval, MinCheckInterval)
	}
	if got.SourcesPerCheck != MaxSourcesPerCheck {
		t.Errorf("SourcesPerCheck = %d, want clamped %d", got.SourcesPerCheck, MaxSourcesPerCheck)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sourcewatch.yml")
	content := `
addr: ":9090"
log_level: debug
monitored_types:
  - type_id: custom_capture
    display_name: Custom Capture
    reactivate_property: restart
fallback_controls: ["restart", "reactivate"]
simulation:
  resources: 4
  stall_every_ms: 2000
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	f, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if f.Addr != ":9090" {
		t.Errorf("Addr = %q, want :9090", f.Addr)
	}
	if len(f.MonitoredTypes) != 1 || f.MonitoredTypes[0].TypeID != "custom_capture" {
		t.Errorf("MonitoredTypes = %+v, want one custom_capture entry", f.MonitoredTypes)
	}
	if len(f.FallbackControls) != 2 {
		t.Errorf("FallbackControls = %v, want 2 entries", f.FallbackControls)
	}
	if f.Simulation.Resources != 4 || f.Simulation.StallEveryMs != 2000 {
		t.Errorf("Simulation = %+v", f.Simulation)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
