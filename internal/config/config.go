// Package config holds the watchdog's runtime configuration: the values the
// host settings store persists, their defaults and valid ranges, and the
// daemon's file configuration.
package config

import (
	"time"

	"github.com/me/sourcewatch/pkg/host"
)

// Settings-store keys, shared with the host's configuration UI.
const (
	KeyCheckIntervalMs   = "check_interval_ms"
	KeySourcesPerCheck   = "sources_per_check"
	KeyUseCooperative    = "use_cooperative_mode"
	KeyRebuildIntervalMs = "rebuild_interval_ms"
)

// Declared defaults and valid ranges.
const (
	DefaultCheckInterval = 500 * time.Millisecond
	MinCheckInterval     = 100 * time.Millisecond
	MaxCheckInterval     = 5 * time.Second

	DefaultSourcesPerCheck = 1
	MinSourcesPerCheck     = 1
	MaxSourcesPerCheck     = 10

	DefaultRebuildInterval = 10 * time.Second
	MinRebuildInterval     = time.Second
	MaxRebuildInterval     = time.Minute
)

// State is the effective scheduler configuration.
type State struct {
	// CheckInterval is the tick period of the active scheduler.
	CheckInterval time.Duration

	// SourcesPerCheck caps how many cache entries one incremental tick checks.
	SourcesPerCheck int

	// UseCooperativeMode selects the cooperative scheduler instead of the
	// incremental one.
	UseCooperativeMode bool

	// RebuildInterval is how often the incremental scheduler rebuilds the
	// resource cache (a separate, longer period than CheckInterval).
	RebuildInterval time.Duration
}

// Default returns the declared default configuration.
func Default() State {
	return State{
		CheckInterval:      DefaultCheckInterval,
		SourcesPerCheck:    DefaultSourcesPerCheck,
		UseCooperativeMode: false,
		RebuildInterval:    DefaultRebuildInterval,
	}
}

// Clamped returns s with every field forced into its valid range.
func (s State) Clamped() State {
	s.CheckInterval = clampDuration(s.CheckInterval, MinCheckInterval, MaxCheckInterval)
	s.SourcesPerCheck = clampInt(s.SourcesPerCheck, MinSourcesPerCheck, MaxSourcesPerCheck)
	s.RebuildInterval = clampDuration(s.RebuildInterval, MinRebuildInterval, MaxRebuildInterval)
	return s
}

// FromSettings reads the persisted configuration, falling back to defaults
// for unset keys and clamping everything into range.
func FromSettings(st host.Settings) State {
	s := Default()
	if v, ok := st.GetInt(KeyCheckIntervalMs); ok {
		s.CheckInterval = time.Duration(v) * time.Millisecond
	}
	if v, ok := st.GetInt(KeySourcesPerCheck); ok {
		s.SourcesPerCheck = int(v)
	}
	if v, ok := st.GetBool(KeyUseCooperative); ok {
		s.UseCooperativeMode = v
	}
	if v, ok := st.GetInt(KeyRebuildIntervalMs); ok {
		s.RebuildInterval = time.Duration(v) * time.Millisecond
	}
	return s.Clamped()
}

func clampDuration(v, lo, hi time.Duration) time.Duration {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
