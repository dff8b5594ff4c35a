// Package classify decides which host resource types the watchdog monitors.
package classify

import "github.com/me/sourcewatch/pkg/model"

// Registry is the fixed table of monitored resource types. It is built once
// at engine construction and read-only afterwards.
type Registry struct {
	specs []model.MonitoredTypeSpec
}

// NewRegistry creates a registry from the given specs. Specs with an empty
// TypeID are dropped.
func NewRegistry(specs []model.MonitoredTypeSpec) *Registry {
	kept := make([]model.MonitoredTypeSpec, 0, len(specs))
	for _, s := range specs {
		if s.TypeID == "" {
			continue
		}
		kept = append(kept, s)
	}
	return &Registry{specs: kept}
}

// DefaultSpecs returns the built-in monitored type table: the capture types
// known to freeze and the control each exposes to restart itself.
func DefaultSpecs() []model.MonitoredTypeSpec {
	return []model.MonitoredTypeSpec{
		{TypeID: "display_capture", DisplayName: "Display Capture", ReactivateProperty: "restart_capture"},
		{TypeID: "window_capture", DisplayName: "Window Capture", ReactivateProperty: "restart_capture"},
		{TypeID: "game_capture", DisplayName: "Game Capture", ReactivateProperty: "restart"},
		{TypeID: "av_capture_input", DisplayName: "Video Capture Device", ReactivateProperty: "reactivate_capture"},
		{TypeID: "audio_input_capture", DisplayName: "Audio Input Capture", ReactivateProperty: "reactivate"},
	}
}

// Classify returns the spec for typeID, ok=false when the type is not
// monitored. Linear scan with exact match; the table is small.
func (r *Registry) Classify(typeID string) (model.MonitoredTypeSpec, bool) {
	for _, s := range r.specs {
		if s.TypeID == typeID {
			return s, true
		}
	}
	return model.MonitoredTypeSpec{}, false
}

// Specs returns the registered table, in registration order.
func (r *Registry) Specs() []model.MonitoredTypeSpec {
	return r.specs
}
