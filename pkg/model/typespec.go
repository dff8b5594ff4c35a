package model

// MonitoredTypeSpec describes one resource type the watchdog monitors.
// The set of specs is fixed at engine construction and never mutated.
type MonitoredTypeSpec struct {
	// TypeID is the host's type identifier, matched exactly.
	TypeID string `json:"type_id" yaml:"type_id"`

	// DisplayName is the human-readable type name, used in logs and output.
	DisplayName string `json:"display_name" yaml:"display_name"`

	// ReactivateProperty is the property-set control that restarts a frozen
	// capture of this type. Tried before the generic fallback names.
	ReactivateProperty string `json:"reactivate_property" yaml:"reactivate_property"`
}
