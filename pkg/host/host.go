// Package host defines the interfaces through which the watchdog engine
// talks to the media-composition application it runs inside. The host is a
// black box: it enumerates capture resources, exposes their dynamically
// generated property sets, fires timer callbacks, and persists settings.
package host

import "time"

// Resource is an opaque handle to a host-managed capture/input unit.
// A handle obtained from EnumerateResources is owned by the caller and must
// be returned to the host exactly once via ResourceAPI.ReleaseResource.
type Resource any

// PropertySet is an opaque, temporary view of a resource's dynamic
// properties. It must be released via ResourceAPI.ReleaseProperties on every
// code path that obtained it.
type PropertySet any

// Control is an opaque reference to a triggerable entry in a PropertySet
// (e.g. a "Restart Capture" button). It is only valid while the PropertySet
// it came from is held.
type Control any

// ResourceAPI is the host's resource enumeration and introspection surface.
type ResourceAPI interface {
	// EnumerateResources returns a handle for every live resource. Each
	// returned handle must be released exactly once.
	EnumerateResources() []Resource

	// GetTypeID returns the resource's type identifier.
	GetTypeID(r Resource) string

	// GetName returns the resource's display name. ok is false when the
	// handle no longer resolves to a live resource.
	GetName(r Resource) (name string, ok bool)

	// GetProperties returns the resource's current dynamic property set,
	// or ok=false when the host cannot produce one. A returned set must be
	// released via ReleaseProperties.
	GetProperties(r Resource) (props PropertySet, ok bool)

	// ReleaseProperties returns a property set to the host.
	ReleaseProperties(props PropertySet)

	// GetControl looks up a named control in a property set.
	GetControl(props PropertySet, name string) (ctl Control, ok bool)

	// IsEnabled reports whether a control can currently be triggered.
	IsEnabled(ctl Control) bool

	// Trigger activates a control on a resource. Fire-and-forget: the host
	// restarts the underlying capture asynchronously.
	Trigger(ctl Control, r Resource)

	// ReleaseResource returns a handle to the host.
	ReleaseResource(r Resource)
}

// Timer is the host's timer subsystem. The host invokes at most one
// registered callback at a time, to completion; there is no preemption
// within a tick.
type Timer interface {
	// RegisterTick installs fn under id, firing every period. Registering
	// an id that is already registered replaces the previous callback.
	RegisterTick(id string, fn func(now time.Time), period time.Duration)

	// UnregisterTick removes the callback registered under id. Idempotent:
	// unregistering an unknown id is a no-op. An in-flight tick always runs
	// to completion before UnregisterTick returns.
	UnregisterTick(id string)
}

// Settings is the host's persisted configuration store, written by the
// host's settings UI and read by the engine at load and on config change.
type Settings interface {
	// GetInt returns the stored integer for key, ok=false when unset.
	GetInt(key string) (v int64, ok bool)

	// GetBool returns the stored boolean for key, ok=false when unset.
	GetBool(key string) (v bool, ok bool)

	// SetInt persists an integer value.
	SetInt(key string, v int64) error

	// SetBool persists a boolean value.
	SetBool(key string, v bool) error
}
