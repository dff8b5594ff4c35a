// Package fakehost provides an in-memory implementation of the host
// interfaces with full handle and property-set accounting. It backs the
// engine's tests and the daemon's simulation mode.
package fakehost

import (
	"sync"

	"github.com/me/sourcewatch/pkg/host"
)

// TriggerEvent records one control activation observed by the host.
type TriggerEvent struct {
	ResourceName string
	TypeID       string
	Control      string
}

// resource is the host-side state of one capture unit.
type resource struct {
	typeID   string
	name     string
	stale    bool
	noProps  bool
	controls map[string]bool // control name -> enabled
}

// handle wraps a resource reference handed out by EnumerateResources.
// Each handle must be released exactly once.
type handle struct {
	res      *resource
	released bool
}

type propertySet struct {
	res      *resource
	released bool
}

type control struct {
	res     *resource
	name    string
	enabled bool
}

// Host is an in-memory host.ResourceAPI with leak accounting.
type Host struct {
	mu sync.Mutex

	resources []*resource
	stallNext int
	injectNil bool

	handlesIssued      int
	handlesOutstanding int
	doubleReleases     int
	propsOutstanding   int
	triggers           []TriggerEvent
}

var _ host.ResourceAPI = (*Host)(nil)

// New creates an empty fake host.
func New() *Host {
	return &Host{}
}

// AddResource registers a live resource. controls maps control names to
// their enabled state; a nil map means the resource exposes no controls.
func (h *Host) AddResource(typeID, name string, controls map[string]bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ctls := make(map[string]bool, len(controls))
	for k, v := range controls {
		ctls[k] = v
	}
	h.resources = append(h.resources, &resource{typeID: typeID, name: name, controls: ctls})
}

// RemoveResource deletes a resource from the live set. Outstanding handles
// to it stop resolving (GetName returns ok=false).
func (h *Host) RemoveResource(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, r := range h.resources {
		if r.name == name {
			r.stale = true
			h.resources = append(h.resources[:i], h.resources[i+1:]...)
			return
		}
	}
}

// MarkStale makes a resource stop resolving while it stays enumerable,
// mimicking a frozen capture whose handle went bad.
func (h *Host) MarkStale(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, r := range h.resources {
		if r.name == name {
			r.stale = true
			return
		}
	}
}

// SetNoProperties makes GetProperties return ok=false for a resource.
func (h *Host) SetNoProperties(name string, noProps bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, r := range h.resources {
		if r.name == name {
			r.noProps = noProps
			return
		}
	}
}

// SetControlEnabled flips one control's enabled state.
func (h *Host) SetControlEnabled(name, ctl string, enabled bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, r := range h.resources {
		if r.name == name {
			r.controls[ctl] = enabled
			return
		}
	}
}

// StallOne marks the next resource, round-robin, as stale. Used by the
// daemon's simulation tick so the watchdog has something to repair.
func (h *Host) StallOne() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.resources) == 0 {
		return
	}
	h.stallNext %= len(h.resources)
	h.resources[h.stallNext].stale = true
	h.stallNext++
}

// InjectNilResource makes the next enumeration include a nil slot,
// simulating a host-side enumeration fault.
func (h *Host) InjectNilResource() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.injectNil = true
}

// --- host.ResourceAPI ---

func (h *Host) EnumerateResources() []host.Resource {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]host.Resource, 0, len(h.resources)+1)
	if h.injectNil {
		h.injectNil = false
		out = append(out, nil)
	}
	for _, r := range h.resources {
		out = append(out, &handle{res: r})
		h.handlesIssued++
		h.handlesOutstanding++
	}
	return out
}

func (h *Host) GetTypeID(r host.Resource) string {
	return r.(*handle).res.typeID
}

func (h *Host) GetName(r host.Resource) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	res := r.(*handle).res
	if res.stale {
		return "", false
	}
	return res.name, true
}

func (h *Host) GetProperties(r host.Resource) (host.PropertySet, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	res := r.(*handle).res
	if res.noProps {
		return nil, false
	}
	h.propsOutstanding++
	return &propertySet{res: res}, true
}

func (h *Host) ReleaseProperties(props host.PropertySet) {
	if props == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	ps := props.(*propertySet)
	if ps.released {
		h.doubleReleases++
		return
	}
	ps.released = true
	h.propsOutstanding--
}

func (h *Host) GetControl(props host.PropertySet, name string) (host.Control, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ps := props.(*propertySet)
	enabled, ok := ps.res.controls[name]
	if !ok {
		return nil, false
	}
	return &control{res: ps.res, name: name, enabled: enabled}, true
}

func (h *Host) IsEnabled(ctl host.Control) bool {
	return ctl.(*control).enabled
}

func (h *Host) Trigger(ctl host.Control, r host.Resource) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c := ctl.(*control)
	h.triggers = append(h.triggers, TriggerEvent{
		ResourceName: c.res.name,
		TypeID:       c.res.typeID,
		Control:      c.name,
	})
	// A triggered restart heals the capture.
	c.res.stale = false
}

func (h *Host) ReleaseResource(r host.Resource) {
	if r == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	hd := r.(*handle)
	if hd.released {
		h.doubleReleases++
		return
	}
	hd.released = true
	h.handlesOutstanding--
}

// --- accounting ---

// HandlesOutstanding returns the number of issued handles not yet released.
func (h *Host) HandlesOutstanding() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.handlesOutstanding
}

// HandlesIssued returns the total number of handles ever issued.
func (h *Host) HandlesIssued() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.handlesIssued
}

// PropertySetsOutstanding returns the number of unreleased property sets.
func (h *Host) PropertySetsOutstanding() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.propsOutstanding
}

// DoubleReleases returns how many times a handle or property set was
// released more than once.
func (h *Host) DoubleReleases() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.doubleReleases
}

// Triggers returns a copy of all control activations, in order.
func (h *Host) Triggers() []TriggerEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]TriggerEvent, len(h.triggers))
	copy(out, h.triggers)
	return out
}

// ResourceCount returns the number of live resources.
func (h *Host) ResourceCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.resources)
}
