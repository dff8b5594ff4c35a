// Package reactivate triggers the property-set control that restarts a
// frozen capture resource.
package reactivate

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/me/sourcewatch/pkg/host"
	"github.com/me/sourcewatch/pkg/model"
)

// DefaultFallbackControls is the ordered list of alternate control names
// tried when a type's own reactivation control is absent. The exact set of
// valid names varies across host versions, so it stays configurable.
func DefaultFallbackControls() []string {
	return []string{"restart_capture", "reactivate_capture", "restart", "reactivate"}
}

// Sink receives a record for every control that actually fired. Recording is
// advisory: a sink error is logged and otherwise ignored.
type Sink interface {
	RecordAttempt(ctx context.Context, rec model.AttemptRecord) error
}

// Attempter inspects one resource's live property set and triggers its
// reactivation control if present and enabled.
type Attempter struct {
	api      host.ResourceAPI
	fallback []string
	sink     Sink
	logger   *slog.Logger
}

// Option configures optional Attempter behavior.
type Option func(*Attempter)

// WithFallbackControls overrides the alternate control-name list.
func WithFallbackControls(names []string) Option {
	return func(a *Attempter) {
		a.fallback = names
	}
}

// WithSink records successful triggers to the given sink.
func WithSink(s Sink) Option {
	return func(a *Attempter) {
		a.sink = s
	}
}

// New creates an Attempter.
func New(api host.ResourceAPI, logger *slog.Logger, opts ...Option) *Attempter {
	a := &Attempter{
		api:      api,
		fallback: DefaultFallbackControls(),
		logger:   logger.With("component", "attempter"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Attempt requests r's current property set and triggers the first enabled
// reactivation control: the type's own control first, then the fallback
// names in order. Returns true if a control fired. Fire-and-forget: the
// restart outcome is not awaited or verified.
func (a *Attempter) Attempt(r host.Resource, spec model.MonitoredTypeSpec) bool {
	if r == nil {
		return false
	}
	props, ok := a.api.GetProperties(r)
	if !ok {
		a.logger.Debug("no property set", "type", spec.TypeID)
		return false
	}
	// Released on every exit path; the set is a temporary host object.
	defer a.api.ReleaseProperties(props)

	if a.trigger(props, r, spec, spec.ReactivateProperty) {
		return true
	}
	for _, name := range a.fallback {
		if name == spec.ReactivateProperty {
			continue
		}
		if a.trigger(props, r, spec, name) {
			return true
		}
	}
	return false
}

func (a *Attempter) trigger(props host.PropertySet, r host.Resource, spec model.MonitoredTypeSpec, name string) bool {
	if name == "" {
		return false
	}
	ctl, ok := a.api.GetControl(props, name)
	if !ok || !a.api.IsEnabled(ctl) {
		return false
	}
	a.api.Trigger(ctl, r)
	a.record(r, spec, name)
	return true
}

func (a *Attempter) record(r host.Resource, spec model.MonitoredTypeSpec, control string) {
	resName, _ := a.api.GetName(r)
	a.logger.Info("reactivation triggered",
		"resource", resName,
		"type", spec.TypeID,
		"control", control,
	)
	if a.sink == nil {
		return
	}
	rec := model.AttemptRecord{
		ID:           "att_" + uuid.New().String()[:8],
		ResourceName: resName,
		TypeID:       spec.TypeID,
		Control:      control,
		CreatedAt:    time.Now().UTC(),
	}
	if err := a.sink.RecordAttempt(context.Background(), rec); err != nil {
		a.logger.Warn("record attempt", "error", err)
	}
}
