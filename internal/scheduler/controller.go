// Package scheduler contains the two work-amortization strategies of the
// watchdog (incremental cursor, cooperative suspension) and the controller
// that installs exactly one of them on the host timer.
package scheduler

import (
	"log/slog"
	"sync"
	"time"

	"github.com/me/sourcewatch/internal/cache"
	"github.com/me/sourcewatch/internal/classify"
	"github.com/me/sourcewatch/internal/config"
	"github.com/me/sourcewatch/internal/reactivate"
	"github.com/me/sourcewatch/pkg/host"
)

// Timer callback ids, one per strategy.
const (
	TickIDIncremental = "sourcewatch.incremental"
	TickIDCooperative = "sourcewatch.cooperative"
)

// Mode names as reported by Snapshot.
const (
	ModeIncremental = "incremental"
	ModeCooperative = "cooperative"
)

// Controller owns the scheduling subsystem for the process lifecycle: it
// reads configuration, tears down whichever scheduler is active, and
// (re)installs the selected one. The host calls its lifecycle hooks; ticks
// arrive on the host timer's single dispatch path.
type Controller struct {
	api      host.ResourceAPI
	timer    host.Timer
	settings host.Settings
	registry *classify.Registry
	att      *reactivate.Attempter
	logger   *slog.Logger

	// mu guards the fields below. Tick callbacks hold it for the duration
	// of a tick; Snapshot readers hold it briefly.
	mu          sync.Mutex
	cfg         config.State
	cache       *cache.Cache
	incremental *Incremental
	cooperative *Cooperative
	mode        string
	loadedAt    time.Time
}

// NewController creates a controller. Nothing is installed until OnLoad.
func NewController(api host.ResourceAPI, timer host.Timer, settings host.Settings, registry *classify.Registry, att *reactivate.Attempter, logger *slog.Logger) *Controller {
	c := &Controller{
		api:      api,
		timer:    timer,
		settings: settings,
		registry: registry,
		att:      att,
		logger:   logger.With("component", "controller"),
	}
	c.cache = cache.New(api, registry, logger)
	return c
}

// OnLoad reads the persisted configuration, populates the cache (in
// incremental mode) and installs the selected scheduler.
func (c *Controller) OnLoad(now time.Time) {
	cfg := config.FromSettings(c.settings)
	c.logger.Info("loading",
		"check_interval", cfg.CheckInterval,
		"sources_per_check", cfg.SourcesPerCheck,
		"cooperative", cfg.UseCooperativeMode,
	)
	c.applyConfig(cfg, now)
	c.mu.Lock()
	c.loadedAt = now
	c.mu.Unlock()
}

// OnConfigChanged re-reads the persisted configuration and reinstalls the
// selected scheduler. Never called concurrently with itself.
func (c *Controller) OnConfigChanged(now time.Time) {
	cfg := config.FromSettings(c.settings)
	c.logger.Info("configuration changed",
		"check_interval", cfg.CheckInterval,
		"sources_per_check", cfg.SourcesPerCheck,
		"cooperative", cfg.UseCooperativeMode,
	)
	c.applyConfig(cfg, now)
}

// OnUnload unregisters both schedulers, releases every cached handle and
// clears the cache.
func (c *Controller) OnUnload() {
	c.uninstall()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.teardownLocked()
	c.mode = ""
	c.logger.Info("unloaded")
}

// applyConfig tears down both schedulers unconditionally (idempotent), then
// registers exactly one tick callback per the configuration.
func (c *Controller) applyConfig(cfg config.State, now time.Time) {
	// Unregister first, outside the state lock: an in-flight tick must be
	// able to finish, and it holds the lock while it runs.
	c.uninstall()

	c.mu.Lock()
	c.teardownLocked()
	c.cfg = cfg
	var tick func(time.Time)
	var tickID string
	if cfg.UseCooperativeMode {
		c.cooperative = NewCooperative(c.api, c.registry, c.att, c.logger)
		c.mode = ModeCooperative
		tick = c.tickCooperative
		tickID = TickIDCooperative
	} else {
		c.incremental = NewIncremental(c.api, c.cache, c.att, cfg, c.logger)
		c.incremental.Prime(now)
		c.mode = ModeIncremental
		tick = c.tickIncremental
		tickID = TickIDIncremental
	}
	c.mu.Unlock()

	c.timer.RegisterTick(tickID, tick, cfg.CheckInterval)
}

// uninstall removes both tick callbacks from the host timer. Safe to call
// when neither is registered.
func (c *Controller) uninstall() {
	c.timer.UnregisterTick(TickIDIncremental)
	c.timer.UnregisterTick(TickIDCooperative)
}

// teardownLocked releases everything the previous scheduler held.
func (c *Controller) teardownLocked() {
	if c.cooperative != nil {
		c.cooperative.Teardown()
		c.cooperative = nil
	}
	c.incremental = nil
	c.cache.ReleaseAll()
}

func (c *Controller) tickIncremental(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.incremental != nil {
		c.incremental.Tick(now)
	}
}

func (c *Controller) tickCooperative(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cooperative != nil {
		c.cooperative.Tick(now)
	}
}

// Config returns the effective configuration.
func (c *Controller) Config() config.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg
}

// Snapshot is a point-in-time view of the scheduling subsystem for
// diagnostics.
type Snapshot struct {
	Mode          string            `json:"mode"`
	CacheSize     int               `json:"cache_size"`
	Cursor        int               `json:"cursor"`
	LastRebuildAt time.Time         `json:"last_rebuild_at"`
	LoadedAt      time.Time         `json:"loaded_at"`
	Incremental   *IncrementalStats `json:"incremental,omitempty"`
	Cooperative   *CooperativeStats `json:"cooperative,omitempty"`
}

// Snapshot returns the current diagnostics view.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := Snapshot{
		Mode:          c.mode,
		CacheSize:     c.cache.Len(),
		LastRebuildAt: c.cache.RebuiltAt(),
		LoadedAt:      c.loadedAt,
	}
	if c.incremental != nil {
		st := c.incremental.Stats()
		snap.Incremental = &st
		snap.Cursor = c.incremental.Cursor()
	}
	if c.cooperative != nil {
		st := c.cooperative.Stats()
		snap.Cooperative = &st
	}
	return snap
}
