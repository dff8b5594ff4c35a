// Command sourcewatchd runs the capture-source watchdog against a simulated
// host: a set of fake capture resources that periodically freeze, a timer
// driving the engine, a SQLite-backed settings store, and the diagnostics
// REST API.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/me/sourcewatch/internal/classify"
	"github.com/me/sourcewatch/internal/config"
	"github.com/me/sourcewatch/internal/fakehost"
	"github.com/me/sourcewatch/internal/logging"
	"github.com/me/sourcewatch/internal/reactivate"
	"github.com/me/sourcewatch/internal/scheduler"
	"github.com/me/sourcewatch/internal/server"
	"github.com/me/sourcewatch/internal/store"
	"github.com/me/sourcewatch/internal/timer"
)

const (
	version   = "0.1.0-dev"
	simTickID = "sourcewatch.sim"
)

func main() {
	addr := flag.String("addr", ":8080", "Listen address")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	logFormat := flag.String("log-format", "text", "Log format (text, json)")
	dbPath := flag.String("db", "", "Database path (default ~/.sourcewatch/sourcewatch.db, \":memory:\" for ephemeral)")
	configPath := flag.String("config", "", "Path to YAML config file")
	simResources := flag.Int("sim-resources", 1, "Simulated resources per monitored type")
	simStallMs := flag.Int("sim-stall-every-ms", 3000, "How often the simulation freezes one resource (0 disables)")
	debug := flag.Bool("debug", false, "Shorthand for --log-level=debug")
	flag.Parse()

	if *debug {
		*logLevel = "debug"
	}

	// File config, when given, overrides the flag defaults.
	var fileCfg config.File
	if *configPath != "" {
		loaded, err := config.LoadFile(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		fileCfg = *loaded
	}
	if fileCfg.Addr != "" {
		*addr = fileCfg.Addr
	}
	if fileCfg.LogLevel != "" {
		*logLevel = fileCfg.LogLevel
	}
	if fileCfg.LogFormat != "" {
		*logFormat = fileCfg.LogFormat
	}
	if fileCfg.DBPath != "" {
		*dbPath = fileCfg.DBPath
	}
	if fileCfg.Simulation.Resources > 0 {
		*simResources = fileCfg.Simulation.Resources
	}
	if fileCfg.Simulation.StallEveryMs > 0 {
		*simStallMs = fileCfg.Simulation.StallEveryMs
	}

	logger := logging.New(logging.Options{Level: *logLevel, Format: *logFormat})

	// Resolve database path.
	path := *dbPath
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "cannot determine home directory: %v\n", err)
			os.Exit(1)
		}
		dir := filepath.Join(home, ".sourcewatch")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "cannot create %s: %v\n", dir, err)
			os.Exit(1)
		}
		path = filepath.Join(dir, "sourcewatch.db")
	}

	// Open store and run migrations.
	st, err := store.NewSQLiteStore(path, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open database: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	if err := st.Migrate(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "migrate database: %v\n", err)
		os.Exit(1)
	}
	logger.Info("database ready", "path", path)

	// Build the monitored-type table: built-ins plus any file extensions.
	specs := append(classify.DefaultSpecs(), fileCfg.MonitoredTypes...)
	registry := classify.NewRegistry(specs)

	// Populate the simulated host: N resources per monitored type, each
	// exposing its own reactivation control.
	simHost := fakehost.New()
	for _, spec := range registry.Specs() {
		for i := 1; i <= *simResources; i++ {
			name := fmt.Sprintf("%s %d", spec.DisplayName, i)
			simHost.AddResource(spec.TypeID, name, map[string]bool{spec.ReactivateProperty: true})
		}
	}
	logger.Info("simulated host ready", "resources", simHost.ResourceCount())

	attOpts := []reactivate.Option{reactivate.WithSink(st)}
	if len(fileCfg.FallbackControls) > 0 {
		attOpts = append(attOpts, reactivate.WithFallbackControls(fileCfg.FallbackControls))
	}
	att := reactivate.New(simHost, logger, attOpts...)

	tm := timer.New(logger)
	defer tm.Close()

	engine := scheduler.NewController(simHost, tm, st, registry, att, logger)
	engine.OnLoad(time.Now())
	defer engine.OnUnload()

	// The simulation shares the engine's timer, so freezes land between
	// watchdog ticks, never during one.
	if *simStallMs > 0 {
		tm.RegisterTick(simTickID, func(time.Time) {
			simHost.StallOne()
			logger.Debug("simulation froze a resource")
		}, time.Duration(*simStallMs)*time.Millisecond)
	}

	srv := server.New(engine, st, logger, server.WithVersion(version))

	httpServer := &http.Server{
		Addr:    *addr,
		Handler: srv.Handler(),
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server starting", "addr", *addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "shutdown error: %v\n", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
