package app

import (
	"context"
	"io"
	"log/slog"

	"github.com/specialistvlad/resprobe/internal/config"
	"github.com/specialistvlad/resprobe/internal/ctxlog"
	"github.com/specialistvlad/resprobe/internal/importer"
	"github.com/specialistvlad/resprobe/internal/registry"
)

// Streams are the three outputs of a run. Module output is what scripts
// print, Result receives the probe answer and Log receives diagnostics.
type Streams struct {
	Stdout io.Writer
	Result io.Writer
	Log    io.Writer
}

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	streams  Streams
	logger   *slog.Logger
	config   *config.Config
	registry *registry.Registry
	importer *importer.Importer
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger, registry
// and importer. With no modules given, the core modules are registered.
func NewApp(streams Streams, cfg *config.Config, modules ...registry.Module) *App {
	if streams.Stdout == nil {
		streams.Stdout = io.Discard
	}
	if streams.Result == nil {
		streams.Result = io.Discard
	}
	if streams.Log == nil {
		streams.Log = io.Discard
	}
	if cfg == nil {
		cfg = config.Default()
	}

	logger := newLogger(cfg.Logging, streams.Log)
	logger.Debug("Logger configured successfully.")

	if len(modules) == 0 {
		modules = coreModules
	}
	reg := registry.New(modules...)
	logger.Debug("All Go modules registered.", "count", len(modules), "dependencies", reg.Names())

	// A mismatch between a module and its registration is a programmer
	// error, so we panic.
	if err := reg.ValidateRegistry(ctxlog.WithLogger(context.Background(), logger)); err != nil {
		panic(err)
	}
	logger.Debug("Registry validation passed.")

	env := &registry.Env{Stdout: streams.Stdout, Logger: logger}
	imp := importer.New(reg, env, cfg.SearchPath...)

	return &App{
		streams:  streams,
		logger:   logger,
		config:   cfg,
		registry: reg,
		importer: imp,
	}
}

// context attaches the app logger to ctx.
func (a *App) context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}

// Logger returns the diagnostics logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Importer returns the importer shared by every run of this App.
func (a *App) Importer() *importer.Importer {
	return a.importer
}
