package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/specialistvlad/mapfuse/internal/ctxlog"
	"github.com/specialistvlad/mapfuse/internal/graphfile"
	"github.com/specialistvlad/mapfuse/internal/optimizer"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	registry *optimizer.Registry
	loaders  map[graphfile.Format]graphfile.Loader
	writers  map[graphfile.Format]graphfile.Writer

	createOutput func(path string) (io.WriteCloser, error)
}

// NewApp is the constructor for the main application. Logs go to logW; the
// optimized graph goes to outW unless the config names an output file. When
// no modules are given the core modules are registered.
func NewApp(outW, logW io.Writer, cfg *Config, modules ...optimizer.Module) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg := optimizer.NewRegistry()
	if len(modules) == 0 {
		modules = coreModules(cfg)
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All optimizer modules registered.", "count", len(modules), "passes", reg.Names())

	if err := reg.Validate(ctx, cfg.Passes); err != nil {
		return nil, fmt.Errorf("invalid pass list: %w", err)
	}

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		registry: reg,
		loaders:  defaultLoaders(),
		writers:  defaultWriters(),

		createOutput: createFile,
	}, nil
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *optimizer.Registry {
	return a.registry
}
