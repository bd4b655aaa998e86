package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/specialistvlad/dataexpr/internal/config"
	"github.com/specialistvlad/dataexpr/internal/ctxlog"
	"github.com/specialistvlad/dataexpr/internal/options"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	loader config.Loader
	config *Config
	model  *config.Model
	store  *options.Store
}

// NewApp is the constructor for the main application. Results are written to
// outW and logs to logW. A configuration that cannot be loaded is a fatal
// startup error and panics.
func NewApp(outW, logW io.Writer, appConfig *Config, loader config.Loader) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	// Load all configuration into the format-agnostic model first.
	model, err := loader.Load(ctx, appConfig.ConfigPaths...)
	if err != nil {
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	logger.Debug("Configuration loaded into unified model.", "sources", model.Sources)

	return &App{
		outW:   outW,
		logger: logger,
		loader: loader,
		config: appConfig,
		model:  model,
		store:  options.New(optionsFor(model, appConfig)),
	}
}

// Options returns the store the app's binding reads from. This is primarily
// for testing.
func (a *App) Options() *options.Store {
	return a.store
}

// optionsFor builds the full option set from a model, with the CLI value
// taking precedence over the files.
func optionsFor(model *config.Model, cfg *Config) map[options.Name]any {
	opts := options.Defaults()
	for name, v := range model.Options() {
		opts[name] = v
	}
	if cfg.HasValue {
		opts[options.Value] = cfg.Value
	}
	return opts
}
