package app

import (
	"context"
	"fmt"
	"sort"

	"github.com/specialistvlad/dataexpr/internal/binding"
	"github.com/specialistvlad/dataexpr/internal/ctxlog"
	"github.com/specialistvlad/dataexpr/internal/fileconfig"
	"github.com/specialistvlad/dataexpr/internal/options"
	"github.com/specialistvlad/dataexpr/internal/watcher"
)

// Reload loads the configuration again and pushes every option that changed
// into the store, in name order. It returns the names that changed. On a load
// failure the store is left untouched.
func (a *App) Reload(ctx context.Context) ([]options.Name, error) {
	logger := ctxlog.FromContext(ctx)

	model, err := a.loader.Load(ctx, a.config.ConfigPaths...)
	if err != nil {
		return nil, fmt.Errorf("failed to reload configuration: %w", err)
	}
	a.model = model

	next := optionsFor(model, a.config)
	names := make([]options.Name, 0, len(next))
	for name := range next {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	var changed []options.Name
	for _, name := range names {
		if name == options.DataSource {
			// Files never configure a data source.
			continue
		}
		if a.store.Set(name, next[name]) {
			changed = append(changed, name)
		}
	}
	logger.Debug("Configuration reloaded.", "changed", changed)
	return changed, nil
}

// watch reloads and resolves again on every batch of file changes until ctx
// is cancelled.
func (a *App) watch(ctx context.Context, b *binding.Binding) error {
	w, err := watcher.New(watcher.WithDebounce(a.config.Debounce), watcher.WithFilter(fileconfig.Supported))
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer w.Close()

	for _, p := range a.config.ConfigPaths {
		if err := w.Add(p); err != nil {
			a.logger.Warn("Path not watched.", "path", p, "error", err)
		}
	}
	a.logger.Info("Watching configuration for changes.", "paths", w.Paths())

	return w.Run(ctx, func(ctx context.Context, batch []watcher.Event) {
		a.logger.Debug("Configuration files changed.", "events", len(batch))
		changed, err := a.Reload(ctx)
		if err != nil {
			a.logger.Warn("Reload failed, keeping previous options.", "error", err)
			return
		}
		if len(changed) == 0 {
			return
		}
		res, _ := a.resolve(ctx, b)
		if err := a.print(res); err != nil {
			a.logger.Error("Result not written.", "error", err)
		}
	})
}
