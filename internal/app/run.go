package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/specialistvlad/dataexpr/internal/binding"
	"github.com/specialistvlad/dataexpr/internal/ctxlog"
	"github.com/specialistvlad/dataexpr/internal/options"
)

// Result is the outcome of one resolution, as printed by Run.
type Result struct {
	Value    any    `json:"value"`
	Resolved bool   `json:"resolved"`
	Record   any    `json:"record,omitempty"`
	Display  string `json:"display,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Run binds the loaded options, resolves the value and prints the result.
// Outside watch mode a value that does not resolve is returned as an error
// wrapping binding.ErrNotResolved. In watch mode Run returns when ctx is
// cancelled.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	host := binding.HostFunc(func(name options.Name, value any) {
		a.logger.Debug("Collection option forwarded.", "option", name)
	})
	b, err := binding.New(ctx, a.store, binding.WithHost(host))
	if err != nil {
		return fmt.Errorf("failed to bind options: %w", err)
	}
	defer b.Close()
	a.logger.Debug("Binding created.", "key", b.Key().String(), "value_expr", b.ValueExpr().String())

	res, resolveErr := a.resolve(ctx, b)
	if err := a.print(res); err != nil {
		return err
	}

	if a.config.Watch {
		return a.watch(ctx, b)
	}

	a.logger.Debug("App.Run method finished.")
	if resolveErr != nil {
		return fmt.Errorf("resolving %v: %w", res.Value, resolveErr)
	}
	return nil
}

// resolve resolves the current value option.
func (a *App) resolve(ctx context.Context, b *binding.Binding) (Result, error) {
	res := Result{Value: a.store.Get(options.Value)}

	record, err := b.Resolve(ctx, nil)
	if err != nil {
		res.Error = err.Error()
		if errors.Is(err, binding.ErrNotResolved) {
			a.logger.Info("Value not resolved.", "value", res.Value, "error", err)
		} else {
			a.logger.Warn("Value resolution failed.", "value", res.Value, "error", err)
		}
		return res, err
	}

	res.Resolved = true
	res.Record = record
	if res.Display, err = b.DisplayText(record); err != nil {
		a.logger.Warn("Display text could not be rendered.", "error", err)
	}
	a.logger.Info("Value resolved.", "value", res.Value, "display", res.Display)
	return res, nil
}

func (a *App) print(res Result) error {
	enc := json.NewEncoder(a.outW)
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}
