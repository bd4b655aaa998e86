package binding

import (
	"context"
	"fmt"

	"github.com/specialistvlad/dataexpr/internal/collection"
	"github.com/specialistvlad/dataexpr/internal/ctxlog"
	"github.com/specialistvlad/dataexpr/internal/inmemorystore"
	"github.com/specialistvlad/dataexpr/internal/keys"
	"github.com/specialistvlad/dataexpr/internal/options"
	"github.com/specialistvlad/dataexpr/internal/template"
)

// OnOptionChanged runs the reaction for name:
//
//	items        rebuild the default collection unless a dataSource is set, forward items
//	key          rebuild the default collection unless a dataSource is set
//	dataSource   rebind the collection
//	itemTemplate rebuild the template state, forward the template
//	valueExpr    recompile the value getter
//	displayExpr  recompile the display getter, rebuild the template state, forward it
//
// Any other option, value included, has no reaction.
func (b *Binding) OnOptionChanged(ctx context.Context, name options.Name) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Option changed.", "option", name)

	switch name {
	case options.Items:
		var err error
		if !b.load().external {
			err = b.itemsToDataSource()
		}
		b.host.SetCollectionOption(options.Items, b.opts.Get(options.Items))
		return err
	case options.Key:
		if b.load().external {
			return nil
		}
		return b.itemsToDataSource()
	case options.DataSource:
		return b.initDataSource()
	case options.ItemTemplate:
		err := b.initTemplate()
		b.host.SetCollectionOption(options.ItemTemplate, b.opts.Get(options.ItemTemplate))
		return err
	case options.ValueExpr:
		return b.CompileValueGetter()
	case options.DisplayExpr:
		err := b.recompileDisplay()
		b.host.SetCollectionOption(options.DisplayExpr, b.opts.Get(options.DisplayExpr))
		return err
	}
	return nil
}

// initDataSource binds the dataSource option, or the items when it is unset.
func (b *Binding) initDataSource() error {
	switch ds := b.opts.Get(options.DataSource).(type) {
	case nil:
		b.update(func(s *state) { s.external = false })
		return b.itemsToDataSource()
	case collection.Collection:
		b.update(func(s *state) {
			s.coll = ds
			s.external = true
		})
		return nil
	case []any:
		d, err := b.keyOption()
		c := b.factory(ds, inmemorystore.WithKey(d))
		b.update(func(s *state) {
			s.coll = c
			s.external = true
		})
		return err
	default:
		return fmt.Errorf("option %s: %w: %T", options.DataSource, ErrUnsupportedDataSource, ds)
	}
}

// itemsToDataSource replaces the collection with a default one over the
// items option.
func (b *Binding) itemsToDataSource() error {
	items, err := itemsOption(b.opts.Get(options.Items))
	if err != nil {
		return err
	}
	d, err := b.keyOption()
	c := b.factory(items, inmemorystore.WithKey(d))
	b.update(func(s *state) { s.coll = c })
	return err
}

func itemsOption(v any) ([]any, error) {
	switch items := v.(type) {
	case nil:
		return nil, nil
	case []any:
		return items, nil
	case []map[string]any:
		out := make([]any, len(items))
		for i, it := range items {
			out[i] = it
		}
		return out, nil
	}
	return nil, fmt.Errorf("option %s must be a list, got %T", options.Items, v)
}

// keyOption reads the key option. An invalid key yields no key and an error.
func (b *Binding) keyOption() (keys.Descriptor, error) {
	d, err := keys.FromAny(b.opts.Get(options.Key))
	if err == nil {
		err = d.Validate()
	}
	if err != nil {
		return keys.None, fmt.Errorf("option %s: %w", options.Key, err)
	}
	return d, nil
}

// initTemplate rebuilds the template state. A template that fails to build
// is replaced by the default one.
func (b *Binding) initTemplate() error {
	src := b.opts.Get(options.ItemTemplate)
	var err error
	b.update(func(s *state) { err = b.buildTemplate(s, src) })
	return err
}

// recompileDisplay recompiles the display getter and rebuilds the template
// state over it in one snapshot, so readers never see a template rendering
// through a replaced getter.
func (b *Binding) recompileDisplay() error {
	e, g, err := b.expressionOption(options.DisplayExpr)
	src := b.opts.Get(options.ItemTemplate)

	var tErr error
	b.update(func(s *state) {
		s.displayExpr = e
		s.displayGetter = g
		tErr = b.buildTemplate(s, src)
	})
	if err == nil {
		err = tErr
	}
	return err
}

// buildTemplate builds the next template state into s from src and the
// display getter s already holds.
func (b *Binding) buildTemplate(s *state, src any) error {
	valueOf := func(item any) any { return b.ValueGetter()(item) }

	tmpl, err := template.Build(src, s.displayGetter, valueOf, s.generation+1)
	if err != nil {
		tmpl, _ = template.Build(nil, s.displayGetter, valueOf, s.generation+1)
		err = fmt.Errorf("option %s: %w", options.ItemTemplate, err)
	}
	s.tmpl = tmpl
	s.generation = tmpl.Generation()
	return err
}
