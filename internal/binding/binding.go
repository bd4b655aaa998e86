package binding

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/specialistvlad/dataexpr/internal/collection"
	"github.com/specialistvlad/dataexpr/internal/ctxlog"
	"github.com/specialistvlad/dataexpr/internal/equality"
	"github.com/specialistvlad/dataexpr/internal/expr"
	"github.com/specialistvlad/dataexpr/internal/inmemorystore"
	"github.com/specialistvlad/dataexpr/internal/keys"
	"github.com/specialistvlad/dataexpr/internal/options"
	"github.com/specialistvlad/dataexpr/internal/template"
	"github.com/specialistvlad/dataexpr/internal/value"
)

// CollectionFactory builds the default collection from the items option.
type CollectionFactory func(items []any, opts ...inmemorystore.Option) collection.Collection

// state is one immutable snapshot of everything derived from options.
type state struct {
	valueExpr     expr.Expression
	valueGetter   expr.Getter
	displayExpr   expr.Expression
	displayGetter expr.Getter

	coll     collection.Collection
	external bool

	tmpl       *template.State
	generation uint64
}

// Binding is the value-resolution capability of a host component.
type Binding struct {
	ctx     context.Context
	opts    *options.Store
	host    Host
	factory CollectionFactory

	mu  sync.Mutex // serializes snapshot updates
	st  atomic.Pointer[state]
	sub *options.Subscription
}

// Option configures a Binding.
type Option func(*Binding)

// WithHost sets the host that receives forwarded collection options.
func WithHost(h Host) Option {
	return func(b *Binding) {
		if h != nil {
			b.host = h
		}
	}
}

// WithCollectionFactory replaces inmemorystore.Default as the factory for
// the default collection.
func WithCollectionFactory(f CollectionFactory) Option {
	return func(b *Binding) {
		if f != nil {
			b.factory = f
		}
	}
}

// New compiles the getters, binds the collection and builds the template
// state from store, then subscribes to store so later changes drive
// OnOptionChanged. ctx is kept for the logger of those reactions.
func New(ctx context.Context, store *options.Store, opts ...Option) (*Binding, error) {
	b := &Binding{
		ctx:     ctx,
		opts:    store,
		host:    nopHost{},
		factory: inmemorystore.Default,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.st.Store(&state{valueGetter: expr.Identity, displayGetter: expr.Identity})

	err := errors.Join(
		b.CompileValueGetter(),
		b.CompileDisplayGetter(),
		b.initDataSource(),
		b.initTemplate(),
	)
	if err != nil {
		return nil, err
	}

	b.sub = store.Subscribe(func(c options.Change) {
		if err := b.OnOptionChanged(b.ctx, c.Name); err != nil {
			ctxlog.FromContext(b.ctx).Warn("Option change left binding degraded.", "option", c.Name, "error", err)
		}
	})
	return b, nil
}

// Close stops reacting to option changes.
func (b *Binding) Close() {
	b.sub.Unsubscribe()
}

// Options returns the store the binding reads from.
func (b *Binding) Options() *options.Store { return b.opts }

func (b *Binding) load() *state { return b.st.Load() }

// update applies fn to a copy of the current snapshot and publishes it.
func (b *Binding) update(fn func(s *state)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	next := *b.st.Load()
	fn(&next)
	b.st.Store(&next)
}

// expressionOption reads name as an expression. An unreadable option yields
// an expression whose getter is always undefined.
func (b *Binding) expressionOption(name options.Name) (expr.Expression, expr.Getter, error) {
	e, err := expr.FromAny(b.opts.Get(name))
	if err != nil {
		return expr.Func(expr.Undefined), expr.Undefined, fmt.Errorf("option %s: %w", name, err)
	}
	g, err := expr.Compile(e)
	if err != nil {
		return e, expr.Undefined, fmt.Errorf("option %s: %w", name, err)
	}
	return e, g, nil
}

// CompileValueGetter recompiles the value getter from the valueExpr option.
func (b *Binding) CompileValueGetter() error {
	e, g, err := b.expressionOption(options.ValueExpr)
	b.update(func(s *state) {
		s.valueExpr = e
		s.valueGetter = g
	})
	return err
}

// CompileDisplayGetter recompiles the display getter from the displayExpr option.
func (b *Binding) CompileDisplayGetter() error {
	e, g, err := b.expressionOption(options.DisplayExpr)
	b.update(func(s *state) {
		s.displayExpr = e
		s.displayGetter = g
	})
	return err
}

// ValueGetter returns the current value getter.
func (b *Binding) ValueGetter() expr.Getter { return b.load().valueGetter }

// DisplayGetter returns the current display getter.
func (b *Binding) DisplayGetter() expr.Getter { return b.load().displayGetter }

// ValueExpr returns the expression the value getter was compiled from.
func (b *Binding) ValueExpr() expr.Expression { return b.load().valueExpr }

// Collection returns the attached collection.
func (b *Binding) Collection() collection.Collection { return b.load().coll }

// Key returns the key descriptor of the attached collection.
func (b *Binding) Key() keys.Descriptor {
	return keyOf(b.load().coll)
}

func keyOf(c collection.Collection) keys.Descriptor {
	if c == nil {
		return keys.None
	}
	return c.Key()
}

// CollectionKeyExpr returns the value expression when it selects a field or
// is a function, which is when it can serve as the key of a collection view.
func (b *Binding) CollectionKeyExpr() (expr.Expression, bool) {
	e := b.load().valueExpr
	switch e.Kind() {
	case expr.KindPath, expr.KindFunc, expr.KindLua:
		return e, true
	}
	return expr.Expression{}, false
}

// NormalizeValue reduces raw to its canonical variant, falling back to the
// value option when raw is undefined.
func (b *Binding) NormalizeValue(raw any) value.Value {
	return b.normalize(b.load(), raw)
}

func (b *Binding) normalize(st *state, raw any) value.Value {
	return value.Normalize(raw, b.opts.Get(options.Value), value.Input{
		Key:           keyOf(st.coll),
		HasCollection: st.coll != nil,
		ValueExpr:     st.valueExpr,
	})
}

// ValuesEqual reports whether v1 and v2 denote the same record of the
// attached collection.
func (b *Binding) ValuesEqual(v1, v2 any) bool {
	return equality.Equal(v1, v2, b.Key())
}

// DisplayText renders item through the current template state.
func (b *Binding) DisplayText(item any) (string, error) {
	return b.load().tmpl.Render(item)
}

// TemplateGeneration returns how many times the template state was built.
func (b *Binding) TemplateGeneration() uint64 { return b.load().generation }
