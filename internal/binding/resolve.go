package binding

import (
	"context"

	"github.com/specialistvlad/dataexpr/internal/ctxlog"
	"github.com/specialistvlad/dataexpr/internal/deferred"
	"github.com/specialistvlad/dataexpr/internal/equality"
)

// ResolveValue resolves raw into the matching record of the collection.
//
// The returned promise is rejected with ErrUndefinedValue when raw
// normalizes to nothing, with a *LookupError when the collection fails, with
// a *MismatchError when the record it returns does not project to the
// requested value, and with a *VerifyError when projecting it panics. The
// lookup and its verification run on the snapshot taken when the call
// starts, so an option change during the call does not mix an old lookup
// with a new getter.
func (b *Binding) ResolveValue(ctx context.Context, raw any) *deferred.Promise[any] {
	st := b.load()
	normalized := b.normalize(st, raw)
	logger := ctxlog.FromContext(ctx).With("kind", normalized.Kind().String())

	if !normalized.IsDefined() {
		logger.Debug("Value not resolved: undefined.")
		return deferred.RejectedWith[any](ErrUndefinedValue)
	}
	requested := normalized.Interface()
	if st.coll == nil {
		logger.Debug("Value not resolved: no collection.")
		return deferred.RejectedWith[any](&LookupError{Value: requested, Err: ErrNoCollection})
	}

	out := deferred.New[any]()
	lookup := deferred.Go(ctx, func(ctx context.Context) (any, error) {
		return st.coll.LoadSingle(ctx, st.valueExpr, requested)
	})
	lookup.Done(func(item any) {
		projected, ok, err := verify(st, item, requested)
		switch {
		case err != nil:
			logger.Debug("Value not resolved: verification failed.", "value", requested, "error", err)
			out.Reject(err)
		case ok:
			logger.Debug("Value resolved.", "value", requested)
			out.Resolve(item)
		default:
			logger.Debug("Value not resolved: lookup returned another record.", "value", requested, "projected", projected)
			out.Reject(&MismatchError{Requested: requested, Actual: projected})
		}
	}).Fail(func(err error) {
		logger.Debug("Value not resolved: lookup failed.", "value", requested, "error", err)
		out.Reject(&LookupError{Value: requested, Err: err})
	})
	return out.Promise()
}

// verify projects item through the value getter and compares it with the
// requested value. A panicking getter is reported as an error.
func verify(st *state, item, requested any) (projected any, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &VerifyError{Requested: requested, Panic: r}
		}
	}()
	projected = st.valueGetter(item)
	return projected, equality.Equal(projected, requested, st.coll.Key()), nil
}

// Resolve is the blocking form of ResolveValue.
func (b *Binding) Resolve(ctx context.Context, raw any) (any, error) {
	return b.ResolveValue(ctx, raw).Wait(ctx)
}
