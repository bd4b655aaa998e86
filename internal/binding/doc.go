// Package binding resolves a selection value against a keyed collection and
// keeps its getters in step with the options they are compiled from.
//
// # Overview
//
// A Binding owns three pieces of derived state: the value getter, the display
// getter and the per-item template state, plus a reference to the backing
// collection. All of it lives in one immutable snapshot that is swapped
// atomically, so a reader never sees a getter paired with an expression it
// was not compiled from.
//
// # Resolution
//
// ResolveValue turns a raw value into a record in two steps:
//
//  1. Normalize the value (see package value). An undefined result fails
//     with ErrUndefinedValue before the collection is touched.
//  2. Ask the collection for a single record, then project that record
//     through the value getter and compare it with the normalized input
//     using the collection's key. Only an equal projection resolves.
//
// The collection is not trusted to return exact matches; the second step is
// what makes a resolution correct. Lookup failures surface as *LookupError,
// failed verification as *MismatchError, and both satisfy
// errors.Is(err, ErrNotResolved).
//
// Calls are independent. A new call does not cancel an earlier one, so
// overlapping resolutions may complete in any order.
//
// # Reactions
//
// A Binding subscribes to its options.Store. Every option change runs
// exactly one reaction (see OnOptionChanged). Reactions never touch state
// that belongs to another option.
package binding
