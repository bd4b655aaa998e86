// Package collection defines the backing collection contract the binding
// layer resolves values against.
package collection

import (
	"context"
	"errors"

	"github.com/specialistvlad/dataexpr/internal/expr"
	"github.com/specialistvlad/dataexpr/internal/keys"
)

// ErrNotFound is returned by LoadSingle when no record matches.
var ErrNotFound = errors.New("record not found")

// Collection is a keyed source of records.
//
// Implementations own their records and their key. Callers must not assume
// that LoadSingle returns an exact match: a collection may answer with the
// closest or a stale record, and verifying the result is the caller's job.
type Collection interface {
	// Key returns the key descriptor as currently configured.
	Key() keys.Descriptor
	// LoadSingle returns one record whose projection through e matches value.
	LoadSingle(ctx context.Context, e expr.Expression, value any) (any, error)
}

// Lister is implemented by collections that can enumerate their records.
type Lister interface {
	All(ctx context.Context) ([]any, error)
}
