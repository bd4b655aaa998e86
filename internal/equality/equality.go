// Package equality decides whether two selection values denote the same
// logical entity of a keyed collection.
package equality

import (
	"github.com/specialistvlad/dataexpr/internal/canon"
	"github.com/specialistvlad/dataexpr/internal/keys"
	"github.com/specialistvlad/dataexpr/internal/reactive"
	"github.com/specialistvlad/dataexpr/internal/record"
	"github.com/specialistvlad/dataexpr/internal/value"
)

// Equal reports whether v1 and v2 are the same entity under key.
//
// Values are first compared by their canonical form. If that fails, a key is
// present and both values are defined, the key decides: a composite key
// requires two objects agreeing on every key field, a scalar key compares the
// key field of each side, or the side itself when it has no such field.
func Equal(v1, v2 any, key keys.Descriptor) bool {
	v1, v2 = reactive.Unwrap(v1), reactive.Unwrap(v2)

	if canon.Equal(v1, v2) {
		return true
	}
	if key.IsZero() || !record.IsDefined(v1) || !record.IsDefined(v2) {
		return false
	}
	if key.IsComposite() {
		return compositeEqual(v1, v2, key.Fields())
	}
	return canon.Equal(scalarKey(v1, key.Name()), scalarKey(v2, key.Name()))
}

// Values is Equal over classified values.
func Values(a, b value.Value, key keys.Descriptor) bool {
	return Equal(a.Interface(), b.Interface(), key)
}

func compositeEqual(v1, v2 any, fields []string) bool {
	if !record.IsObject(v1) || !record.IsObject(v2) {
		return false
	}
	for _, f := range fields {
		a, _ := record.Field(v1, f)
		b, _ := record.Field(v2, f)
		if !canon.Identical(a, b) {
			return false
		}
	}
	return true
}

// scalarKey returns the key field of v, or v itself when the field is
// absent. The fallback keeps bare keys comparable with full records, but it
// also hides a key name that matches no field.
func scalarKey(v any, name string) any {
	field, _ := record.Field(v, name)
	field = reactive.Unwrap(field)
	if !record.IsDefined(field) {
		return v
	}
	return field
}
