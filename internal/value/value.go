// Package value models the shapes a selection value can arrive in and
// reduces them to one canonical variant before any comparison happens.
//
// # Variants
//
//   - Empty: nothing usable (nil, typed nil, null cty or JSON null)
//   - Primitive: a scalar such as a number, string, time or GUID
//   - KeyObject: an object carrying only key fields, e.g. {a: 1, b: 2}
//   - Record: any other object, typically a full collection record
//   - Wrapped: a reactive container around one of the above
//
// Normalize never returns a Wrapped value.
package value

import (
	"fmt"
	"reflect"

	"github.com/specialistvlad/dataexpr/internal/expr"
	"github.com/specialistvlad/dataexpr/internal/keys"
	"github.com/specialistvlad/dataexpr/internal/reactive"
	"github.com/specialistvlad/dataexpr/internal/record"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	Empty Kind = iota
	Primitive
	KeyObject
	Record
	Wrapped
)

func (k Kind) String() string {
	switch k {
	case Empty:
		return "empty"
	case Primitive:
		return "primitive"
	case KeyObject:
		return "key-object"
	case Record:
		return "record"
	case Wrapped:
		return "wrapped"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is a classified selection value. The zero Value is Empty.
type Value struct {
	kind Kind
	v    any
}

// Kind returns the variant.
func (v Value) Kind() Kind { return v.kind }

// Interface returns the underlying Go value, nil for Empty.
func (v Value) Interface() any { return v.v }

// IsDefined reports whether v carries a usable value.
func (v Value) IsDefined() bool { return v.kind != Empty }

func (v Value) String() string {
	if v.kind == Empty {
		return "empty"
	}
	return fmt.Sprintf("%s(%v)", v.kind, v.v)
}

// Classify builds the tagged form of v. The key decides whether an object is
// a bare key object or a full record. Wrappers are reported as Wrapped and
// left as they are.
func Classify(v any, key keys.Descriptor) Value {
	if reactive.IsWrapped(v) {
		return Value{kind: Wrapped, v: v}
	}
	if !record.IsDefined(v) {
		return Value{}
	}
	if !record.IsObject(v) {
		return Value{kind: Primitive, v: v}
	}
	if isKeyObject(v, key) {
		return Value{kind: KeyObject, v: v}
	}
	return Value{kind: Record, v: v}
}

// isKeyObject reports whether every entry of the map v names a key field.
// Structs always count as records.
func isKeyObject(v any, key keys.Descriptor) bool {
	if key.IsZero() {
		return false
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Map || rv.Len() == 0 {
		return false
	}
	iter := rv.MapRange()
	for iter.Next() {
		if !key.Has(iter.Key().String()) {
			return false
		}
	}
	return true
}

// Input carries the binding state normalization depends on.
type Input struct {
	// Key is the key descriptor currently reported by the collection.
	Key keys.Descriptor
	// HasCollection is set when a backing collection is attached.
	HasCollection bool
	// ValueExpr is the configured value expression.
	ValueExpr expr.Expression
}

// Normalize reduces raw to its canonical variant.
//
// An undefined raw falls back to current. Reactive containers are unwrapped.
// When a collection is attached and the value expression is the record
// itself, the configured value is the record's key, so the value is projected
// down to the key shape. Nil is never replaced by a default.
func Normalize(raw, current any, in Input) Value {
	v := raw
	if !record.IsDefined(v) {
		v = current
	}
	v = reactive.Unwrap(v)

	if record.IsDefined(v) && in.HasCollection && in.ValueExpr.IsIdentity() {
		v = reactive.Unwrap(keys.Project(v, in.Key))
	}
	return Classify(v, in.Key)
}
