// Package canon reduces arbitrary values to a canonical form that can be
// compared with ==, so that semantic equality of two selection values becomes
// plain equality of their canonical forms.
//
// The canonical form follows these rules:
//
//   - nil and every typed nil are nil.
//   - All Go numeric kinds collapse into one number representation, so
//     int(2), int64(2) and float64(2) are the same value. NaN never equals
//     anything, itself included.
//   - time.Time compares by instant, uuid.UUID by its string form.
//   - Strings compare as-is in strict mode and lower-cased otherwise.
//   - Primitive cty values compare like their Go counterparts; other cty
//     values compare by their JSON encoding.
//   - Maps, slices, funcs and channels compare by reference.
//   - Pointers and comparable structs or arrays compare as themselves.
//   - Structs or arrays that Go cannot compare fall back to a structural dump.
package canon

import (
	"math"
	"math/big"
	"reflect"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/uuid"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

type numberKey string

type instantKey struct {
	sec  int64
	nsec int
}

type refKey struct {
	typ reflect.Type
	ptr uintptr
	len int
}

type ctyKey string

type dumpKey string

// nanKey is allocated per NaN so two NaNs never share a canonical form.
type nanKey struct{ _ byte }

var dumper = spew.ConfigState{
	Indent:                  " ",
	SortKeys:                true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	DisableMethods:          true,
}

var (
	bigFloatPtrType = reflect.TypeOf(&big.Float{})
	bigIntPtrType   = reflect.TypeOf(&big.Int{})
)

// ToComparable returns the canonical comparable form of v. When strict is false
// strings are compared case-insensitively.
func ToComparable(v any, strict bool) any {
	return canonical(v, strict, true)
}

// Equal reports whether a and b share the same strict canonical form.
func Equal(a, b any) bool {
	return ToComparable(a, true) == ToComparable(b, true)
}

// Identical is the strict comparison used when matching key fields: numbers
// of any Go kind compare by value, every other value compares as itself
// (maps, slices and funcs by reference). Unlike Equal it applies no special
// treatment to times, UUIDs or cty values.
func Identical(a, b any) bool {
	return canonical(a, true, false) == canonical(b, true, false)
}

// Same reports whether a and b are Equal or, failing that, values of the
// same type with identical structure. It is meant for change detection of
// option values, where a freshly built list with unchanged content must not
// count as a change.
func Same(a, b any) bool {
	if Equal(a, b) {
		return true
	}
	if a == nil || b == nil || reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	return dumper.Sdump(a) == dumper.Sdump(b)
}

func canonical(v any, strict, special bool) any {
	if v == nil {
		return nil
	}

	switch val := v.(type) {
	case string:
		if strict {
			return val
		}
		return strings.ToLower(val)
	case bool:
		return val
	case float64:
		return floatKey(val)
	case float32:
		return floatKey(float64(val))
	}

	if special {
		switch val := v.(type) {
		case time.Time:
			return instantKey{sec: val.Unix(), nsec: val.Nanosecond()}
		case *time.Time:
			if val == nil {
				return nil
			}
			return instantKey{sec: val.Unix(), nsec: val.Nanosecond()}
		case uuid.UUID:
			return canonical(val.String(), strict, special)
		case cty.Value:
			return ctyCanonical(val, strict)
		}
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return numberOf(v)
	case reflect.Float32, reflect.Float64:
		return floatKey(rv.Float())
	case reflect.String:
		return canonical(rv.String(), strict, special)
	case reflect.Bool:
		return rv.Bool()
	case reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		if rv.IsNil() {
			return nil
		}
		key := refKey{typ: rv.Type(), ptr: rv.Pointer()}
		if rv.Kind() == reflect.Slice {
			key.len = rv.Len()
		}
		return key
	case reflect.Pointer:
		if rv.IsNil() {
			return nil
		}
		if rv.Type() == bigFloatPtrType || rv.Type() == bigIntPtrType {
			return numberOf(v)
		}
		return v
	case reflect.Struct, reflect.Array:
		if rv.Comparable() {
			return v
		}
		return dumpKey(dumper.Sdump(v))
	}
	return v
}

func floatKey(f float64) any {
	if math.IsNaN(f) {
		return &nanKey{}
	}
	return numberOf(f)
}

// numberOf funnels every numeric kind through cty so integers and floats
// holding the same number agree on a single textual key.
func numberOf(v any) any {
	n, err := gocty.ToCtyValue(v, cty.Number)
	if err != nil || n.IsNull() {
		return v
	}
	return numberKey(n.AsBigFloat().Text('g', -1))
}

func ctyCanonical(v cty.Value, strict bool) any {
	if v.IsNull() {
		return nil
	}
	if !v.IsKnown() {
		return &nanKey{}
	}
	ty := v.Type()
	switch ty {
	case cty.String:
		return canonical(v.AsString(), strict, true)
	case cty.Bool:
		return v.True()
	case cty.Number:
		return numberKey(v.AsBigFloat().Text('g', -1))
	}
	raw, err := ctyjson.Marshal(v, ty)
	if err != nil {
		return dumpKey(dumper.Sdump(v))
	}
	return ctyKey(ty.FriendlyName() + ":" + string(raw))
}
