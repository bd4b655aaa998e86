// Package record gives uniform, read-only field and index access over every
// record shape the binding accepts: maps with string keys, structs (and
// pointers to them), cty object and map values, and JSON documents held as
// json.RawMessage.
//
// Access never fails loudly. A missing field, an out-of-range index or a
// lookup on something that is not a container reports ok == false and a nil
// value, which callers treat as "not defined".
package record

import (
	"encoding/json"
	"math/big"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

var (
	timeType     = reflect.TypeOf(time.Time{})
	bigIntType   = reflect.TypeOf(big.Int{})
	bigFloatType = reflect.TypeOf(big.Float{})
	bigRatType   = reflect.TypeOf(big.Rat{})
)

// IsDefined reports whether v carries a value. Untyped nil, typed nil
// pointers, maps, slices, funcs, channels and interfaces, null cty values and
// the JSON literal null are all undefined.
func IsDefined(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case cty.Value:
		return !val.IsNull() && val.IsKnown()
	case json.RawMessage:
		if val == nil {
			return false
		}
		trimmed := strings.TrimSpace(string(val))
		return trimmed != "" && trimmed != "null"
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}

// IsObject reports whether v is object-like, that is, a value with named
// fields. Time values and math/big numbers are structs in Go but behave as
// scalars here.
func IsObject(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case map[string]any:
		return val != nil
	case cty.Value:
		if val.IsNull() || !val.IsKnown() {
			return false
		}
		ty := val.Type()
		return ty.IsObjectType() || ty.IsMapType()
	case json.RawMessage:
		return strings.HasPrefix(strings.TrimSpace(string(val)), "{")
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		return !rv.IsNil() && rv.Type().Key().Kind() == reflect.String
	case reflect.Struct:
		return !isScalarStruct(rv.Type())
	}
	return false
}

func isScalarStruct(t reflect.Type) bool {
	switch t {
	case timeType, bigIntType, bigFloatType, bigRatType:
		return true
	}
	return false
}

// Field returns the field called name from v.
//
// Struct fields are matched by Go name, then by json tag, then by a
// case-insensitive name. When no field matches, an exported zero-argument
// method of that name is called and its first result returned.
func Field(v any, name string) (any, bool) {
	switch val := v.(type) {
	case nil:
		return nil, false
	case map[string]any:
		f, ok := val[name]
		return f, ok
	case cty.Value:
		return ctyField(val, name)
	case json.RawMessage:
		if !IsObject(val) {
			return nil, false
		}
		return fromGJSON(gjson.GetBytes(val, gjson.Escape(name)))
	}

	rv := reflect.ValueOf(v)
	base := rv
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		kt := rv.Type().Key()
		if kt.Kind() != reflect.String {
			return nil, false
		}
		fv := rv.MapIndex(reflect.ValueOf(name).Convert(kt))
		if !fv.IsValid() {
			return nil, false
		}
		return fv.Interface(), true
	case reflect.Struct:
		if isScalarStruct(rv.Type()) {
			return nil, false
		}
		if fv, ok := structField(rv, name); ok {
			return fv.Interface(), true
		}
		return callMethod(base, name)
	}
	return nil, false
}

// Index returns element i of a slice, array, cty list or tuple, or JSON array.
func Index(v any, i int) (any, bool) {
	if i < 0 {
		return nil, false
	}

	switch val := v.(type) {
	case nil:
		return nil, false
	case cty.Value:
		if val.IsNull() || !val.IsKnown() {
			return nil, false
		}
		ty := val.Type()
		if !ty.IsListType() && !ty.IsTupleType() {
			return nil, false
		}
		idx := cty.NumberIntVal(int64(i))
		if !val.HasIndex(idx).True() {
			return nil, false
		}
		return FromCty(val.Index(idx)), true
	case json.RawMessage:
		if !strings.HasPrefix(strings.TrimSpace(string(val)), "[") {
			return nil, false
		}
		return fromGJSON(gjson.GetBytes(val, strconv.Itoa(i)))
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if i >= rv.Len() {
			return nil, false
		}
		return rv.Index(i).Interface(), true
	}
	return nil, false
}

// FromCty converts primitive cty values to their Go counterparts (string,
// float64, bool, nil) and returns every other value as a cty.Value so nested
// access keeps working on it.
func FromCty(v cty.Value) any {
	if v.IsNull() || !v.IsKnown() {
		return nil
	}
	switch v.Type() {
	case cty.String:
		return v.AsString()
	case cty.Bool:
		return v.True()
	case cty.Number:
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return v
		}
		return f
	}
	return v
}

func ctyField(v cty.Value, name string) (any, bool) {
	if v.IsNull() || !v.IsKnown() {
		return nil, false
	}
	ty := v.Type()
	switch {
	case ty.IsObjectType():
		if !ty.HasAttribute(name) {
			return nil, false
		}
		return FromCty(v.GetAttr(name)), true
	case ty.IsMapType():
		key := cty.StringVal(name)
		if !v.HasIndex(key).True() {
			return nil, false
		}
		return FromCty(v.Index(key)), true
	}
	return nil, false
}

func fromGJSON(res gjson.Result) (any, bool) {
	if !res.Exists() {
		return nil, false
	}
	switch res.Type {
	case gjson.Null:
		return nil, true
	case gjson.False, gjson.True:
		return res.Bool(), true
	case gjson.Number:
		return res.Num, true
	case gjson.String:
		return res.Str, true
	}
	return json.RawMessage(res.Raw), true
}

func structField(rv reflect.Value, name string) (reflect.Value, bool) {
	rt := rv.Type()

	if sf, ok := rt.FieldByName(name); ok && sf.IsExported() {
		fv, err := rv.FieldByIndexErr(sf.Index)
		if err == nil {
			return fv, true
		}
	}

	var folded reflect.Value
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		if tag, _, _ := strings.Cut(sf.Tag.Get("json"), ","); tag == name {
			return rv.Field(i), true
		}
		if !folded.IsValid() && strings.EqualFold(sf.Name, name) {
			folded = rv.Field(i)
		}
	}
	return folded, folded.IsValid()
}

func callMethod(rv reflect.Value, name string) (any, bool) {
	if name == "" || !rv.IsValid() {
		return nil, false
	}
	m := rv.MethodByName(name)
	if !m.IsValid() && rv.Kind() != reflect.Pointer && rv.CanAddr() {
		m = rv.Addr().MethodByName(name)
	}
	if !m.IsValid() {
		return nil, false
	}
	mt := m.Type()
	if mt.NumIn() != 0 || mt.NumOut() == 0 {
		return nil, false
	}
	return m.Call(nil)[0].Interface(), true
}
