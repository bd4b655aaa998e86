package luaexpr

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	lua "github.com/yuin/gopher-lua"
	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/dataexpr/internal/reactive"
	"github.com/specialistvlad/dataexpr/internal/record"
)

// maxDepth stops conversion of cyclic or absurdly deep values.
const maxDepth = 32

// toLua converts a record (or any part of one) into a Lua value.
func toLua(L *lua.LState, v any, depth int) lua.LValue {
	if depth > maxDepth {
		return lua.LNil
	}
	v = reactive.Unwrap(v)
	if !record.IsDefined(v) {
		return lua.LNil
	}

	switch val := v.(type) {
	case lua.LValue:
		return val
	case bool:
		return lua.LBool(val)
	case string:
		return lua.LString(val)
	case []byte:
		return lua.LString(val)
	case time.Time:
		return lua.LString(val.Format(time.RFC3339Nano))
	case cty.Value:
		return ctyToLua(L, val, depth)
	case json.RawMessage:
		var decoded any
		if err := json.Unmarshal(val, &decoded); err != nil {
			return lua.LNil
		}
		return toLua(L, decoded, depth)
	case fmt.Stringer:
		if !record.IsObject(v) {
			return lua.LString(val.String())
		}
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return lua.LNumber(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return lua.LNumber(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return lua.LNumber(rv.Float())
	case reflect.String:
		return lua.LString(rv.String())
	case reflect.Bool:
		return lua.LBool(rv.Bool())
	case reflect.Slice, reflect.Array:
		t := L.NewTable()
		for i := 0; i < rv.Len(); i++ {
			t.RawSetInt(i+1, toLua(L, rv.Index(i).Interface(), depth+1))
		}
		return t
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return lua.LNil
		}
		t := L.NewTable()
		iter := rv.MapRange()
		for iter.Next() {
			t.RawSetString(iter.Key().String(), toLua(L, iter.Value().Interface(), depth+1))
		}
		return t
	case reflect.Struct:
		t := L.NewTable()
		rt := rv.Type()
		for i := 0; i < rt.NumField(); i++ {
			sf := rt.Field(i)
			if !sf.IsExported() {
				continue
			}
			t.RawSetString(sf.Name, toLua(L, rv.Field(i).Interface(), depth+1))
		}
		return t
	}
	return lua.LNil
}

func ctyToLua(L *lua.LState, v cty.Value, depth int) lua.LValue {
	if v.IsNull() || !v.IsKnown() {
		return lua.LNil
	}
	ty := v.Type()
	switch {
	case ty.IsPrimitiveType():
		return toLua(L, record.FromCty(v), depth)
	case ty.IsObjectType() || ty.IsMapType():
		t := L.NewTable()
		it := v.ElementIterator()
		for it.Next() {
			k, ev := it.Element()
			t.RawSetString(k.AsString(), ctyToLua(L, ev, depth+1))
		}
		return t
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		t := L.NewTable()
		i := 1
		it := v.ElementIterator()
		for it.Next() {
			_, ev := it.Element()
			t.RawSetInt(i, ctyToLua(L, ev, depth+1))
			i++
		}
		return t
	}
	return lua.LNil
}

// toGo converts a Lua result back to Go. Integral numbers become int64,
// tables with contiguous 1..n keys become []any, other tables map[string]any.
func toGo(lv lua.LValue, depth int) any {
	if depth > maxDepth || lv == nil {
		return nil
	}
	switch v := lv.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		f := float64(v)
		if f == float64(int64(f)) {
			return int64(f)
		}
		return f
	case lua.LString:
		return string(v)
	case *lua.LTable:
		return tableToGo(v, depth)
	case *lua.LUserData:
		return v.Value
	}
	return nil
}

func tableToGo(t *lua.LTable, depth int) any {
	n := t.Len()
	count := 0
	t.ForEach(func(_, _ lua.LValue) { count++ })

	if n > 0 && n == count {
		arr := make([]any, n)
		for i := 1; i <= n; i++ {
			arr[i-1] = toGo(t.RawGetInt(i), depth+1)
		}
		return arr
	}

	m := make(map[string]any, count)
	t.ForEach(func(k, v lua.LValue) {
		m[k.String()] = toGo(v, depth+1)
	})
	return m
}
