package expr

import (
	"fmt"
	"reflect"
	"strings"
)

// ThisMarker is the literal expression meaning "the record itself".
const ThisMarker = "this"

// Kind identifies the variant held by an Expression.
type Kind int

const (
	KindIdentity Kind = iota
	KindPath
	KindFields
	KindFunc
	KindLua
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindIdentity:
		return "identity"
	case KindPath:
		return "path"
	case KindFields:
		return "fields"
	case KindFunc:
		return "func"
	case KindLua:
		return "lua"
	default:
		return "unknown"
	}
}

// Expression is an immutable field expression. The zero value is Identity.
type Expression struct {
	kind   Kind
	path   string
	fields []string
	fn     func(any) any
	lua    string
}

// This returns the identity expression.
func This() Expression {
	return Expression{}
}

// Path returns a field-path expression. "" and "this" yield Identity.
func Path(path string) Expression {
	path = strings.TrimSpace(path)
	if path == "" || path == ThisMarker {
		return Expression{}
	}
	return Expression{kind: KindPath, path: path}
}

// Parse is the config-facing constructor for string expressions.
func Parse(s string) Expression {
	return Path(s)
}

// Fields returns a composite expression over the given field names.
func Fields(names ...string) Expression {
	if len(names) == 0 {
		return Expression{}
	}
	return Expression{kind: KindFields, fields: append([]string(nil), names...)}
}

// Func wraps a Go accessor. A nil fn yields Identity.
func Func(fn func(record any) any) Expression {
	if fn == nil {
		return Expression{}
	}
	return Expression{kind: KindFunc, fn: fn}
}

// Lua returns an expression backed by the source of a Lua function taking
// the record as its only argument.
func Lua(source string) Expression {
	source = strings.TrimSpace(source)
	if source == "" {
		return Expression{}
	}
	return Expression{kind: KindLua, lua: source}
}

// FromAny converts loosely typed option values into an Expression.
func FromAny(v any) (Expression, error) {
	switch val := v.(type) {
	case nil:
		return Expression{}, nil
	case Expression:
		return val, nil
	case string:
		return Parse(val), nil
	case []string:
		return Fields(val...), nil
	case []any:
		names := make([]string, 0, len(val))
		for i, n := range val {
			s, ok := n.(string)
			if !ok {
				return Expression{}, fmt.Errorf("expression field %d must be a string, got %T", i, n)
			}
			names = append(names, s)
		}
		return Fields(names...), nil
	case func(any) any:
		return Func(val), nil
	case Getter:
		return Func(val), nil
	}
	return Expression{}, fmt.Errorf("unsupported expression type %T", v)
}

// Kind returns the expression variant.
func (e Expression) Kind() Kind { return e.kind }

// IsIdentity reports whether the expression selects the record itself.
func (e Expression) IsIdentity() bool { return e.kind == KindIdentity }

// PathString returns the raw path of a Path expression.
func (e Expression) PathString() string { return e.path }

// FieldNames returns a copy of the names of a Fields expression.
func (e Expression) FieldNames() []string { return append([]string(nil), e.fields...) }

// LuaSource returns the source of a Lua expression.
func (e Expression) LuaSource() string { return e.lua }

// Equal reports whether two expressions are the same. Func expressions are
// equal only when they wrap the same function.
func (e Expression) Equal(other Expression) bool {
	if e.kind != other.kind {
		return false
	}
	switch e.kind {
	case KindIdentity:
		return true
	case KindPath:
		return e.String() == other.String()
	case KindFields:
		if len(e.fields) != len(other.fields) {
			return false
		}
		for i := range e.fields {
			if e.fields[i] != other.fields[i] {
				return false
			}
		}
		return true
	case KindFunc:
		return reflect.ValueOf(e.fn).Pointer() == reflect.ValueOf(other.fn).Pointer()
	case KindLua:
		return e.lua == other.lua
	}
	return false
}

// String renders the expression. Paths are rendered in canonical HCL form
// when they parse as a traversal.
func (e Expression) String() string {
	switch e.kind {
	case KindIdentity:
		return ThisMarker
	case KindPath:
		return canonicalPath(e.path)
	case KindFields:
		return "[" + strings.Join(e.fields, ", ") + "]"
	case KindFunc:
		return "<func>"
	case KindLua:
		return "<lua>"
	}
	return "<unknown>"
}
