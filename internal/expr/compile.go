package expr

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/dataexpr/internal/luaexpr"
)

// ErrCompositeExpression is returned when compiling a Fields expression.
var ErrCompositeExpression = errors.New("composite expressions cannot be compiled into a getter")

// Getter projects a record to a value.
type Getter func(record any) any

// Identity returns its input unchanged.
func Identity(record any) any { return record }

// Undefined always returns nil. It stands in for an expression that failed
// to compile.
func Undefined(any) any { return nil }

// Compile turns e into a Getter.
func Compile(e Expression) (Getter, error) {
	switch e.kind {
	case KindIdentity:
		return Identity, nil
	case KindPath:
		segs, err := parsePath(e.path)
		if err != nil {
			return nil, err
		}
		return func(rec any) any { return walk(rec, segs) }, nil
	case KindFunc:
		return Getter(e.fn), nil
	case KindLua:
		fn, err := luaexpr.Compile(e.lua)
		if err != nil {
			return nil, fmt.Errorf("compiling lua expression: %w", err)
		}
		return Getter(fn), nil
	case KindFields:
		return nil, ErrCompositeExpression
	}
	return nil, fmt.Errorf("unknown expression kind %d", e.kind)
}

// MustCompile is like Compile but panics on error. Intended for tests and
// package-level expressions known to be valid.
func MustCompile(e Expression) Getter {
	g, err := Compile(e)
	if err != nil {
		panic(err)
	}
	return g
}
