// Package luaexpr compiles custom accessor expressions written in Lua.
//
// An accessor is the source of a Lua function that receives the record as
// its only argument:
//
//	function(item) return item.first .. " " .. item.last end
//
// The source is parsed and compiled once into a function prototype. Calls
// run on pooled, sandboxed interpreter states (no io, os, debug or package
// libraries), each bounded by CallTimeout. gopher-lua states are not safe for
// concurrent use, so a state is owned by exactly one call at a time.
package luaexpr

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
)

// CallTimeout bounds a single accessor call.
const CallTimeout = time.Second

// ErrNotFunction is returned when the source does not evaluate to a function.
var ErrNotFunction = errors.New("lua expression does not evaluate to a function")

const chunkName = "<expression>"

// worker is an interpreter state with the accessor already loaded.
type worker struct {
	L  *lua.LState
	fn *lua.LFunction
}

// Accessor is a compiled Lua accessor.
type Accessor struct {
	proto *lua.FunctionProto
	pool  sync.Pool
}

// Compile parses source and verifies it evaluates to a function.
func Compile(source string) (func(record any) any, error) {
	acc, err := NewAccessor(source)
	if err != nil {
		return nil, err
	}
	return acc.Get, nil
}

// NewAccessor compiles source into an Accessor.
func NewAccessor(source string) (*Accessor, error) {
	code := "return (" + strings.TrimSpace(source) + ")"
	chunk, err := parse.Parse(strings.NewReader(code), chunkName)
	if err != nil {
		return nil, fmt.Errorf("parsing lua expression: %w", err)
	}
	proto, err := lua.Compile(chunk, chunkName)
	if err != nil {
		return nil, fmt.Errorf("compiling lua expression: %w", err)
	}

	acc := &Accessor{proto: proto}

	// Load once up front so a non-function source fails here, not on first use.
	w, err := acc.newWorker()
	if err != nil {
		return nil, err
	}
	acc.pool.Put(w)
	return acc, nil
}

// Call runs the accessor on rec and returns its first result.
func (a *Accessor) Call(ctx context.Context, rec any) (any, error) {
	w, err := a.acquire()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, CallTimeout)
	defer cancel()

	L := w.L
	L.SetContext(ctx)
	defer L.RemoveContext()

	top := L.GetTop()
	callErr := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("lua panic: %v", r)
			}
		}()
		return L.CallByParam(lua.P{Fn: w.fn, NRet: 1, Protect: true}, toLua(L, rec, 0))
	}()
	if callErr != nil {
		// A failed call may leave the stack in an unknown state; drop the worker.
		L.Close()
		return nil, callErr
	}

	ret := L.Get(-1)
	L.SetTop(top)
	a.pool.Put(w)
	return toGo(ret, 0), nil
}

// Get is the Getter form of Call: errors yield nil.
func (a *Accessor) Get(rec any) any {
	out, err := a.Call(context.Background(), rec)
	if err != nil {
		return nil
	}
	return out
}

func (a *Accessor) acquire() (*worker, error) {
	if w, ok := a.pool.Get().(*worker); ok && w != nil {
		return w, nil
	}
	return a.newWorker()
}

func (a *Accessor) newWorker() (*worker, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(L)

	L.Push(L.NewFunctionFromProto(a.proto))
	if err := L.PCall(0, 1, nil); err != nil {
		L.Close()
		return nil, fmt.Errorf("loading lua expression: %w", err)
	}
	fn, ok := L.Get(-1).(*lua.LFunction)
	L.Pop(1)
	if !ok {
		L.Close()
		return nil, ErrNotFunction
	}
	return &worker{L: L, fn: fn}, nil
}

// openSafeLibraries opens the side-effect free standard libraries only.
func openSafeLibraries(L *lua.LState) {
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
	for _, unsafe := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		L.SetGlobal(unsafe, lua.LNil)
	}
}
