// Package expr turns declarative field expressions into getter functions.
//
// An Expression names how to derive a value from a record. It is one of:
//
//   - Identity: the record itself. "this", "" and the zero Expression.
//   - Path: a field path such as "name", "address.city" or "tags[0]".
//   - Fields: an ordered list of field names forming a composite key.
//   - Func: a Go accessor, func(record any) any.
//   - Lua: the source of a Lua function, e.g.
//     `function(item) return item.first .. " " .. item.last end`.
//
// Compile produces a Getter for every kind except Fields, which only has
// meaning as a composite key and is consumed by the equality engine.
//
// # Path syntax
//
// Paths use HCL traversal syntax, so "a.b", "a[0]" and `a["odd key"]` all
// work. Paths HCL cannot read, for example numeric segments like "items.0",
// are split on dots with "[n]" treated as ".n". Walking a path never fails:
// a missing field or index anywhere along the way makes the getter return
// nil. Reactive wrappers met along the path are unwrapped and fields holding
// a func() any are called.
package expr
