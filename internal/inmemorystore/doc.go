// Package inmemorystore provides an ephemeral, thread-safe, in-memory
// implementation of the collection.Collection interface.
//
// # Purpose
//
// This package is the default backing collection. When a binding is given a
// plain list of items instead of an external data source, it builds one of
// these stores from the list through Default.
//
// # Characteristics
//
//   - **Ordered:** Records keep insertion order; lookups return the first match
//   - **Keyed:** An optional scalar or composite key drives by-key lookups
//   - **Thread-Safe:** A sync.RWMutex guards the record slice
//   - **Linear:** Lookups scan the records, which suits option-sized lists
//
// # Lookups
//
// LoadSingle answers by key when the expression is the record itself or names
// the scalar key field. Any other expression is compiled into a getter and
// each record's projection is compared with the requested value.
//
// # When to Use
//
// This implementation is suitable for:
//   - Static item lists from configuration files
//   - Tests that need a predictable collection
//
// Paged or remote sources should implement collection.Collection themselves.
package inmemorystore
