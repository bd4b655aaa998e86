// Package keys models the key descriptor a backing collection reports for
// its records and projects arbitrary values down to that key shape.
package keys

import (
	"errors"
	"fmt"
	"strings"

	"github.com/specialistvlad/dataexpr/internal/record"
)

// ErrEmptyKeyField is returned by Validate for a descriptor naming an empty field.
var ErrEmptyKeyField = errors.New("key descriptor contains an empty field name")

// Descriptor names the field (scalar key) or ordered fields (composite key)
// that identify a record. The zero Descriptor means the collection has no key
// and records identify themselves.
type Descriptor struct {
	fields    []string
	composite bool
}

// None is the descriptor of a collection without a key.
var None = Descriptor{}

// Scalar returns a single-field key descriptor.
func Scalar(field string) Descriptor {
	return Descriptor{fields: []string{field}}
}

// Composite returns an ordered multi-field key descriptor. A composite key
// with a single field still compares field-wise, like its multi-field form.
func Composite(fields ...string) Descriptor {
	if len(fields) == 0 {
		return None
	}
	return Descriptor{fields: append([]string(nil), fields...), composite: true}
}

// FromAny builds a descriptor from loosely typed configuration: a string is a
// scalar key, a list of strings a composite one, nil means no key.
func FromAny(v any) (Descriptor, error) {
	switch val := v.(type) {
	case nil:
		return None, nil
	case Descriptor:
		return val, nil
	case string:
		if val == "" {
			return None, nil
		}
		return Scalar(val), nil
	case []string:
		return Composite(val...), nil
	case []any:
		fields := make([]string, 0, len(val))
		for i, f := range val {
			s, ok := f.(string)
			if !ok {
				return None, fmt.Errorf("key field %d must be a string, got %T", i, f)
			}
			fields = append(fields, s)
		}
		return Composite(fields...), nil
	}
	return None, fmt.Errorf("unsupported key descriptor type %T", v)
}

// IsZero reports whether the descriptor names no key.
func (d Descriptor) IsZero() bool {
	return len(d.fields) == 0
}

// IsComposite reports whether the key is an ordered sequence of fields.
func (d Descriptor) IsComposite() bool {
	return d.composite
}

// Name returns the field of a scalar key, or "" otherwise.
func (d Descriptor) Name() string {
	if d.composite || len(d.fields) == 0 {
		return ""
	}
	return d.fields[0]
}

// Fields returns a copy of the key fields.
func (d Descriptor) Fields() []string {
	return append([]string(nil), d.fields...)
}

// Has reports whether field is part of the key.
func (d Descriptor) Has(field string) bool {
	for _, f := range d.fields {
		if f == field {
			return true
		}
	}
	return false
}

// Equal reports whether two descriptors describe the same key.
func (d Descriptor) Equal(other Descriptor) bool {
	if d.composite != other.composite || len(d.fields) != len(other.fields) {
		return false
	}
	for i := range d.fields {
		if d.fields[i] != other.fields[i] {
			return false
		}
	}
	return true
}

// Validate checks the descriptor for empty field names.
func (d Descriptor) Validate() error {
	for i, f := range d.fields {
		if strings.TrimSpace(f) == "" {
			return fmt.Errorf("%w (position %d)", ErrEmptyKeyField, i)
		}
	}
	return nil
}

// String renders "id" for scalar keys and "[a, b]" for composite ones.
func (d Descriptor) String() string {
	switch {
	case d.IsZero():
		return "<none>"
	case d.composite:
		return "[" + strings.Join(d.fields, ", ") + "]"
	}
	return d.fields[0]
}

// Project reduces value to the key shape described by d.
//
// A scalar key extracts the named field from object-like values and keeps
// anything else as is, on the assumption that it already is a key. A
// composite key always yields a map from each key field to the value's field,
// nil when absent. The zero descriptor returns value unchanged.
func Project(value any, d Descriptor) any {
	if d.IsZero() {
		return value
	}
	if d.composite {
		out := make(map[string]any, len(d.fields))
		for _, f := range d.fields {
			v, _ := record.Field(value, f)
			out[f] = v
		}
		return out
	}
	if record.IsObject(value) {
		v, _ := record.Field(value, d.fields[0])
		return v
	}
	return value
}
