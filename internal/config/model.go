package config

import (
	"errors"
	"fmt"
	"sort"

	"github.com/specialistvlad/dataexpr/internal/expr"
	"github.com/specialistvlad/dataexpr/internal/options"
)

// ErrUnknownKey is returned by FromMap for a key the model does not know.
var ErrUnknownKey = errors.New("unknown configuration key")

// File keys shared by every format.
const (
	KeyKey          = "key"
	KeyValueExpr    = "value_expr"
	KeyDisplayExpr  = "display_expr"
	KeyValueLua     = "value_lua"
	KeyDisplayLua   = "display_lua"
	KeyItemTemplate = "item_template"
	KeyValue        = "value"
	KeyItems        = "items"
)

// Model is the unified, format-agnostic representation of a binding's
// options. Unset options are nil.
type Model struct {
	// Key is a field name (string) or an ordered list of field names ([]string).
	Key          any
	ValueExpr    *string
	DisplayExpr  *string
	ValueLua     *string
	DisplayLua   *string
	ItemTemplate *string

	Value    any
	HasValue bool

	Items []any

	// Sources lists the files the model was read from, in load order.
	Sources []string
}

// Merge folds other into m. Options set in other override those in m, and
// items are appended.
func (m *Model) Merge(other *Model) {
	if other == nil {
		return
	}
	if other.Key != nil {
		m.Key = other.Key
	}
	for _, p := range []struct{ dst, src **string }{
		{&m.ValueExpr, &other.ValueExpr},
		{&m.DisplayExpr, &other.DisplayExpr},
		{&m.ValueLua, &other.ValueLua},
		{&m.DisplayLua, &other.DisplayLua},
		{&m.ItemTemplate, &other.ItemTemplate},
	} {
		if *p.src != nil {
			*p.dst = *p.src
		}
	}
	if other.HasValue {
		m.Value, m.HasValue = other.Value, true
	}
	m.Items = append(m.Items, other.Items...)
	m.Sources = append(m.Sources, other.Sources...)
}

// Options translates the model into option store values. Lua expressions
// take precedence over path expressions for the same role.
func (m *Model) Options() map[options.Name]any {
	out := map[options.Name]any{
		options.Items: append([]any{}, m.Items...),
	}
	if m.Key != nil {
		out[options.Key] = m.Key
	}
	switch {
	case m.ValueLua != nil:
		out[options.ValueExpr] = expr.Lua(*m.ValueLua)
	case m.ValueExpr != nil:
		out[options.ValueExpr] = *m.ValueExpr
	}
	switch {
	case m.DisplayLua != nil:
		out[options.DisplayExpr] = expr.Lua(*m.DisplayLua)
	case m.DisplayExpr != nil:
		out[options.DisplayExpr] = *m.DisplayExpr
	}
	if m.ItemTemplate != nil {
		out[options.ItemTemplate] = *m.ItemTemplate
	}
	if m.HasValue {
		out[options.Value] = m.Value
	}
	return out
}

// FromMap builds a model from a generic decoded document, as produced by the
// TOML and YAML decoders.
func FromMap(doc map[string]any) (*Model, error) {
	m := &Model{}

	names := make([]string, 0, len(doc))
	for k := range doc {
		names = append(names, k)
	}
	sort.Strings(names)

	for _, name := range names {
		raw := doc[name]
		var err error
		switch name {
		case KeyKey:
			m.Key, err = KeyFromAny(raw)
		case KeyValueExpr:
			m.ValueExpr, err = stringOption(name, raw)
		case KeyDisplayExpr:
			m.DisplayExpr, err = stringOption(name, raw)
		case KeyValueLua:
			m.ValueLua, err = stringOption(name, raw)
		case KeyDisplayLua:
			m.DisplayLua, err = stringOption(name, raw)
		case KeyItemTemplate:
			m.ItemTemplate, err = stringOption(name, raw)
		case KeyValue:
			m.Value, m.HasValue = raw, true
		case KeyItems:
			m.Items, err = ItemsFromAny(raw)
		default:
			err = fmt.Errorf("%w %q", ErrUnknownKey, name)
		}
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

func stringOption(name string, raw any) (*string, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("%s must be a string, got %T", name, raw)
	}
	return &s, nil
}

// KeyFromAny normalizes a decoded key option to a string or []string.
func KeyFromAny(raw any) (any, error) {
	switch k := raw.(type) {
	case nil:
		return nil, nil
	case string:
		return k, nil
	case []string:
		return k, nil
	case []any:
		fields := make([]string, 0, len(k))
		for i, f := range k {
			s, ok := f.(string)
			if !ok {
				return nil, fmt.Errorf("%s[%d] must be a string, got %T", KeyKey, i, f)
			}
			fields = append(fields, s)
		}
		return fields, nil
	}
	return nil, fmt.Errorf("%s must be a string or a list of strings, got %T", KeyKey, raw)
}

// ItemsFromAny normalizes a decoded items list.
func ItemsFromAny(raw any) ([]any, error) {
	switch items := raw.(type) {
	case nil:
		return nil, nil
	case []any:
		return items, nil
	case []map[string]any:
		out := make([]any, len(items))
		for i, it := range items {
			out[i] = it
		}
		return out, nil
	}
	return nil, fmt.Errorf("%s must be a list, got %T", KeyItems, raw)
}
