// Package template holds the per-item template state of a binding: how a
// single record is turned into display text.
package template

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/specialistvlad/dataexpr/internal/expr"
	"github.com/specialistvlad/dataexpr/internal/record"
)

// DefaultName is the built-in template that renders the display projection.
const DefaultName = "item"

// Data is what a custom template is executed with.
type Data struct {
	Item    any
	Display any
	Value   any
}

// State is an immutable, compiled item template.
type State struct {
	source     string
	tmpl       *template.Template
	display    expr.Getter
	value      expr.Getter
	generation uint64
}

// Build compiles itemTemplate. A nil, empty or "item" template renders the
// display projection directly; any other string is a text/template executed
// with Data. generation lets callers tell rebuilt states apart.
func Build(itemTemplate any, display, value expr.Getter, generation uint64) (*State, error) {
	if display == nil {
		display = expr.Identity
	}
	if value == nil {
		value = expr.Identity
	}
	s := &State{display: display, value: value, generation: generation}

	switch src := itemTemplate.(type) {
	case nil:
		s.source = DefaultName
	case string:
		s.source = strings.TrimSpace(src)
		if s.source == "" {
			s.source = DefaultName
		}
	default:
		return nil, fmt.Errorf("item template must be a string, got %T", itemTemplate)
	}

	if s.source == DefaultName {
		return s, nil
	}
	tmpl, err := template.New(DefaultName).Option("missingkey=zero").Parse(s.source)
	if err != nil {
		return nil, fmt.Errorf("parsing item template: %w", err)
	}
	s.tmpl = tmpl
	return s, nil
}

// Source returns the template text, or DefaultName.
func (s *State) Source() string { return s.source }

// Generation returns the generation the state was built with.
func (s *State) Generation() uint64 { return s.generation }

// IsDefault reports whether the built-in template is in use.
func (s *State) IsDefault() bool { return s.tmpl == nil }

// Render turns item into text. An undefined display projection renders as
// the empty string.
func (s *State) Render(item any) (string, error) {
	display := s.display(item)
	if s.tmpl == nil {
		if !record.IsDefined(display) {
			return "", nil
		}
		return fmt.Sprint(display), nil
	}

	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, Data{Item: item, Display: display, Value: s.value(item)}); err != nil {
		return "", fmt.Errorf("rendering item template: %w", err)
	}
	return buf.String(), nil
}
