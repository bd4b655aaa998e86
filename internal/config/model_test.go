package config

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/dataexpr/internal/expr"
	"github.com/specialistvlad/dataexpr/internal/options"
)

func strPtr(s string) *string { return &s }

func TestFromMap(t *testing.T) {
	m, err := FromMap(map[string]any{
		"key":           []any{"a", "b"},
		"value_expr":    "this",
		"display_expr":  "name",
		"item_template": "{{.Display}}",
		"value":         map[string]any{"a": 1, "b": 2},
		"items": []any{
			map[string]any{"a": 1, "b": 2, "name": "x"},
		},
	})
	require.NoError(t, err)

	want := &Model{
		Key:          []string{"a", "b"},
		ValueExpr:    strPtr("this"),
		DisplayExpr:  strPtr("name"),
		ItemTemplate: strPtr("{{.Display}}"),
		Value:        map[string]any{"a": 1, "b": 2},
		HasValue:     true,
		Items:        []any{map[string]any{"a": 1, "b": 2, "name": "x"}},
	}
	if diff := cmp.Diff(want, m); diff != "" {
		t.Errorf("FromMap() mismatch (-want +got):\n%s", diff)
	}
}

func TestFromMap_Errors(t *testing.T) {
	testCases := []struct {
		name string
		doc  map[string]any
	}{
		{"unknown key", map[string]any{"colour": "red"}},
		{"non string expression", map[string]any{"display_expr": 3}},
		{"bad key list", map[string]any{"key": []any{"a", 1}}},
		{"bad key type", map[string]any{"key": 7}},
		{"items not a list", map[string]any{"items": "a"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FromMap(tc.doc)
			require.Error(t, err)
		})
	}

	_, err := FromMap(map[string]any{"colour": "red"})
	assert.ErrorIs(t, err, ErrUnknownKey)
}

func TestModel_Merge(t *testing.T) {
	base := &Model{
		Key:         "id",
		DisplayExpr: strPtr("name"),
		Items:       []any{"a"},
		Sources:     []string{"one.hcl"},
	}
	base.Merge(&Model{
		DisplayExpr: strPtr("title"),
		Value:       nil,
		HasValue:    true,
		Items:       []any{"b"},
		Sources:     []string{"two.yaml"},
	})
	base.Merge(nil)

	assert.Equal(t, "id", base.Key)
	assert.Equal(t, "title", *base.DisplayExpr)
	assert.True(t, base.HasValue)
	assert.Nil(t, base.Value)
	assert.Equal(t, []any{"a", "b"}, base.Items)
	assert.Equal(t, []string{"one.hcl", "two.yaml"}, base.Sources)
}

func TestModel_Options(t *testing.T) {
	m := &Model{
		Key:         "id",
		ValueExpr:   strPtr("id"),
		DisplayExpr: strPtr("name"),
		DisplayLua:  strPtr("function(item) return item.name end"),
		Value:       2,
		HasValue:    true,
		Items:       []any{map[string]any{"id": 2}},
	}
	opts := m.Options()

	assert.Equal(t, "id", opts[options.Key])
	assert.Equal(t, "id", opts[options.ValueExpr])
	assert.Equal(t, expr.Lua("function(item) return item.name end"), opts[options.DisplayExpr], "lua wins over a path")
	assert.Equal(t, 2, opts[options.Value])
	assert.Equal(t, []any{map[string]any{"id": 2}}, opts[options.Items])
	assert.NotContains(t, opts, options.ItemTemplate)

	empty := (&Model{}).Options()
	assert.Equal(t, []any{}, empty[options.Items])
	assert.NotContains(t, empty, options.Value)
}
