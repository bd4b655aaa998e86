package record

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

type address struct {
	City string `json:"city"`
}

type person struct {
	ID      int
	Name    string `json:"full_name"`
	Address *address
	secret  string
}

func (p person) Initials() string {
	if p.Name == "" {
		return ""
	}
	return p.Name[:1]
}

func TestIsDefined(t *testing.T) {
	var nilMap map[string]any
	var nilPtr *person

	testCases := []struct {
		name  string
		value any
		want  bool
	}{
		{"untyped nil", nil, false},
		{"typed nil map", nilMap, false},
		{"typed nil pointer", nilPtr, false},
		{"zero int", 0, true},
		{"empty string", "", true},
		{"false", false, true},
		{"cty null", cty.NullVal(cty.String), false},
		{"cty value", cty.StringVal("x"), true},
		{"json null", json.RawMessage("null"), false},
		{"json number", json.RawMessage("0"), true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsDefined(tc.value))
		})
	}
}

func TestIsObject(t *testing.T) {
	assert.True(t, IsObject(map[string]any{}))
	assert.True(t, IsObject(map[string]int{"a": 1}))
	assert.True(t, IsObject(person{}))
	assert.True(t, IsObject(&person{}))
	assert.True(t, IsObject(cty.ObjectVal(map[string]cty.Value{"a": cty.True})))
	assert.True(t, IsObject(json.RawMessage(` {"a":1}`)))

	assert.False(t, IsObject(nil))
	assert.False(t, IsObject(5))
	assert.False(t, IsObject("id"))
	assert.False(t, IsObject(time.Now()))
	assert.False(t, IsObject([]any{1}))
	assert.False(t, IsObject(map[int]any{1: 1}))
	assert.False(t, IsObject(json.RawMessage(`[1]`)))
	assert.False(t, IsObject(cty.StringVal("x")))
}

func TestField_Map(t *testing.T) {
	v, ok := Field(map[string]any{"id": 1, "empty": nil}, "id")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	v, ok = Field(map[string]any{"empty": nil}, "empty")
	assert.True(t, ok)
	assert.Nil(t, v)

	_, ok = Field(map[string]any{}, "missing")
	assert.False(t, ok)

	v, ok = Field(map[string]string{"k": "v"}, "k")
	require.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestField_Struct(t *testing.T) {
	p := person{ID: 7, Name: "Ada", Address: &address{City: "London"}, secret: "s"}

	t.Run("go name", func(t *testing.T) {
		v, ok := Field(p, "ID")
		require.True(t, ok)
		assert.Equal(t, 7, v)
	})

	t.Run("json tag", func(t *testing.T) {
		v, ok := Field(&p, "full_name")
		require.True(t, ok)
		assert.Equal(t, "Ada", v)
	})

	t.Run("case insensitive", func(t *testing.T) {
		v, ok := Field(p, "id")
		require.True(t, ok)
		assert.Equal(t, 7, v)
	})

	t.Run("zero argument method", func(t *testing.T) {
		v, ok := Field(p, "Initials")
		require.True(t, ok)
		assert.Equal(t, "A", v)
	})

	t.Run("unexported field is hidden", func(t *testing.T) {
		_, ok := Field(p, "secret")
		assert.False(t, ok)
	})

	t.Run("nil pointer", func(t *testing.T) {
		var np *person
		_, ok := Field(np, "ID")
		assert.False(t, ok)
	})
}

func TestField_Cty(t *testing.T) {
	obj := cty.ObjectVal(map[string]cty.Value{
		"id":   cty.NumberIntVal(3),
		"name": cty.StringVal("c"),
		"tags": cty.ListVal([]cty.Value{cty.StringVal("x")}),
	})

	v, ok := Field(obj, "id")
	require.True(t, ok)
	assert.Equal(t, float64(3), v)

	v, ok = Field(obj, "name")
	require.True(t, ok)
	assert.Equal(t, "c", v)

	tags, ok := Field(obj, "tags")
	require.True(t, ok)
	first, ok := Index(tags, 0)
	require.True(t, ok)
	assert.Equal(t, "x", first)

	_, ok = Field(obj, "missing")
	assert.False(t, ok)

	m := cty.MapVal(map[string]cty.Value{"k": cty.True})
	v, ok = Field(m, "k")
	require.True(t, ok)
	assert.Equal(t, true, v)
}

func TestField_JSON(t *testing.T) {
	doc := json.RawMessage(`{"id": 2, "name": "b", "a.b": true, "nested": {"x": null}, "list": [10, 20]}`)

	v, ok := Field(doc, "id")
	require.True(t, ok)
	assert.Equal(t, float64(2), v)

	v, ok = Field(doc, "a.b")
	require.True(t, ok)
	assert.Equal(t, true, v)

	nested, ok := Field(doc, "nested")
	require.True(t, ok)
	v, ok = Field(nested, "x")
	assert.True(t, ok)
	assert.Nil(t, v)

	list, ok := Field(doc, "list")
	require.True(t, ok)
	v, ok = Index(list, 1)
	require.True(t, ok)
	assert.Equal(t, float64(20), v)

	_, ok = Index(list, 5)
	assert.False(t, ok)
}

func TestIndex(t *testing.T) {
	v, ok := Index([]any{"a", "b"}, 1)
	require.True(t, ok)
	assert.Equal(t, "b", v)

	v, ok = Index([2]int{4, 5}, 0)
	require.True(t, ok)
	assert.Equal(t, 4, v)

	_, ok = Index([]any{"a"}, 1)
	assert.False(t, ok)
	_, ok = Index([]any{"a"}, -1)
	assert.False(t, ok)
	_, ok = Index("abc", 0)
	assert.False(t, ok)
}
