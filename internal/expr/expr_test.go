package expr

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/dataexpr/internal/reactive"
)

type city struct {
	Name string
}

type customer struct {
	ID      int
	Address *city
	Tags    []string
}

func TestPath_Identity(t *testing.T) {
	for _, in := range []string{"", "this", "  this "} {
		e := Path(in)
		assert.True(t, e.IsIdentity(), "%q should be identity", in)
		assert.Equal(t, "this", e.String())
	}
	assert.True(t, Func(nil).IsIdentity())
	assert.True(t, Fields().IsIdentity())
	assert.True(t, Lua("  ").IsIdentity())
}

func TestCompile_Identity(t *testing.T) {
	g, err := Compile(This())
	require.NoError(t, err)

	rec := map[string]any{"id": 1}
	assert.Equal(t, rec, g(rec))
	assert.Nil(t, g(nil))
}

func TestCompile_SingleField(t *testing.T) {
	records := []map[string]any{
		{"id": 1, "name": "a"},
		{"id": 2},
		{},
	}
	g := MustCompile(Path("name"))
	for _, r := range records {
		want, _ := r["name"]
		assert.Equal(t, want, g(r))
	}
}

func TestCompile_NestedPaths(t *testing.T) {
	rec := map[string]any{
		"address": map[string]any{"city": "Paris", "geo": map[string]any{"lat": 48.8}},
		"tags":    []any{"x", "y"},
		"odd key": 7,
	}

	testCases := []struct {
		path string
		want any
	}{
		{"address.city", "Paris"},
		{"address.geo.lat", 48.8},
		{"tags[1]", "y"},
		{"tags.0", "x"},
		{`address["city"]`, "Paris"},
		{`this["odd key"]`, 7},
		{"this.address.city", "Paris"},
		{"address.missing.deeper", nil},
		{"missing.city", nil},
		{"tags[5]", nil},
		{"tags[0].length", nil},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			g, err := Compile(Path(tc.path))
			require.NoError(t, err)
			assert.Equal(t, tc.want, g(rec))
		})
	}
}

func TestCompile_StructRecords(t *testing.T) {
	rec := &customer{ID: 3, Address: &city{Name: "Oslo"}, Tags: []string{"vip"}}

	assert.Equal(t, 3, MustCompile(Path("ID"))(rec))
	assert.Equal(t, "Oslo", MustCompile(Path("Address.Name"))(rec))
	assert.Equal(t, "vip", MustCompile(Path("Tags[0]"))(rec))

	empty := &customer{}
	assert.Nil(t, MustCompile(Path("Address.Name"))(empty), "nil intermediate pointer yields nil")
}

func TestCompile_OtherRecordShapes(t *testing.T) {
	t.Run("cty", func(t *testing.T) {
		rec := cty.ObjectVal(map[string]cty.Value{
			"inner": cty.ObjectVal(map[string]cty.Value{"v": cty.StringVal("deep")}),
		})
		assert.Equal(t, "deep", MustCompile(Path("inner.v"))(rec))
	})

	t.Run("json", func(t *testing.T) {
		rec := json.RawMessage(`{"a": {"b": [1, 2, 3]}}`)
		assert.Equal(t, float64(3), MustCompile(Path("a.b[2]"))(rec))
	})
}

func TestCompile_UnwrapsAndCallsThunks(t *testing.T) {
	rec := map[string]any{
		"live":  reactive.NewVar[any](map[string]any{"v": 1}),
		"thunk": func() any { return "called" },
	}
	assert.Equal(t, 1, MustCompile(Path("live.v"))(rec))
	assert.Equal(t, "called", MustCompile(Path("thunk"))(rec))

	wrapped := reactive.NewVar[any](map[string]any{"name": "w"})
	assert.Equal(t, "w", MustCompile(Path("name"))(wrapped))
}

func TestCompile_Func(t *testing.T) {
	g := MustCompile(Func(func(r any) any { return "fixed" }))
	assert.Equal(t, "fixed", g(nil))
}

func TestCompile_Lua(t *testing.T) {
	g, err := Compile(Lua(`function(item) return item.name .. "!" end`))
	require.NoError(t, err)
	assert.Equal(t, "b!", g(map[string]any{"name": "b"}))

	_, err = Compile(Lua(`function(`))
	require.Error(t, err)
}

func TestCompile_Errors(t *testing.T) {
	_, err := Compile(Fields("a", "b"))
	require.ErrorIs(t, err, ErrCompositeExpression)

	_, err = Compile(Path("a..b"))
	require.Error(t, err)

	assert.Panics(t, func() { MustCompile(Fields("a")) })
}

func TestFromAny(t *testing.T) {
	e, err := FromAny("name")
	require.NoError(t, err)
	assert.Equal(t, KindPath, e.Kind())

	e, err = FromAny([]any{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, KindFields, e.Kind())
	assert.Equal(t, []string{"a", "b"}, e.FieldNames())

	e, err = FromAny(nil)
	require.NoError(t, err)
	assert.True(t, e.IsIdentity())

	e, err = FromAny(func(any) any { return nil })
	require.NoError(t, err)
	assert.Equal(t, KindFunc, e.Kind())

	_, err = FromAny(42)
	require.Error(t, err)
	_, err = FromAny([]any{"a", 1})
	require.Error(t, err)
}

func TestExpression_EqualAndString(t *testing.T) {
	assert.True(t, Path("a.b").Equal(Path("a.b")))
	assert.True(t, Path(`a["b"]`).Equal(Path("a.b")), "canonical forms match")
	assert.False(t, Path("a").Equal(Path("b")))
	assert.True(t, This().Equal(Path("this")))
	assert.True(t, Fields("a", "b").Equal(Fields("a", "b")))
	assert.False(t, Fields("a", "b").Equal(Fields("b", "a")))
	assert.True(t, Lua("function(i) return i end").Equal(Lua("function(i) return i end")))

	fn := func(any) any { return nil }
	assert.True(t, Func(fn).Equal(Func(fn)))

	assert.Equal(t, "a.b[0]", Path("a.b[0]").String())
	assert.Equal(t, "[a, b]", Fields("a", "b").String())
	assert.Equal(t, "path", KindPath.String())
}
