package value

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/dataexpr/internal/expr"
	"github.com/specialistvlad/dataexpr/internal/keys"
	"github.com/specialistvlad/dataexpr/internal/reactive"
)

type item struct {
	ID   int
	Name string
}

func TestClassify(t *testing.T) {
	var nilMap map[string]any

	testCases := []struct {
		name string
		in   any
		key  keys.Descriptor
		want Kind
	}{
		{"nil", nil, keys.None, Empty},
		{"typed nil", nilMap, keys.Scalar("id"), Empty},
		{"null cty", cty.NullVal(cty.String), keys.None, Empty},
		{"int", 2, keys.Scalar("id"), Primitive},
		{"string", "x", keys.None, Primitive},
		{"time", time.Unix(0, 0), keys.None, Primitive},
		{"key object scalar", map[string]any{"id": 2}, keys.Scalar("id"), KeyObject},
		{"key object composite", map[string]any{"a": 1, "b": 2}, keys.Composite("a", "b"), KeyObject},
		{"partial key object", map[string]any{"a": 1}, keys.Composite("a", "b"), KeyObject},
		{"record map", map[string]any{"id": 2, "name": "b"}, keys.Scalar("id"), Record},
		{"map without key", map[string]any{"id": 2}, keys.None, Record},
		{"struct", item{ID: 1}, keys.Scalar("ID"), Record},
		{"wrapped", reactive.NewVar[any](2), keys.None, Wrapped},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.in, tc.key)
			assert.Equal(t, tc.want, got.Kind())
			assert.Equal(t, tc.want != Empty, got.IsDefined())
		})
	}
}

func TestNormalize_FallsBackToCurrent(t *testing.T) {
	in := Input{}
	assert.Equal(t, 7, Normalize(nil, 7, in).Interface())
	assert.Equal(t, 3, Normalize(3, 7, in).Interface())

	got := Normalize(nil, nil, in)
	assert.Equal(t, Empty, got.Kind())
	assert.Nil(t, got.Interface())
}

func TestNormalize_Unwraps(t *testing.T) {
	wrapped := reactive.NewVar[any](5)
	got := Normalize(wrapped, nil, Input{})
	assert.Equal(t, Primitive, got.Kind())
	assert.Equal(t, 5, got.Interface())

	nested := reactive.NewVar[any](reactive.NewVar[any]("deep"))
	assert.Equal(t, "deep", Normalize(nested, nil, Input{}).Interface())
}

func TestNormalize_ProjectsToKey(t *testing.T) {
	scalar := Input{Key: keys.Scalar("id"), HasCollection: true, ValueExpr: expr.This()}
	composite := Input{Key: keys.Composite("a", "b"), HasCollection: true, ValueExpr: expr.This()}

	t.Run("scalar key keeps primitives", func(t *testing.T) {
		assert.Equal(t, 2, Normalize(2, nil, scalar).Interface())
	})

	t.Run("scalar key extracts the field from records", func(t *testing.T) {
		got := Normalize(map[string]any{"id": 2, "name": "b"}, nil, scalar)
		assert.Equal(t, Primitive, got.Kind())
		assert.Equal(t, 2, got.Interface())
	})

	t.Run("scalar key on struct records", func(t *testing.T) {
		in := Input{Key: keys.Scalar("ID"), HasCollection: true}
		assert.Equal(t, 4, Normalize(&item{ID: 4}, nil, in).Interface())
	})

	t.Run("missing key field stays undefined", func(t *testing.T) {
		got := Normalize(map[string]any{"name": "b"}, nil, scalar)
		assert.Equal(t, Empty, got.Kind())
	})

	t.Run("composite key builds a key object", func(t *testing.T) {
		got := Normalize(map[string]any{"a": 1, "b": 2, "c": "x"}, nil, composite)
		assert.Equal(t, KeyObject, got.Kind())
		assert.Equal(t, map[string]any{"a": 1, "b": 2}, got.Interface())
	})

	t.Run("wrapped key field is unwrapped", func(t *testing.T) {
		got := Normalize(map[string]any{"id": reactive.NewVar[any](9)}, nil, scalar)
		assert.Equal(t, 9, got.Interface())
	})

	t.Run("no projection without a collection", func(t *testing.T) {
		in := scalar
		in.HasCollection = false
		rec := map[string]any{"id": 2, "name": "b"}
		assert.Equal(t, rec, Normalize(rec, nil, in).Interface())
	})

	t.Run("no projection for a field value expression", func(t *testing.T) {
		in := scalar
		in.ValueExpr = expr.Path("name")
		rec := map[string]any{"id": 2, "name": "b"}
		assert.Equal(t, Record, Normalize(rec, nil, in).Kind())
	})
}

func TestNormalize_NeverWrapped(t *testing.T) {
	in := Input{Key: keys.Scalar("id"), HasCollection: true}
	for _, raw := range []any{nil, 1, reactive.NewVar[any](map[string]any{"id": 1}), map[string]any{"id": 1}} {
		assert.NotEqual(t, Wrapped, Normalize(raw, nil, in).Kind())
	}
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "key-object", KeyObject.String())
	assert.Equal(t, "Kind(42)", Kind(42).String())
	assert.Equal(t, "primitive(3)", Classify(3, keys.None).String())
	assert.Equal(t, "empty", Value{}.String())
}
