package keys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromAny(t *testing.T) {
	testCases := []struct {
		name    string
		input   any
		want    Descriptor
		wantErr bool
	}{
		{name: "nil", input: nil, want: None},
		{name: "empty string", input: "", want: None},
		{name: "scalar", input: "id", want: Scalar("id")},
		{name: "string slice", input: []string{"a", "b"}, want: Composite("a", "b")},
		{name: "any slice", input: []any{"a", "b"}, want: Composite("a", "b")},
		{name: "descriptor", input: Scalar("k"), want: Scalar("k")},
		{name: "bad element", input: []any{"a", 1}, wantErr: true},
		{name: "bad type", input: 5, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FromAny(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tc.want.Equal(got), "want %s, got %s", tc.want, got)
		})
	}
}

func TestDescriptor_Accessors(t *testing.T) {
	s := Scalar("id")
	assert.False(t, s.IsZero())
	assert.False(t, s.IsComposite())
	assert.Equal(t, "id", s.Name())
	assert.Equal(t, "id", s.String())
	assert.True(t, s.Has("id"))

	c := Composite("a", "b")
	assert.True(t, c.IsComposite())
	assert.Equal(t, "", c.Name())
	assert.Equal(t, []string{"a", "b"}, c.Fields())
	assert.Equal(t, "[a, b]", c.String())
	assert.False(t, c.Equal(Composite("b", "a")))

	assert.True(t, None.IsZero())
	assert.True(t, Composite().IsZero())
	assert.Equal(t, "<none>", None.String())

	fields := c.Fields()
	fields[0] = "changed"
	assert.Equal(t, []string{"a", "b"}, c.Fields(), "Fields returns a copy")
}

func TestDescriptor_Validate(t *testing.T) {
	require.NoError(t, Scalar("id").Validate())
	require.ErrorIs(t, Composite("a", " ").Validate(), ErrEmptyKeyField)
}

func TestProject(t *testing.T) {
	t.Run("no key keeps the value", func(t *testing.T) {
		rec := map[string]any{"id": 1}
		assert.Equal(t, rec, Project(rec, None))
	})

	t.Run("scalar key on a record", func(t *testing.T) {
		assert.Equal(t, 2, Project(map[string]any{"id": 2, "name": "b"}, Scalar("id")))
	})

	t.Run("scalar key on a primitive", func(t *testing.T) {
		assert.Equal(t, 2, Project(2, Scalar("id")))
	})

	t.Run("scalar key missing on record", func(t *testing.T) {
		assert.Nil(t, Project(map[string]any{"name": "b"}, Scalar("id")))
	})

	t.Run("composite key", func(t *testing.T) {
		got := Project(map[string]any{"a": 1, "b": 2, "c": "x"}, Composite("a", "b"))
		assert.Equal(t, map[string]any{"a": 1, "b": 2}, got)
	})

	t.Run("composite key on a primitive", func(t *testing.T) {
		got := Project(5, Composite("a", "b"))
		assert.Equal(t, map[string]any{"a": nil, "b": nil}, got)
	})
}
