package options

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_AppliesDefaults(t *testing.T) {
	s := New(map[Name]any{ValueExpr: "id"})

	assert.Equal(t, "id", s.Get(ValueExpr))
	assert.Equal(t, DefaultItemTemplate, s.Get(ItemTemplate))
	assert.Equal(t, []any{}, s.Get(Items))
	assert.Nil(t, s.Get(DisplayExpr))
}

func TestSet_NotifiesInOrder(t *testing.T) {
	s := New(nil)

	var got []string
	s.Subscribe(func(c Change) { got = append(got, "all:"+string(c.Name)) })
	s.SubscribeName(ValueExpr, func(c Change) {
		got = append(got, "valueExpr")
		assert.Equal(t, "this", c.OldValue)
		assert.Equal(t, "id", c.NewValue)
	})
	s.Subscribe(func(c Change) { got = append(got, "all2:"+string(c.Name)) })

	require.True(t, s.Set(ValueExpr, "id"))
	assert.Equal(t, []string{"all:valueExpr", "valueExpr", "all2:valueExpr"}, got)

	got = nil
	require.True(t, s.Set(DisplayExpr, "name"))
	assert.Equal(t, []string{"all:displayExpr", "all2:displayExpr"}, got)
}

func TestSet_UnchangedDoesNotNotify(t *testing.T) {
	s := New(map[Name]any{Items: []any{map[string]any{"id": 1}}})
	calls := 0
	s.Subscribe(func(Change) { calls++ })

	assert.False(t, s.Set(ValueExpr, "this"))
	assert.False(t, s.Set(Items, []any{map[string]any{"id": 1}}), "same content in a new slice")
	assert.True(t, s.Set(Items, []any{map[string]any{"id": 2}}))
	assert.Equal(t, 1, calls)
}

func TestUnsubscribe(t *testing.T) {
	s := New(nil)
	calls := 0
	sub := s.Subscribe(func(Change) { calls++ })
	assert.NotEmpty(t, sub.ID())

	s.Set(Value, 1)
	sub.Unsubscribe()
	sub.Unsubscribe()
	s.Set(Value, 2)
	assert.Equal(t, 1, calls)
}

func TestSnapshot_IsACopy(t *testing.T) {
	s := New(nil)
	snap := s.Snapshot()
	snap[Value] = 42
	assert.Nil(t, s.Get(Value))
}

func TestSet_ObserverMaySetAgain(t *testing.T) {
	s := New(nil)
	s.SubscribeName(Items, func(c Change) {
		s.Set(Value, nil)
		s.Set(Key, "id")
	})
	assert.NotPanics(t, func() { s.Set(Items, []any{1}) })
	assert.Equal(t, "id", s.Get(Key))
}
