package reactive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnwrap(t *testing.T) {
	t.Run("plain values pass through", func(t *testing.T) {
		assert.Equal(t, 5, Unwrap(5))
		assert.Nil(t, Unwrap(nil))
		m := map[string]any{"id": 1}
		assert.Equal(t, m, Unwrap(m))
	})

	t.Run("single wrapper", func(t *testing.T) {
		assert.Equal(t, "x", Unwrap(NewVar("x")))
	})

	t.Run("nested wrappers", func(t *testing.T) {
		inner := NewVar(42)
		outer := NewVar[any](inner)
		assert.Equal(t, 42, Unwrap(outer))
	})

	t.Run("wrapped nil", func(t *testing.T) {
		assert.Nil(t, Unwrap(NewVar[any](nil)))
	})
}

func TestVar_SetNotifiesInOrder(t *testing.T) {
	v := NewVar(1)
	var calls []string

	v.Subscribe(func(n int) { calls = append(calls, "first") })
	cancel := v.Subscribe(func(n int) { calls = append(calls, "second") })
	v.Subscribe(func(n int) { calls = append(calls, "third") })

	v.Set(2)
	require.Equal(t, []string{"first", "second", "third"}, calls)
	assert.Equal(t, 2, v.Get())

	calls = nil
	cancel()
	cancel()
	v.Set(3)
	assert.Equal(t, []string{"first", "third"}, calls)
}

func TestVar_UnsubscribeReleasesSubscription(t *testing.T) {
	v := NewVar(0)
	var got []int
	keep := v.Subscribe(func(n int) { got = append(got, n) })
	defer keep()

	for i := 0; i < 1000; i++ {
		cancel := v.Subscribe(func(int) { t.Fatal("cancelled subscriber called") })
		cancel()
		cancel()
	}

	assert.Len(t, v.order, 1)
	assert.Len(t, v.subs, 1)

	v.Set(7)
	assert.Equal(t, []int{7}, got)
}

func TestIsWrapped(t *testing.T) {
	assert.True(t, IsWrapped(NewVar(0)))
	assert.False(t, IsWrapped(0))
	assert.False(t, IsWrapped(nil))
}
