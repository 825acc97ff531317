package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryDispatchByKind(t *testing.T) {
	r := NewRegistry()
	var moves, ups int
	r.Add("a", PointerMove, func(PointerEvent) { moves++ })
	r.Add("a", PointerUp, func(PointerEvent) { ups++ })

	assert.Equal(t, 1, r.Dispatch(PointerEvent{Kind: PointerMove}))
	assert.Equal(t, 1, r.Dispatch(PointerEvent{Kind: PointerUp}))
	assert.Equal(t, 0, r.Dispatch(PointerEvent{Kind: TouchMove}))
	assert.Equal(t, 1, moves)
	assert.Equal(t, 1, ups)
}

func TestRegistryRemove(t *testing.T) {
	r := NewRegistry()
	h := r.Add("a", PointerMove, func(PointerEvent) {})
	require.True(t, h.Valid())
	assert.Equal(t, 1, r.Count())
	assert.True(t, r.Remove(h))
	assert.False(t, r.Remove(h), "second remove is a no-op")
	assert.Equal(t, 0, r.Count())
	assert.False(t, Handle{}.Valid())
}

func TestRegistryRemoveDuringDispatch(t *testing.T) {
	r := NewRegistry()
	var second Handle
	calls := 0
	r.Add("a", PointerUp, func(PointerEvent) {
		calls++
		r.Remove(second)
	})
	second = r.Add("a", PointerUp, func(PointerEvent) { calls++ })

	assert.Equal(t, 1, r.Dispatch(PointerEvent{Kind: PointerUp}))
	assert.Equal(t, 1, calls)
}

func TestRegistryCountFor(t *testing.T) {
	r := NewRegistry()
	r.Add("a", PointerMove, func(PointerEvent) {})
	r.Add("a", PointerUp, func(PointerEvent) {})
	r.Add("b", PointerUp, func(PointerEvent) {})
	assert.Equal(t, 2, r.CountFor("a"))
	assert.Equal(t, 1, r.CountFor("b"))
	assert.Equal(t, 0, r.CountFor("c"))
}

func TestPointerEventClassification(t *testing.T) {
	assert.True(t, PointerEvent{Kind: TouchMove}.IsMove())
	assert.True(t, PointerEvent{Kind: PointerUp}.IsEnd())
	assert.True(t, PointerEvent{Kind: TouchCancel}.IsCancel())
	assert.False(t, PointerEvent{Kind: PointerDown}.IsMove())
	assert.Equal(t, "touchend", TouchEnd.String())
}
