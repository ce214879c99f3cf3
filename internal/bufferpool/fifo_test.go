package bufferpool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFIFOReplacer_EvictsInArrivalOrder(t *testing.T) {
	r := newFIFOReplacer(4)
	require.Equal(t, 0, r.Size())

	_, ok := r.Evict()
	require.False(t, ok)

	r.SetEvictable(2, true)
	r.SetEvictable(0, true)
	r.SetEvictable(3, true)
	require.Equal(t, 3, r.Size())
	require.Equal(t, []FrameID{2, 0, 3}, r.Order())

	for _, want := range []FrameID{2, 0, 3} {
		got, ok := r.Evict()
		require.True(t, ok)
		require.Equal(t, want, got)
		require.False(t, r.Contains(got))
	}
	_, ok = r.Evict()
	require.False(t, ok)
	require.Equal(t, 0, r.Size())
}

func TestFIFOReplacer_AddIsIdempotent(t *testing.T) {
	r := newFIFOReplacer(3)
	r.SetEvictable(1, true)
	r.SetEvictable(1, true)
	require.Equal(t, 1, r.Size())
	require.Equal(t, []FrameID{1}, r.Order())
}

func TestFIFOReplacer_RemoveFromMiddle(t *testing.T) {
	r := newFIFOReplacer(4)
	for i := 0; i < 4; i++ {
		r.SetEvictable(FrameID(i), true)
	}

	r.SetEvictable(1, false)
	require.Equal(t, []FrameID{0, 2, 3}, r.Order())
	r.Remove(3)
	require.Equal(t, []FrameID{0, 2}, r.Order())
	r.Remove(0)
	require.Equal(t, []FrameID{2}, r.Order())

	// Removing an absent frame is harmless.
	r.Remove(1)
	require.Equal(t, 1, r.Size())

	// Re-added frames go to the tail.
	r.SetEvictable(1, true)
	require.Equal(t, []FrameID{2, 1}, r.Order())
}

func TestFIFOReplacer_UnevictPutsFrameFirst(t *testing.T) {
	r := newFIFOReplacer(3)
	r.SetEvictable(0, true)
	r.SetEvictable(1, true)

	v, ok := r.Evict()
	require.True(t, ok)
	require.Equal(t, FrameID(0), v)

	r.Unevict(v)
	require.Equal(t, []FrameID{0, 1}, r.Order())

	// Unevict on an empty queue sets both ends.
	e := newFIFOReplacer(2)
	e.Unevict(1)
	e.SetEvictable(0, true)
	require.Equal(t, []FrameID{1, 0}, e.Order())
}

func TestFIFOReplacer_IgnoresOutOfRange(t *testing.T) {
	r := newFIFOReplacer(2)
	r.SetEvictable(5, true)
	r.SetEvictable(-1, true)
	r.Unevict(2)
	r.Remove(9)
	require.Equal(t, 0, r.Size())
	require.False(t, r.Contains(5))
}
