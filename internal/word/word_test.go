package word

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelOrdering(t *testing.T) {
	// The four sentinels sit at the top of the usable range, strictly
	// above MaxValue, and are mutually distinct.
	sentinels := []Word{None, Baby, Copied, Deleted}
	for _, s := range sentinels {
		assert.True(t, IsReserved(s))
		assert.Greater(t, s, MaxValue)
	}
	assert.Equal(t, 4, len(map[Word]struct{}{None: {}, Baby: {}, Copied: {}, Deleted: {}}))
}

func TestPureStripsCopyingOnly(t *testing.T) {
	assert.Equal(t, Word(42), Pure(Word(42)))
	assert.Equal(t, Word(42), Pure(Word(42)|CopyingBit))
	assert.Equal(t, None, Pure(None|CopyingBit))
}

func TestIsCopying(t *testing.T) {
	assert.False(t, IsCopying(Word(7)))
	assert.True(t, IsCopying(Word(7)|CopyingBit))
}

func TestIsReserved(t *testing.T) {
	assert.False(t, IsReserved(Word(0)))
	assert.False(t, IsReserved(MaxValue))
	assert.True(t, IsReserved(Deleted))
	assert.True(t, IsReserved(Copied))
	assert.True(t, IsReserved(Baby))
	assert.True(t, IsReserved(None))
}

func TestSetCopyingFlipsOnce(t *testing.T) {
	var cell Cell
	cell.Store(Word(9))

	before, flipped := SetCopying(&cell)
	require.True(t, flipped)
	assert.Equal(t, Word(9), before)
	assert.True(t, IsCopying(cell.Load()))

	// A second call observes the flag already set and does not flip
	// again (spec: COPYING is monotone, never cleared).
	before2, flipped2 := SetCopying(&cell)
	assert.False(t, flipped2)
	assert.True(t, IsCopying(before2))
}

func TestCAS(t *testing.T) {
	var cell Cell
	cell.Store(Word(1))

	assert.False(t, CAS(&cell, Word(2), Word(3)))
	assert.True(t, CAS(&cell, Word(1), Word(3)))
	assert.Equal(t, Word(3), Load(&cell))
}

func TestIntCodecRoundTrip(t *testing.T) {
	c := NewIntCodec[uint32]()
	for _, v := range []uint32{0, 1, 42, 1 << 20} {
		w := c.Encode(v)
		assert.False(t, IsReserved(w))
		assert.Equal(t, v, c.Decode(w))
	}
}

func TestIntCodecRejectsOutOfRange(t *testing.T) {
	c := NewIntCodec[uint64]()
	assert.Panics(t, func() { c.Encode(uint64(MaxValue) + 1) })
}

func TestBoxCodecRoundTrip(t *testing.T) {
	type payload struct{ A, B int }
	c := NewBoxCodec[payload]()

	p1 := payload{A: 1, B: 2}
	w1 := c.Encode(p1)
	assert.Equal(t, p1, c.Decode(w1))

	p2 := payload{A: 3, B: 4}
	w2 := c.Encode(p2)
	assert.NotEqual(t, w1, w2)
	assert.Equal(t, p2, c.Decode(w2))

	c.Release(w1)
	assert.Panics(t, func() { c.Decode(w1) })
}

func TestSpinlockMutualExclusion(t *testing.T) {
	var sl Spinlock
	assert.True(t, sl.TryLock())
	assert.False(t, sl.TryLock())
	sl.Unlock()
	assert.True(t, sl.TryLock())
	sl.Unlock()
}
