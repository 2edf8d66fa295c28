package lfsimple

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPutGetDelete(t *testing.T) {
	m := New[string, int]()

	_, ok := m.Get("a")
	assert.False(t, ok)

	m.Put("a", 1)
	v, ok := m.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	assert.True(t, m.Delete("a"))
	assert.False(t, m.Delete("a"))
}

func TestConditionalPuts(t *testing.T) {
	m := New[string, int]()

	assert.True(t, m.PutIfAbsent("a", 1))
	assert.False(t, m.PutIfAbsent("a", 2))

	assert.True(t, m.PutIfExists("a", 3))
	assert.False(t, m.PutIfExists("b", 1))

	eq := func(a, b int) bool { return a == b }
	assert.True(t, m.PutIfMatch("a", 4, 3, eq))
	assert.False(t, m.PutIfMatch("a", 5, 3, eq))

	assert.True(t, m.DeleteIfMatch("a", 4, eq))
	assert.Equal(t, 0, m.Size())
}
