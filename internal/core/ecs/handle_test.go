package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandleLayout(t *testing.T) {
	assert.Equal(t, 11, GenerationBits)
	assert.Equal(t, 128, MaxTypes)
	assert.Equal(t, 16384, MaxCapacity)
	assert.Equal(t, 2048, GenerationSpan)

	cases := []struct {
		typ        TypeID
		index, gen uint32
	}{
		{1, 0, 1},
		{127, 16383, 2047},
		{42, 1234, 0},
		{5, 8191, 1024},
	}
	for _, c := range cases {
		h := NewHandle(c.typ, c.index, c.gen)
		assert.Equal(t, c.typ, h.Type())
		assert.Equal(t, c.index, h.Index())
		assert.Equal(t, c.gen, h.Generation())
		assert.False(t, h.IsZero())
	}
}

func TestHandleFieldsDoNotOverlap(t *testing.T) {
	h := NewHandle(TypeID(0xFF), 0xFFFFFFFF, 0xFFFFFFFF)
	assert.Equal(t, TypeID(127), h.Type())
	assert.Equal(t, uint32(16383), h.Index())
	assert.Equal(t, uint32(2047), h.Generation())
	assert.Equal(t, Handle(0xFFFFFFFF), h)
}

func TestInvalidHandle(t *testing.T) {
	assert.True(t, InvalidHandle.IsZero())
	assert.True(t, NewHandle(0, 12, 3).IsZero())
	assert.Equal(t, "invalid", InvalidHandle.String())
	assert.Equal(t, "3:12@4", NewHandle(3, 12, 4).String())
}

func TestHandleOrdering(t *testing.T) {
	older := NewHandle(2, 7, 3)
	newer := NewHandle(2, 7, 4)
	assert.True(t, older.Less(newer))
	assert.False(t, newer.Less(older))
	assert.False(t, older.Less(older))
	assert.NotEqual(t, older, newer)
	assert.Equal(t, older, NewHandle(2, 7, 3))

	assert.True(t, NewHandle(1, 9, 9).Less(NewHandle(2, 0, 0)))
	assert.True(t, NewHandle(2, 1, 9).Less(NewHandle(2, 2, 0)))
}
