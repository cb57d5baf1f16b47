package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemory_Glyphs(t *testing.T) {
	assert := assert.New(t)

	mem := &Memory{}
	mem.Reset()

	for digit := range uint8(16) {
		addr := GlyphAddress(digit)
		assert.Equal(uint16(5*uint16(digit)), addr)
		assert.Equal(_font[5*int(digit):5*int(digit)+5], mem[addr:addr+5])
	}
	assert.Equal(GlyphAddress(0x3), GlyphAddress(0x13))
	assert.Equal(uint8(0), mem[0x50])
}

func TestMemory_Slice(t *testing.T) {
	assert := assert.New(t)

	mem := &Memory{}

	data, ok := mem.Slice(MEMORY_SIZE-3, 3)
	assert.True(ok)
	assert.Len(data, 3)

	_, ok = mem.Slice(MEMORY_SIZE-3, 4)
	assert.False(ok)

	_, ok = mem.Slice(0, -1)
	assert.False(ok)

	_, ok = mem.Slice(0xFFFF, 1)
	assert.False(ok)
}

func TestMemory_Word(t *testing.T) {
	assert := assert.New(t)

	mem := &Memory{}
	mem[0x200] = 0xA2
	mem[0x201] = 0xF0

	code, ok := mem.Word(0x200)
	assert.True(ok)
	assert.Equal(Code(0xA2F0), code)

	_, ok = mem.Word(MEMORY_SIZE - 1)
	assert.False(ok)
}
