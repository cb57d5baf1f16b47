package cpu

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplay_Draw(t *testing.T) {
	assert := assert.New(t)

	disp := &Display{}
	sprite := []byte{0xC3, 0x3C}

	collision := disp.Draw(10, 5, sprite)
	assert.False(collision)
	assert.Equal(8, disp.Lit())
	assert.True(disp.Pixel(10, 5))
	assert.True(disp.Pixel(11, 5))
	assert.False(disp.Pixel(12, 5))
	assert.True(disp.Pixel(12, 6))

	// Partial overlap turns the shared pixels off.
	collision = disp.Draw(10, 5, []byte{0x80})
	assert.True(collision)
	assert.False(disp.Pixel(10, 5))
	assert.Equal(7, disp.Lit())
}

func TestDisplay_DoubleDraw(t *testing.T) {
	assert := assert.New(t)

	disp := &Display{}
	disp.Draw(0, 0, []byte{0xFF, 0xFF})
	prior := *disp

	sprite := []byte{0xA5, 0x5A, 0xFF}
	first := disp.Draw(4, 1, sprite)
	second := disp.Draw(4, 1, sprite)

	assert.True(first)
	assert.True(second)
	assert.Equal(prior, *disp)

	// Drawing onto a blank area: second draw collides iff the first lit anything.
	disp.Clear()
	assert.False(disp.Draw(20, 20, []byte{0x00}))
	assert.False(disp.Draw(20, 20, []byte{0x00}))
	assert.False(disp.Draw(20, 20, []byte{0x10}))
	assert.True(disp.Draw(20, 20, []byte{0x10}))
}

func TestDisplay_Clip(t *testing.T) {
	assert := assert.New(t)

	disp := &Display{}
	disp.Draw(60, 30, []byte{0xFF, 0xFF, 0xFF})

	assert.Equal(8, disp.Lit())
	assert.False(disp.Pixel(0, 30))
	assert.False(disp.Pixel(60, 0))
	assert.True(disp.Pixel(63, 31))
	assert.False(disp.Pixel(64, 31))
	assert.False(disp.Pixel(-1, 0))
}

func TestDisplay_String(t *testing.T) {
	assert := assert.New(t)

	disp := &Display{}
	disp.Draw(0, 0, []byte{0xA0})

	lines := strings.Split(disp.String(), "\n")
	assert.Equal(DISPLAY_HEIGHT+1, len(lines))
	assert.Equal("#.#"+strings.Repeat(".", DISPLAY_WIDTH-3), lines[0])
	assert.Equal(strings.Repeat(".", DISPLAY_WIDTH), lines[1])
}
