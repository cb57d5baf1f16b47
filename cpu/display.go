package cpu

import (
	"strings"
)

const (
	DISPLAY_WIDTH  = 64
	DISPLAY_HEIGHT = 32
)

// Display is the monochrome framebuffer, indexed [row][column].
type Display [DISPLAY_HEIGHT][DISPLAY_WIDTH]bool

// Clear turns every pixel off.
func (disp *Display) Clear() {
	*disp = Display{}
}

// Pixel reports whether the pixel at column x, row y is on.
// Coordinates outside the display are off.
func (disp *Display) Pixel(x, y int) bool {
	if x < 0 || x >= DISPLAY_WIDTH || y < 0 || y >= DISPLAY_HEIGHT {
		return false
	}
	return disp[y][x]
}

// Lit returns the number of pixels that are on.
func (disp *Display) Lit() (count int) {
	for y := range disp {
		for _, on := range disp[y] {
			if on {
				count++
			}
		}
	}
	return
}

// Draw XORs the sprite rows onto the display, starting at column x and
// row y (each wrapped onto the display). Each sprite byte is one row,
// most significant bit leftmost. Pixels past the right or bottom edge
// are clipped, not wrapped. Returns true if any pixel was turned off.
func (disp *Display) Draw(x, y int, sprite []byte) (collision bool) {
	x0 := x % DISPLAY_WIDTH
	y0 := y % DISPLAY_HEIGHT

	for row, data := range sprite {
		py := y0 + row
		if py >= DISPLAY_HEIGHT {
			break
		}
		for bit := range 8 {
			px := x0 + bit
			if px >= DISPLAY_WIDTH {
				break
			}
			if data&(0x80>>bit) == 0 {
				continue
			}
			if disp[py][px] {
				collision = true
			}
			disp[py][px] = !disp[py][px]
		}
	}

	return
}

// String renders the display as rows of '#' (on) and '.' (off).
func (disp *Display) String() string {
	var sb strings.Builder
	for y := range disp {
		for _, on := range disp[y] {
			if on {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
