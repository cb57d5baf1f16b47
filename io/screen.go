package io

import (
	"io"
	"strings"

	"github.com/ezrec/chip8vm/cpu"
)

const (
	ANSI_HOME        = "\x1b[H"
	ANSI_CLEAR       = "\x1b[2J"
	ANSI_HIDE_CURSOR = "\x1b[?25l"
	ANSI_SHOW_CURSOR = "\x1b[?25h"
)

// _halfBlock is indexed by top | bottom<<1.
var _halfBlock = [4]string{" ", "▀", "▄", "█"}

// Screen renders the framebuffer to a terminal, two pixel rows per line.
type Screen struct {
	Writer io.Writer

	started bool
}

var _ Display = (*Screen)(nil)

// Present redraws the whole framebuffer from the top left corner.
func (scr *Screen) Present(disp *cpu.Display) (err error) {
	var sb strings.Builder

	if !scr.started {
		sb.WriteString(ANSI_CLEAR + ANSI_HIDE_CURSOR)
		scr.started = true
	}
	sb.WriteString(ANSI_HOME)

	for y := 0; y < cpu.DISPLAY_HEIGHT; y += 2 {
		for x := range cpu.DISPLAY_WIDTH {
			index := 0
			if disp.Pixel(x, y) {
				index |= 1
			}
			if disp.Pixel(x, y+1) {
				index |= 2
			}
			sb.WriteString(_halfBlock[index])
		}
		sb.WriteString("\r\n")
	}

	_, err = io.WriteString(scr.Writer, sb.String())

	return
}

// Close restores the cursor.
func (scr *Screen) Close() (err error) {
	if scr.started {
		_, err = io.WriteString(scr.Writer, ANSI_SHOW_CURSOR)
		scr.started = false
	}
	return
}
