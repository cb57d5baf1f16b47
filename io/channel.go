// Package io provides the host side of the CHIP-8 emulator: the program
// loader, keypad input, display sinks and the tone generator.
package io

import (
	"github.com/ezrec/chip8vm/cpu"
)

// Input is a source of the currently held keys.
type Input interface {
	// Keys returns the set of held keys.
	Keys() cpu.Keys
}

// Display is a sink for the framebuffer.
type Display interface {
	// Present shows the framebuffer. The buffer is only valid for the
	// duration of the call.
	Present(disp *cpu.Display) error
}

// Beeper is a tone generator that can be switched on and off.
type Beeper interface {
	// Start makes the tone audible.
	Start()
	// Stop silences the tone.
	Stop()
}
