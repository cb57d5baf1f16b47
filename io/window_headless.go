//go:build headless

package io

import (
	"github.com/ezrec/chip8vm/cpu"
)

// Window is unavailable without a graphics backend.
type Window struct {
	Keypad *Keypad
	Scale  int
	Title  string
}

var _ Display = (*Window)(nil)

func NewWindow(keypad *Keypad) *Window {
	return &Window{Keypad: keypad}
}

func (win *Window) Present(disp *cpu.Display) error {
	return ErrWindowUnavailable
}

func (win *Window) Run() error {
	return ErrWindowUnavailable
}

func (win *Window) Close() {
}
