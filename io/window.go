//go:build !headless

package io

import (
	"sync"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/ezrec/chip8vm/cpu"
)

const (
	WINDOW_SCALE = 16 // Default host pixels per CHIP-8 pixel.
	WINDOW_TITLE = "CHIP-8"
)

// _windowKeys maps host keys to KEYMAP runes.
var _windowKeys = map[ebiten.Key]rune{
	ebiten.Key1: '1', ebiten.Key2: '2', ebiten.Key3: '3', ebiten.Key4: '4',
	ebiten.KeyQ: 'q', ebiten.KeyW: 'w', ebiten.KeyE: 'e', ebiten.KeyR: 'r',
	ebiten.KeyA: 'a', ebiten.KeyS: 's', ebiten.KeyD: 'd', ebiten.KeyF: 'f',
	ebiten.KeyZ: 'z', ebiten.KeyX: 'x', ebiten.KeyC: 'c', ebiten.KeyV: 'v',
}

// Window shows the framebuffer in a host window and reads the keypad
// from the host keyboard. Escape or closing the window ends Run.
type Window struct {
	Keypad *Keypad
	Scale  int    // Host pixels per CHIP-8 pixel; WINDOW_SCALE if zero.
	Title  string // Window title; WINDOW_TITLE if empty.

	Foreground [4]byte // RGBA of a lit pixel.
	Background [4]byte // RGBA of an unlit pixel.

	mutex   sync.Mutex
	frame   cpu.Display
	pixel   []byte
	closing atomic.Bool
}

var _ Display = (*Window)(nil)
var _ ebiten.Game = (*Window)(nil)

// NewWindow creates a white on black window.
func NewWindow(keypad *Keypad) *Window {
	return &Window{
		Keypad:     keypad,
		Foreground: [4]byte{0xff, 0xff, 0xff, 0xff},
		Background: [4]byte{0x00, 0x00, 0x00, 0xff},
	}
}

// Present copies the framebuffer for the next window refresh.
func (win *Window) Present(disp *cpu.Display) error {
	win.mutex.Lock()
	defer win.mutex.Unlock()

	win.frame = *disp
	return nil
}

// Close asks Run to return at the next update.
func (win *Window) Close() {
	win.closing.Store(true)
}

// Update implements ebiten.Game.
func (win *Window) Update() error {
	if win.closing.Load() || ebiten.IsWindowBeingClosed() || ebiten.IsKeyPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	var keys cpu.Keys
	for hostKey, r := range _windowKeys {
		if ebiten.IsKeyPressed(hostKey) {
			keys = keys.With(KEYMAP[r])
		}
	}
	if win.Keypad != nil {
		win.Keypad.Set(keys)
	}

	return nil
}

// Draw implements ebiten.Game.
func (win *Window) Draw(screen *ebiten.Image) {
	win.mutex.Lock()
	defer win.mutex.Unlock()

	if win.pixel == nil {
		win.pixel = make([]byte, cpu.DISPLAY_WIDTH*cpu.DISPLAY_HEIGHT*4)
	}

	for y := range cpu.DISPLAY_HEIGHT {
		for x := range cpu.DISPLAY_WIDTH {
			rgba := win.Background
			if win.frame[y][x] {
				rgba = win.Foreground
			}
			copy(win.pixel[(y*cpu.DISPLAY_WIDTH+x)*4:], rgba[:])
		}
	}

	screen.WritePixels(win.pixel)
}

// Layout implements ebiten.Game. The logical screen is the CHIP-8 display;
// ebiten scales it to the window.
func (win *Window) Layout(outsideWidth, outsideHeight int) (int, int) {
	return cpu.DISPLAY_WIDTH, cpu.DISPLAY_HEIGHT
}

// Run opens the window and blocks until it is closed. Must be called from
// the main goroutine.
func (win *Window) Run() (err error) {
	scale := win.Scale
	if scale <= 0 {
		scale = WINDOW_SCALE
	}
	title := win.Title
	if len(title) == 0 {
		title = WINDOW_TITLE
	}

	ebiten.SetWindowSize(cpu.DISPLAY_WIDTH*scale, cpu.DISPLAY_HEIGHT*scale)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowClosingHandled(true)
	ebiten.SetRunnableOnUnfocused(true)

	err = ebiten.RunGame(win)
	if err == ebiten.Termination {
		err = nil
	}

	return
}
