package io

import (
	"fmt"
	"iter"
	"maps"
	"sync"
	"time"
	"unicode"

	"github.com/ezrec/chip8vm/cpu"
)

// DEFAULT_HOLD is how long a key stays held after a press from a source
// without key-up events.
const DEFAULT_HOLD = 150 * time.Millisecond

// KEYMAP maps the left hand of a QWERTY keyboard onto the hex keypad.
//
//	1 2 3 4      1 2 3 C
//	Q W E R  ->  4 5 6 D
//	A S D F      7 8 9 E
//	Z X C V      A 0 B F
var KEYMAP = map[rune]uint8{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xC,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xD,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xE,
	'z': 0xA, 'x': 0x0, 'c': 0xB, 'v': 0xF,
}

// KeyDefines returns an iter of KEY_n assembler defines for the hex keys.
func KeyDefines() iter.Seq2[string, string] {
	defines := make(map[string]string, 16)
	for key := range 16 {
		defines[fmt.Sprintf("KEY_%X", key)] = fmt.Sprintf("%#x", key)
	}
	return maps.All(defines)
}

// Keypad is the host keypad state, safe for concurrent use.
//
// Sources with key-up events (a window) set the held keys directly with
// Set. Sources without them (a terminal) call Press, and the key is held
// for Hold after its most recent press.
type Keypad struct {
	Hold  time.Duration    // Hold time after Press; DEFAULT_HOLD if zero.
	Clock func() time.Time // Time source; time.Now if nil.

	mutex   sync.Mutex
	held    cpu.Keys
	pressed [16]time.Time
}

var _ Input = (*Keypad)(nil)

func (kp *Keypad) now() time.Time {
	if kp.Clock == nil {
		return time.Now()
	}
	return kp.Clock()
}

func (kp *Keypad) hold() time.Duration {
	if kp.Hold == 0 {
		return DEFAULT_HOLD
	}
	return kp.Hold
}

// Set replaces the directly held keys.
func (kp *Keypad) Set(keys cpu.Keys) {
	kp.mutex.Lock()
	defer kp.mutex.Unlock()

	kp.held = keys
}

// Press marks a key as pressed now.
func (kp *Keypad) Press(key uint8) {
	kp.mutex.Lock()
	defer kp.mutex.Unlock()

	kp.pressed[key&0xf] = kp.now()
}

// PressRune presses the key mapped to a host character, if any.
func (kp *Keypad) PressRune(r rune) (ok bool) {
	key, ok := KEYMAP[unicode.ToLower(r)]
	if ok {
		kp.Press(key)
	}
	return
}

// Release forgets all presses and held keys.
func (kp *Keypad) Release() {
	kp.mutex.Lock()
	defer kp.mutex.Unlock()

	kp.held = 0
	kp.pressed = [16]time.Time{}
}

// Keys returns the held keys.
func (kp *Keypad) Keys() (keys cpu.Keys) {
	kp.mutex.Lock()
	defer kp.mutex.Unlock()

	now := kp.now()
	hold := kp.hold()

	keys = kp.held
	for key, when := range kp.pressed {
		if when.IsZero() {
			continue
		}
		if now.Sub(when) < hold {
			keys = keys.With(uint8(key))
		}
	}

	return
}
