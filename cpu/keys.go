package cpu

import (
	"math/bits"
)

// Keys is the set of keypad keys (0x0-0xF) currently held down.
type Keys uint16

// MakeKeys returns the set of the listed key codes.
func MakeKeys(codes ...uint8) (keys Keys) {
	for _, code := range codes {
		keys = keys.With(code)
	}
	return
}

// With returns the set with key added.
func (keys Keys) With(key uint8) Keys {
	return keys | (1 << (key & 0xf))
}

// Without returns the set with key removed.
func (keys Keys) Without(key uint8) Keys {
	return keys &^ (1 << (key & 0xf))
}

// Pressed is true if key is in the set. Values above 0xF are never pressed.
func (keys Keys) Pressed(key uint8) bool {
	if key > 0xf {
		return false
	}
	return keys&(1<<key) != 0
}

// Empty is true if no key is held.
func (keys Keys) Empty() bool {
	return keys == 0
}

// Lowest returns the lowest held key code.
func (keys Keys) Lowest() (key uint8, ok bool) {
	if keys.Empty() {
		return
	}
	return uint8(bits.TrailingZeros16(uint16(keys))), true
}
