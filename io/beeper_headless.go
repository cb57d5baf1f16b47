//go:build headless

package io

// NewBeeper returns a silent beeper; audio support is not built.
func NewBeeper() (beeper *Silent, err error) {
	beeper = &Silent{}
	return
}
