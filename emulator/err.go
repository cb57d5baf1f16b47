package emulator

import (
	"github.com/ezrec/chip8vm/translate"
)

var f = translate.From

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	Address uint16
	LineNo  int // Source line, or zero if the program has no listing.
	Err     error
}

func (err *ErrRuntime) Error() string {
	if err.LineNo == 0 {
		return f("0x%03x: %v", err.Address, err.Err)
	}
	return f("line %d (0x%03x) %v", err.LineNo, err.Address, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
