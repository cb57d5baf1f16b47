package cpu

import (
	"errors"

	"github.com/ezrec/chip8vm/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrHalted       = errors.New(f("halted"))
	ErrStackEmpty   = errors.New(f("stack empty"))
	ErrStackFull    = errors.New(f("stack full"))
	ErrAddressRange = errors.New(f("address out of range"))
	ErrOpcodeDecode = errors.New(f("decode"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrOpcodeValueMissing = errors.New(f("value missing"))
	ErrOpcodeRange        = errors.New(f("value out of range"))
	ErrRegisterInvalid    = errors.New(f("register invalid"))
	ErrInstructionInvalid = errors.New(f("instruction invalid"))
	ErrProgramTooLarge    = errors.New(f("program too large"))
)

// ErrFault is a fatal machine fault at a given address.
type ErrFault struct {
	Address uint16 // Address of the faulting instruction.
	Code    Code   // Instruction word at that address.
	Err     error
}

func (err *ErrFault) Error() string {
	return f("fault at 0x%03x (0x%04x %v) %v", err.Address, uint16(err.Code), err.Code.String(), err.Err)
}

func (err *ErrFault) Unwrap() error {
	return err.Err
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}
