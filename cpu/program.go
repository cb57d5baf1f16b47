package cpu

import (
	"iter"
)

// Opcode is a line of assembled code with its source location and bytes.
type Opcode struct {
	LineNo    int
	Address   uint16
	Words     []string
	Bytes     []byte
	Data      bool // Emitted by a data directive, not an instruction.
	LinkLabel string
}

// Program is an assembled program listing.
type Program struct {
	Opcodes []Opcode
}

// Debug locates the opcode covering an address.
type Debug struct {
	*Opcode
	Index int // Byte offset of the address within the opcode.
}

func (prog *Program) Debug(addr uint16) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if addr >= op.Address && int(addr) < int(op.Address)+len(op.Bytes) {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  int(addr - op.Address),
			}
			break
		}
	}

	return
}

// Binary returns the memory image of the program, to be loaded at
// PROGRAM_START.
func (prog *Program) Binary() (bin []byte) {
	end := PROGRAM_START
	for _, op := range prog.Opcodes {
		end = max(end, int(op.Address)+len(op.Bytes))
	}

	bin = make([]byte, end-PROGRAM_START)
	for _, op := range prog.Opcodes {
		copy(bin[int(op.Address)-PROGRAM_START:], op.Bytes)
	}

	return
}

// Codes iterates over the instruction words of the program by address.
func (prog *Program) Codes() iter.Seq2[uint16, Code] {
	return func(yield func(addr uint16, code Code) bool) {
		for _, op := range prog.Opcodes {
			if op.Data || len(op.Bytes) != 2 {
				continue
			}
			code := Code(uint16(op.Bytes[0])<<8 | uint16(op.Bytes[1]))
			if !yield(op.Address, code) {
				return
			}
		}
	}
}

// Disassemble iterates over a memory image loaded at PROGRAM_START as
// instruction words. A trailing odd byte is yielded as the high byte of
// a word.
func Disassemble(bin []byte) iter.Seq2[uint16, Code] {
	return func(yield func(addr uint16, code Code) bool) {
		for n := 0; n < len(bin); n += 2 {
			code := Code(uint16(bin[n]) << 8)
			if n+1 < len(bin) {
				code |= Code(bin[n+1])
			}
			if !yield(uint16(PROGRAM_START+n), code) {
				return
			}
		}
	}
}
