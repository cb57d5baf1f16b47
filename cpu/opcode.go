package cpu

import (
	"fmt"
)

// CodeOp is a decoded instruction operation.
type CodeOp int

const (
	OP_INVALID  = CodeOp(iota) // .word
	OP_SYS                     // 0nnn sys
	OP_CLS                     // 00E0 cls
	OP_RET                     // 00EE ret
	OP_JP                      // 1nnn jp
	OP_CALL                    // 2nnn call
	OP_SE_IMM                  // 3xnn se
	OP_SNE_IMM                 // 4xnn sne
	OP_SE_REG                  // 5xy0 se
	OP_LD_IMM                  // 6xnn ld
	OP_ADD_IMM                 // 7xnn add
	OP_LD_REG                  // 8xy0 ld
	OP_OR                      // 8xy1 or
	OP_AND                     // 8xy2 and
	OP_XOR                     // 8xy3 xor
	OP_ADD_REG                 // 8xy4 add
	OP_SUB                     // 8xy5 sub
	OP_SHR                     // 8xy6 shr
	OP_SUBN                    // 8xy7 subn
	OP_SHL                     // 8xyE shl
	OP_SNE_REG                 // 9xy0 sne
	OP_LD_I                    // Annn ld
	OP_JP_V0                   // Bnnn jp
	OP_RND                     // Cxnn rnd
	OP_DRW                     // Dxyn drw
	OP_SKP                     // Ex9E skp
	OP_SKNP                    // ExA1 sknp
	OP_LD_VX_DT                // Fx07 ld
	OP_LD_VX_K                 // Fx0A ld
	OP_LD_DT_VX                // Fx15 ld
	OP_LD_ST_VX                // Fx18 ld
	OP_ADD_I                   // Fx1E add
	OP_LD_F                    // Fx29 ld
	OP_LD_B                    // Fx33 ld
	OP_LD_STORE                // Fx55 ld
	OP_LD_LOAD                 // Fx65 ld
)

var _op_mnemonic = [...]string{
	OP_INVALID:  ".word",
	OP_SYS:      "sys",
	OP_CLS:      "cls",
	OP_RET:      "ret",
	OP_JP:       "jp",
	OP_CALL:     "call",
	OP_SE_IMM:   "se",
	OP_SNE_IMM:  "sne",
	OP_SE_REG:   "se",
	OP_LD_IMM:   "ld",
	OP_ADD_IMM:  "add",
	OP_LD_REG:   "ld",
	OP_OR:       "or",
	OP_AND:      "and",
	OP_XOR:      "xor",
	OP_ADD_REG:  "add",
	OP_SUB:      "sub",
	OP_SHR:      "shr",
	OP_SUBN:     "subn",
	OP_SHL:      "shl",
	OP_SNE_REG:  "sne",
	OP_LD_I:     "ld",
	OP_JP_V0:    "jp",
	OP_RND:      "rnd",
	OP_DRW:      "drw",
	OP_SKP:      "skp",
	OP_SKNP:     "sknp",
	OP_LD_VX_DT: "ld",
	OP_LD_VX_K:  "ld",
	OP_LD_DT_VX: "ld",
	OP_LD_ST_VX: "ld",
	OP_ADD_I:    "add",
	OP_LD_F:     "ld",
	OP_LD_B:     "ld",
	OP_LD_STORE: "ld",
	OP_LD_LOAD:  "ld",
}

// String returns the assembler mnemonic of the operation.
func (op CodeOp) String() string {
	if op < 0 || int(op) >= len(_op_mnemonic) {
		return fmt.Sprintf("CodeOp(%d)", int(op))
	}
	return _op_mnemonic[op]
}

// Code is a single 16-bit instruction word.
type Code uint16

// MakeCode assembles an instruction word from its nibbles, most significant first.
func MakeCode(family, x, y, n uint8) Code {
	return Code(uint16(family&0xf)<<12 | uint16(x&0xf)<<8 | uint16(y&0xf)<<4 | uint16(n&0xf))
}

// Nibble returns the 4-bit field at index, 0 being the most significant.
// Indexes outside 0..3 are a programming error.
func (code Code) Nibble(index int) uint8 {
	if index < 0 || index > 3 {
		panic(fmt.Sprintf("nibble index %d out of range", index))
	}
	shift := uint(4 * (3 - index))
	return uint8((uint16(code) >> shift) & 0xf)
}

// Family returns the top nibble, the operation family.
func (code Code) Family() uint8 {
	return code.Nibble(0)
}

// X returns the second nibble, a register index.
func (code Code) X() uint8 {
	return code.Nibble(1)
}

// Y returns the third nibble, a register index.
func (code Code) Y() uint8 {
	return code.Nibble(2)
}

// N returns the fourth nibble, a 4-bit immediate.
func (code Code) N() uint8 {
	return code.Nibble(3)
}

// NN returns the low byte, an 8-bit immediate.
func (code Code) NN() uint8 {
	return uint8(code & 0xff)
}

// NNN returns the low 12 bits, an address.
func (code Code) NNN() uint16 {
	return uint16(code & 0xfff)
}

// Op classifies the instruction word.
func (code Code) Op() CodeOp {
	switch code.Family() {
	case 0x0:
		switch code {
		case 0x00E0:
			return OP_CLS
		case 0x00EE:
			return OP_RET
		}
		return OP_SYS
	case 0x1:
		return OP_JP
	case 0x2:
		return OP_CALL
	case 0x3:
		return OP_SE_IMM
	case 0x4:
		return OP_SNE_IMM
	case 0x5:
		if code.N() == 0x0 {
			return OP_SE_REG
		}
	case 0x6:
		return OP_LD_IMM
	case 0x7:
		return OP_ADD_IMM
	case 0x8:
		switch code.N() {
		case 0x0:
			return OP_LD_REG
		case 0x1:
			return OP_OR
		case 0x2:
			return OP_AND
		case 0x3:
			return OP_XOR
		case 0x4:
			return OP_ADD_REG
		case 0x5:
			return OP_SUB
		case 0x6:
			return OP_SHR
		case 0x7:
			return OP_SUBN
		case 0xE:
			return OP_SHL
		}
	case 0x9:
		if code.N() == 0x0 {
			return OP_SNE_REG
		}
	case 0xA:
		return OP_LD_I
	case 0xB:
		return OP_JP_V0
	case 0xC:
		return OP_RND
	case 0xD:
		return OP_DRW
	case 0xE:
		switch code.NN() {
		case 0x9E:
			return OP_SKP
		case 0xA1:
			return OP_SKNP
		}
	case 0xF:
		switch code.NN() {
		case 0x07:
			return OP_LD_VX_DT
		case 0x0A:
			return OP_LD_VX_K
		case 0x15:
			return OP_LD_DT_VX
		case 0x18:
			return OP_LD_ST_VX
		case 0x1E:
			return OP_ADD_I
		case 0x29:
			return OP_LD_F
		case 0x33:
			return OP_LD_B
		case 0x55:
			return OP_LD_STORE
		case 0x65:
			return OP_LD_LOAD
		}
	}

	return OP_INVALID
}

// String returns the assembly language representation of this instruction.
func (code Code) String() (out string) {
	op := code.Op()
	vx := fmt.Sprintf("v%x", code.X())
	vy := fmt.Sprintf("v%x", code.Y())

	switch op {
	case OP_CLS, OP_RET:
		out = op.String()
	case OP_SYS, OP_JP, OP_CALL:
		out = fmt.Sprintf("%v 0x%03x", op, code.NNN())
	case OP_SE_IMM, OP_SNE_IMM, OP_LD_IMM, OP_ADD_IMM, OP_RND:
		out = fmt.Sprintf("%v %v, 0x%02x", op, vx, code.NN())
	case OP_SE_REG, OP_SNE_REG, OP_LD_REG, OP_OR, OP_AND, OP_XOR,
		OP_ADD_REG, OP_SUB, OP_SHR, OP_SUBN, OP_SHL:
		out = fmt.Sprintf("%v %v, %v", op, vx, vy)
	case OP_LD_I:
		out = fmt.Sprintf("ld i, 0x%03x", code.NNN())
	case OP_JP_V0:
		out = fmt.Sprintf("jp v0, 0x%03x", code.NNN())
	case OP_DRW:
		out = fmt.Sprintf("drw %v, %v, %d", vx, vy, code.N())
	case OP_SKP, OP_SKNP:
		out = fmt.Sprintf("%v %v", op, vx)
	case OP_LD_VX_DT:
		out = fmt.Sprintf("ld %v, dt", vx)
	case OP_LD_VX_K:
		out = fmt.Sprintf("ld %v, k", vx)
	case OP_LD_DT_VX:
		out = fmt.Sprintf("ld dt, %v", vx)
	case OP_LD_ST_VX:
		out = fmt.Sprintf("ld st, %v", vx)
	case OP_ADD_I:
		out = fmt.Sprintf("add i, %v", vx)
	case OP_LD_F:
		out = fmt.Sprintf("ld f, %v", vx)
	case OP_LD_B:
		out = fmt.Sprintf("ld b, %v", vx)
	case OP_LD_STORE:
		out = fmt.Sprintf("ld [i], %v", vx)
	case OP_LD_LOAD:
		out = fmt.Sprintf("ld %v, [i]", vx)
	default:
		out = fmt.Sprintf(".word 0x%04x", uint16(code))
	}

	return
}
