// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"time"
)

// Result reports the externally visible effects of a step.
type Result struct {
	Display bool // Display buffer was modified.
	Sound   bool // Sound timer is non-zero; the tone should be audible.
}

// Cpu is the complete state of the CHIP-8 machine.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Quirks Quirks // Interpreter behavior selection.

	Memory  Memory    // Address space.
	V       [16]uint8 // Register bank, VF (V[0xF]) doubles as flags.
	I       uint16    // Index register.
	PC      uint16    // Program counter.
	Stack   Stack     // Subroutine return addresses.
	Display Display   // Framebuffer.
	Timers  Timers    // Delay and sound timers.

	Waiting      bool  // Wait-for-key latch is set.
	WaitRegister uint8 // Register receiving the key when the latch clears.

	Clock func() time.Time // Wall-clock source for the timers.
	Rand  *rand.Rand       // Random source for Cxnn.

	Ticks int // Instructions executed since reset.

	lastTick time.Time
	fault    error
}

// NewCpu creates a reset CPU with the given quirks.
func NewCpu(quirks Quirks) (cpu *Cpu) {
	cpu = &Cpu{
		Quirks: quirks,
		Clock:  time.Now,
		Rand:   rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}

	cpu.Reset()

	return
}

// Reset the CPU state.
// - Clears registers, stack, display, timers and the key latch.
// - Reloads the glyphs and zeros the rest of memory.
// - Sets PC to PROGRAM_START.
// - Clears any halting fault.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	cpu.Memory.Reset()
	clear(cpu.V[:])
	cpu.I = 0
	cpu.PC = PROGRAM_START
	cpu.Stack.Reset()
	cpu.Display.Clear()
	cpu.Timers.Reset()
	cpu.Waiting = false
	cpu.WaitRegister = 0
	cpu.Ticks = 0
	cpu.fault = nil
	cpu.lastTick = cpu.now()
}

// Load resets the CPU and places program at PROGRAM_START.
// Returns the number of bytes loaded; the rest is truncated.
func (cpu *Cpu) Load(program []byte) (n int) {
	cpu.Reset()

	n = cpu.Memory.Load(program)
	if cpu.Verbose {
		log.Printf("cpu: loaded %d of %d bytes", n, len(program))
	}

	return
}

// Halted returns the fault that stopped the CPU, or nil if it is running.
func (cpu *Cpu) Halted() error {
	return cpu.fault
}

// Frame returns the framebuffer for presentation.
func (cpu *Cpu) Frame() *Display {
	return &cpu.Display
}

func (cpu *Cpu) now() time.Time {
	if cpu.Clock == nil {
		return time.Now()
	}
	return cpu.Clock()
}

// halt records a fatal fault. The CPU will not step again until reset.
func (cpu *Cpu) halt(addr uint16, code Code, err error) error {
	cpu.fault = &ErrFault{Address: addr, Code: code, Err: err}
	if cpu.Verbose {
		log.Printf("cpu: %v", cpu.fault)
	}
	return cpu.fault
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	text += fmt.Sprintf("   pc: %03X\n", cpu.PC)
	text += fmt.Sprintf("    i: %03X\n", cpu.I)
	for n, v := range cpu.V {
		text += fmt.Sprintf("   v%X: %02X\n", n, v)
	}
	top, ok := cpu.Stack.Peek()
	if ok {
		text += fmt.Sprintf("stack: %03X (%d)\n", top, cpu.Stack.Depth())
	} else {
		text += "stack: ---\n"
	}
	text += fmt.Sprintf("   dt: %02X\n", cpu.Timers.Delay)
	text += fmt.Sprintf("   st: %02X\n", cpu.Timers.Sound)
	if cpu.Waiting {
		text += fmt.Sprintf(" wait: v%X\n", cpu.WaitRegister)
	}

	return
}

// Step performs a single machine cycle with the given keys held.
//
// While the wait-for-key latch is set and no key is held, the step does
// nothing. Otherwise the latch (if set) is satisfied with the lowest held
// key, the timers advance by the wall-clock time since the last step, and
// one instruction is fetched and executed.
func (cpu *Cpu) Step(keys Keys) (result Result, err error) {
	if cpu.fault != nil {
		err = errors.Join(ErrHalted, cpu.fault)
		return
	}

	if cpu.Waiting {
		key, ok := keys.Lowest()
		if !ok {
			result.Sound = cpu.Timers.SoundActive()
			return
		}
		cpu.V[cpu.WaitRegister] = key
		cpu.Waiting = false
		if cpu.Verbose {
			log.Printf("cpu: key %X -> v%X", key, cpu.WaitRegister)
		}
	}

	now := cpu.now()
	cpu.Timers.Tick(now.Sub(cpu.lastTick))
	cpu.lastTick = now

	code, ok := cpu.Memory.Word(cpu.PC)
	if !ok {
		err = cpu.halt(cpu.PC, code, ErrAddressRange)
		return
	}
	cpu.PC += 2

	return cpu.Execute(code, keys)
}

// Execute executes a single instruction, which has already been fetched
// from PC-2, with the given keys held.
func (cpu *Cpu) Execute(code Code, keys Keys) (result Result, err error) {
	addr := cpu.PC - 2

	defer func() {
		if err != nil {
			err = cpu.halt(addr, code, err)
			return
		}
		cpu.Ticks++
		result.Sound = cpu.Timers.SoundActive()
	}()

	if cpu.Verbose {
		log.Printf("cpu: %03x: %04x %v", addr, uint16(code), code)
	}

	x := code.X()
	vx := cpu.V[x]
	vy := cpu.V[code.Y()]

	switch code.Op() {
	case OP_SYS:
		// Machine code routines are not emulated.
	case OP_CLS:
		cpu.Display.Clear()
		result.Display = true
	case OP_RET:
		pc, ok := cpu.Stack.Pop()
		if !ok {
			err = ErrStackEmpty
			return
		}
		cpu.PC = pc
	case OP_JP:
		cpu.PC = code.NNN()
	case OP_CALL:
		if !cpu.Stack.Push(cpu.PC) {
			err = ErrStackFull
			return
		}
		cpu.PC = code.NNN()
	case OP_SE_IMM:
		cpu.skipIf(vx == code.NN())
	case OP_SNE_IMM:
		cpu.skipIf(vx != code.NN())
	case OP_SE_REG:
		cpu.skipIf(vx == vy)
	case OP_SNE_REG:
		cpu.skipIf(vx != vy)
	case OP_LD_IMM:
		cpu.V[x] = code.NN()
	case OP_ADD_IMM:
		cpu.V[x] = vx + code.NN()
	case OP_LD_REG:
		cpu.V[x] = vy
	case OP_OR:
		cpu.V[x] = vx | vy
		cpu.logicFlag()
	case OP_AND:
		cpu.V[x] = vx & vy
		cpu.logicFlag()
	case OP_XOR:
		cpu.V[x] = vx ^ vy
		cpu.logicFlag()
	case OP_ADD_REG:
		sum := uint16(vx) + uint16(vy)
		cpu.V[x] = uint8(sum)
		cpu.setFlag(sum > 0xff)
	case OP_SUB:
		cpu.V[x] = vx - vy
		cpu.setFlag(vx >= vy)
	case OP_SUBN:
		cpu.V[x] = vy - vx
		cpu.setFlag(vy >= vx)
	case OP_SHR:
		in := cpu.shiftInput(vx, vy)
		cpu.V[x] = in >> 1
		cpu.setFlag(in&0x01 != 0)
	case OP_SHL:
		in := cpu.shiftInput(vx, vy)
		cpu.V[x] = in << 1
		cpu.setFlag(in&0x80 != 0)
	case OP_LD_I:
		cpu.I = code.NNN()
	case OP_JP_V0:
		base := cpu.V[0]
		if cpu.Quirks.JumpVx {
			base = vx
		}
		cpu.PC = code.NNN() + uint16(base)
	case OP_RND:
		cpu.V[x] = uint8(cpu.Rand.UintN(256)) & code.NN()
	case OP_DRW:
		result.Display = true
		err = cpu.draw(vx, vy, code.N())
	case OP_SKP:
		cpu.skipIf(keys.Pressed(vx))
	case OP_SKNP:
		cpu.skipIf(!keys.Pressed(vx))
	case OP_LD_VX_DT:
		cpu.V[x] = cpu.Timers.Delay
	case OP_LD_VX_K:
		cpu.Waiting = true
		cpu.WaitRegister = x
	case OP_LD_DT_VX:
		cpu.Timers.Delay = vx
	case OP_LD_ST_VX:
		cpu.Timers.Sound = vx
	case OP_ADD_I:
		cpu.I += uint16(vx)
	case OP_LD_F:
		cpu.I = GlyphAddress(vx)
	case OP_LD_B:
		mem, ok := cpu.Memory.Slice(cpu.I, 3)
		if !ok {
			err = ErrAddressRange
			return
		}
		mem[0] = vx / 100
		mem[1] = (vx / 10) % 10
		mem[2] = vx % 10
	case OP_LD_STORE:
		mem, ok := cpu.Memory.Slice(cpu.I, int(x)+1)
		if !ok {
			err = ErrAddressRange
			return
		}
		copy(mem, cpu.V[:x+1])
		cpu.storeLoadIndex(x)
	case OP_LD_LOAD:
		mem, ok := cpu.Memory.Slice(cpu.I, int(x)+1)
		if !ok {
			err = ErrAddressRange
			return
		}
		copy(cpu.V[:x+1], mem)
		cpu.storeLoadIndex(x)
	default:
		err = ErrOpcodeDecode
		return
	}

	return
}

// skipIf skips the next instruction when cond holds.
func (cpu *Cpu) skipIf(cond bool) {
	if cond {
		cpu.PC += 2
	}
}

// setFlag writes VF. Always called after the result register is written,
// so that a flag result wins when x is F.
func (cpu *Cpu) setFlag(set bool) {
	if set {
		cpu.V[0xf] = 1
	} else {
		cpu.V[0xf] = 0
	}
}

// logicFlag applies the VfReset quirk after OR, AND and XOR.
func (cpu *Cpu) logicFlag() {
	if cpu.Quirks.VfReset {
		cpu.V[0xf] = 0
	}
}

// shiftInput selects the shifted operand for 8xy6 and 8xyE.
func (cpu *Cpu) shiftInput(vx, vy uint8) uint8 {
	if cpu.Quirks.ShiftVy {
		return vy
	}
	return vx
}

// storeLoadIndex applies the IncrementIndex quirk after Fx55 and Fx65.
func (cpu *Cpu) storeLoadIndex(x uint8) {
	if cpu.Quirks.IncrementIndex {
		cpu.I += uint16(x) + 1
	}
}

// draw executes Dxyn. Only the sprite rows that land on the display are
// read from memory.
func (cpu *Cpu) draw(vx, vy, n uint8) (err error) {
	rows := int(n)
	if remain := DISPLAY_HEIGHT - int(vy)%DISPLAY_HEIGHT; rows > remain {
		rows = remain
	}

	sprite, ok := cpu.Memory.Slice(cpu.I, rows)
	if !ok {
		err = ErrAddressRange
		return
	}

	cpu.V[0xf] = 0
	if cpu.Display.Draw(int(vx), int(vy), sprite) {
		cpu.V[0xf] = 1
	}

	return
}
