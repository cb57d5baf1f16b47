// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"
	"time"

	"github.com/ezrec/chip8vm/cpu"
	"github.com/ezrec/chip8vm/internal"
	"github.com/ezrec/chip8vm/io"
)

const (
	DEFAULT_PERIOD = 75 * time.Microsecond // Default interval between instructions.
	FRAME_PERIOD   = cpu.TIMER_PERIOD      // Interval between display refreshes.
)

var _emulator_defines = map[string]string{
	"TIMER_HZ":    fmt.Sprintf("%v", cpu.TIMER_HZ),
	"STACK_LIMIT": fmt.Sprintf("%v", cpu.STACK_LIMIT),
}

// Emulator state. CPU + program + host sinks.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently running program listing.
	Rom      io.Rom       // Binary program image; used when set, instead of Program.

	Output io.Display    // Display sink, or nil.
	Tone   *io.Tone      // Tone mailbox, or nil.
	Period time.Duration // Interval between instructions; DEFAULT_PERIOD if zero.
}

// NewEmulator creates a new emulator.
func NewEmulator(quirks cpu.Quirks) (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpu(quirks),
		Program: &cpu.Program{},
	}

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Rom.Defines(),
		io.KeyDefines(),
	)
}

// Image returns the program image that Reset loads.
func (emu *Emulator) Image() []byte {
	if len(emu.Rom.Data) > 0 {
		return emu.Rom.Data
	}
	return emu.Program.Binary()
}

// Reset the machine and load the program.
func (emu *Emulator) Reset() (err error) {
	emu.Cpu.Verbose = emu.Verbose

	image := emu.Image()
	n := emu.Cpu.Load(image)
	if n < len(image) {
		err = cpu.ErrProgramTooLarge
		return
	}

	if emu.Tone != nil {
		emu.Tone.Set(false)
	}

	return
}

// LineNo returns the source line of the instruction at the program counter.
func (emu *Emulator) LineNo() int {
	return emu.lineNo(emu.Cpu.PC)
}

func (emu *Emulator) lineNo(addr uint16) int {
	if len(emu.Rom.Data) > 0 {
		return 0
	}
	dbg := emu.Program.Debug(addr)
	if dbg.Opcode == nil {
		return 0
	}
	return dbg.LineNo
}

// Ticks returns the instructions executed since a reset.
func (emu *Emulator) Ticks() int {
	return emu.Cpu.Ticks
}

// Step performs a single machine cycle.
func (emu *Emulator) Step(keys cpu.Keys) (result cpu.Result, err error) {
	emu.Cpu.Verbose = emu.Verbose

	addr := emu.Cpu.PC
	result, err = emu.Cpu.Step(keys)
	if err != nil {
		var fault *cpu.ErrFault
		if errors.As(err, &fault) {
			addr = fault.Address
		}
		err = &ErrRuntime{Address: addr, LineNo: emu.lineNo(addr), Err: err}
	}

	return
}

// Run steps the machine at Period until the context is done or the machine
// faults. The display is presented at most once per FRAME_PERIOD, and only
// when it changed.
func (emu *Emulator) Run(ctx context.Context, input io.Input) (err error) {
	period := emu.Period
	if period <= 0 {
		period = DEFAULT_PERIOD
	}

	step := time.NewTicker(period)
	defer step.Stop()
	frame := time.NewTicker(FRAME_PERIOD)
	defer frame.Stop()

	if emu.Verbose {
		log.Printf("emulator: run, %v per step", period)
	}

	dirty := true
	for {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			return
		case <-frame.C:
			if !dirty || emu.Output == nil {
				continue
			}
			err = emu.Output.Present(emu.Cpu.Frame())
			if err != nil {
				return
			}
			dirty = false
		case <-step.C:
			var keys cpu.Keys
			if input != nil {
				keys = input.Keys()
			}
			var result cpu.Result
			result, err = emu.Step(keys)
			if err != nil {
				if emu.Tone != nil {
					emu.Tone.Set(false)
				}
				if emu.Output != nil {
					_ = emu.Output.Present(emu.Cpu.Frame())
				}
				return
			}
			dirty = dirty || result.Display
			if emu.Tone != nil {
				emu.Tone.Set(result.Sound)
			}
		}
	}
}
