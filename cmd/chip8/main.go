// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/ezrec/chip8vm/cpu"
	"github.com/ezrec/chip8vm/emulator"
	"github.com/ezrec/chip8vm/io"
)

func main() {
	var compile string
	var output string
	var disassemble bool
	var rate int
	var ui string
	var mute bool
	var verbose bool

	quirks := cpu.DefaultQuirks()

	flag.StringVar(&compile, "c", "", ".asm file to compile")
	flag.StringVar(&output, "o", "", "Write the program image, do not execute")
	flag.BoolVar(&disassemble, "d", false, "Disassemble the program image, do not execute")
	flag.IntVar(&rate, "rate", int(emulator.DEFAULT_PERIOD/time.Microsecond), "Microseconds per instruction")
	flag.StringVar(&ui, "ui", "window", "User interface: window or terminal")
	flag.BoolVar(&mute, "mute", false, "Disable the beeper")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.BoolVar(&quirks.VfReset, "vf-reset", quirks.VfReset, "Reset VF after 8xy1, 8xy2 and 8xy3")
	flag.BoolVar(&quirks.IncrementIndex, "inc-index", quirks.IncrementIndex, "Increment I after Fx55 and Fx65")
	flag.BoolVar(&quirks.ShiftVy, "shift-vy", quirks.ShiftVy, "Shift Vy, not Vx, in 8xy6 and 8xyE")
	flag.BoolVar(&quirks.JumpVx, "jump-vx", quirks.JumpVx, "Bnnn jumps to nnn + Vx, not nnn + V0")

	flag.Parse()

	if flag.NArg() > 1 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args()[1:])
	}
	if flag.NArg() == 0 && len(compile) == 0 {
		log.Fatalf("%v: No program; give a ROM file or -c", os.Args[0])
	}

	emu := emulator.NewEmulator(quirks)
	emu.Verbose = verbose
	emu.Period = time.Duration(rate) * time.Microsecond

	// Compile a new program.
	if len(compile) != 0 {
		inf, err := os.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()

		asm := &cpu.Assembler{Verbose: verbose}
		for key, value := range emu.Defines() {
			asm.Predefine(key, value)
		}
		emu.Program, err = asm.Parse(inf)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
	}

	if flag.NArg() == 1 {
		path := flag.Arg(0)
		err := emu.Rom.ReadFile(path)
		if err != nil {
			log.Fatalf("%v: %v", path, err)
		}
		if emu.Rom.Truncated {
			log.Printf("%v: truncated to %d bytes", path, len(emu.Rom.Data))
		}
	}

	if len(output) != 0 {
		err := os.WriteFile(output, emu.Image(), 0o644)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
	}

	if disassemble {
		for addr, code := range cpu.Disassemble(emu.Image()) {
			fmt.Printf("%03x: %04x  %v\n", addr, uint16(code), code)
		}
	}

	if len(output) != 0 || disassemble {
		return
	}

	err := emu.Reset()
	if err != nil {
		log.Fatalf("%v", err)
	}

	err = run(emu, ui, mute, verbose)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("%v", err)
	}
}

// run executes the emulator with the selected user interface until the
// user quits or the machine faults.
func run(emu *emulator.Emulator, ui string, mute bool, verbose bool) (err error) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	keypad := &io.Keypad{}

	emu.Tone = io.NewTone()
	var beeper io.Beeper = &io.Silent{}
	if !mute {
		ob, err := io.NewBeeper()
		if err != nil {
			log.Printf("beeper: %v", err)
		} else {
			defer ob.Close()
			beeper = ob
		}
	}
	go emu.Tone.Play(ctx, beeper)

	switch ui {
	case "terminal":
		term := io.NewTerminal(int(os.Stdin.Fd()), keypad)
		term.Verbose = verbose
		err = term.Start()
		if err != nil {
			return
		}

		screen := &io.Screen{Writer: os.Stdout}
		emu.Output = screen

		go func() {
			select {
			case <-term.Done():
				cancel()
			case <-ctx.Done():
			}
		}()

		err = emu.Run(ctx, keypad)

		term.Stop()
		screen.Close()
	case "window":
		win := io.NewWindow(keypad)
		emu.Output = win

		done := make(chan error, 1)
		go func() {
			done <- emu.Run(ctx, keypad)
			win.Close()
		}()

		err = win.Run()
		cancel()
		if runErr := <-done; err == nil {
			err = runErr
		}
	default:
		err = fmt.Errorf("%v: unknown user interface", ui)
	}

	return
}
