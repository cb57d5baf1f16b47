package io

import (
	"bytes"
	"fmt"
	"io"
	"iter"
	"maps"
	"os"

	"github.com/ezrec/chip8vm/cpu"
)

// Rom is a program image, loaded at cpu.PROGRAM_START.
type Rom struct {
	Data      []byte
	Truncated bool // Source was longer than cpu.PROGRAM_CAPACITY.
}

// Defines returns an iter of defines for the ROM.
func (rom *Rom) Defines() iter.Seq2[string, string] {
	return maps.All(map[string]string{
		"PROGRAM_CAPACITY": fmt.Sprintf("%#x", cpu.PROGRAM_CAPACITY),
	})
}

// Load reads a program image, keeping at most cpu.PROGRAM_CAPACITY bytes.
func (rom *Rom) Load(input io.Reader) (err error) {
	buf := &bytes.Buffer{}
	_, err = io.Copy(buf, io.LimitReader(input, cpu.PROGRAM_CAPACITY+1))
	if err != nil {
		return
	}

	rom.Data = buf.Bytes()
	rom.Truncated = len(rom.Data) > cpu.PROGRAM_CAPACITY
	if rom.Truncated {
		rom.Data = rom.Data[:cpu.PROGRAM_CAPACITY]
	}

	if len(rom.Data) == 0 {
		err = ErrRomEmpty
	}

	return
}

// ReadFile loads a program image from a file.
func (rom *Rom) ReadFile(path string) (err error) {
	inf, err := os.Open(path)
	if err != nil {
		return
	}
	defer inf.Close()

	err = rom.Load(inf)

	return
}
