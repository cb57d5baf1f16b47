// Package cpu implements the CHIP-8 virtual machine and its assembler.
//
// The machine consists of 4096 bytes of memory, sixteen 8-bit registers
// (V0-VF, with VF doubling as the flag output), a 16-bit index register (I),
// a program counter, a call stack, delay and sound timers running at 60Hz,
// and a 64x32 monochrome display. Behaviors that differ between historical
// interpreters are selected at construction time through Quirks.
//
// The assembler accepts the classic CHIP-8 mnemonics, with labels, equates,
// data directives, and compile-time expression evaluation.
package cpu
