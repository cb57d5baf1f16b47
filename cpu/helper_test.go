package cpu

import (
	"math/rand/v2"
	"time"
)

// fakeClock is a manually advanced wall clock.
type fakeClock struct {
	now time.Time
}

func (fc *fakeClock) Now() time.Time {
	return fc.now
}

func (fc *fakeClock) Advance(d time.Duration) {
	fc.now = fc.now.Add(d)
}

// codeBytes encodes instruction words big-endian.
func codeBytes(codes ...Code) (bin []byte) {
	for _, code := range codes {
		bin = append(bin, uint8(code>>8), uint8(code))
	}
	return
}

// newTestCpu returns a CPU with a fake clock, fixed random seed, and the
// program loaded.
func newTestCpu(quirks Quirks, codes ...Code) (cpu *Cpu, clock *fakeClock) {
	clock = &fakeClock{now: time.Unix(1000, 0)}

	cpu = NewCpu(quirks)
	cpu.Clock = clock.Now
	cpu.Rand = rand.New(rand.NewPCG(1, 2))
	cpu.Load(codeBytes(codes...))

	return
}

// execAt runs a single instruction as if fetched from PROGRAM_START.
func execAt(cpu *Cpu, code Code, keys Keys) (Result, error) {
	cpu.PC = PROGRAM_START + 2
	return cpu.Execute(code, keys)
}
