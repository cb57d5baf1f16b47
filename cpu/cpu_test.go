package cpu

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewCpu(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(DefaultQuirks())

	assert.Equal(uint16(PROGRAM_START), cpu.PC)
	assert.Equal(uint16(0), cpu.I)
	assert.True(cpu.Stack.Empty())
	assert.Equal(0, cpu.Display.Lit())
	assert.Nil(cpu.Halted())
	assert.Equal(_font[:], cpu.Memory[FONT_START:FONT_START+len(_font)])
	assert.NotNil(cpu.Rand)
}

func TestCpu_Load(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(DefaultQuirks())
	cpu.V[3] = 9
	cpu.Memory[0x400] = 0xAA

	n := cpu.Load([]byte{0x12, 0x34, 0x56})
	assert.Equal(3, n)
	assert.Equal(uint8(0), cpu.V[3])
	assert.Equal([]byte{0x12, 0x34, 0x56, 0x00}, cpu.Memory[PROGRAM_START:PROGRAM_START+4])
	assert.Equal(uint8(0), cpu.Memory[0x400])

	big := make([]byte, MEMORY_SIZE)
	for n := range big {
		big[n] = 0xEE
	}
	n = cpu.Load(big)
	assert.Equal(PROGRAM_CAPACITY, n)
	assert.Equal(uint8(0xEE), cpu.Memory[MEMORY_SIZE-1])
	assert.Equal(uint8(0xF0), cpu.Memory[0], "glyphs survive a large load")
}

func TestCpu_Clear(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(DefaultQuirks(), 0xD015, 0x00E0)

	result, err := cpu.Step(0)
	assert.NoError(err)
	assert.True(result.Display)
	assert.NotZero(cpu.Display.Lit())

	result, err = cpu.Step(0)
	assert.NoError(err)
	assert.True(result.Display)
	assert.Equal(0, cpu.Display.Lit())
	for y := range DISPLAY_HEIGHT {
		for x := range DISPLAY_WIDTH {
			assert.False(cpu.Display.Pixel(x, y))
		}
	}
}

func TestCpu_Arithmetic(t *testing.T) {
	table := [](struct {
		name string
		code Code
		vx   uint8
		vy   uint8
		out  uint8
		vf   uint8
	}){
		{"add_carry", 0x8124, 250, 10, 4, 1},
		{"add_small", 0x8124, 1, 1, 2, 0},
		{"add_edge", 0x8124, 255, 0, 255, 0},
		{"add_edge_carry", 0x8124, 255, 1, 0, 1},
		{"sub_no_borrow", 0x8125, 5, 3, 2, 1},
		{"sub_borrow", 0x8125, 3, 5, 254, 0},
		{"sub_equal", 0x8125, 5, 5, 0, 1},
		{"subn_no_borrow", 0x8127, 3, 5, 2, 1},
		{"subn_borrow", 0x8127, 5, 3, 254, 0},
		{"subn_equal", 0x8127, 7, 7, 0, 1},
		{"ld", 0x8120, 3, 5, 5, 0x55},
		{"add_imm", 0x71F0, 0x20, 0, 0x10, 0x55},
		{"ld_imm", 0x61AB, 0x20, 0, 0xAB, 0x55},
	}

	for _, entry := range table {
		assert := assert.New(t)

		cpu, _ := newTestCpu(DefaultQuirks(), entry.code)
		cpu.V[1] = entry.vx
		cpu.V[2] = entry.vy
		cpu.V[0xF] = 0x55

		_, err := cpu.Step(0)
		assert.NoError(err, entry.name)
		assert.Equal(entry.out, cpu.V[1], entry.name)
		assert.Equal(entry.vf, cpu.V[0xF], entry.name)
		assert.Equal(entry.vy, cpu.V[2], entry.name)
	}
}

func TestCpu_FlagRegisterTarget(t *testing.T) {
	assert := assert.New(t)

	// When x is F, the flag result overwrites the arithmetic result.
	cpu, _ := newTestCpu(DefaultQuirks(), 0x8F14, 0x8F15)
	cpu.V[0xF] = 250
	cpu.V[1] = 10

	_, err := cpu.Step(0)
	assert.NoError(err)
	assert.Equal(uint8(1), cpu.V[0xF])

	_, err = cpu.Step(0)
	assert.NoError(err)
	assert.Equal(uint8(0), cpu.V[0xF])
}

func TestCpu_Logic(t *testing.T) {
	table := [](struct {
		name    string
		code    Code
		vfReset bool
		out     uint8
		vf      uint8
	}){
		{"or_reset", 0x8121, true, 0xF5, 0},
		{"and_reset", 0x8122, true, 0x50, 0},
		{"xor_reset", 0x8123, true, 0xA5, 0},
		{"or_keep", 0x8121, false, 0xF5, 0x77},
		{"and_keep", 0x8122, false, 0x50, 0x77},
		{"xor_keep", 0x8123, false, 0xA5, 0x77},
	}

	for _, entry := range table {
		assert := assert.New(t)

		quirks := DefaultQuirks()
		quirks.VfReset = entry.vfReset
		cpu, _ := newTestCpu(quirks, entry.code)
		cpu.V[1] = 0xF0
		cpu.V[2] = 0x55
		cpu.V[0xF] = 0x77

		_, err := cpu.Step(0)
		assert.NoError(err, entry.name)
		assert.Equal(entry.out, cpu.V[1], entry.name)
		assert.Equal(entry.vf, cpu.V[0xF], entry.name)
	}
}

func TestCpu_Shift(t *testing.T) {
	table := [](struct {
		name    string
		code    Code
		shiftVy bool
		out     uint8
		vf      uint8
	}){
		{"shr_vy", 0x8126, true, 0x01, 1},
		{"shr_vx", 0x8126, false, 0x40, 1},
		{"shl_vy", 0x812E, true, 0x06, 0},
		{"shl_vx", 0x812E, false, 0x02, 1},
	}

	for _, entry := range table {
		assert := assert.New(t)

		quirks := DefaultQuirks()
		quirks.ShiftVy = entry.shiftVy
		cpu, _ := newTestCpu(quirks, entry.code)
		cpu.V[1] = 0x81
		cpu.V[2] = 0x03

		_, err := cpu.Step(0)
		assert.NoError(err, entry.name)
		assert.Equal(entry.out, cpu.V[1], entry.name)
		assert.Equal(entry.vf, cpu.V[0xF], entry.name)
		assert.Equal(uint8(0x03), cpu.V[2], entry.name)
	}
}

func TestCpu_Skip(t *testing.T) {
	table := [](struct {
		name string
		code Code
		keys Keys
		skip bool
	}){
		{"se_imm_eq", 0x3142, 0, true},
		{"se_imm_ne", 0x3143, 0, false},
		{"sne_imm_eq", 0x4142, 0, false},
		{"sne_imm_ne", 0x4143, 0, true},
		{"se_reg_eq", 0x5130, 0, true},
		{"se_reg_ne", 0x5120, 0, false},
		{"sne_reg_eq", 0x9130, 0, false},
		{"sne_reg_ne", 0x9120, 0, true},
		{"skp_down", 0xE49E, MakeKeys(0x7), true},
		{"skp_up", 0xE49E, MakeKeys(0x6, 0x8), false},
		{"sknp_down", 0xE4A1, MakeKeys(0x7), false},
		{"sknp_up", 0xE4A1, 0, true},
	}

	for _, entry := range table {
		assert := assert.New(t)

		cpu, _ := newTestCpu(DefaultQuirks())
		cpu.V[1] = 0x42
		cpu.V[2] = 0x41
		cpu.V[3] = 0x42
		cpu.V[4] = 0x7

		_, err := execAt(cpu, entry.code, entry.keys)
		assert.NoError(err, entry.name)
		if entry.skip {
			assert.Equal(uint16(PROGRAM_START+4), cpu.PC, entry.name)
		} else {
			assert.Equal(uint16(PROGRAM_START+2), cpu.PC, entry.name)
		}
	}
}

func TestCpu_CallReturn(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(DefaultQuirks(),
		0x2206, // 200: call 206
		0x6101, // 202: ld v1, 1
		0x1204, // 204: jp 204
		0x6007, // 206: ld v0, 7
		0x00EE, // 208: ret
	)

	_, err := cpu.Step(0)
	assert.NoError(err)
	assert.Equal(uint16(0x206), cpu.PC)
	top, ok := cpu.Stack.Peek()
	assert.True(ok)
	assert.Equal(uint16(0x202), top)

	for range 4 {
		_, err = cpu.Step(0)
		assert.NoError(err)
	}

	assert.Equal(uint8(7), cpu.V[0])
	assert.Equal(uint8(1), cpu.V[1])
	assert.Equal(uint16(0x204), cpu.PC)
	assert.True(cpu.Stack.Empty())
}

func TestCpu_StackUnderflow(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(DefaultQuirks(), 0x00EE)

	_, err := cpu.Step(0)
	assert.ErrorIs(err, ErrStackEmpty)

	var fault *ErrFault
	assert.ErrorAs(err, &fault)
	assert.Equal(uint16(PROGRAM_START), fault.Address)
	assert.Equal(Code(0x00EE), fault.Code)
}

func TestCpu_StackOverflow(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(DefaultQuirks(), 0x2200)

	for range STACK_LIMIT {
		_, err := cpu.Step(0)
		assert.NoError(err)
	}

	_, err := cpu.Step(0)
	assert.ErrorIs(err, ErrStackFull)
	assert.Equal(STACK_LIMIT, cpu.Stack.Depth())
}

func TestCpu_Jump(t *testing.T) {
	table := [](struct {
		name   string
		code   Code
		jumpVx bool
		pc     uint16
	}){
		{"jp", 0x1345, false, 0x345},
		{"jp_v0", 0xB300, false, 0x304},
		{"jp_vx", 0xB300, true, 0x308},
	}

	for _, entry := range table {
		assert := assert.New(t)

		quirks := DefaultQuirks()
		quirks.JumpVx = entry.jumpVx
		cpu, _ := newTestCpu(quirks, entry.code)
		cpu.V[0] = 4
		cpu.V[3] = 8

		_, err := cpu.Step(0)
		assert.NoError(err, entry.name)
		assert.Equal(entry.pc, cpu.PC, entry.name)
	}
}

func TestCpu_Index(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(DefaultQuirks(),
		0xA123, // ld i, 0x123
		0xF01E, // add i, v0
		0xF129, // ld f, v1
	)
	cpu.V[0] = 0xFF
	cpu.V[1] = 0x1A

	_, err := cpu.Step(0)
	assert.NoError(err)
	assert.Equal(uint16(0x123), cpu.I)

	_, err = cpu.Step(0)
	assert.NoError(err)
	assert.Equal(uint16(0x222), cpu.I)
	assert.Equal(uint8(0), cpu.V[0xF])

	_, err = cpu.Step(0)
	assert.NoError(err)
	assert.Equal(GlyphAddress(0xA), cpu.I)
	assert.Equal(uint16(50), cpu.I)
}

func TestCpu_BCD(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(DefaultQuirks(), 0xF333)
	cpu.V[3] = 156
	cpu.I = 0x300

	_, err := cpu.Step(0)
	assert.NoError(err)
	assert.Equal([]byte{1, 5, 6}, cpu.Memory[0x300:0x303])
	assert.Equal(uint16(0x300), cpu.I)

	cpu, _ = newTestCpu(DefaultQuirks(), 0xF333)
	cpu.V[3] = 7
	cpu.I = 0xFFE

	_, err = cpu.Step(0)
	assert.ErrorIs(err, ErrAddressRange)
}

func TestCpu_StoreLoad(t *testing.T) {
	for _, increment := range []bool{false, true} {
		assert := assert.New(t)

		quirks := DefaultQuirks()
		quirks.IncrementIndex = increment
		cpu, _ := newTestCpu(quirks)

		saved := [16]uint8{}
		for n := range saved {
			saved[n] = uint8(0x10*n + 3)
		}
		cpu.V = saved
		cpu.I = 0x300

		_, err := execAt(cpu, 0xF555, 0)
		assert.NoError(err)
		assert.Equal(saved[:6], []uint8(cpu.Memory[0x300:0x306]))
		assert.Equal(uint8(0), cpu.Memory[0x306])
		if increment {
			assert.Equal(uint16(0x306), cpu.I)
		} else {
			assert.Equal(uint16(0x300), cpu.I)
		}

		clear(cpu.V[:])
		cpu.I = 0x300
		_, err = execAt(cpu, 0xF565, 0)
		assert.NoError(err)
		assert.Equal(saved[:6], cpu.V[:6])
		assert.Equal(uint8(0), cpu.V[6])
		if increment {
			assert.Equal(uint16(0x306), cpu.I)
		} else {
			assert.Equal(uint16(0x300), cpu.I)
		}
	}
}

func TestCpu_StoreLoadRange(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(DefaultQuirks())
	cpu.I = MEMORY_SIZE - 4

	_, err := execAt(cpu, 0xF355, 0)
	assert.NoError(err)

	cpu.I = MEMORY_SIZE - 4
	_, err = execAt(cpu, 0xF465, 0)
	assert.ErrorIs(err, ErrAddressRange)
}

func TestCpu_Draw(t *testing.T) {
	assert := assert.New(t)

	// ld f, v0 ; drw v1, v2, 5 ; drw v1, v2, 5
	cpu, _ := newTestCpu(DefaultQuirks(), 0xF029, 0xD125, 0xD125)
	cpu.V[1] = 2
	cpu.V[2] = 3

	_, err := cpu.Step(0)
	assert.NoError(err)

	result, err := cpu.Step(0)
	assert.NoError(err)
	assert.True(result.Display)
	assert.Equal(uint8(0), cpu.V[0xF])
	assert.Equal(14, cpu.Display.Lit())
	assert.True(cpu.Display.Pixel(2, 3))
	assert.True(cpu.Display.Pixel(5, 3))
	assert.False(cpu.Display.Pixel(6, 3))
	assert.True(cpu.Display.Pixel(2, 4))
	assert.False(cpu.Display.Pixel(3, 4))

	result, err = cpu.Step(0)
	assert.NoError(err)
	assert.True(result.Display)
	assert.Equal(uint8(1), cpu.V[0xF])
	assert.Equal(0, cpu.Display.Lit())
}

func TestCpu_DrawClip(t *testing.T) {
	table := [](struct {
		name string
		x    uint8
		y    uint8
		lit  int
	}){
		{"inside", 2, 3, 14},
		{"wrap_start_x", 64 + 2, 3, 14},
		{"wrap_start_y", 2, 32 + 3, 14},
		{"clip_right", 62, 0, 7},
		{"clip_bottom", 0, 30, 6},
		{"clip_corner", 63, 31, 1},
	}

	for _, entry := range table {
		assert := assert.New(t)

		cpu, _ := newTestCpu(DefaultQuirks(), 0xD125)
		cpu.I = GlyphAddress(0)
		cpu.V[1] = entry.x
		cpu.V[2] = entry.y

		_, err := cpu.Step(0)
		assert.NoError(err, entry.name)
		assert.Equal(entry.lit, cpu.Display.Lit(), entry.name)
		assert.Equal(uint8(0), cpu.V[0xF], entry.name)
	}
}

func TestCpu_DrawCollision(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(DefaultQuirks(), 0xD121)
	cpu.Memory[0x300] = 0x80
	cpu.I = 0x300
	cpu.Display[0][1] = true
	cpu.V[0xF] = 1

	// Overlapping nothing that is lit: no collision, VF cleared.
	_, err := cpu.Step(0)
	assert.NoError(err)
	assert.Equal(uint8(0), cpu.V[0xF])
	assert.True(cpu.Display.Pixel(0, 0))
	assert.True(cpu.Display.Pixel(1, 0))
}

func TestCpu_DrawRange(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(DefaultQuirks(), 0xD125, 0xD125)
	cpu.I = MEMORY_SIZE - 2
	cpu.V[2] = 30

	// Only two rows land on the display, so only two bytes are read.
	_, err := cpu.Step(0)
	assert.NoError(err)

	cpu.V[2] = 0
	_, err = cpu.Step(0)
	assert.ErrorIs(err, ErrAddressRange)
}

func TestCpu_Random(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(DefaultQuirks())

	for range 64 {
		_, err := execAt(cpu, 0xC10F, 0)
		assert.NoError(err)
		assert.LessOrEqual(cpu.V[1], uint8(0x0F))

		_, err = execAt(cpu, 0xC200, 0)
		assert.NoError(err)
		assert.Equal(uint8(0), cpu.V[2])
	}
}

func TestCpu_Sys(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(DefaultQuirks(), 0x0123, 0x0000)

	for range 2 {
		result, err := cpu.Step(0)
		assert.NoError(err)
		assert.False(result.Display)
	}
	assert.Equal(uint16(PROGRAM_START+4), cpu.PC)
}

func TestCpu_Timers(t *testing.T) {
	assert := assert.New(t)

	cpu, clock := newTestCpu(DefaultQuirks(),
		0xF015, // ld dt, v0
		0xF118, // ld st, v1
		0xF207, // ld v2, dt
		0xF207, // ld v2, dt
		0xF207, // ld v2, dt
	)
	cpu.V[0] = 3
	cpu.V[1] = 1

	result, err := cpu.Step(0)
	assert.NoError(err)
	assert.False(result.Sound)
	assert.Equal(uint8(3), cpu.Timers.Delay)

	result, err = cpu.Step(0)
	assert.NoError(err)
	assert.True(result.Sound)

	// Instruction rate does not drive the timers.
	result, err = cpu.Step(0)
	assert.NoError(err)
	assert.True(result.Sound)
	assert.Equal(uint8(3), cpu.V[2])

	clock.Advance(TIMER_PERIOD)
	result, err = cpu.Step(0)
	assert.NoError(err)
	assert.False(result.Sound)
	assert.Equal(uint8(2), cpu.V[2])

	// A long stall only decrements once.
	clock.Advance(time.Second)
	_, err = cpu.Step(0)
	assert.NoError(err)
	assert.Equal(uint8(1), cpu.V[2])
}

func TestCpu_WaitForKey(t *testing.T) {
	assert := assert.New(t)

	cpu, clock := newTestCpu(DefaultQuirks(),
		0xF20A, // ld v2, k
		0x6105, // ld v1, 5
	)
	cpu.Timers.Delay = 10

	result, err := cpu.Step(0)
	assert.NoError(err)
	assert.False(result.Display)
	assert.True(cpu.Waiting)
	assert.Equal(uint8(2), cpu.WaitRegister)
	assert.Equal(uint16(0x202), cpu.PC)

	before := *cpu
	for range 5 {
		clock.Advance(TIMER_PERIOD)
		result, err = cpu.Step(0)
		assert.NoError(err)
		assert.Equal(Result{}, result)
		assert.Equal(before.PC, cpu.PC)
		assert.Equal(before.V, cpu.V)
		assert.Equal(before.I, cpu.I)
		assert.Equal(before.Timers.Delay, cpu.Timers.Delay)
		assert.True(cpu.Waiting)
	}

	_, err = cpu.Step(MakeKeys(0xC, 0x3, 0x9))
	assert.NoError(err)
	assert.False(cpu.Waiting)
	assert.Equal(uint8(0x3), cpu.V[2])
	assert.Equal(uint8(5), cpu.V[1])
	assert.Equal(uint16(0x204), cpu.PC)
}

func TestCpu_ProgramCounterRange(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(DefaultQuirks(), 0x1FFF)

	_, err := cpu.Step(0)
	assert.NoError(err)
	assert.Equal(uint16(0xFFF), cpu.PC)

	_, err = cpu.Step(0)
	assert.ErrorIs(err, ErrAddressRange)

	var fault *ErrFault
	assert.ErrorAs(err, &fault)
	assert.Equal(uint16(0xFFF), fault.Address)
}

func TestCpu_EndToEnd(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(DefaultQuirks(),
		0x00E0, // cls
		0x6010, // ld v0, 0x10
		0x7005, // add v0, 5
		0xFFFF, // invalid
	)
	cpu.Display[4][4] = true

	for range 3 {
		_, err := cpu.Step(0)
		assert.NoError(err)
	}

	_, err := cpu.Step(0)
	assert.ErrorIs(err, ErrOpcodeDecode)
	assert.Equal(uint8(0x15), cpu.V[0])
	assert.Equal(0, cpu.Display.Lit())

	var fault *ErrFault
	assert.ErrorAs(err, &fault)
	assert.Equal(uint16(0x206), fault.Address)
	assert.Equal(Code(0xFFFF), fault.Code)
	assert.Equal(fault, cpu.Halted())

	// Halted: nothing more happens until reset.
	pc := cpu.PC
	_, err = cpu.Step(MakeKeys(1))
	assert.ErrorIs(err, ErrHalted)
	assert.ErrorIs(err, ErrOpcodeDecode)
	assert.Equal(pc, cpu.PC)

	cpu.Reset()
	assert.Nil(cpu.Halted())
	assert.Equal(uint16(PROGRAM_START), cpu.PC)
}

func TestCpu_DecodeErrors(t *testing.T) {
	for _, code := range []Code{0x5121, 0x812F, 0x8128, 0x9121, 0xE19F, 0xE1A2, 0xF100, 0xF1FF} {
		assert := assert.New(t)

		cpu, _ := newTestCpu(DefaultQuirks(), code)
		_, err := cpu.Step(0)
		assert.True(errors.Is(err, ErrOpcodeDecode), code.String())
	}
}

func TestCpu_String(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(DefaultQuirks(), 0xF30A)
	cpu.V[0xA] = 0x5C

	_, err := cpu.Step(0)
	assert.NoError(err)

	text := cpu.String()
	assert.True(strings.Contains(text, "pc: 202"), text)
	assert.True(strings.Contains(text, "vA: 5C"), text)
	assert.True(strings.Contains(text, "stack: ---"), text)
	assert.True(strings.Contains(text, "wait: v3"), text)
}
