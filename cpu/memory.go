package cpu

const (
	MEMORY_SIZE      = 0x1000                       // Total addressable memory.
	FONT_START       = 0x000                        // Base of the hex digit glyphs.
	FONT_HEIGHT      = 5                            // Bytes per glyph.
	PROGRAM_START    = 0x200                        // Load address of programs.
	PROGRAM_CAPACITY = MEMORY_SIZE - PROGRAM_START // Largest loadable program.
)

// Memory is the flat address space of the machine.
type Memory [MEMORY_SIZE]byte

// _font holds the sixteen hex digit glyphs, 0 through F.
var _font = [16 * FONT_HEIGHT]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// GlyphAddress returns the address of the glyph for a hex digit.
func GlyphAddress(digit uint8) uint16 {
	return FONT_START + FONT_HEIGHT*uint16(digit&0xf)
}

// Reset clears memory and installs the glyphs.
func (mem *Memory) Reset() {
	clear(mem[:])
	copy(mem[FONT_START:], _font[:])
}

// Load places a program at PROGRAM_START, truncated to PROGRAM_CAPACITY.
// Memory above the program is zeroed.
func (mem *Memory) Load(program []byte) (n int) {
	n = copy(mem[PROGRAM_START:], program)
	clear(mem[PROGRAM_START+n:])
	return
}

// Slice returns memory from addr to addr+size, or false if any byte of
// that span lies outside the address space.
func (mem *Memory) Slice(addr uint16, size int) (data []byte, ok bool) {
	end := int(addr) + size
	if size < 0 || end > MEMORY_SIZE {
		return
	}
	return mem[addr:end], true
}

// Word fetches the big-endian instruction word at addr.
func (mem *Memory) Word(addr uint16) (code Code, ok bool) {
	data, ok := mem.Slice(addr, 2)
	if !ok {
		return
	}
	code = Code(uint16(data[0])<<8 | uint16(data[1]))
	return
}
