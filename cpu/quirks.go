package cpu

// Quirks selects between behaviors that differ across historical
// interpreters. It is fixed for the lifetime of a Cpu.
type Quirks struct {
	VfReset        bool // 8xy1, 8xy2, 8xy3 clear VF.
	IncrementIndex bool // Fx55, Fx65 advance I by x+1.
	ShiftVy        bool // 8xy6, 8xyE shift Vy into Vx, rather than Vx in place.
	JumpVx         bool // Bnnn jumps to nnn+Vx rather than nnn+V0.
}

// DefaultQuirks returns the COSMAC VIP behavior.
func DefaultQuirks() Quirks {
	return Quirks{
		VfReset:        true,
		IncrementIndex: true,
		ShiftVy:        true,
		JumpVx:         false,
	}
}
