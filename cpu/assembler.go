// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO":         "0",
	"MEMORY_SIZE":    fmt.Sprintf("%#x", MEMORY_SIZE),
	"PROGRAM_START":  fmt.Sprintf("%#x", PROGRAM_START),
	"FONT_START":     fmt.Sprintf("%#x", FONT_START),
	"FONT_HEIGHT":    fmt.Sprintf("%d", FONT_HEIGHT),
	"DISPLAY_WIDTH":  fmt.Sprintf("%d", DISPLAY_WIDTH),
	"DISPLAY_HEIGHT": fmt.Sprintf("%d", DISPLAY_HEIGHT),
}

var reParen = regexp.MustCompile(`\$\([^\$]*\)`)

// Assembler is a single pass assembler for CHIP-8 programs, with a final
// link pass for forward label references.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Opcode  []Opcode // List of generated opcodes.

	predefine map[string]string // Predefines
	Label     map[string]uint16 // Map of labels to addresses.
	Equate    map[string]string // Map of equates.
}

// Predefine defines a new equate or redefines an existing equate, applied
// at the start of every Parse.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// valueOf returns the value of a numeric word.
func (asm *Assembler) valueOf(word string) (value int64, err error) {
	value, err = strconv.ParseInt(word, 0, 32)
	if err != nil {
		err = ErrParseNumber(word)
	}
	return
}

// register returns the index of a vN register word.
func (asm *Assembler) register(word string) (reg uint8, err error) {
	word = strings.ToLower(word)
	if len(word) != 2 || word[0] != 'v' {
		err = ErrRegisterInvalid
		return
	}
	n, perr := strconv.ParseUint(word[1:], 16, 4)
	if perr != nil {
		err = ErrRegisterInvalid
		return
	}
	reg = uint8(n)
	return
}

// isRegister is true if word names a vN register.
func (asm *Assembler) isRegister(word string) bool {
	_, err := asm.register(word)
	return err == nil
}

// immediate parses a value bounded to [0, limit]. Negative values down to
// -(limit+1)/2 are accepted as two's complement.
func (asm *Assembler) immediate(word string, limit int64) (value uint16, err error) {
	v, err := asm.valueOf(word)
	if err != nil {
		return
	}
	if v < 0 && v >= -(limit+1)/2 {
		v += limit + 1
	}
	if v < 0 || v > limit {
		err = ErrOpcodeRange
		return
	}
	value = uint16(v)
	return
}

// address parses an address operand, which is either a number or a label
// to link later.
func (asm *Assembler) address(word string) (addr uint16, label string, err error) {
	if len(word) > 0 && (word[0] >= '0' && word[0] <= '9' || word[0] == '-') {
		addr, err = asm.immediate(word, 0xfff)
		return
	}
	label = word
	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var v int64
		v, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			err = nil
			continue
		}
		pred[key] = starlark.MakeInt64(v)
	}
	for key, addr := range asm.Label {
		pred[key] = starlark.MakeInt(int(addr))
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	return
}

// parseLine expands a single line into words, consuming equates and labels.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do $() evaluations
	line = reParen.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%d", value)
	})
	if err != nil {
		return
	}

	line = strings.ReplaceAll(line, ",", " ")
	words = slices.DeleteFunc(strings.Split(line, " "), func(a string) bool { return len(a) == 0 })

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	for len(words) > 0 && strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		if asm.Label == nil {
			asm.Label = make(map[string]uint16, 16)
		}
		asm.Label[label] = asm.currentAddress()
		words = words[1:]
	}

	return
}

// currentAddress gets the address of the next emitted byte.
func (asm *Assembler) currentAddress() uint16 {
	if len(asm.Opcode) == 0 {
		return PROGRAM_START
	}

	last := asm.Opcode[len(asm.Opcode)-1]

	return last.Address + uint16(len(last.Bytes))
}

// Parse parses an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.Label = make(map[string]uint16, 16)
	asm.Opcode = asm.Opcode[:0]
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])

		var words []string
		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}

		if int(asm.currentAddress()) > MEMORY_SIZE {
			err = ErrProgramTooLarge
			return
		}
	}
	err = scanner.Err()
	if err != nil {
		return
	}

	// Final linking of labels.
	for n := range asm.Opcode {
		op := &asm.Opcode[n]

		if len(op.LinkLabel) == 0 {
			continue
		}
		lineno = op.LineNo
		line = strings.Join(op.Words, " ")
		label := op.LinkLabel
		addr, ok := asm.Label[label]
		if !ok {
			err = ErrLabelMissing(label)
			return
		}
		if addr > 0xfff {
			err = ErrOpcodeRange
			return
		}
		op.Bytes[0] |= uint8(addr >> 8)
		op.Bytes[1] |= uint8(addr & 0xff)
	}

	prog = &Program{
		Opcodes: slices.Clone(asm.Opcode),
	}

	return
}

// argCount checks the operand count.
func argCount(args []string, least, most int) (err error) {
	switch {
	case len(args) < least:
		err = ErrOpcodeValueMissing
	case len(args) > most:
		err = ErrOpcodeExtraArgs
	}
	return
}

// aluMap maps the register-to-register 8xyN mnemonics.
var aluMap = map[string]uint8{
	"or":   0x1,
	"and":  0x2,
	"xor":  0x3,
	"sub":  0x5,
	"shr":  0x6,
	"subn": 0x7,
	"shl":  0xE,
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var out []byte
	var label string
	var data bool

	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := words

	defer func() {
		if err != nil || len(out) == 0 {
			return
		}
		opcode := Opcode{LineNo: lineno, Address: asm.currentAddress(), Words: initial_words, Bytes: out, Data: data, LinkLabel: label}
		asm.Opcode = append(asm.Opcode, opcode)
	}()

	mnemonic := strings.ToLower(words[0])
	args := words[1:]
	arg := make([]string, len(args))
	for n, word := range args {
		arg[n] = strings.ToLower(word)
	}

	emit := func(code Code) {
		out = append(out, uint8(code>>8), uint8(code))
	}

	var x, y uint8
	var value uint16

	switch mnemonic {
	case ".byte":
		if err = argCount(args, 1, len(args)); err != nil {
			return
		}
		data = true
		for _, word := range args {
			value, err = asm.immediate(word, 0xff)
			if err != nil {
				return
			}
			out = append(out, uint8(value))
		}
	case ".word":
		if err = argCount(args, 1, len(args)); err != nil {
			return
		}
		data = true
		for _, word := range args {
			value, err = asm.immediate(word, 0xffff)
			if err != nil {
				return
			}
			out = append(out, uint8(value>>8), uint8(value))
		}
	case "cls", "ret":
		if err = argCount(args, 0, 0); err != nil {
			return
		}
		if mnemonic == "cls" {
			emit(0x00E0)
		} else {
			emit(0x00EE)
		}
	case "sys", "call":
		if err = argCount(args, 1, 1); err != nil {
			return
		}
		value, label, err = asm.address(args[0])
		if err != nil {
			return
		}
		if mnemonic == "sys" {
			emit(Code(value))
		} else {
			emit(0x2000 | Code(value))
		}
	case "jp":
		if err = argCount(args, 1, 2); err != nil {
			return
		}
		base := Code(0x1000)
		target := args[0]
		if len(args) == 2 {
			if arg[0] != "v0" {
				err = ErrRegisterInvalid
				return
			}
			base = 0xB000
			target = args[1]
		}
		value, label, err = asm.address(target)
		if err != nil {
			return
		}
		emit(base | Code(value))
	case "se", "sne":
		if err = argCount(args, 2, 2); err != nil {
			return
		}
		if x, err = asm.register(arg[0]); err != nil {
			return
		}
		if asm.isRegister(arg[1]) {
			y, _ = asm.register(arg[1])
			family := uint8(0x5)
			if mnemonic == "sne" {
				family = 0x9
			}
			emit(MakeCode(family, x, y, 0))
			break
		}
		if value, err = asm.immediate(args[1], 0xff); err != nil {
			return
		}
		family := Code(0x3000)
		if mnemonic == "sne" {
			family = 0x4000
		}
		emit(family | Code(x)<<8 | Code(value))
	case "ld":
		if err = argCount(args, 2, 2); err != nil {
			return
		}
		err = asm.parseLoad(args, arg, emit, &label)
	case "add":
		if err = argCount(args, 2, 2); err != nil {
			return
		}
		if arg[0] == "i" {
			if x, err = asm.register(arg[1]); err != nil {
				return
			}
			emit(MakeCode(0xF, x, 0x1, 0xE))
			break
		}
		if x, err = asm.register(arg[0]); err != nil {
			return
		}
		if asm.isRegister(arg[1]) {
			y, _ = asm.register(arg[1])
			emit(MakeCode(0x8, x, y, 0x4))
			break
		}
		if value, err = asm.immediate(args[1], 0xff); err != nil {
			return
		}
		emit(0x7000 | Code(x)<<8 | Code(value))
	case "or", "and", "xor", "sub", "subn", "shr", "shl":
		least := 2
		if mnemonic == "shr" || mnemonic == "shl" {
			least = 1
		}
		if err = argCount(args, least, 2); err != nil {
			return
		}
		if x, err = asm.register(arg[0]); err != nil {
			return
		}
		y = x
		if len(arg) == 2 {
			if y, err = asm.register(arg[1]); err != nil {
				return
			}
		}
		emit(MakeCode(0x8, x, y, aluMap[mnemonic]))
	case "rnd":
		if err = argCount(args, 2, 2); err != nil {
			return
		}
		if x, err = asm.register(arg[0]); err != nil {
			return
		}
		if value, err = asm.immediate(args[1], 0xff); err != nil {
			return
		}
		emit(0xC000 | Code(x)<<8 | Code(value))
	case "drw":
		if err = argCount(args, 3, 3); err != nil {
			return
		}
		if x, err = asm.register(arg[0]); err != nil {
			return
		}
		if y, err = asm.register(arg[1]); err != nil {
			return
		}
		if value, err = asm.immediate(args[2], 0xf); err != nil {
			return
		}
		emit(MakeCode(0xD, x, y, uint8(value)))
	case "skp", "sknp":
		if err = argCount(args, 1, 1); err != nil {
			return
		}
		if x, err = asm.register(arg[0]); err != nil {
			return
		}
		if mnemonic == "skp" {
			emit(MakeCode(0xE, x, 0x9, 0xE))
		} else {
			emit(MakeCode(0xE, x, 0xA, 0x1))
		}
	default:
		err = ErrInstructionInvalid
		return
	}

	return
}

// parseLoad encodes the many forms of 'ld'.
func (asm *Assembler) parseLoad(args, arg []string, emit func(Code), label *string) (err error) {
	var x, y uint8
	var value uint16

	// ld <special>, vx
	special := map[string]Code{
		"dt":  0xF015,
		"st":  0xF018,
		"f":   0xF029,
		"b":   0xF033,
		"[i]": 0xF055,
	}
	if code, ok := special[arg[0]]; ok {
		if x, err = asm.register(arg[1]); err != nil {
			return
		}
		emit(code | Code(x)<<8)
		return
	}

	// ld i, addr
	if arg[0] == "i" {
		value, *label, err = asm.address(args[1])
		if err != nil {
			return
		}
		emit(0xA000 | Code(value))
		return
	}

	if x, err = asm.register(arg[0]); err != nil {
		return
	}

	switch {
	case arg[1] == "dt":
		emit(MakeCode(0xF, x, 0x0, 0x7))
	case arg[1] == "k":
		emit(MakeCode(0xF, x, 0x0, 0xA))
	case arg[1] == "[i]":
		emit(MakeCode(0xF, x, 0x6, 0x5))
	case asm.isRegister(arg[1]):
		y, _ = asm.register(arg[1])
		emit(MakeCode(0x8, x, y, 0x0))
	default:
		if value, err = asm.immediate(args[1], 0xff); err != nil {
			return
		}
		emit(0x6000 | Code(x)<<8 | Code(value))
	}

	return
}
