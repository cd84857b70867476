// Package asm assembles CHIP-8 source written in the mnemonic syntax produced
// by chip8.Instruction.Disassemble into a raw program image.
package asm

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"gochip8/pkg/chip8"
)

// field says where an operand is placed in the opcode word.
type field int

const (
	fieldFixed field = iota // keyword operand such as I or DT, not encoded
	fieldV0                 // register operand that has to be V0
	fieldX
	fieldY
	fieldAddr
	fieldByte
	fieldNibble
)

type encoding struct {
	base   uint16
	fields []field
}

// encodings is keyed by mnemonic and operand signature. Signature tokens are
// V for a register, N for a number or label, and the keyword itself for
// I, [I], DT, ST, K, F and B.
var encodings = map[string]encoding{
	"CLS": {0x00E0, nil},
	"RET": {0x00EE, nil},

	"JP N":      {0x1000, []field{fieldAddr}},
	"JP V,N":    {0xB000, []field{fieldV0, fieldAddr}},
	"CALL N":    {0x2000, []field{fieldAddr}},
	"SE V,N":    {0x3000, []field{fieldX, fieldByte}},
	"SNE V,N":   {0x4000, []field{fieldX, fieldByte}},
	"SE V,V":    {0x5000, []field{fieldX, fieldY}},
	"LD V,N":    {0x6000, []field{fieldX, fieldByte}},
	"ADD V,N":   {0x7000, []field{fieldX, fieldByte}},
	"LD V,V":    {0x8000, []field{fieldX, fieldY}},
	"OR V,V":    {0x8001, []field{fieldX, fieldY}},
	"AND V,V":   {0x8002, []field{fieldX, fieldY}},
	"XOR V,V":   {0x8003, []field{fieldX, fieldY}},
	"ADD V,V":   {0x8004, []field{fieldX, fieldY}},
	"SUB V,V":   {0x8005, []field{fieldX, fieldY}},
	"SHR V":     {0x8006, []field{fieldX}},
	"SHR V,V":   {0x8006, []field{fieldX, fieldY}},
	"SUBN V,V":  {0x8007, []field{fieldX, fieldY}},
	"SHL V":     {0x800E, []field{fieldX}},
	"SHL V,V":   {0x800E, []field{fieldX, fieldY}},
	"SNE V,V":   {0x9000, []field{fieldX, fieldY}},
	"LD I,N":    {0xA000, []field{fieldFixed, fieldAddr}},
	"RND V,N":   {0xC000, []field{fieldX, fieldByte}},
	"DRW V,V,N": {0xD000, []field{fieldX, fieldY, fieldNibble}},
	"SKP V":     {0xE09E, []field{fieldX}},
	"SKNP V":    {0xE0A1, []field{fieldX}},
	"LD V,DT":   {0xF007, []field{fieldX, fieldFixed}},
	"LD V,K":    {0xF00A, []field{fieldX, fieldFixed}},
	"LD DT,V":   {0xF015, []field{fieldFixed, fieldX}},
	"LD ST,V":   {0xF018, []field{fieldFixed, fieldX}},
	"ADD I,V":   {0xF01E, []field{fieldFixed, fieldX}},
	"LD F,V":    {0xF029, []field{fieldFixed, fieldX}},
	"LD B,V":    {0xF033, []field{fieldFixed, fieldX}},
	"LD [I],V":  {0xF055, []field{fieldFixed, fieldX}},
	"LD V,[I]":  {0xF065, []field{fieldX, fieldFixed}},
}

// keywords are operands that stand for themselves.
var keywords = map[string]bool{
	"I": true, "[I]": true, "DT": true, "ST": true, "K": true, "F": true, "B": true,
}

var mnemonics = func() map[string]bool {
	m := make(map[string]bool)
	for key := range encodings {
		m[strings.Fields(key)[0]] = true
	}
	return m
}()

type Assembler struct {
	origin uint16
	labels map[string]uint16
}

type parsedLine struct {
	lineNo   int
	labels   []string
	mnemonic string
	operands []string
}

// NewAssembler returns an assembler whose output is loaded at origin.
func NewAssembler(origin uint16) *Assembler {
	return &Assembler{
		origin: origin,
		labels: make(map[string]uint16),
	}
}

// Assemble assembles code for the conventional load address 0x200.
func Assemble(code string) ([]byte, map[uint16]int, error) {
	return NewAssembler(chip8.ProgramStart).Assemble(code)
}

// Assemble returns the program image and a map from absolute address to the
// source line that produced the bytes there.
func (a *Assembler) Assemble(code string) ([]byte, map[uint16]int, error) {
	a.labels = make(map[string]uint16)
	lines := strings.Split(code, "\n")

	if err := a.pass1(lines); err != nil {
		return nil, nil, err
	}

	return a.pass2(lines)
}

func (a *Assembler) pass1(lines []string) error {
	address := int(a.origin)

	for i, raw := range lines {
		lineNo := i + 1
		p, err := parseLine(raw, lineNo)
		if err != nil {
			return err
		}

		for _, lbl := range p.labels {
			key := normalizeLabel(lbl)
			if _, exists := a.labels[key]; exists {
				return fmt.Errorf("duplicate label '%s' on line %d", lbl, lineNo)
			}
			a.labels[key] = uint16(address)
		}

		if p.mnemonic == "" {
			continue
		}

		switch p.mnemonic {
		case ".ORG":
			target, err := parseNumber(p.operands[0])
			if err != nil {
				return fmt.Errorf("invalid .ORG value on line %d: %s", lineNo, p.operands[0])
			}
			if int(target) < address {
				return fmt.Errorf("cannot move origin backward on line %d", lineNo)
			}
			if target > chip8.MemorySize {
				return fmt.Errorf(".ORG out of range on line %d: %s", lineNo, p.operands[0])
			}
			address = int(target)
			continue

		case ".BYTE":
			if len(p.operands) == 0 {
				return fmt.Errorf(".BYTE expects at least one operand on line %d", lineNo)
			}
			address += len(p.operands)

		case ".WORD":
			if len(p.operands) == 0 {
				return fmt.Errorf(".WORD expects at least one operand on line %d", lineNo)
			}
			address += 2 * len(p.operands)

		default:
			if !mnemonics[p.mnemonic] {
				return fmt.Errorf("unknown instruction on line %d: %s", lineNo, p.mnemonic)
			}
			address += 2
		}

		if address > chip8.MemorySize {
			return fmt.Errorf("program too large near line %d", lineNo)
		}
	}

	return nil
}

func (a *Assembler) pass2(lines []string) ([]byte, map[uint16]int, error) {
	program := make([]byte, 0)
	sourceMap := make(map[uint16]int)

	for i, raw := range lines {
		lineNo := i + 1
		p, err := parseLine(raw, lineNo)
		if err != nil {
			return nil, nil, err
		}

		if p.mnemonic == "" {
			continue
		}

		mnemonic := p.mnemonic
		ops := p.operands

		if mnemonic == ".ORG" {
			target, err := parseNumber(ops[0])
			if err != nil {
				return nil, nil, fmt.Errorf("invalid .ORG value on line %d: %s", lineNo, ops[0])
			}
			padding := int(target) - int(a.origin) - len(program)
			if padding < 0 {
				return nil, nil, fmt.Errorf("cannot move origin backward on line %d", lineNo)
			}
			program = append(program, make([]byte, padding)...)
			continue
		}

		sourceMap[a.origin+uint16(len(program))] = lineNo

		switch mnemonic {
		case ".BYTE":
			for _, op := range ops {
				val, err := a.parseImmediate(op, lineNo, 0xFF)
				if err != nil {
					return nil, nil, err
				}
				program = append(program, byte(val))
			}

		case ".WORD":
			for _, op := range ops {
				val, err := a.parseImmediate(op, lineNo, 0xFFFF)
				if err != nil {
					return nil, nil, err
				}
				program = append(program, byte(val>>8), byte(val))
			}

		default:
			instr, err := a.encode(mnemonic, ops, lineNo)
			if err != nil {
				return nil, nil, err
			}
			program = append(program, byte(instr>>8), byte(instr))
		}
	}

	return program, sourceMap, nil
}

// encode looks up the operand signature of an instruction and places each
// operand into its field.
func (a *Assembler) encode(mnemonic string, ops []string, lineNo int) (uint16, error) {
	kinds := make([]string, len(ops))
	for i, op := range ops {
		kinds[i] = operandKind(op)
	}
	key := mnemonic
	if len(kinds) > 0 {
		key += " " + strings.Join(kinds, ",")
	}

	enc, ok := encodings[key]
	if !ok {
		return 0, fmt.Errorf("invalid operands for %s on line %d: %s", mnemonic, lineNo, strings.Join(ops, ", "))
	}

	instr := enc.base
	for i, f := range enc.fields {
		op := ops[i]
		switch f {
		case fieldFixed:

		case fieldV0:
			if reg, _ := parseRegister(op); reg != 0 {
				return 0, fmt.Errorf("%s expects V0 as base register on line %d", mnemonic, lineNo)
			}

		case fieldX, fieldY:
			reg, err := parseRegister(op)
			if err != nil {
				return 0, fmt.Errorf("%w on line %d", err, lineNo)
			}
			if f == fieldX {
				instr |= reg << 8
			} else {
				instr |= reg << 4
			}

		case fieldAddr:
			val, err := a.parseImmediate(op, lineNo, 0xFFF)
			if err != nil {
				return 0, err
			}
			instr |= val

		case fieldByte:
			val, err := a.parseImmediate(op, lineNo, 0xFF)
			if err != nil {
				return 0, err
			}
			instr |= val

		case fieldNibble:
			val, err := a.parseImmediate(op, lineNo, 0xF)
			if err != nil {
				return 0, err
			}
			instr |= val
		}
	}

	return instr, nil
}

func parseLine(raw string, lineNo int) (parsedLine, error) {
	p := parsedLine{lineNo: lineNo}

	line := strings.TrimSpace(stripComments(raw))
	if line == "" {
		return p, nil
	}

	for {
		colon := strings.IndexByte(line, ':')
		if colon <= 0 {
			break
		}

		beforeColon := strings.TrimSpace(line[:colon])
		if strings.ContainsAny(beforeColon, " \t") {
			break
		}

		if !isIdentifier(beforeColon) {
			return p, fmt.Errorf("invalid label '%s' on line %d", beforeColon, lineNo)
		}

		p.labels = append(p.labels, beforeColon)
		line = strings.TrimSpace(line[colon+1:])
		if line == "" {
			return p, nil
		}
	}

	line = normalizeInstructionText(line)
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return p, nil
	}

	p.mnemonic = strings.ToUpper(fields[0])
	if len(fields) > 1 {
		p.operands = fields[1:]
	}

	if p.mnemonic == ".ORG" && len(p.operands) != 1 {
		return p, fmt.Errorf(".ORG expects exactly one operand on line %d", lineNo)
	}

	return p, nil
}

func stripComments(line string) string {
	semicolon := strings.Index(line, ";")
	doubleSlash := strings.Index(line, "//")

	cut := -1
	if semicolon >= 0 {
		cut = semicolon
	}
	if doubleSlash >= 0 && (cut == -1 || doubleSlash < cut) {
		cut = doubleSlash
	}
	if cut >= 0 {
		return line[:cut]
	}
	return line
}

func normalizeInstructionText(line string) string {
	return strings.ReplaceAll(line, ",", " ")
}

func operandKind(token string) string {
	upper := strings.ToUpper(token)
	if keywords[upper] {
		return upper
	}
	if _, err := parseRegister(token); err == nil {
		return "V"
	}
	return "N"
}

func parseRegister(token string) (uint16, error) {
	upper := strings.ToUpper(token)
	if len(upper) != 2 || upper[0] != 'V' {
		return 0, fmt.Errorf("invalid register '%s'", token)
	}
	reg, err := strconv.ParseUint(upper[1:], 16, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid register '%s'", token)
	}
	return uint16(reg), nil
}

// parseNumber accepts $hex, 0x, 0b, 0o and decimal notation.
func parseNumber(token string) (uint64, error) {
	if strings.HasPrefix(token, "$") {
		return strconv.ParseUint(token[1:], 16, 32)
	}
	return strconv.ParseUint(token, 0, 32)
}

func (a *Assembler) parseImmediate(token string, lineNo int, limit uint16) (uint16, error) {
	if value, err := parseNumber(token); err == nil {
		if value > uint64(limit) {
			return 0, fmt.Errorf("immediate out of range on line %d: %s", lineNo, token)
		}
		return uint16(value), nil
	}

	label := normalizeLabel(token)
	if addr, ok := a.labels[label]; ok {
		if addr > limit {
			return 0, fmt.Errorf("label '%s' out of range on line %d", token, lineNo)
		}
		return addr, nil
	}

	if isIdentifier(token) {
		return 0, fmt.Errorf("undefined label '%s' on line %d", token, lineNo)
	}

	return 0, fmt.Errorf("invalid immediate '%s' on line %d", token, lineNo)
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if i == 0 {
			if !unicode.IsLetter(r) && r != '_' {
				return false
			}
			continue
		}

		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}

	return true
}

func normalizeLabel(label string) string {
	return strings.ToUpper(label)
}
