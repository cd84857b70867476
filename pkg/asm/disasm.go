package asm

import (
	"fmt"
	"strings"

	"gochip8/pkg/chip8"
)

// Disassemble lists a program image loaded at origin, one opcode word per
// line: address, raw word and mnemonic. A trailing odd byte is listed as
// .byte. The mnemonic column assembles back to the same word unless the word
// carries bits the machine ignores, such as the Y field of shr and shl or the
// middle digits of a 0nn0 clear.
func Disassemble(program []byte, origin uint16) string {
	var sb strings.Builder
	addr := origin

	for i := 0; i < len(program); i += 2 {
		if i+1 == len(program) {
			fmt.Fprintf(&sb, "0x%03x  %02x    .byte $%02X\n", addr, program[i], program[i])
			break
		}
		instr := chip8.Instruction(uint16(program[i])<<8 | uint16(program[i+1]))
		fmt.Fprintf(&sb, "0x%03x  %04x  %s\n", addr, uint16(instr), instr.Disassemble())
		addr += 2
	}

	return sb.String()
}
