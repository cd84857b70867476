package chip8

import "fmt"

// Instruction is a raw 16-bit CHIP-8 opcode. The accessors project its bit
// fields; none of them validate the opcode.
type Instruction uint16

// Group is the top nibble, which selects the instruction family.
func (i Instruction) Group() byte {
	return byte(i >> 12)
}

// Addr is the low 12 bits (nnn).
func (i Instruction) Addr() uint16 {
	return uint16(i) & 0x0FFF
}

// Nibble is the low 4 bits (n).
func (i Instruction) Nibble() byte {
	return byte(i & 0x000F)
}

// X is the register index in bits 8-11.
func (i Instruction) X() byte {
	return byte((i >> 8) & 0x0F)
}

// Y is the register index in bits 4-7.
func (i Instruction) Y() byte {
	return byte((i >> 4) & 0x0F)
}

// Byte is the low 8 bits (kk).
func (i Instruction) Byte() byte {
	return byte(i & 0x00FF)
}

func (i Instruction) String() string {
	return fmt.Sprintf("0x%04x", uint16(i))
}

// Disassemble renders the instruction in the mnemonic syntax accepted by the
// assembler. Opcodes outside the instruction table render as a .word directive.
func (i Instruction) Disassemble() string {
	x, y := i.X(), i.Y()

	switch i.Group() {
	case 0x0:
		switch i.Nibble() {
		case 0x0:
			return "cls"
		case 0xE:
			return "ret"
		}
	case 0x1:
		return fmt.Sprintf("jp $%03X", i.Addr())
	case 0x2:
		return fmt.Sprintf("call $%03X", i.Addr())
	case 0x3:
		return fmt.Sprintf("se V%X, $%02X", x, i.Byte())
	case 0x4:
		return fmt.Sprintf("sne V%X, $%02X", x, i.Byte())
	case 0x5:
		return fmt.Sprintf("se V%X, V%X", x, y)
	case 0x6:
		return fmt.Sprintf("ld V%X, $%02X", x, i.Byte())
	case 0x7:
		return fmt.Sprintf("add V%X, $%02X", x, i.Byte())
	case 0x8:
		if name, ok := aluMnemonics[i.Nibble()]; ok {
			if i.Nibble() == 0x6 || i.Nibble() == 0xE {
				return fmt.Sprintf("%s V%X", name, x)
			}
			return fmt.Sprintf("%s V%X, V%X", name, x, y)
		}
	case 0x9:
		return fmt.Sprintf("sne V%X, V%X", x, y)
	case 0xA:
		return fmt.Sprintf("ld I, $%03X", i.Addr())
	case 0xB:
		return fmt.Sprintf("jp V0, $%03X", i.Addr())
	case 0xC:
		return fmt.Sprintf("rnd V%X, $%02X", x, i.Byte())
	case 0xD:
		return fmt.Sprintf("drw V%X, V%X, $%X", x, y, i.Nibble())
	case 0xE:
		switch i.Nibble() {
		case 0xE:
			return fmt.Sprintf("skp V%X", x)
		case 0x1:
			return fmt.Sprintf("sknp V%X", x)
		}
	case 0xF:
		if format, ok := miscFormats[i.Byte()]; ok {
			return fmt.Sprintf(format, x)
		}
	}

	return fmt.Sprintf(".word $%04X", uint16(i))
}

var aluMnemonics = map[byte]string{
	0x0: "ld",
	0x1: "or",
	0x2: "and",
	0x3: "xor",
	0x4: "add",
	0x5: "sub",
	0x6: "shr",
	0x7: "subn",
	0xE: "shl",
}

var miscFormats = map[byte]string{
	0x07: "ld V%X, DT",
	0x0A: "ld V%X, K",
	0x15: "ld DT, V%X",
	0x18: "ld ST, V%X",
	0x1E: "add I, V%X",
	0x29: "ld F, V%X",
	0x33: "ld B, V%X",
	0x55: "ld [I], V%X",
	0x65: "ld V%X, [I]",
}
