package chip8

import "fmt"

// execute dispatches instr, fetched from pc. Groups 0x0 and 0x8 ignore
// unmapped sub-codes; groups 0xE and 0xF reject them.
func (m *Machine) execute(instr Instruction, pc uint16) error {
	c := &m.cpu
	x, y := instr.X(), instr.Y()

	switch instr.Group() {
	case 0x0:
		switch instr.Nibble() {
		case 0x0: // 00E0 CLS
			m.display.Clear()
		case 0xE: // 00EE RET
			addr, err := c.pop()
			if err != nil {
				return fmt.Errorf("%s at 0x%03x: %w", instr, pc, err)
			}
			c.PC = addr
		}

	case 0x1: // 1nnn JP addr
		c.PC = instr.Addr()

	case 0x2: // 2nnn CALL addr
		if err := c.push(c.PC); err != nil {
			return fmt.Errorf("%s at 0x%03x: %w", instr, pc, err)
		}
		c.PC = instr.Addr()

	case 0x3: // 3xkk SE Vx, byte
		if c.V[x] == instr.Byte() {
			c.skip()
		}

	case 0x4: // 4xkk SNE Vx, byte
		if c.V[x] != instr.Byte() {
			c.skip()
		}

	case 0x5: // 5xy0 SE Vx, Vy
		if c.V[x] == c.V[y] {
			c.skip()
		}

	case 0x6: // 6xkk LD Vx, byte
		c.V[x] = instr.Byte()

	case 0x7: // 7xkk ADD Vx, byte
		c.V[x] += instr.Byte()

	case 0x8:
		m.executeALU(instr)

	case 0x9: // 9xy0 SNE Vx, Vy
		if c.V[x] != c.V[y] {
			c.skip()
		}

	case 0xA: // Annn LD I, addr
		c.I = instr.Addr()

	case 0xB: // Bnnn JP V0, addr
		c.PC = instr.Addr() + uint16(c.V[0])

	case 0xC: // Cxkk RND Vx, byte
		c.V[x] = m.random.Byte() & instr.Byte()

	case 0xD: // Dxyn DRW Vx, Vy, nibble
		m.drawSprite(c.V[x], c.V[y], instr.Nibble())

	case 0xE:
		switch instr.Nibble() {
		case 0xE: // Ex9E SKP Vx
			if m.keypad.Pressed(Key(c.V[x])) {
				c.skip()
			}
		case 0x1: // ExA1 SKNP Vx
			if !m.keypad.Pressed(Key(c.V[x])) {
				c.skip()
			}
		default:
			return &UnknownOpcodeError{Opcode: instr, PC: pc}
		}

	case 0xF:
		return m.executeMisc(instr, pc)
	}

	return nil
}

// executeALU handles the 8xyN register operations. Unmapped N are no-ops.
// VF is always written before Vx, so when x is F the result wins.
func (m *Machine) executeALU(instr Instruction) {
	c := &m.cpu
	x, y := instr.X(), instr.Y()

	switch instr.Nibble() {
	case 0x0: // 8xy0 LD Vx, Vy
		c.V[x] = c.V[y]

	case 0x1: // 8xy1 OR Vx, Vy
		c.V[x] |= c.V[y]

	case 0x2: // 8xy2 AND Vx, Vy
		c.V[x] &= c.V[y]

	case 0x3: // 8xy3 XOR Vx, Vy
		c.V[x] ^= c.V[y]

	case 0x4: // 8xy4 ADD Vx, Vy
		sum := uint16(c.V[x]) + uint16(c.V[y])
		c.V[RegFlag] = boolToByte(sum > 0xFF)
		c.V[x] = byte(sum)

	case 0x5: // 8xy5 SUB Vx, Vy
		vx, vy := int16(c.V[x]), int16(c.V[y])
		c.V[RegFlag] = boolToByte(vx > vy)
		c.V[x] = byte(vx - vy)

	case 0x6: // 8xy6 SHR Vx
		c.V[RegFlag] = c.V[x] & 0x01
		c.V[x] >>= 1

	case 0x7: // 8xy7 SUBN Vx, Vy
		vx, vy := int16(c.V[x]), int16(c.V[y])
		c.V[RegFlag] = boolToByte(vy > vx)
		c.V[x] = byte(vy - vx)

	case 0xE: // 8xyE SHL Vx
		// The flag keeps the raw bit value (0 or 0x80).
		c.V[RegFlag] = c.V[x] & 0x80
		c.V[x] <<= 1
	}
}

// executeMisc handles the Fxkk group, selected by the low byte.
func (m *Machine) executeMisc(instr Instruction, pc uint16) error {
	c := &m.cpu
	x := instr.X()

	switch instr.Byte() {
	case 0x07: // Fx07 LD Vx, DT
		c.V[x] = c.DelayTimer

	case 0x0A: // Fx0A LD Vx, K
		key, ok := m.keypad.await()
		if !ok {
			// Execute this instruction again on the next tick.
			c.PC -= 2
			return nil
		}
		c.V[x] = byte(key)

	case 0x15: // Fx15 LD DT, Vx
		c.DelayTimer = c.V[x]

	case 0x18: // Fx18 LD ST, Vx
		c.SoundTimer = c.V[x]

	case 0x1E: // Fx1E ADD I, Vx
		c.I += uint16(c.V[x])

	case 0x29: // Fx29 LD F, Vx
		c.I = uint16(c.V[x]) * GlyphSize

	case 0x33: // Fx33 LD B, Vx
		v := c.V[x]
		m.memory.Write(c.I+2, v%10)
		v /= 10
		m.memory.Write(c.I+1, v%10)
		v /= 10
		m.memory.Write(c.I, v%10)

	case 0x55: // Fx55 LD [I], Vx
		for i := uint16(0); i <= uint16(x); i++ {
			m.memory.Write(c.I+i, c.V[i])
		}

	case 0x65: // Fx65 LD Vx, [I]
		for i := uint16(0); i <= uint16(x); i++ {
			c.V[i] = m.memory.Read(c.I + i)
		}

	default:
		return &UnknownOpcodeError{Opcode: instr, PC: pc}
	}

	return nil
}

// drawSprite XORs an 8xn sprite read from I onto the framebuffer at (vx, vy).
// Rows and columns past the edges are clipped. VF reports whether the last
// pixel written is empty afterwards, not a collision over the whole sprite.
func (m *Machine) drawSprite(vx, vy, n byte) {
	c := &m.cpu
	m.display.dirty = true

	for row := 0; row < int(n); row++ {
		sprite := m.memory.Read(c.I + uint16(row))
		ypos := int(vy) + row
		if ypos >= DisplayHeight {
			break
		}
		for col := 0; col < 8; col++ {
			pixel := (sprite >> (7 - col)) & 0x01
			xpos := int(vx) + col
			if xpos >= DisplayWidth {
				break
			}
			m.display.xor(xpos, ypos, pixel)
			c.V[RegFlag] = boolToByte(m.display.isEmpty(xpos, ypos))
		}
	}
}

func boolToByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
