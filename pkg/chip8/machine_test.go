package chip8

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestNewMachine(t *testing.T) {
	m := New(0x300)
	c := m.CPU()

	assert.Equal(t, uint16(0x300), m.Origin())
	assert.Equal(t, uint16(0x300), c.PC)
	assert.Equal(t, int8(-1), c.SP)
	assert.Equal(t, false, m.SoundOn())
	assert.Equal(t, Instruction(0), m.LastInstruction())
	assert.Equal(t, KeyWaitIdle, m.KeyWaitState())
}

func TestLoadPlacesProgramAtOrigin(t *testing.T) {
	m := New(0x300)
	assert.NoError(t, m.Load([]byte{0xA2, 0xF0, 0x12}))

	assert.Equal(t, byte(0xA2), m.ReadMemory(0x300))
	assert.Equal(t, byte(0xF0), m.ReadMemory(0x301))
	assert.Equal(t, byte(0x12), m.ReadMemory(0x302))
	assert.Equal(t, byte(0), m.ReadMemory(0x2FF))
}

func TestLoadRejectsOversizedProgram(t *testing.T) {
	m := New(ProgramStart)

	assert.NoError(t, m.Load(make([]byte, MemorySize-int(ProgramStart))))
	err := m.Load(make([]byte, MemorySize-int(ProgramStart)+1))
	assert.Equal(t, true, errors.Is(err, ErrProgramTooLarge))
}

func TestLoadFont(t *testing.T) {
	m := New(ProgramStart)
	m.LoadFont()

	for i, b := range FontSet {
		assert.Equal(t, b, m.ReadMemory(FontAddress+uint16(i)))
	}
	// Glyph F starts at 0x4B.
	assert.Equal(t, byte(0xF0), m.ReadMemory(0x4B))
}

func TestResetKeepsRegisters(t *testing.T) {
	m := newTestMachine(t, 0x6A42, 0xA123, 0x6105, 0xF115, 0xF118, 0x2300)
	m.LoadFont()
	m.SetKey(0x3, true)
	runTicks(t, m, 6)

	m.Display().SetDirty(false)
	m.Reset()
	c := m.CPU()

	assert.Equal(t, ProgramStart, c.PC)
	assert.Equal(t, int8(-1), c.SP)
	assert.Equal(t, byte(0), c.DelayTimer)
	assert.Equal(t, byte(0), c.SoundTimer)
	assert.Equal(t, byte(0x42), c.V[0xA])
	assert.Equal(t, uint16(0x123), c.I)

	assert.Equal(t, true, m.Display().Dirty())
	assert.Equal(t, false, m.IsKeyPressed(0x3))
	assert.Equal(t, byte(0), m.ReadMemory(ProgramStart))
	assert.Equal(t, byte(0), m.ReadMemory(FontAddress))
}

func TestResetAbandonsKeyWait(t *testing.T) {
	m := newTestMachine(t, 0xF00A)
	runTicks(t, m, 1)
	assert.Equal(t, KeyWaitLocked, m.KeyWaitState())

	m.Reset()
	assert.Equal(t, KeyWaitIdle, m.KeyWaitState())
}

func TestTickRecordsLastInstruction(t *testing.T) {
	m := newTestMachine(t, 0x6001, 0x7002)

	runTicks(t, m, 1)
	assert.Equal(t, Instruction(0x6001), m.LastInstruction())
	runTicks(t, m, 1)
	assert.Equal(t, Instruction(0x7002), m.LastInstruction())
	assert.Equal(t, "add V0, $02", m.LastInstruction().Disassemble())
}

func TestCPUReturnsCopy(t *testing.T) {
	m := newTestMachine(t, 0x6001)
	c := m.CPU()
	c.V[0] = 0x99
	c.PC = 0

	assert.Equal(t, byte(0), m.CPU().V[0])
	assert.Equal(t, ProgramStart, m.CPU().PC)
}

func TestStackErrorNamesInstruction(t *testing.T) {
	m := newTestMachine(t, 0x6000, 0x00EE)
	runTicks(t, m, 1)

	err := m.Tick()
	assert.Equal(t, true, errors.Is(err, ErrStackUnderflow))
	assert.Equal(t, "0x00ee at 0x202: return with empty call stack", err.Error())
}
