// Package chip8 implements a CHIP-8 virtual machine. The host drives it by
// calling Tick at its own pace, feeds key transitions through SetKey and reads
// the framebuffer and sound flag back after each tick.
//
// A Machine is not safe for concurrent use; SetKey and Tick must be
// serialized by the host.
package chip8

import (
	"fmt"
)

// Machine owns the processor state, memory, framebuffer and keypad.
type Machine struct {
	cpu     CPU
	memory  Memory
	display Display
	keypad  Keypad

	origin uint16
	last   Instruction
	random ByteSource
}

// Option configures a Machine at construction.
type Option func(*Machine)

// WithRandom sets the byte source used by Cxkk.
func WithRandom(src ByteSource) Option {
	return func(m *Machine) {
		m.random = src
	}
}

// WithSeed makes Cxkk reproducible.
func WithSeed(seed uint64) Option {
	return WithRandom(NewByteSource(seed))
}

// New creates a machine whose program counter starts at origin.
func New(origin uint16, opts ...Option) *Machine {
	m := &Machine{
		cpu:     newCPU(origin),
		display: newDisplay(),
		origin:  origin,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.random == nil {
		m.random = timeSeededSource()
	}
	return m
}

// Origin is the load address and initial program counter.
func (m *Machine) Origin() uint16 {
	return m.origin
}

// Load copies a raw program image into memory at the origin.
func (m *Machine) Load(program []byte) error {
	if int(m.origin)+len(program) > MemorySize {
		return fmt.Errorf("%d bytes at 0x%03x: %w", len(program), m.origin, ErrProgramTooLarge)
	}
	copy(m.memory[m.origin:], program)
	return nil
}

// LoadFont installs the built-in hexadecimal glyphs at FontAddress.
func (m *Machine) LoadFont() {
	copy(m.memory[FontAddress:], FontSet[:])
}

// Reset clears the framebuffer, keypad and memory and rewinds the program
// counter, stack and timers. V registers and I keep their values. The program
// has to be loaded again afterwards.
func (m *Machine) Reset() {
	m.display.Clear()
	m.keypad.Reset()
	m.memory.clear()

	m.cpu.PC = m.origin
	m.cpu.SP = -1
	m.cpu.DelayTimer = 0
	m.cpu.SoundTimer = 0
}

// Tick advances the machine by one instruction. Timers are decremented first,
// then the instruction at PC is fetched and executed.
func (m *Machine) Tick() error {
	m.cpu.tickTimers()

	pc := m.cpu.PC
	instr := Instruction(m.memory.Read16(pc))
	m.cpu.PC += 2
	m.last = instr

	return m.execute(instr, pc)
}

// Display returns the framebuffer.
func (m *Machine) Display() *Display {
	return &m.display
}

// SoundOn reports whether the sound timer is running.
func (m *Machine) SoundOn() bool {
	return m.cpu.SoundTimer > 0
}

// LastInstruction is the opcode executed by the most recent Tick.
func (m *Machine) LastInstruction() Instruction {
	return m.last
}

func (m *Machine) SetKey(key Key, pressed bool) {
	m.keypad.Set(key, pressed)
}

func (m *Machine) IsKeyPressed(key Key) bool {
	return m.keypad.Pressed(key)
}

// KeyWaitState exposes the blocking key read state for diagnostics.
func (m *Machine) KeyWaitState() KeyWait {
	return m.keypad.WaitState()
}

// CPU returns a copy of the processor state.
func (m *Machine) CPU() CPU {
	return m.cpu
}

func (m *Machine) ReadMemory(addr uint16) byte {
	return m.memory.Read(addr)
}
