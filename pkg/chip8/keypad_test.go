package chip8

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestKeypadSetMasksKey(t *testing.T) {
	var k Keypad
	k.Set(0x1A, true)

	assert.Equal(t, true, k.Pressed(0xA))
	assert.Equal(t, true, k.Pressed(0x2A))
	assert.Equal(t, Key(0xA), k.LastKey())

	k.Set(0xA, false)
	assert.Equal(t, false, k.Pressed(0xA))
	assert.Equal(t, Key(0xA), k.LastKey())
}

func TestKeypadAwaitSequence(t *testing.T) {
	var k Keypad

	_, ok := k.await()
	assert.Equal(t, false, ok)
	assert.Equal(t, KeyWaitLocked, k.WaitState())

	// Releases while locked are ignored.
	k.Set(0x3, false)
	assert.Equal(t, KeyWaitLocked, k.WaitState())

	k.Set(0x7, true)
	assert.Equal(t, KeyWaitRelease, k.WaitState())

	_, ok = k.await()
	assert.Equal(t, false, ok)
	assert.Equal(t, KeyWaitRelease, k.WaitState())

	k.Set(0x7, false)
	_, ok = k.await()
	assert.Equal(t, false, ok)
	assert.Equal(t, KeyWaitUnlocked, k.WaitState())

	key, ok := k.await()
	assert.Equal(t, true, ok)
	assert.Equal(t, Key(0x7), key)
	assert.Equal(t, KeyWaitIdle, k.WaitState())
}

func TestKeypadHeldKeyDoesNotSatisfyRead(t *testing.T) {
	var k Keypad
	k.Set(0x2, true)

	_, ok := k.await()
	assert.Equal(t, false, ok)
	for i := 0; i < 5; i++ {
		_, ok = k.await()
		assert.Equal(t, false, ok)
	}
	assert.Equal(t, KeyWaitLocked, k.WaitState())
}

func TestKeypadReset(t *testing.T) {
	var k Keypad
	k.await()
	k.Set(0x4, true)
	k.Reset()

	assert.Equal(t, false, k.Pressed(0x4))
	assert.Equal(t, KeyWaitIdle, k.WaitState())
}

func TestKeyWaitString(t *testing.T) {
	assert.Equal(t, "idle", KeyWaitIdle.String())
	assert.Equal(t, "wait-release", KeyWaitRelease.String())
	assert.Equal(t, "KeyWait(9)", KeyWait(9).String())
	assert.Equal(t, "C", Key(0xC).String())
}

func TestWaitForKeyInstruction(t *testing.T) {
	m := newTestMachine(t, 0xF30A)

	for i := 0; i < 5; i++ {
		runTicks(t, m, 1)
		assert.Equal(t, ProgramStart, m.cpu.PC)
	}
	assert.Equal(t, KeyWaitLocked, m.KeyWaitState())

	m.SetKey(5, true)
	m.SetKey(5, false)
	runTicks(t, m, 2)

	assert.Equal(t, byte(5), m.cpu.V[3])
	assert.Equal(t, ProgramStart+2, m.cpu.PC)
	assert.Equal(t, KeyWaitIdle, m.KeyWaitState())
}

func TestSkipOnKey(t *testing.T) {
	m := newTestMachine(t, 0xE19E, 0xE1A1, 0xE1A1)
	m.cpu.V[1] = 0x1B
	m.SetKey(0xB, true)

	runTicks(t, m, 1)
	assert.Equal(t, ProgramStart+4, m.cpu.PC)

	runTicks(t, m, 1)
	assert.Equal(t, ProgramStart+6, m.cpu.PC)

	m.SetKey(0xB, false)
	m.cpu.PC = ProgramStart + 2
	runTicks(t, m, 1)
	assert.Equal(t, ProgramStart+6, m.cpu.PC)
	assert.Equal(t, false, m.IsKeyPressed(0xB))
}
