package chip8

import (
	"archive/zip"
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestHibernateRoundTrip(t *testing.T) {
	// ld V5, 7 ; call 0x208 ; ... ; 0x208: ld ST, V5 ; ld V0, K
	m1 := newTestMachine(t, 0x6507, 0x2208, 0x0000, 0x0000, 0xF518, 0xF00A)
	m1.LoadFont()
	m1.cpu.I = 0x123
	runTicks(t, m1, 4)
	assert.Equal(t, KeyWaitLocked, m1.KeyWaitState())

	data, err := m1.HibernateToBytes()
	assert.NoError(t, err)

	m2 := New(0x300)
	assert.NoError(t, m2.RestoreFromBytes(data))

	c1, c2 := m1.CPU(), m2.CPU()
	assert.Equal(t, c1, c2)
	assert.Equal(t, ProgramStart, m2.Origin())
	assert.Equal(t, Instruction(0xF00A), m2.LastInstruction())
	assert.Equal(t, KeyWaitLocked, m2.KeyWaitState())
	assert.Equal(t, true, m2.SoundOn())
	assert.Equal(t, FontSet[0], m2.ReadMemory(FontAddress))
	assert.Equal(t, true, m2.Display().Dirty())

	// The restored machine carries on where the original stopped.
	m2.SetKey(0x9, true)
	m2.SetKey(0x9, false)
	runTicks(t, m2, 2)
	assert.Equal(t, byte(0x9), m2.CPU().V[0])
}

func TestHibernateKeepsFramebuffer(t *testing.T) {
	m1 := newTestMachine(t, 0xD015)
	m1.LoadFont()
	runTicks(t, m1, 1)

	path := filepath.Join(t.TempDir(), "machine.state")
	assert.NoError(t, m1.HibernateToFile(path))

	m2 := New(ProgramStart)
	assert.NoError(t, m2.RestoreFromFile(path))
	assert.Equal(t, m1.Display().Pixels(), m2.Display().Pixels())
}

func TestRestoreRejectsInvalidArchives(t *testing.T) {
	m := newTestMachine(t, 0x6001)
	runTicks(t, m, 1)
	before := m.CPU()

	err := m.RestoreFromBytes([]byte("not a zip"))
	assert.Equal(t, true, err != nil)

	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	assert.NoError(t, writeZipEntry(zw, "machine_state.json", []byte(`{"sp": 16}`)))
	assert.NoError(t, zw.Close())
	err = m.RestoreFromBytes(buf.Bytes())
	assert.Equal(t, true, errors.Is(err, ErrInvalidSnapshot))

	buf = new(bytes.Buffer)
	zw = zip.NewWriter(buf)
	assert.NoError(t, writeZipEntry(zw, "machine_state.json", []byte(`{"sp": -1}`)))
	assert.NoError(t, writeZipEntry(zw, "memory.bin", []byte{1, 2, 3}))
	assert.NoError(t, writeZipEntry(zw, "display.bin", []byte{}))
	assert.NoError(t, zw.Close())
	err = m.RestoreFromBytes(buf.Bytes())
	assert.Equal(t, true, errors.Is(err, ErrInvalidSnapshot))

	for _, state := range []string{`{"sp": -1, "key_wait": -1}`, `{"sp": -1, "key_wait": 4}`} {
		buf = new(bytes.Buffer)
		zw = zip.NewWriter(buf)
		assert.NoError(t, writeZipEntry(zw, "machine_state.json", []byte(state)))
		assert.NoError(t, writeZipEntry(zw, "memory.bin", make([]byte, MemorySize)))
		assert.NoError(t, writeZipEntry(zw, "display.bin", make([]byte, DisplayWidth*DisplayHeight)))
		assert.NoError(t, zw.Close())
		err = m.RestoreFromBytes(buf.Bytes())
		assert.Equal(t, true, errors.Is(err, ErrInvalidSnapshot))
	}

	assert.Equal(t, before, m.CPU())
}
