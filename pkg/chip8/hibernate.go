package chip8

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrInvalidSnapshot is returned when a hibernation archive is malformed.
var ErrInvalidSnapshot = errors.New("invalid machine snapshot")

// machineState is the JSON-serializable snapshot of the processor and
// keypad state.
type machineState struct {
	V          [RegisterCount]byte `json:"v"`
	I          uint16              `json:"i"`
	PC         uint16              `json:"pc"`
	SP         int8                `json:"sp"`
	Stack      [StackSize]uint16   `json:"stack"`
	DelayTimer byte                `json:"delay_timer"`
	SoundTimer byte                `json:"sound_timer"`
	Origin     uint16              `json:"origin"`
	Last       Instruction         `json:"last"`
	KeyWait    KeyWait             `json:"key_wait"`
	LastKey    Key                 `json:"last_key"`
}

// HibernateToBytes serialises the machine into an in-memory ZIP archive.
// Held keys are not saved; a restored machine starts with all keys up.
func (m *Machine) HibernateToBytes() ([]byte, error) {
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)

	state := machineState{
		V:          m.cpu.V,
		I:          m.cpu.I,
		PC:         m.cpu.PC,
		SP:         m.cpu.SP,
		Stack:      m.cpu.Stack,
		DelayTimer: m.cpu.DelayTimer,
		SoundTimer: m.cpu.SoundTimer,
		Origin:     m.origin,
		Last:       m.last,
		KeyWait:    m.keypad.wait,
		LastKey:    m.keypad.lastKey,
	}

	jsonData, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal machine_state: %w", err)
	}
	if err := writeZipEntry(zw, "machine_state.json", jsonData); err != nil {
		return nil, err
	}
	if err := writeZipEntry(zw, "memory.bin", m.memory[:]); err != nil {
		return nil, err
	}
	if err := writeZipEntry(zw, "display.bin", m.display.pixels[:]); err != nil {
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close zip: %w", err)
	}
	return buf.Bytes(), nil
}

// RestoreFromBytes applies an archive produced by HibernateToBytes. The
// machine is left untouched when the archive is rejected.
func (m *Machine) RestoreFromBytes(data []byte) error {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("open zip: %w", err)
	}

	fileMap := make(map[string]*zip.File, len(r.File))
	for _, f := range r.File {
		fileMap[f.Name] = f
	}

	jsonData, err := readZipEntry(fileMap, "machine_state.json")
	if err != nil {
		return err
	}
	var state machineState
	if err := json.Unmarshal(jsonData, &state); err != nil {
		return fmt.Errorf("unmarshal machine_state: %w", err)
	}
	if state.SP < -1 || int(state.SP) >= StackSize || state.KeyWait < KeyWaitIdle || state.KeyWait > KeyWaitUnlocked {
		return fmt.Errorf("machine_state out of range: %w", ErrInvalidSnapshot)
	}

	memData, err := readZipEntry(fileMap, "memory.bin")
	if err != nil {
		return err
	}
	displayData, err := readZipEntry(fileMap, "display.bin")
	if err != nil {
		return err
	}
	if len(memData) != MemorySize || len(displayData) != len(m.display.pixels) {
		return fmt.Errorf("memory or display size mismatch: %w", ErrInvalidSnapshot)
	}

	m.cpu = CPU{
		V:          state.V,
		I:          state.I,
		DelayTimer: state.DelayTimer,
		SoundTimer: state.SoundTimer,
		PC:         state.PC,
		SP:         state.SP,
		Stack:      state.Stack,
	}
	m.origin = state.Origin
	m.last = state.Last
	copy(m.memory[:], memData)
	copy(m.display.pixels[:], displayData)
	m.display.dirty = true
	m.keypad = Keypad{wait: state.KeyWait, lastKey: state.LastKey & 0x0F}

	return nil
}

// HibernateToFile writes the hibernation archive to path.
func (m *Machine) HibernateToFile(path string) error {
	data, err := m.HibernateToBytes()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// RestoreFromFile reads a hibernation archive from path and restores it.
func (m *Machine) RestoreFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return m.RestoreFromBytes(data)
}

func writeZipEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("create zip entry %q: %w", name, err)
	}
	_, err = w.Write(data)
	return err
}

func readZipEntry(fileMap map[string]*zip.File, name string) ([]byte, error) {
	f, ok := fileMap[name]
	if !ok {
		return nil, fmt.Errorf("zip entry %q not found: %w", name, ErrInvalidSnapshot)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open zip entry %q: %w", name, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
