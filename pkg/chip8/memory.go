package chip8

const (
	MemorySize = 4096

	// ProgramStart is the conventional load address of CHIP-8 programs.
	ProgramStart uint16 = 0x200

	addressMask = MemorySize - 1
)

// Memory is the 4 KB address space. Accesses are taken modulo the 12-bit
// address width, so register arithmetic that runs past 0xFFF wraps around
// instead of faulting.
type Memory [MemorySize]byte

// Read returns the byte at addr.
func (m *Memory) Read(addr uint16) byte {
	return m[addr&addressMask]
}

// Write stores val at addr.
func (m *Memory) Write(addr uint16, val byte) {
	m[addr&addressMask] = val
}

// Read16 returns the big-endian word at addr and addr+1.
func (m *Memory) Read16(addr uint16) uint16 {
	hi := uint16(m.Read(addr))
	lo := uint16(m.Read(addr + 1))
	return hi<<8 | lo
}

func (m *Memory) clear() {
	*m = Memory{}
}
