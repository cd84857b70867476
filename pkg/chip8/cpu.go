package chip8

const (
	RegisterCount = 16
	StackSize     = 16

	// RegFlag is VF, written by arithmetic, shift and draw instructions.
	RegFlag = 0xF
)

// CPU is the processor state: general registers, index register, timers,
// program counter and the return address stack.
type CPU struct {
	V [RegisterCount]byte
	I uint16

	DelayTimer byte
	SoundTimer byte

	PC uint16
	// SP indexes the top of Stack; -1 means the stack is empty.
	SP    int8
	Stack [StackSize]uint16
}

func newCPU(origin uint16) CPU {
	return CPU{
		PC: origin,
		SP: -1,
	}
}

// tickTimers decrements both timers once, stopping at zero.
func (c *CPU) tickTimers() {
	if c.DelayTimer > 0 {
		c.DelayTimer--
	}
	if c.SoundTimer > 0 {
		c.SoundTimer--
	}
}

func (c *CPU) push(addr uint16) error {
	if int(c.SP) >= StackSize-1 {
		return ErrStackOverflow
	}
	c.SP++
	c.Stack[c.SP] = addr
	return nil
}

func (c *CPU) pop() (uint16, error) {
	if c.SP < 0 {
		return 0, ErrStackUnderflow
	}
	addr := c.Stack[c.SP]
	c.SP--
	return addr, nil
}

func (c *CPU) skip() {
	c.PC += 2
}
