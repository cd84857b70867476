package chip8

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownOpcode   = errors.New("unknown opcode")
	ErrStackOverflow   = errors.New("call stack overflow")
	ErrStackUnderflow  = errors.New("return with empty call stack")
	ErrProgramTooLarge = errors.New("program too large for memory")
)

// UnknownOpcodeError reports an opcode the dispatcher has no handler for.
// PC is the address the opcode was fetched from.
type UnknownOpcodeError struct {
	Opcode Instruction
	PC     uint16
}

func (e *UnknownOpcodeError) Error() string {
	return fmt.Sprintf("unknown opcode %s at 0x%03x", e.Opcode, e.PC)
}

func (e *UnknownOpcodeError) Is(target error) bool {
	return target == ErrUnknownOpcode
}
