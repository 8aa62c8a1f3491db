package emulator

import (
	"errors"
	"fmt"
)

var (
	// ErrUnhandledInstruction is returned when a decoded instruction has no
	// execution handler.
	ErrUnhandledInstruction = errors.New("unhandled instruction")
	// ErrStackUnderflow is returned when returning from a subroutine without
	// a pending call.
	ErrStackUnderflow = errors.New("stack underflow")
	// ErrStackOverflow is returned when calling a subroutine with a full
	// return address stack.
	ErrStackOverflow = errors.New("stack overflow")
	// ErrAddressOutOfRange is returned when the program counter points
	// outside of memory.
	ErrAddressOutOfRange = errors.New("address out of range")
	// ErrProgramTooLarge is returned when a program does not fit into the
	// program area of memory.
	ErrProgramTooLarge = errors.New("program too large")
)

// ExecutionError describes a fatal error that occurred while stepping.
// Execution can not continue after it was returned.
type ExecutionError struct {
	PC     uint16 // address of the failing instruction
	Opcode uint16
	Err    error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("executing opcode %04X at address %04X: %v", e.Opcode, e.PC, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
