// Package instruction provides the CHIP-8 instruction set: decoding of
// 16-bit opcodes into instruction values and encoding them back into
// program bytes.
package instruction

import (
	"fmt"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// Op identifies the operation of a decoded instruction.
// The set of operations is closed, Invalid is the zero value.
type Op uint8

// CHIP-8 operations. The comment shows the opcode pattern.
const (
	Invalid           Op = iota
	Cls                  // 00E0
	Ret                  // 00EE
	Sys                  // 0nnn
	Jump                 // 1nnn
	Call                 // 2nnn
	SkipEqualValue       // 3xkk
	SkipNotEqualValue    // 4xkk
	SkipEqual            // 5xy0
	LoadValue            // 6xkk
	AddValue             // 7xkk
	Load                 // 8xy0
	Or                   // 8xy1
	And                  // 8xy2
	Xor                  // 8xy3
	Add                  // 8xy4
	Sub                  // 8xy5
	ShiftRight           // 8x_6
	SubN                 // 8xy7
	ShiftLeft            // 8x_E
	SkipNotEqual         // 9xy0
	LoadIndex            // Annn
	JumpOffset           // Bnnn
	Random               // Cxkk
	Draw                 // Dxyn
	SkipKeyPressed       // Ex9E
	SkipKeyNotPressed    // ExA1
	LoadDelayTimer       // Fx07
	LoadKey              // Fx0A
	SetDelayTimer        // Fx15
	SetSoundTimer        // Fx18
	AddIndex             // Fx1E
	LoadFont             // Fx29
	StoreBCD             // Fx33
	StoreRegisters       // Fx55
	LoadRegisters        // Fx65

	opCount
)

// Count is the number of defined operations, excluding Invalid.
const Count = int(opCount) - 1

// Instruction is a decoded CHIP-8 instruction. Operands that the
// operation does not use are always zero, which makes instructions
// comparable with ==.
type Instruction struct {
	Op      Op
	X       uint8  // first register operand
	Y       uint8  // second register operand
	Value   uint8  // immediate byte, or the row count of Draw
	Address uint16 // 12-bit address operand
}

// Name returns the mnemonic of the instruction.
func (i Instruction) Name() string {
	switch {
	case i.Op == Sys:
		return "sys"
	case i.Op >= opCount || cpuInstructions[i.Op] == nil:
		return "invalid"
	default:
		return cpuInstructions[i.Op].Name
	}
}

// String returns the instruction in assembly syntax.
func (i Instruction) String() string {
	name := i.Name()
	params := i.params()
	if params == "" {
		return name
	}
	return name + " " + params
}

func (i Instruction) params() string {
	switch i.Op {
	case Sys, Jump, Call:
		return fmt.Sprintf("$%03X", i.Address)
	case SkipEqualValue, SkipNotEqualValue, LoadValue, AddValue, Random:
		return fmt.Sprintf("V%X, $%02X", i.X, i.Value)
	case SkipEqual, Load, Or, And, Xor, Add, Sub, SubN, SkipNotEqual:
		return fmt.Sprintf("V%X, V%X", i.X, i.Y)
	case ShiftRight, ShiftLeft, SkipKeyPressed, SkipKeyNotPressed:
		return fmt.Sprintf("V%X", i.X)
	case LoadIndex:
		return fmt.Sprintf("I, $%03X", i.Address)
	case JumpOffset:
		return fmt.Sprintf("V0, $%03X", i.Address)
	case Draw:
		return fmt.Sprintf("V%X, V%X, $%X", i.X, i.Y, i.Value)
	case LoadDelayTimer:
		return fmt.Sprintf("V%X, DT", i.X)
	case LoadKey:
		return fmt.Sprintf("V%X, K", i.X)
	case SetDelayTimer:
		return fmt.Sprintf("DT, V%X", i.X)
	case SetSoundTimer:
		return fmt.Sprintf("ST, V%X", i.X)
	case AddIndex:
		return fmt.Sprintf("I, V%X", i.X)
	case LoadFont:
		return fmt.Sprintf("F, V%X", i.X)
	case StoreBCD:
		return fmt.Sprintf("B, V%X", i.X)
	case StoreRegisters:
		return fmt.Sprintf("[I], V%X", i.X)
	case LoadRegisters:
		return fmt.Sprintf("V%X, [I]", i.X)
	default:
		return ""
	}
}

// IsJump returns true if the instruction unconditionally transfers control.
func (i Instruction) IsJump() bool {
	return i.Op == Jump || i.Op == JumpOffset
}

// IsCall returns true if the instruction is a subroutine call.
func (i Instruction) IsCall() bool {
	return i.Op == Call
}

// IsReturn returns true if the instruction returns from a subroutine.
func (i Instruction) IsReturn() bool {
	return i.Op == Ret
}

// IsSkip returns true if the instruction conditionally skips the next one.
func (i Instruction) IsSkip() bool {
	if i.Op >= opCount || cpuInstructions[i.Op] == nil {
		return false
	}
	return chip8.SkipInstructions.Contains(cpuInstructions[i.Op].Name)
}
