package instruction

import (
	"errors"
	"fmt"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// Size is the size of a CHIP-8 instruction in bytes.
const Size = 2

// ErrInvalidOpcode is returned for bit patterns that are not defined by the
// instruction set.
var ErrInvalidOpcode = errors.New("invalid opcode")

// InvalidOpcodeError carries the opcode that could not be decoded.
type InvalidOpcodeError struct {
	Opcode uint16
}

func (e *InvalidOpcodeError) Error() string {
	return fmt.Sprintf("invalid opcode %04X", e.Opcode)
}

// Is makes errors.Is(err, ErrInvalidOpcode) match.
func (e *InvalidOpcodeError) Is(target error) bool {
	return target == ErrInvalidOpcode
}

// form describes which opcode bits carry which operands.
type form uint8

const (
	formFixed    form = iota // all bits fixed
	formAddress              // _nnn
	formRegValue             // _xkk
	formRegReg               // _xy_ with fixed low nibble
	formRegShift             // _x?_ with fixed low nibble, y is ignored
	formRegByte              // _x__ with fixed low byte
	formDraw                 // _xyn
)

// sysInfo matches the 0nnn machine code call, which the library opcode
// table does not define. It is checked after all table entries so that
// 00E0 and 00EE win.
var sysInfo = chip8.OpcodeInfo{Value: 0x0000, Mask: 0xF000}

// opcodeOps maps the opcode infos of the library table to operations.
var opcodeOps = map[chip8.OpcodeInfo]Op{
	chip8.Opcode00E0: Cls,
	chip8.Opcode00EE: Ret,
	chip8.Opcode1000: Jump,
	chip8.Opcode2000: Call,
	chip8.Opcode3000: SkipEqualValue,
	chip8.Opcode4000: SkipNotEqualValue,
	chip8.Opcode5000: SkipEqual,
	chip8.Opcode6000: LoadValue,
	chip8.Opcode7000: AddValue,
	chip8.Opcode8000: Load,
	chip8.Opcode8001: Or,
	chip8.Opcode8002: And,
	chip8.Opcode8003: Xor,
	chip8.Opcode8004: Add,
	chip8.Opcode8005: Sub,
	chip8.Opcode8006: ShiftRight,
	chip8.Opcode8007: SubN,
	chip8.Opcode800E: ShiftLeft,
	chip8.Opcode9000: SkipNotEqual,
	chip8.OpcodeA000: LoadIndex,
	chip8.OpcodeB000: JumpOffset,
	chip8.OpcodeC000: Random,
	chip8.OpcodeD000: Draw,
	chip8.OpcodeE09E: SkipKeyPressed,
	chip8.OpcodeE0A1: SkipKeyNotPressed,
	chip8.OpcodeF007: LoadDelayTimer,
	chip8.OpcodeF00A: LoadKey,
	chip8.OpcodeF015: SetDelayTimer,
	chip8.OpcodeF018: SetSoundTimer,
	chip8.OpcodeF01E: AddIndex,
	chip8.OpcodeF029: LoadFont,
	chip8.OpcodeF033: StoreBCD,
	chip8.OpcodeF055: StoreRegisters,
	chip8.OpcodeF065: LoadRegisters,
}

var forms = [opCount]form{
	Cls:               formFixed,
	Ret:               formFixed,
	Sys:               formAddress,
	Jump:              formAddress,
	Call:              formAddress,
	SkipEqualValue:    formRegValue,
	SkipNotEqualValue: formRegValue,
	SkipEqual:         formRegReg,
	LoadValue:         formRegValue,
	AddValue:          formRegValue,
	Load:              formRegReg,
	Or:                formRegReg,
	And:               formRegReg,
	Xor:               formRegReg,
	Add:               formRegReg,
	Sub:               formRegReg,
	ShiftRight:        formRegShift,
	SubN:              formRegReg,
	ShiftLeft:         formRegShift,
	SkipNotEqual:      formRegReg,
	LoadIndex:         formAddress,
	JumpOffset:        formAddress,
	Random:            formRegValue,
	Draw:              formDraw,
	SkipKeyPressed:    formRegByte,
	SkipKeyNotPressed: formRegByte,
	LoadDelayTimer:    formRegByte,
	LoadKey:           formRegByte,
	SetDelayTimer:     formRegByte,
	SetSoundTimer:     formRegByte,
	AddIndex:          formRegByte,
	LoadFont:          formRegByte,
	StoreBCD:          formRegByte,
	StoreRegisters:    formRegByte,
	LoadRegisters:     formRegByte,
}

type decodeEntry struct {
	info chip8.OpcodeInfo
	op   Op
}

var (
	// decodeTable lists the candidate operations per top nibble in the
	// match order of the library opcode table.
	decodeTable [16][]decodeEntry
	// infos contains the fixed opcode bits of every operation.
	infos [opCount]chip8.OpcodeInfo
	// cpuInstructions contains the library instruction of every operation.
	cpuInstructions [opCount]*chip8.Instruction
)

func init() {
	for nibble, opcodes := range chip8.Opcodes {
		for _, opcode := range opcodes {
			op, ok := opcodeOps[opcode.Info]
			if !ok {
				panic(fmt.Sprintf("unsupported CHIP-8 opcode %04X", opcode.Info.Value))
			}
			decodeTable[nibble] = append(decodeTable[nibble], decodeEntry{info: opcode.Info, op: op})
			infos[op] = opcode.Info
			cpuInstructions[op] = opcode.Instruction
		}
	}
	infos[Sys] = sysInfo
}

// Decode translates a 16-bit opcode into an instruction.
func Decode(opcode uint16) (Instruction, error) {
	for _, entry := range decodeTable[opcode>>12] {
		if entry.info.Mask&opcode == entry.info.Value {
			return operands(entry.op, opcode), nil
		}
	}
	if sysInfo.Mask&opcode == sysInfo.Value {
		return operands(Sys, opcode), nil
	}
	return Instruction{}, &InvalidOpcodeError{Opcode: opcode}
}

// DecodeBytes decodes the big-endian opcode stored in the two given bytes.
func DecodeBytes(high, low byte) (Instruction, error) {
	return Decode(uint16(high)<<8 | uint16(low))
}

func operands(op Op, opcode uint16) Instruction {
	ins := Instruction{Op: op}
	x := uint8(opcode>>8) & 0x0F
	y := uint8(opcode>>4) & 0x0F

	switch forms[op] {
	case formAddress:
		ins.Address = opcode & 0x0FFF
	case formRegValue:
		ins.X = x
		ins.Value = uint8(opcode)
	case formRegReg:
		ins.X = x
		ins.Y = y
	case formRegShift, formRegByte:
		ins.X = x
	case formDraw:
		ins.X = x
		ins.Y = y
		ins.Value = uint8(opcode) & 0x0F
	}
	return ins
}

// Opcode returns the 16-bit opcode of the instruction.
// Operands are truncated to the width of their opcode field.
func (i Instruction) Opcode() uint16 {
	if i.Op == Invalid || i.Op >= opCount {
		return 0
	}
	opcode := infos[i.Op].Value
	x := uint16(i.X&0x0F) << 8
	y := uint16(i.Y&0x0F) << 4

	switch forms[i.Op] {
	case formAddress:
		opcode |= i.Address & 0x0FFF
	case formRegValue:
		opcode |= x | uint16(i.Value)
	case formRegReg:
		opcode |= x | y
	case formRegShift, formRegByte:
		opcode |= x
	case formDraw:
		opcode |= x | y | uint16(i.Value&0x0F)
	}
	return opcode
}

// Encode returns the big-endian program bytes of the instruction.
func Encode(i Instruction) [2]byte {
	opcode := i.Opcode()
	return [2]byte{byte(opcode >> 8), byte(opcode)}
}

// Assemble encodes a sequence of instructions into program bytes.
func Assemble(instructions ...Instruction) []byte {
	data := make([]byte, 0, len(instructions)*Size)
	for _, ins := range instructions {
		b := Encode(ins)
		data = append(data, b[0], b[1])
	}
	return data
}
