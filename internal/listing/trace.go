package listing

import (
	"fmt"

	"github.com/retroenv/retrochip8/internal/emulator"
	"github.com/retroenv/retrochip8/internal/instruction"
	"github.com/retroenv/retrogolib/set"
)

const (
	startLabel  = "Start"
	funcNaming  = "_func_%04x"
	labelNaming = "_label_%04x"
	dataNaming  = "_data_%04x"
)

// tracer follows the execution flow of a program starting at the program
// start address to separate code from data.
type tracer struct {
	program []byte

	code   set.Set[uint16]   // addresses of reachable instructions
	labels map[uint16]string // label names by address

	offsetsToParse      []uint16
	offsetsToParseAdded set.Set[uint16]
}

func trace(program []byte) *tracer {
	t := &tracer{
		program:             program,
		code:                set.New[uint16](),
		labels:              map[uint16]string{},
		offsetsToParseAdded: set.New[uint16](),
	}

	t.labels[emulator.ProgramStart] = startLabel
	t.addAddressToParse(emulator.ProgramStart)

	for len(t.offsetsToParse) > 0 {
		address := t.offsetsToParse[0]
		t.offsetsToParse = t.offsetsToParse[1:]
		t.processAddress(address)
	}
	return t
}

func (t *tracer) processAddress(address uint16) {
	ins, ok := t.decode(address)
	if !ok {
		return
	}
	t.code[address] = struct{}{}
	next := address + instruction.Size

	switch {
	case ins.Op == instruction.Jump:
		target := ins.Address
		if address == emulator.ProgramStart && target == emulator.HiresEntry {
			target = emulator.HiresStart
		}
		t.addBranchDestination(target, labelNaming)

	case ins.IsCall():
		t.addBranchDestination(ins.Address, funcNaming)
		t.addAddressToParse(next)

	case ins.IsSkip():
		t.addAddressToParse(next)
		t.addAddressToParse(next + instruction.Size)

	case ins.IsReturn(), ins.Op == instruction.JumpOffset:
		// destination unknown or taken from the stack

	case ins.Op == instruction.LoadIndex:
		if t.inProgram(ins.Address, 1) {
			t.addLabel(ins.Address, dataNaming)
		}
		t.addAddressToParse(next)

	default:
		t.addAddressToParse(next)
	}
}

func (t *tracer) addBranchDestination(address uint16, naming string) {
	if !t.inProgram(address, instruction.Size) {
		return
	}
	t.addLabel(address, naming)
	t.addAddressToParse(address)
}

func (t *tracer) addAddressToParse(address uint16) {
	if _, ok := t.offsetsToParseAdded[address]; ok {
		return
	}
	t.offsetsToParseAdded[address] = struct{}{}
	t.offsetsToParse = append(t.offsetsToParse, address)
}

func (t *tracer) addLabel(address uint16, naming string) {
	if _, ok := t.labels[address]; ok {
		return
	}
	t.labels[address] = fmt.Sprintf(naming, address)
}

func (t *tracer) decode(address uint16) (instruction.Instruction, bool) {
	if !t.inProgram(address, instruction.Size) {
		return instruction.Instruction{}, false
	}
	offset := int(address) - emulator.ProgramStart
	ins, err := instruction.DecodeBytes(t.program[offset], t.program[offset+1])
	return ins, err == nil
}

// inProgram returns whether size bytes starting at the address are
// part of the program.
func (t *tracer) inProgram(address uint16, size int) bool {
	offset := int(address) - emulator.ProgramStart
	return offset >= 0 && offset+size <= len(t.program)
}

// isCode returns whether an instruction starts at the address. An
// instruction that contains a label in its second byte is treated as data.
func (t *tracer) isCode(address uint16) bool {
	if _, ok := t.code[address]; !ok {
		return false
	}
	_, inside := t.labels[address+1]
	return !inside
}
