package emulator

import (
	"fmt"

	"github.com/retroenv/retrochip8/internal/instruction"
	"github.com/retroenv/retrogolib/log"
)

const legacyClsAddress = 0x230

// Addresses of the legacy hires convention: a program starting with a
// jump to HiresEntry switches to the 64x64 mode and continues at HiresStart.
const (
	HiresEntry = 0x260
	HiresStart = 0x2C0
)

// Step fetches the instruction at the program counter, advances the
// program counter, updates the timers and executes the instruction.
// A returned error is fatal, the machine state is undefined afterwards.
func (e *Emulator) Step() error {
	pc := e.pc
	if int(pc) >= MemorySize {
		return &ExecutionError{PC: pc, Err: ErrAddressOutOfRange}
	}

	opcode := uint16(e.readMemory(pc))<<8 | uint16(e.readMemory(pc+1))
	e.pc += instruction.Size
	e.updateTimers()

	ins, err := instruction.Decode(opcode)
	if err != nil {
		return &ExecutionError{PC: pc, Opcode: opcode, Err: err}
	}

	if e.trace && e.logger != nil {
		e.logger.Debug("Executing instruction",
			log.Hex("pc", pc),
			log.Hex("opcode", opcode),
			log.String("instruction", ins.String()))
	}

	if err := e.Execute(ins); err != nil {
		return &ExecutionError{PC: pc, Opcode: opcode, Err: err}
	}
	return nil
}

// Execute applies the effect of a decoded instruction to the machine state.
// The program counter is expected to point to the next instruction already.
func (e *Emulator) Execute(ins instruction.Instruction) error {
	v := &e.registers
	x, y := ins.X&0x0F, ins.Y&0x0F

	switch ins.Op {
	case instruction.Sys:
		if ins.Address == legacyClsAddress {
			e.clearDisplay()
		}

	case instruction.Cls:
		e.clearDisplay()

	case instruction.Ret:
		if e.sp == 0 {
			return ErrStackUnderflow
		}
		e.sp--
		e.pc = e.stack[e.sp]

	case instruction.Jump:
		if ins.Address == HiresEntry && e.pc == ProgramStart+instruction.Size {
			e.enableHires()
			return nil
		}
		e.pc = ins.Address

	case instruction.Call:
		if int(e.sp) >= StackSize {
			return ErrStackOverflow
		}
		e.stack[e.sp] = e.pc
		e.sp++
		e.pc = ins.Address

	case instruction.SkipEqualValue:
		e.skipIf(v[x] == ins.Value)
	case instruction.SkipNotEqualValue:
		e.skipIf(v[x] != ins.Value)
	case instruction.SkipEqual:
		e.skipIf(v[x] == v[y])
	case instruction.SkipNotEqual:
		e.skipIf(v[x] != v[y])

	case instruction.LoadValue:
		v[x] = ins.Value
	case instruction.AddValue:
		v[x] += ins.Value
	case instruction.Load:
		v[x] = v[y]
	case instruction.Or:
		v[x] |= v[y]
	case instruction.And:
		v[x] &= v[y]
	case instruction.Xor:
		v[x] ^= v[y]

	// VF is written before the result, a result in VF replaces the flag
	// and a VF operand is read after the flag was written.
	case instruction.Add:
		v[FlagRegister] = boolToFlag(uint16(v[x])+uint16(v[y]) > 0xFF)
		v[x] += v[y]

	case instruction.Sub:
		v[FlagRegister] = boolToFlag(v[x] >= v[y])
		v[x] -= v[y]

	case instruction.SubN:
		v[FlagRegister] = boolToFlag(v[y] >= v[x])
		v[x] = v[y] - v[x]

	case instruction.ShiftRight:
		v[FlagRegister] = v[x] & 0x01
		v[x] >>= 1

	case instruction.ShiftLeft:
		v[FlagRegister] = v[x] >> 7
		v[x] <<= 1

	case instruction.LoadIndex:
		e.index = ins.Address

	case instruction.JumpOffset:
		e.pc = uint16(v[0]) + ins.Address

	case instruction.Random:
		v[x] = e.random() & ins.Value

	case instruction.Draw:
		e.draw(v[x], v[y], ins.Value)

	case instruction.SkipKeyPressed:
		e.skipIf(e.keys[v[x]&0x0F])
	case instruction.SkipKeyNotPressed:
		e.skipIf(!e.keys[v[x]&0x0F])

	case instruction.LoadDelayTimer:
		v[x] = e.delayTimer
	case instruction.LoadKey:
		e.waitForKey(x)
	case instruction.SetDelayTimer:
		e.delayTimer = v[x]
	case instruction.SetSoundTimer:
		e.soundTimer = v[x]

	case instruction.AddIndex:
		e.index += uint16(v[x])

	case instruction.LoadFont:
		e.index = FontAddress(v[x])

	case instruction.StoreBCD:
		value := v[x]
		e.writeMemory(e.index, value/100)
		e.writeMemory(e.index+1, value/10%10)
		e.writeMemory(e.index+2, value%10)

	case instruction.StoreRegisters:
		for i := range uint16(x) + 1 {
			e.writeMemory(e.index+i, v[i])
		}

	case instruction.LoadRegisters:
		for i := range uint16(x) + 1 {
			v[i] = e.readMemory(e.index + i)
		}

	default:
		return fmt.Errorf("%w: %s", ErrUnhandledInstruction, ins)
	}

	return nil
}

func (e *Emulator) skipIf(condition bool) {
	if condition {
		e.pc += instruction.Size
	}
}

func (e *Emulator) clearDisplay() {
	e.display.clear()
	e.redraw = true
}

func (e *Emulator) enableHires() {
	e.display.setMode(Eti64x64)
	e.pc = HiresStart
	e.redraw = true

	if e.logger != nil {
		e.logger.Debug("Switched display mode",
			log.Stringer("mode", e.display.Mode()))
	}
}

// draw XORs a sprite of the given number of rows read from the index
// register onto the display. VF is set if any set pixel was cleared.
func (e *Emulator) draw(x, y, rows uint8) {
	e.registers[FlagRegister] = 0

	for row := range uint16(rows) {
		data := e.readMemory(e.index + row)
		if e.display.drawRow(int(x), int(y)+int(row), data) {
			e.registers[FlagRegister] = 1
		}
	}
	e.redraw = true
}

// waitForKey stores the lowest pressed key in Vx. If no key is pressed the
// program counter is moved back so that the instruction executes again on
// the next step.
func (e *Emulator) waitForKey(x uint8) {
	for key, pressed := range e.keys {
		if pressed {
			e.registers[x] = uint8(key)
			return
		}
	}
	e.pc -= instruction.Size
}

// Memory accesses relative to the index register wrap around the
// address space.

func (e *Emulator) readMemory(address uint16) byte {
	return e.memory[address%MemorySize]
}

func (e *Emulator) writeMemory(address uint16, value byte) {
	e.memory[address%MemorySize] = value
}

func boolToFlag(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
