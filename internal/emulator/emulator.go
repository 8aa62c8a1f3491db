// Package emulator implements the CHIP-8 virtual machine. It owns the
// complete machine state and advances it one instruction per Step call.
//
// CHIP-8 memory map (4KB total):
//
//	0x000-0x04F: hexadecimal font glyphs
//	0x050-0x1FF: unused, reserved for the interpreter
//	0x200-0xFFF: program space (3584 bytes)
//
// The emulator is not safe for concurrent use, the caller that drives Step
// owns it exclusively.
package emulator

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/retroenv/retrogolib/log"
)

const (
	// MemorySize is the size of the address space in bytes.
	MemorySize = 4096
	// ProgramStart is the memory address where programs are loaded and
	// execution begins.
	ProgramStart = 0x200
	// MaxProgramSize is the maximum size of a program in bytes.
	MaxProgramSize = MemorySize - ProgramStart

	// RegisterCount is the number of general purpose registers V0-VF.
	RegisterCount = 16
	// FlagRegister is the index of VF, which receives carry, borrow,
	// shifted out bits and sprite collisions.
	FlagRegister = 0xF
	// StackSize is the number of return addresses the stack can hold.
	StackSize = 16
	// KeyCount is the number of keys of the hexadecimal keypad.
	KeyCount = 16
)

// Emulator is the CHIP-8 machine state.
type Emulator struct {
	memory    [MemorySize]byte
	pc        uint16
	sp        uint8
	stack     [StackSize]uint16
	registers [RegisterCount]uint8
	index     uint16

	delayTimer uint8
	soundTimer uint8
	lastTick   time.Time

	keys    [KeyCount]bool
	display *Display
	redraw  bool

	mode   DisplayMode // mode restored on reset
	clock  func() time.Time
	random func() uint8
	logger *log.Logger
	trace  bool
}

// Option configures an emulator.
type Option func(*Emulator)

// WithDisplayMode sets the initial display mode.
func WithDisplayMode(mode DisplayMode) Option {
	return func(e *Emulator) {
		e.mode = mode
	}
}

// WithClock sets the time source used for the 60 Hz timers.
func WithClock(clock func() time.Time) Option {
	return func(e *Emulator) {
		e.clock = clock
	}
}

// WithRandom sets the source of random bytes used by the RND instruction.
func WithRandom(random func() uint8) Option {
	return func(e *Emulator) {
		e.random = random
	}
}

// WithLogger sets the logger of the emulator.
func WithLogger(logger *log.Logger) Option {
	return func(e *Emulator) {
		e.logger = logger
	}
}

// WithTrace enables debug logging of every executed instruction.
func WithTrace(trace bool) Option {
	return func(e *Emulator) {
		e.trace = trace
	}
}

// New returns a new emulator in its initial state.
func New(options ...Option) *Emulator {
	e := &Emulator{
		mode:  Basic64x32,
		clock: time.Now,
		random: func() uint8 {
			return uint8(rand.Uint32())
		},
	}
	for _, option := range options {
		option(e)
	}

	e.display = newDisplay(e.mode)
	e.Reset()
	return e
}

// Reset restores the initial machine state. Memory is cleared and the font
// is installed again, a loaded program has to be loaded again.
func (e *Emulator) Reset() {
	clear(e.memory[:])
	copy(e.memory[:], font[:])

	e.pc = ProgramStart
	e.sp = 0
	clear(e.stack[:])
	clear(e.registers[:])
	e.index = 0
	e.delayTimer = 0
	e.soundTimer = 0
	e.lastTick = e.clock()
	clear(e.keys[:])

	if e.display.Mode() != e.mode {
		e.display.setMode(e.mode)
	} else {
		e.display.clear()
	}
	e.redraw = true
}

// LoadProgram copies the program into memory at the program start address.
// Other state is not changed.
func (e *Emulator) LoadProgram(data []byte) error {
	if len(data) > MaxProgramSize {
		return fmt.Errorf("%w: %d bytes exceed the maximum of %d bytes",
			ErrProgramTooLarge, len(data), MaxProgramSize)
	}

	copy(e.memory[ProgramStart:], data)
	if e.logger != nil {
		e.logger.Debug("Program loaded",
			log.Int("size", len(data)),
			log.Hex("address", uint16(ProgramStart)))
	}
	return nil
}

// PC returns the program counter.
func (e *Emulator) PC() uint16 {
	return e.pc
}

// SP returns the stack pointer.
func (e *Emulator) SP() uint8 {
	return e.sp
}

// Stack returns the return address stored at the given stack level.
// The level wraps around the stack size.
func (e *Emulator) Stack(level uint8) uint16 {
	return e.stack[level%StackSize]
}

// I returns the index register.
func (e *Emulator) I() uint16 {
	return e.index
}

// Register returns the value of register Vx.
func (e *Emulator) Register(x uint8) uint8 {
	return e.registers[x&0x0F]
}

// Registers returns a copy of all general purpose registers.
func (e *Emulator) Registers() [RegisterCount]uint8 {
	return e.registers
}

// DelayTimer returns the value of the delay timer.
func (e *Emulator) DelayTimer() uint8 {
	return e.delayTimer
}

// SoundTimer returns the value of the sound timer. The emulator does not
// output sound, a frontend can use a non-zero value to play a tone.
func (e *Emulator) SoundTimer() uint8 {
	return e.soundTimer
}

// Memory returns the byte at the given address. The address wraps around
// the memory size.
func (e *Emulator) Memory(address uint16) byte {
	return e.memory[address%MemorySize]
}

// Display returns the display. It is valid until the emulator changes the
// display mode, frontends should fetch it every frame.
func (e *Emulator) Display() *Display {
	return e.display
}

// Redraw returns whether the display changed since the last ClearRedraw call.
func (e *Emulator) Redraw() bool {
	return e.redraw
}

// ClearRedraw marks the current display content as consumed.
func (e *Emulator) ClearRedraw() {
	e.redraw = false
}

// SetKey sets the pressed state of the given key 0x0-0xF.
func (e *Emulator) SetKey(key uint8, pressed bool) {
	e.keys[key&0x0F] = pressed
}

// Key returns whether the given key is pressed.
func (e *Emulator) Key(key uint8) bool {
	return e.keys[key&0x0F]
}

// ReleaseKeys releases all keys.
func (e *Emulator) ReleaseKeys() {
	clear(e.keys[:])
}
