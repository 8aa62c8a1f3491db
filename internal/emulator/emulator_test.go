package emulator

import (
	"errors"
	"testing"
	"time"

	ins "github.com/retroenv/retrochip8/internal/instruction"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestEmulator(t *testing.T, program ...ins.Instruction) (*Emulator, *fakeClock) {
	t.Helper()

	clock := &fakeClock{now: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)}
	e := New(
		WithClock(clock.Now),
		WithLogger(log.NewTestLogger(t)),
		WithTrace(true),
	)
	assert.NoError(t, e.LoadProgram(ins.Assemble(program...)))
	return e, clock
}

func step(t *testing.T, e *Emulator, count int) {
	t.Helper()
	for range count {
		assert.NoError(t, e.Step())
	}
}

func TestNew(t *testing.T) {
	e := New()

	assert.Equal(t, uint16(ProgramStart), e.PC())
	assert.Equal(t, uint8(0), e.SP())
	assert.Equal(t, uint16(0), e.I())
	assert.Equal(t, Basic64x32, e.Display().Mode())
	assert.Equal(t, 64, e.Display().Width())
	assert.Equal(t, 32, e.Display().Height())

	for i := range uint16(len(font)) {
		assert.Equal(t, font[i], e.Memory(i))
	}
	for address := uint16(len(font)); address < MemorySize; address++ {
		assert.Equal(t, byte(0), e.Memory(address))
	}
}

func TestNewWithDisplayMode(t *testing.T) {
	e := New(WithDisplayMode(Hp128x64))
	assert.Equal(t, 128, e.Display().Width())
	assert.Equal(t, 64, e.Display().Height())
}

func TestLoadProgram(t *testing.T) {
	e := New()
	assert.NoError(t, e.LoadProgram([]byte{0x01, 0x02, 0x03, 0x04}))

	assert.Equal(t, byte(0x01), e.Memory(0x200))
	assert.Equal(t, byte(0x02), e.Memory(0x201))
	assert.Equal(t, byte(0x03), e.Memory(0x202))
	assert.Equal(t, byte(0x04), e.Memory(0x203))
	assert.Equal(t, uint16(ProgramStart), e.PC())
}

func TestLoadProgramCapacity(t *testing.T) {
	e := New()

	program := make([]byte, MaxProgramSize)
	program[len(program)-1] = 0xAB
	assert.NoError(t, e.LoadProgram(program))
	assert.Equal(t, byte(0xAB), e.Memory(MemorySize-1))

	err := e.LoadProgram(make([]byte, MaxProgramSize+1))
	assert.True(t, errors.Is(err, ErrProgramTooLarge))
	assert.Equal(t, byte(0xAB), e.Memory(MemorySize-1))
	assert.Equal(t, font[0], e.Memory(0))
}

func TestStepLoadAddValue(t *testing.T) {
	e := New()
	assert.NoError(t, e.LoadProgram([]byte{0x60, 0x05, 0x70, 0x03}))

	step(t, e, 2)
	assert.Equal(t, uint8(8), e.Register(0))
	assert.Equal(t, uint16(ProgramStart+4), e.PC())
}

func TestAddValueWraps(t *testing.T) {
	e, _ := newTestEmulator(t,
		ins.NewLoadValue(1, 0x55),
		ins.NewAddValue(1, 0xAA),
		ins.NewAddValue(1, 0x01),
	)

	step(t, e, 1)
	assert.Equal(t, uint16(0x202), e.PC())
	assert.Equal(t, uint8(0x55), e.Register(1))

	step(t, e, 1)
	assert.Equal(t, uint16(0x204), e.PC())
	assert.Equal(t, uint8(0xFF), e.Register(1))

	step(t, e, 1)
	assert.Equal(t, uint16(0x206), e.PC())
	assert.Equal(t, uint8(0x00), e.Register(1))
	assert.Equal(t, uint8(0), e.Register(FlagRegister))
}

func TestArithmeticFlags(t *testing.T) {
	tests := []struct {
		name     string
		op       ins.Instruction
		x, y     uint8
		expected uint8
		flag     uint8
	}{
		{"add with carry", ins.NewAdd(1, 2), 200, 100, 44, 1},
		{"add without carry", ins.NewAdd(1, 2), 100, 100, 200, 0},
		{"add to limit", ins.NewAdd(1, 2), 255, 0, 255, 0},
		{"sub without borrow", ins.NewSub(1, 2), 100, 30, 70, 1},
		{"sub equal", ins.NewSub(1, 2), 30, 30, 0, 1},
		{"sub with borrow", ins.NewSub(1, 2), 30, 100, 186, 0},
		{"subn without borrow", ins.NewSubN(1, 2), 30, 100, 70, 1},
		{"subn with borrow", ins.NewSubN(1, 2), 100, 30, 186, 0},
		{"or", ins.NewOr(1, 2), 0xAA, 0x55, 0xFF, 0x0F},
		{"and", ins.NewAnd(1, 2), 0xAA, 0x55, 0x00, 0x0F},
		{"xor", ins.NewXor(1, 2), 0xAA, 0xFF, 0x55, 0x0F},
		{"shift right odd", ins.NewShiftRight(1), 0x55, 0, 0x2A, 1},
		{"shift right even", ins.NewShiftRight(1), 0x2A, 0, 0x15, 0},
		{"shift left high bit", ins.NewShiftLeft(1), 0xAA, 0, 0x54, 1},
		{"shift left", ins.NewShiftLeft(1), 0x55, 0, 0xAA, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEmulator(t,
				ins.NewLoadValue(FlagRegister, 0x0F),
				ins.NewLoadValue(1, tt.x),
				ins.NewLoadValue(2, tt.y),
				tt.op,
			)

			step(t, e, 4)
			assert.Equal(t, tt.expected, e.Register(1))
			assert.Equal(t, tt.flag, e.Register(FlagRegister))
		})
	}
}

func TestArithmeticFlagRegisterOperand(t *testing.T) {
	tests := []struct {
		name string
		op   ins.Instruction
		v1   uint8
		vf   uint8
	}{
		{"add to VF", ins.NewAdd(FlagRegister, 1), 0x20, 0x21},
		{"sub from VF", ins.NewSub(FlagRegister, 1), 0x20, 0xE1},
		{"subn into VF", ins.NewSubN(FlagRegister, 1), 0x20, 0x20},
		{"shift VF right", ins.NewShiftRight(FlagRegister), 0x20, 0x00},
		{"shift VF left", ins.NewShiftLeft(FlagRegister), 0x20, 0x02},
		{"add VF", ins.NewAdd(1, FlagRegister), 0x21, 0x01},
		{"sub VF", ins.NewSub(1, FlagRegister), 0x20, 0x00},
		{"subn VF", ins.NewSubN(1, FlagRegister), 0xE1, 0x01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEmulator(t,
				ins.NewLoadValue(FlagRegister, 0xF0),
				ins.NewLoadValue(1, 0x20),
				tt.op,
			)

			step(t, e, 3)
			assert.Equal(t, tt.v1, e.Register(1))
			assert.Equal(t, tt.vf, e.Register(FlagRegister))
		})
	}
}

func TestLoadAddSubSequence(t *testing.T) {
	e, _ := newTestEmulator(t,
		ins.NewLoadValue(1, 0x56),
		ins.NewLoad(2, 1),
		ins.NewAdd(2, 2), // 0xAC
		ins.NewAdd(1, 2), // 0x02 with carry
		ins.NewSub(1, 2), // 0x56 with borrow
		ins.NewSub(1, 1), // 0x00 without borrow
	)

	step(t, e, 2)
	assert.Equal(t, uint8(0x56), e.Register(1))
	assert.Equal(t, uint8(0x56), e.Register(2))

	step(t, e, 1)
	assert.Equal(t, uint8(0xAC), e.Register(2))
	assert.Equal(t, uint8(0), e.Register(FlagRegister))

	step(t, e, 1)
	assert.Equal(t, uint8(0x02), e.Register(1))
	assert.Equal(t, uint8(1), e.Register(FlagRegister))

	step(t, e, 1)
	assert.Equal(t, uint8(0x56), e.Register(1))
	assert.Equal(t, uint8(0), e.Register(FlagRegister))

	step(t, e, 1)
	assert.Equal(t, uint8(0x00), e.Register(1))
	assert.Equal(t, uint8(1), e.Register(FlagRegister))
	assert.Equal(t, uint16(0x20C), e.PC())
}

func TestSkip(t *testing.T) {
	e, _ := newTestEmulator(t,
		ins.NewLoadValue(1, 0xAA),
		ins.NewSkipEqualValue(1, 0xAB),
		ins.NewSkipEqualValue(1, 0xAA),
		ins.Instruction{},

		ins.NewSkipNotEqualValue(1, 0xAA),
		ins.NewSkipNotEqualValue(1, 0xAB),
		ins.Instruction{},

		ins.NewLoadValue(2, 0xAB),
		ins.NewSkipEqual(1, 2),
		ins.NewLoadValue(3, 0xAA),
		ins.NewSkipEqual(1, 3),
		ins.Instruction{},

		ins.NewSkipNotEqual(1, 3),
		ins.NewSkipNotEqual(1, 2),
		ins.Instruction{},
	)

	expected := []uint16{0x202, 0x204, 0x208, 0x20A, 0x20E, 0x210, 0x212, 0x214, 0x218, 0x21A, 0x21E}
	for _, pc := range expected {
		step(t, e, 1)
		assert.Equal(t, pc, e.PC())
	}
}

func TestJumpCallReturn(t *testing.T) {
	e, _ := newTestEmulator(t,
		ins.NewJump(0x204),
		ins.Instruction{},
		ins.NewCall(0x208),
		ins.Instruction{},
		ins.NewRet(),
	)

	step(t, e, 1)
	assert.Equal(t, uint16(0x204), e.PC())
	assert.Equal(t, uint8(0), e.SP())

	step(t, e, 1)
	assert.Equal(t, uint16(0x208), e.PC())
	assert.Equal(t, uint8(1), e.SP())
	assert.Equal(t, uint16(0x206), e.Stack(0))

	step(t, e, 1)
	assert.Equal(t, uint16(0x206), e.PC())
	assert.Equal(t, uint8(0), e.SP())
}

func TestJumpOffset(t *testing.T) {
	e, _ := newTestEmulator(t,
		ins.NewLoadValue(0, 0x10),
		ins.NewJumpOffset(0x300),
	)

	step(t, e, 2)
	assert.Equal(t, uint16(0x310), e.PC())
}

func TestStackUnderflow(t *testing.T) {
	e, _ := newTestEmulator(t, ins.NewRet())

	err := e.Step()
	assert.True(t, errors.Is(err, ErrStackUnderflow))

	var execErr *ExecutionError
	assert.True(t, errors.As(err, &execErr))
	assert.Equal(t, uint16(ProgramStart), execErr.PC)
	assert.Equal(t, uint16(0x00EE), execErr.Opcode)
}

func TestStackOverflow(t *testing.T) {
	e, _ := newTestEmulator(t, ins.NewCall(ProgramStart))

	step(t, e, StackSize)
	assert.Equal(t, uint8(StackSize), e.SP())

	err := e.Step()
	assert.True(t, errors.Is(err, ErrStackOverflow))
}

func TestInvalidOpcode(t *testing.T) {
	e := New()
	assert.NoError(t, e.LoadProgram([]byte{0x51, 0x21}))

	err := e.Step()
	assert.True(t, errors.Is(err, ins.ErrInvalidOpcode))

	var execErr *ExecutionError
	assert.True(t, errors.As(err, &execErr))
	assert.Equal(t, uint16(0x5121), execErr.Opcode)
}

func TestUnhandledInstruction(t *testing.T) {
	e := New()

	err := e.Execute(ins.Instruction{})
	assert.True(t, errors.Is(err, ErrUnhandledInstruction))
}

func TestProgramCounterOutOfRange(t *testing.T) {
	e, _ := newTestEmulator(t,
		ins.NewLoadValue(0, 0xFF),
		ins.NewJumpOffset(0xFFF),
	)

	step(t, e, 2)
	assert.Equal(t, uint16(0x10FE), e.PC())

	err := e.Step()
	assert.True(t, errors.Is(err, ErrAddressOutOfRange))
}

func TestDrawAndClear(t *testing.T) {
	e, _ := newTestEmulator(t,
		ins.NewLoadValue(1, 0),
		ins.NewLoadValue(2, 0),
		ins.NewLoadValue(3, 0xF),
		ins.NewLoadFont(3),
		ins.NewDraw(1, 2, 5),
		ins.NewDraw(1, 2, 5),
		ins.NewLoadValue(1, 63),
		ins.NewLoadValue(2, 31),
		ins.NewDraw(1, 2, 5),
		ins.NewCls(),
	)
	d := e.Display()

	step(t, e, 4)
	assert.Equal(t, FontAddress(0xF), e.I())
	assert.Equal(t, uint16(0xF*5), e.I())
	e.ClearRedraw()

	// glyph F
	step(t, e, 1)
	assert.True(t, e.Redraw())
	assert.Equal(t, uint8(0), e.Register(FlagRegister))
	expected := []string{
		"####....",
		"#.......",
		"####....",
		"#.......",
		"#.......",
	}
	for y, row := range expected {
		for x, c := range row {
			assert.Equal(t, c == '#', d.Pixel(x, y))
		}
	}

	// drawing again erases the glyph and reports the collision
	step(t, e, 1)
	assert.Equal(t, uint8(1), e.Register(FlagRegister))
	for y := range d.Height() {
		for x := range d.Width() {
			assert.False(t, d.Pixel(x, y))
		}
	}

	// drawing at the bottom right corner wraps around both edges
	step(t, e, 3)
	assert.Equal(t, uint8(0), e.Register(FlagRegister))
	set := [][2]int{
		{63, 31}, {0, 31}, {1, 31}, {2, 31},
		{63, 0},
		{63, 1}, {0, 1}, {1, 1}, {2, 1},
		{63, 2},
		{63, 3},
	}
	count := 0
	for y := range d.Height() {
		for x := range d.Width() {
			if d.Pixel(x, y) {
				count++
			}
		}
	}
	assert.Equal(t, len(set), count)
	for _, p := range set {
		assert.True(t, d.Pixel(p[0], p[1]))
	}

	e.ClearRedraw()
	step(t, e, 1)
	assert.True(t, e.Redraw())
	for _, p := range set {
		assert.False(t, d.Pixel(p[0], p[1]))
	}
}

func TestLegacyClearDisplay(t *testing.T) {
	e, _ := newTestEmulator(t,
		ins.NewLoadFont(0),
		ins.NewDraw(0, 0, 5),
		ins.NewSys(0x230),
		ins.NewDraw(0, 0, 5),
		ins.NewSys(0x231),
	)

	step(t, e, 2)
	assert.True(t, e.Display().Pixel(0, 0))

	e.ClearRedraw()
	step(t, e, 1)
	assert.True(t, e.Redraw())
	assert.False(t, e.Display().Pixel(0, 0))

	step(t, e, 1)
	e.ClearRedraw()
	step(t, e, 1)
	assert.False(t, e.Redraw())
	assert.True(t, e.Display().Pixel(0, 0))
}

func TestHiresSwitch(t *testing.T) {
	e, _ := newTestEmulator(t, ins.NewJump(0x260))

	step(t, e, 1)
	assert.Equal(t, uint16(0x2C0), e.PC())
	assert.Equal(t, Eti64x64, e.Display().Mode())
	assert.Equal(t, 64, e.Display().Height())

	e.Reset()
	assert.Equal(t, Basic64x32, e.Display().Mode())
}

func TestHiresOnlyAtProgramStart(t *testing.T) {
	e, _ := newTestEmulator(t,
		ins.NewLoadValue(0, 1),
		ins.NewJump(0x260),
	)

	step(t, e, 2)
	assert.Equal(t, uint16(0x260), e.PC())
	assert.Equal(t, Basic64x32, e.Display().Mode())
}

func TestIndexStoreLoadRegisters(t *testing.T) {
	e, _ := newTestEmulator(t,
		ins.NewLoadIndex(0x600),
		ins.NewLoadValue(0, 0xDE),
		ins.NewLoadValue(1, 0xAD),
		ins.NewLoadValue(2, 0xBE),
		ins.NewLoadValue(3, 0xEF),
		ins.NewStoreRegisters(2),

		ins.NewLoadValue(0, 0x00),
		ins.NewLoadValue(1, 0x00),
		ins.NewLoadValue(2, 0x00),
		ins.NewLoadRegisters(2),
		ins.NewAddIndex(1),
	)

	step(t, e, 1)
	assert.Equal(t, uint16(0x600), e.I())

	step(t, e, 5)
	assert.Equal(t, byte(0xDE), e.Memory(0x600))
	assert.Equal(t, byte(0xAD), e.Memory(0x601))
	assert.Equal(t, byte(0xBE), e.Memory(0x602))
	assert.Equal(t, byte(0x00), e.Memory(0x603))
	assert.Equal(t, uint16(0x600), e.I())

	step(t, e, 4)
	assert.Equal(t, uint8(0xDE), e.Register(0))
	assert.Equal(t, uint8(0xAD), e.Register(1))
	assert.Equal(t, uint8(0xBE), e.Register(2))
	assert.Equal(t, uint8(0xEF), e.Register(3))
	assert.Equal(t, uint16(0x214), e.PC())

	step(t, e, 1)
	assert.Equal(t, uint16(0x6AD), e.I())
}

func TestIndexedAccessWraps(t *testing.T) {
	e, _ := newTestEmulator(t,
		ins.NewLoadIndex(0xFFF),
		ins.NewLoadValue(0, 0x11),
		ins.NewLoadValue(1, 0x22),
		ins.NewStoreRegisters(1),
	)

	step(t, e, 4)
	assert.Equal(t, byte(0x11), e.Memory(0xFFF))
	assert.Equal(t, byte(0x22), e.Memory(0x000))
}

func TestStoreBCD(t *testing.T) {
	e, _ := newTestEmulator(t,
		ins.NewLoadValue(1, 234),
		ins.NewLoadIndex(0x600),
		ins.NewStoreBCD(1),
		ins.NewLoadValue(1, 7),
		ins.NewStoreBCD(1),
	)

	step(t, e, 3)
	assert.Equal(t, uint16(0x206), e.PC())
	assert.Equal(t, byte(2), e.Memory(0x600))
	assert.Equal(t, byte(3), e.Memory(0x601))
	assert.Equal(t, byte(4), e.Memory(0x602))
	assert.Equal(t, uint16(0x600), e.I())

	step(t, e, 2)
	assert.Equal(t, byte(0), e.Memory(0x600))
	assert.Equal(t, byte(0), e.Memory(0x601))
	assert.Equal(t, byte(7), e.Memory(0x602))
}

func TestRandom(t *testing.T) {
	clock := &fakeClock{}
	e := New(
		WithClock(clock.Now),
		WithRandom(func() uint8 { return 0xAB }),
	)
	assert.NoError(t, e.LoadProgram(ins.Assemble(
		ins.NewRandom(4, 0x0F),
		ins.NewRandom(5, 0xFF),
	)))

	step(t, e, 2)
	assert.Equal(t, uint8(0x0B), e.Register(4))
	assert.Equal(t, uint8(0xAB), e.Register(5))
}

func TestWaitForKey(t *testing.T) {
	e, _ := newTestEmulator(t, ins.NewLoadKey(5))

	step(t, e, 1)
	assert.Equal(t, uint16(ProgramStart), e.PC())
	step(t, e, 1)
	assert.Equal(t, uint16(ProgramStart), e.PC())

	e.SetKey(0xC, true)
	e.SetKey(0x7, true)
	step(t, e, 1)
	assert.Equal(t, uint16(ProgramStart+2), e.PC())
	assert.Equal(t, uint8(0x7), e.Register(5))
}

func TestSkipKey(t *testing.T) {
	e, _ := newTestEmulator(t,
		ins.NewLoadValue(1, 0xA),
		ins.NewSkipKeyPressed(1),
		ins.NewSkipKeyNotPressed(1),
		ins.Instruction{},
		ins.NewSkipKeyPressed(1),
		ins.Instruction{},
	)

	step(t, e, 3)
	assert.Equal(t, uint16(0x208), e.PC())

	e.SetKey(0xA, true)
	assert.True(t, e.Key(0xA))
	step(t, e, 1)
	assert.Equal(t, uint16(0x20C), e.PC())

	e.ReleaseKeys()
	assert.False(t, e.Key(0xA))
}

func TestTimers(t *testing.T) {
	e, clock := newTestEmulator(t,
		ins.NewLoadValue(0, 10),
		ins.NewSetDelayTimer(0),
		ins.NewSetSoundTimer(0),
		ins.NewLoadDelayTimer(1),
		ins.NewLoadDelayTimer(2),
		ins.NewLoadDelayTimer(3),
		ins.NewLoadDelayTimer(4),
	)

	step(t, e, 3)
	assert.Equal(t, uint8(10), e.DelayTimer())
	assert.Equal(t, uint8(10), e.SoundTimer())

	// less than a tick does not change the timers
	clock.advance(tickDuration / 2)
	step(t, e, 1)
	assert.Equal(t, uint8(10), e.Register(1))

	clock.advance(3 * tickDuration)
	step(t, e, 1)
	assert.Equal(t, uint8(7), e.Register(2))
	assert.Equal(t, uint8(7), e.SoundTimer())

	// the remainder of the previous update is carried over
	clock.advance(tickDuration / 2)
	step(t, e, 1)
	assert.Equal(t, uint8(6), e.Register(3))

	clock.advance(time.Hour)
	step(t, e, 1)
	assert.Equal(t, uint8(0), e.Register(4))
	assert.Equal(t, uint8(0), e.DelayTimer())
	assert.Equal(t, uint8(0), e.SoundTimer())
}

func TestReset(t *testing.T) {
	e, clock := newTestEmulator(t,
		ins.NewLoadValue(3, 0x42),
		ins.NewLoadIndex(0x300),
		ins.NewSetDelayTimer(3),
		ins.NewCall(0x208),
		ins.NewLoadFont(3),
		ins.NewDraw(0, 0, 5),
	)
	step(t, e, 6)
	e.SetKey(3, true)

	e.Reset()
	assert.Equal(t, uint16(ProgramStart), e.PC())
	assert.Equal(t, uint8(0), e.SP())
	assert.Equal(t, uint16(0), e.Stack(0))
	assert.Equal(t, uint16(0), e.I())
	assert.Equal(t, [RegisterCount]uint8{}, e.Registers())
	assert.Equal(t, uint8(0), e.DelayTimer())
	assert.False(t, e.Key(3))
	assert.False(t, e.Display().Pixel(0, 0))
	assert.Equal(t, byte(0), e.Memory(ProgramStart))
	assert.Equal(t, font[5], e.Memory(5))

	// the timer reference restarts at the reset time
	clock.advance(tickDuration)
	assert.NoError(t, e.LoadProgram(ins.Assemble(ins.NewLoadValue(0, 1), ins.NewSetDelayTimer(0), ins.NewLoadDelayTimer(1))))
	step(t, e, 2)
	assert.Equal(t, uint8(1), e.DelayTimer())
}

func TestDisplayModeFromString(t *testing.T) {
	mode, err := DisplayModeFromString("128X64")
	assert.NoError(t, err)
	assert.Equal(t, Hp128x64, mode)
	assert.Equal(t, "128x64", mode.String())

	_, err = DisplayModeFromString("320x200")
	assert.ErrorContains(t, err, "unsupported display mode")
}

func TestFontAddress(t *testing.T) {
	tests := []struct {
		digit    uint8
		expected uint16
	}{
		{0x0, 0x00},
		{0x1, 0x05},
		{0xF, 0x4B},
		{0x12, 0x5A},
		{0xFF, 0x4FB},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, FontAddress(tt.digit))
	}

	e, _ := newTestEmulator(t,
		ins.NewLoadValue(1, 0x12),
		ins.NewLoadFont(1),
	)
	step(t, e, 2)
	assert.Equal(t, uint16(0x5A), e.I())
}

func TestStackLevelWraps(t *testing.T) {
	e, _ := newTestEmulator(t, ins.NewCall(0x300))
	step(t, e, 1)

	assert.Equal(t, uint16(0x202), e.Stack(0))
	assert.Equal(t, uint16(0x202), e.Stack(StackSize))
	assert.Equal(t, uint16(0), e.Stack(255))
}
