package instruction

// NewSys returns a system call to the given address.
func NewSys(address uint16) Instruction {
	return Instruction{Op: Sys, Address: address & 0x0FFF}
}

// NewCls returns a clear display instruction.
func NewCls() Instruction {
	return Instruction{Op: Cls}
}

// NewRet returns a return from subroutine instruction.
func NewRet() Instruction {
	return Instruction{Op: Ret}
}

// NewJump returns a jump to the given address.
func NewJump(address uint16) Instruction {
	return Instruction{Op: Jump, Address: address & 0x0FFF}
}

// NewCall returns a subroutine call to the given address.
func NewCall(address uint16) Instruction {
	return Instruction{Op: Call, Address: address & 0x0FFF}
}

// NewSkipEqualValue returns an instruction that skips if Vx equals value.
func NewSkipEqualValue(x, value uint8) Instruction {
	return Instruction{Op: SkipEqualValue, X: x & 0x0F, Value: value}
}

// NewSkipNotEqualValue returns an instruction that skips if Vx differs from value.
func NewSkipNotEqualValue(x, value uint8) Instruction {
	return Instruction{Op: SkipNotEqualValue, X: x & 0x0F, Value: value}
}

// NewSkipEqual returns an instruction that skips if Vx equals Vy.
func NewSkipEqual(x, y uint8) Instruction {
	return regReg(SkipEqual, x, y)
}

// NewLoadValue returns an instruction that sets Vx to value.
func NewLoadValue(x, value uint8) Instruction {
	return Instruction{Op: LoadValue, X: x & 0x0F, Value: value}
}

// NewAddValue returns an instruction that adds value to Vx without carry.
func NewAddValue(x, value uint8) Instruction {
	return Instruction{Op: AddValue, X: x & 0x0F, Value: value}
}

// NewLoad returns an instruction that copies Vy to Vx.
func NewLoad(x, y uint8) Instruction {
	return regReg(Load, x, y)
}

func NewOr(x, y uint8) Instruction {
	return regReg(Or, x, y)
}

func NewAnd(x, y uint8) Instruction {
	return regReg(And, x, y)
}

func NewXor(x, y uint8) Instruction {
	return regReg(Xor, x, y)
}

// NewAdd returns an instruction that adds Vy to Vx with carry in VF.
func NewAdd(x, y uint8) Instruction {
	return regReg(Add, x, y)
}

// NewSub returns an instruction that subtracts Vy from Vx, VF is set if there was no borrow.
func NewSub(x, y uint8) Instruction {
	return regReg(Sub, x, y)
}

func NewShiftRight(x uint8) Instruction {
	return reg(ShiftRight, x)
}

// NewSubN returns an instruction that sets Vx to Vy - Vx, VF is set if there was no borrow.
func NewSubN(x, y uint8) Instruction {
	return regReg(SubN, x, y)
}

func NewShiftLeft(x uint8) Instruction {
	return reg(ShiftLeft, x)
}

// NewSkipNotEqual returns an instruction that skips if Vx differs from Vy.
func NewSkipNotEqual(x, y uint8) Instruction {
	return regReg(SkipNotEqual, x, y)
}

// NewLoadIndex returns an instruction that sets I to address.
func NewLoadIndex(address uint16) Instruction {
	return Instruction{Op: LoadIndex, Address: address & 0x0FFF}
}

// NewJumpOffset returns a jump to address plus V0.
func NewJumpOffset(address uint16) Instruction {
	return Instruction{Op: JumpOffset, Address: address & 0x0FFF}
}

// NewRandom returns an instruction that sets Vx to a random byte masked with mask.
func NewRandom(x, mask uint8) Instruction {
	return Instruction{Op: Random, X: x & 0x0F, Value: mask}
}

// NewDraw returns an instruction that draws a sprite of the given rows at Vx, Vy.
func NewDraw(x, y, rows uint8) Instruction {
	return Instruction{Op: Draw, X: x & 0x0F, Y: y & 0x0F, Value: rows & 0x0F}
}

func NewSkipKeyPressed(x uint8) Instruction {
	return reg(SkipKeyPressed, x)
}

func NewSkipKeyNotPressed(x uint8) Instruction {
	return reg(SkipKeyNotPressed, x)
}

func NewLoadDelayTimer(x uint8) Instruction {
	return reg(LoadDelayTimer, x)
}

// NewLoadKey returns an instruction that waits for a key press and stores the key in Vx.
func NewLoadKey(x uint8) Instruction {
	return reg(LoadKey, x)
}

func NewSetDelayTimer(x uint8) Instruction {
	return reg(SetDelayTimer, x)
}

func NewSetSoundTimer(x uint8) Instruction {
	return reg(SetSoundTimer, x)
}

// NewAddIndex returns an instruction that adds Vx to I.
func NewAddIndex(x uint8) Instruction {
	return reg(AddIndex, x)
}

// NewLoadFont returns an instruction that points I to the font glyph of the digit in Vx.
func NewLoadFont(x uint8) Instruction {
	return reg(LoadFont, x)
}

// NewStoreBCD returns an instruction that stores the decimal digits of Vx at I.
func NewStoreBCD(x uint8) Instruction {
	return reg(StoreBCD, x)
}

// NewStoreRegisters returns an instruction that stores V0 to Vx at I.
func NewStoreRegisters(x uint8) Instruction {
	return reg(StoreRegisters, x)
}

// NewLoadRegisters returns an instruction that loads V0 to Vx from I.
func NewLoadRegisters(x uint8) Instruction {
	return reg(LoadRegisters, x)
}

func reg(op Op, x uint8) Instruction {
	return Instruction{Op: op, X: x & 0x0F}
}

func regReg(op Op, x, y uint8) Instruction {
	return Instruction{Op: op, X: x & 0x0F, Y: y & 0x0F}
}
