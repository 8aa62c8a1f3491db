// Package options contains the program options.
package options

// Parameters contains file path options.
type Parameters struct {
	Input  string `arg:"positional" usage:"ROM file to run"`
	Output string `flag:"o" usage:"output .asm file of the listing (default: stdout)"`
}

// Flags contains behavior options.
type Flags struct {
	Frontend      string `flag:"f" usage:"frontend: ebiten, terminal" default:"ebiten"`
	DisplayMode   string `flag:"mode" usage:"initial display mode: 64x32, 64x48, 64x64, 128x64" default:"64x32"`
	StepsPerFrame int    `flag:"speed" usage:"instructions executed per frame" default:"10"`
	FPS           int    `flag:"fps" usage:"frames per second" default:"60"`
	Scale         int    `flag:"scale" usage:"window pixel scale" default:"10"`
	List          bool   `flag:"list" usage:"write an assembly listing instead of running the ROM"`
	Trace         bool   `flag:"trace" usage:"log every executed instruction, requires -debug"`
	Debug         bool   `flag:"debug" usage:"enable debug logging"`
	Quiet         bool   `flag:"q" usage:"quiet mode"`
}

// OutputFlags contains listing formatting options.
type OutputFlags struct {
	NoHexComments bool `flag:"nohexcomments" usage:"omit hex opcode bytes in comments"`
	NoOffsets     bool `flag:"nooffsets" usage:"omit memory addresses in comments"`
}

// Program options of the emulator.
type Program struct {
	Parameters
	Flags
	OutputFlags
}
