package emulator

import (
	"fmt"
	"strings"
)

// DisplayMode selects the resolution of the display.
type DisplayMode int

// Supported display modes.
const (
	Basic64x32 DisplayMode = iota // original CHIP-8 resolution
	Eti64x48
	Eti64x64 // hires mode of the ETI-660
	Hp128x64
)

var resolutions = [...][2]int{
	Basic64x32: {64, 32},
	Eti64x48:   {64, 48},
	Eti64x64:   {64, 64},
	Hp128x64:   {128, 64},
}

var modeNames = [...]string{
	Basic64x32: "64x32",
	Eti64x48:   "64x48",
	Eti64x64:   "64x64",
	Hp128x64:   "128x64",
}

// String returns the resolution of the mode as WIDTHxHEIGHT.
func (m DisplayMode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("DisplayMode(%d)", int(m))
	}
	return modeNames[m]
}

// Resolution returns the width and height of the mode in pixels.
func (m DisplayMode) Resolution() (int, int) {
	if m < 0 || int(m) >= len(resolutions) {
		m = Basic64x32
	}
	return resolutions[m][0], resolutions[m][1]
}

// DisplayModeFromString parses a mode name as returned by String.
func DisplayModeFromString(s string) (DisplayMode, error) {
	for mode, name := range modeNames {
		if strings.EqualFold(s, name) {
			return DisplayMode(mode), nil
		}
	}
	return Basic64x32, fmt.Errorf("unsupported display mode '%s', valid modes: %s",
		s, strings.Join(modeNames[:], ", "))
}

// Display is a monochrome pixel grid.
type Display struct {
	mode   DisplayMode
	width  int
	height int
	pixels []bool // row major
}

func newDisplay(mode DisplayMode) *Display {
	d := &Display{}
	d.setMode(mode)
	return d
}

// Mode returns the active display mode.
func (d *Display) Mode() DisplayMode {
	return d.mode
}

// Width returns the width of the display in pixels.
func (d *Display) Width() int {
	return d.width
}

// Height returns the height of the display in pixels.
func (d *Display) Height() int {
	return d.height
}

// Pixel returns whether the pixel at the given coordinates is set.
// Coordinates outside of the display return false.
func (d *Display) Pixel(x, y int) bool {
	if x < 0 || y < 0 || x >= d.width || y >= d.height {
		return false
	}
	return d.pixels[y*d.width+x]
}

func (d *Display) setMode(mode DisplayMode) {
	d.mode = mode
	d.width, d.height = mode.Resolution()
	d.pixels = make([]bool, d.width*d.height)
}

func (d *Display) clear() {
	clear(d.pixels)
}

// drawRow XORs an 8 pixel sprite row at the given position, wrapping around
// the display edges. It returns true if a set pixel was cleared.
func (d *Display) drawRow(x, y int, row byte) bool {
	collision := false
	y %= d.height
	for col := range 8 {
		if row&(0x80>>col) == 0 {
			continue
		}
		i := y*d.width + (x+col)%d.width
		if d.pixels[i] {
			collision = true
		}
		d.pixels[i] = !d.pixels[i]
	}
	return collision
}
