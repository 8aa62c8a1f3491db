// Package ebiten implements a graphical frontend that shows the display
// in a scaled window.
package ebiten

import (
	"image/color"

	"github.com/retroenv/retrochip8/internal/emulator"
)

var (
	foreground = color.RGBA{R: 0xE0, G: 0xE0, B: 0xE0, A: 0xFF}
	background = color.RGBA{R: 0x10, G: 0x10, B: 0x10, A: 0xFF}
)

// fillPixels converts the display to RGBA pixel data. buf has to hold
// 4 bytes for every pixel of the display.
func fillPixels(buf []byte, display *emulator.Display) {
	width := display.Width()
	for y := range display.Height() {
		for x := range width {
			c := background
			if display.Pixel(x, y) {
				c = foreground
			}
			i := (y*width + x) * 4
			buf[i] = c.R
			buf[i+1] = c.G
			buf[i+2] = c.B
			buf[i+3] = c.A
		}
	}
}
