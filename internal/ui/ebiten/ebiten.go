//go:build !headless

package ebiten

import (
	"context"
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/retroenv/retrochip8/internal/emulator"
	"github.com/retroenv/retrochip8/internal/ui"
	"github.com/retroenv/retrogolib/log"
)

const windowTitle = "retrochip8"

// keypad maps the keypad keys 0x0-0xF to keyboard keys.
var keypad = [emulator.KeyCount]ebiten.Key{
	ebiten.KeyDigit0, ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3,
	ebiten.KeyDigit4, ebiten.KeyDigit5, ebiten.KeyDigit6, ebiten.KeyDigit7,
	ebiten.KeyDigit8, ebiten.KeyDigit9, ebiten.KeyA, ebiten.KeyB,
	ebiten.KeyC, ebiten.KeyD, ebiten.KeyE, ebiten.KeyF,
}

// Screen is the graphical frontend. It implements ebiten.Game.
type Screen struct {
	driver *ui.Driver
	logger *log.Logger
	scale  int

	ctx    context.Context
	err    error // emulator error that ended the game loop
	redraw bool

	image  *ebiten.Image
	pixels []byte
}

// New returns a graphical frontend.
func New(emu *emulator.Emulator, cfg ui.Config, logger *log.Logger) (ui.Screen, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Screen{
		driver: ui.NewDriver(emu, cfg, logger),
		logger: logger,
		scale:  cfg.Scale,
	}, nil
}

// Run opens the window and runs the game loop until the window is closed,
// Escape is pressed, the context is cancelled or the emulator fails.
func (s *Screen) Run(ctx context.Context) error {
	s.ctx = ctx

	display := s.driver.Emulator().Display()
	ebiten.SetWindowSize(display.Width()*s.scale, display.Height()*s.scale)
	ebiten.SetWindowTitle(windowTitle)
	ebiten.SetWindowResizable(true)
	ebiten.SetTPS(s.driver.Config().FPS)

	if err := ebiten.RunGame(s); err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("running game loop: %w", err)
	}
	return s.err
}

// Update processes input and runs the instructions of one frame.
func (s *Screen) Update() error {
	if s.ctx.Err() != nil || ebiten.IsWindowBeingClosed() {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		s.logger.Debug("Quit requested")
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		if err := s.driver.Reset(); err != nil {
			s.err = err
			return ebiten.Termination
		}
	}

	emu := s.driver.Emulator()
	for key, k := range keypad {
		emu.SetKey(uint8(key), ebiten.IsKeyPressed(k))
	}

	redraw, err := s.driver.Frame()
	if err != nil {
		s.err = err
		return ebiten.Termination
	}
	s.redraw = s.redraw || redraw
	return nil
}

// Draw renders the display if it changed since the last frame.
func (s *Screen) Draw(screen *ebiten.Image) {
	display := s.driver.Emulator().Display()
	width, height := display.Width(), display.Height()

	if s.image == nil || s.image.Bounds().Dx() != width || s.image.Bounds().Dy() != height {
		s.image = ebiten.NewImage(width, height)
		s.pixels = make([]byte, width*height*4)
		s.redraw = true
	}

	if s.redraw {
		fillPixels(s.pixels, display)
		s.image.WritePixels(s.pixels)
		s.driver.FrameDrawn()
		s.redraw = false
	}

	screen.DrawImage(s.image, nil)
}

// Layout returns the display resolution, ebiten scales it to the window.
func (s *Screen) Layout(_, _ int) (int, int) {
	display := s.driver.Emulator().Display()
	return display.Width(), display.Height()
}
