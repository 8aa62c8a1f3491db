// Package terminal implements a frontend that renders the display as text
// in a terminal and reads the keypad from the keyboard in raw mode.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/retroenv/retrochip8/internal/emulator"
	"github.com/retroenv/retrochip8/internal/ui"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
	"golang.org/x/term"
)

// Terminals only report key presses, a key counts as held until no
// repeat arrived for this duration.
const holdDuration = 150 * time.Millisecond

const (
	keyEscape = 0x1b
	keyCtrlC  = 0x03
)

const (
	clearScreen = "\x1b[2J"
	cursorHome  = "\x1b[H"
	hideCursor  = "\x1b[?25l"
	showCursor  = "\x1b[?25h"
)

// ErrNotTerminal is returned when standard input is not connected to a terminal.
var ErrNotTerminal = errors.New("standard input is not a terminal")

// Screen is the terminal frontend.
type Screen struct {
	driver *ui.Driver
	logger *log.Logger

	in  io.Reader
	out io.Writer
	fd  int // file descriptor switched to raw mode, -1 if none

	held      set.Set[uint8]
	releaseAt time.Time
}

// New returns a terminal frontend that uses standard input and output.
func New(emu *emulator.Emulator, cfg ui.Config, logger *log.Logger) (ui.Screen, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, ErrNotTerminal
	}
	return newScreen(emu, cfg, logger, os.Stdin, os.Stdout, fd), nil
}

func newScreen(emu *emulator.Emulator, cfg ui.Config, logger *log.Logger,
	in io.Reader, out io.Writer, fd int) *Screen {

	return &Screen{
		driver: ui.NewDriver(emu, cfg, logger),
		logger: logger,
		in:     in,
		out:    out,
		fd:     fd,
		held:   set.New[uint8](),
	}
}

// Run drives the emulator until Escape or Ctrl-C is pressed, the context
// is cancelled or the emulator fails.
func (s *Screen) Run(ctx context.Context) error {
	if s.fd >= 0 {
		state, err := term.MakeRaw(s.fd)
		if err != nil {
			return fmt.Errorf("setting terminal raw mode: %w", err)
		}
		defer func() { _ = term.Restore(s.fd, state) }()
	}

	if _, err := io.WriteString(s.out, clearScreen+hideCursor); err != nil {
		return fmt.Errorf("preparing terminal: %w", err)
	}
	defer func() { _, _ = io.WriteString(s.out, showCursor) }()

	input := make(chan byte, 16)
	done := make(chan struct{})
	defer close(done)
	go readInput(s.in, input, done)

	ticker := time.NewTicker(s.driver.Config().FrameDuration())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case b, ok := <-input:
			if !ok {
				return nil
			}
			if b == keyEscape || b == keyCtrlC {
				s.logger.Debug("Quit requested")
				return nil
			}
			s.press(b, time.Now())

		case now := <-ticker.C:
			if err := s.frame(now); err != nil {
				return err
			}
		}
	}
}

func (s *Screen) frame(now time.Time) error {
	s.releaseExpired(now)

	redraw, err := s.driver.Frame()
	if err != nil {
		return err
	}
	if !redraw {
		return nil
	}

	if err := Render(s.out, s.driver.Emulator().Display()); err != nil {
		return fmt.Errorf("rendering display: %w", err)
	}
	s.driver.FrameDrawn()
	return nil
}

func (s *Screen) press(b byte, now time.Time) {
	key, ok := ui.KeyForRune(rune(b))
	if !ok {
		return
	}
	s.held[key] = struct{}{}
	s.releaseAt = now.Add(holdDuration)
	s.driver.Emulator().SetKey(key, true)
}

func (s *Screen) releaseExpired(now time.Time) {
	if len(s.held) == 0 || now.Before(s.releaseAt) {
		return
	}
	emu := s.driver.Emulator()
	for key := range s.held {
		emu.SetKey(key, false)
		delete(s.held, key)
	}
}

// readInput forwards the bytes read from r until reading fails or done
// is closed.
func readInput(r io.Reader, input chan<- byte, done <-chan struct{}) {
	defer close(input)

	buf := make([]byte, 16)
	for {
		n, err := r.Read(buf)
		for _, b := range buf[:n] {
			select {
			case input <- b:
			case <-done:
				return
			}
		}
		if err != nil {
			return
		}
	}
}

// Render writes the display framed by box drawing characters, set pixels
// are shown as '*'. The cursor is moved to the home position first so
// that consecutive frames overwrite each other.
func Render(w io.Writer, display *emulator.Display) error {
	width := display.Width()
	border := strings.Repeat("─", width)

	var sb strings.Builder
	sb.WriteString(cursorHome)
	sb.WriteString("┌" + border + "┐\r\n")

	for y := range display.Height() {
		sb.WriteString("│")
		for x := range width {
			if display.Pixel(x, y) {
				sb.WriteByte('*')
			} else {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString("│\r\n")
	}

	sb.WriteString("└" + border + "┘\r\n")

	_, err := io.WriteString(w, sb.String())
	return err
}
