// Package loader handles ROM file loading operations.
package loader

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/retrochip8/internal/emulator"
)

// ErrEmptyProgram is returned for ROM files that contain no data.
var ErrEmptyProgram = errors.New("program is empty")

// Loader handles loading ROM files from disk.
type Loader struct{}

// New creates a new ROM loader.
func New() *Loader {
	return &Loader{}
}

// Load reads the ROM file at the given path and returns the program bytes.
func (l *Loader) Load(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	return l.LoadReader(file)
}

// LoadReader reads a raw ROM without any header from the reader and
// returns the program bytes. The program has to fit into the program
// space of the emulator memory.
func (l *Loader) LoadReader(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, emulator.MaxProgramSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading ROM: %w", err)
	}

	switch {
	case len(data) == 0:
		return nil, ErrEmptyProgram
	case len(data) > emulator.MaxProgramSize:
		return nil, fmt.Errorf("%w: ROM exceeds %d bytes", emulator.ErrProgramTooLarge, emulator.MaxProgramSize)
	}

	return data, nil
}
