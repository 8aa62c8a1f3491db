// Package ui defines the contract between the emulator and its frontends
// and contains the frame driving logic that all frontends share.
package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/retroenv/retrochip8/internal/emulator"
	"github.com/retroenv/retrogolib/log"
)

// Screen is a frontend that presents an emulator and feeds it with input.
type Screen interface {
	// Run drives the emulator until the user quits, the context is
	// cancelled or the emulator fails.
	Run(ctx context.Context) error
}

// Constructor creates a frontend that takes ownership of the emulator.
type Constructor func(emu *emulator.Emulator, cfg Config, logger *log.Logger) (Screen, error)

// Config contains the frontend settings.
type Config struct {
	StepsPerFrame int    // instructions executed per displayed frame
	FPS           int    // frames per second
	Scale         int    // pixel scale of graphical frontends
	Program       []byte // program that is loaded again on reset
}

// DefaultConfig returns the default frontend settings.
func DefaultConfig() Config {
	return Config{
		StepsPerFrame: 10,
		FPS:           60,
		Scale:         10,
	}
}

var errInvalidConfig = errors.New("invalid frontend config")

// Validate checks that all rates of the config are usable.
func (c Config) Validate() error {
	switch {
	case c.StepsPerFrame < 1:
		return fmt.Errorf("%w: steps per frame must be positive", errInvalidConfig)
	case c.FPS < 1:
		return fmt.Errorf("%w: frame rate must be positive", errInvalidConfig)
	case c.Scale < 1:
		return fmt.Errorf("%w: scale must be positive", errInvalidConfig)
	}
	return nil
}

// FrameDuration returns the time between two frames.
func (c Config) FrameDuration() time.Duration {
	return time.Second / time.Duration(c.FPS)
}
