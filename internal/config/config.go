// Package config handles application configuration and setup
package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/retroenv/retrochip8/internal/ui"
	"github.com/retroenv/retrochip8/internal/ui/terminal"
	"github.com/retroenv/retrogolib/log"
)

const (
	// EbitenFrontend is the name of the graphical frontend.
	EbitenFrontend = "ebiten"
	// TerminalFrontend is the name of the terminal frontend.
	TerminalFrontend = "terminal"
)

// frontends contains the constructors of all frontends of the build.
var frontends = map[string]ui.Constructor{
	TerminalFrontend: terminal.New,
}

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// CreateFrontendConstructor returns the constructor of the named frontend.
func CreateFrontendConstructor(name string) (ui.Constructor, error) {
	constructor, ok := frontends[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unsupported frontend '%s'", name)
	}
	return constructor, nil
}

// Frontends returns the sorted names of all frontends of the build.
func Frontends() []string {
	names := make([]string, 0, len(frontends))
	for name := range frontends {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// DefaultFrontend returns the graphical frontend if it is part of the
// build and the terminal frontend otherwise.
func DefaultFrontend() string {
	if _, ok := frontends[EbitenFrontend]; ok {
		return EbitenFrontend
	}
	return TerminalFrontend
}
