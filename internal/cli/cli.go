// Package cli handles command line interface logic
package cli

import (
	"flag"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/retroenv/retrochip8/internal/config"
	"github.com/retroenv/retrochip8/internal/emulator"
	"github.com/retroenv/retrochip8/internal/options"
)

// ParseFlags parses command line flags and returns the program options
func ParseFlags() (options.Program, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	var opts options.Program
	readOptionFlags(flags, &opts)

	err := flags.Parse(os.Args[1:])
	args := flags.Args()
	if err != nil || len(args) == 0 {
		return opts, &UsageError{flags: flags}
	}

	if err := validateArgs(args); err != nil {
		return opts, err
	}

	if err := normalizeOptions(&opts); err != nil {
		return opts, err
	}

	opts.Input = args[0]
	return opts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: retrochip8 [options] <ROM file>\n\n")
	if e.flags != nil {
		e.flags.PrintDefaults()
	}
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && arg[0] == '-' {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after ROM file, please pass the ROM file as last argument", arg),
			}
		}
	}
	return nil
}

// normalizeOptions normalizes and validates option values
func normalizeOptions(opts *options.Program) error {
	opts.Frontend = strings.ToLower(opts.Frontend)
	frontends := config.Frontends()
	if !opts.List && !slices.Contains(frontends, opts.Frontend) {
		return fmt.Errorf("unsupported frontend: %s. Valid options: %s",
			opts.Frontend, strings.Join(frontends, ", "))
	}

	mode, err := emulator.DisplayModeFromString(opts.DisplayMode)
	if err != nil {
		return err
	}
	opts.DisplayMode = mode.String()

	switch {
	case opts.StepsPerFrame < 1:
		return fmt.Errorf("invalid speed %d: must be at least 1", opts.StepsPerFrame)
	case opts.FPS < 1:
		return fmt.Errorf("invalid frame rate %d: must be at least 1", opts.FPS)
	case opts.Scale < 1:
		return fmt.Errorf("invalid scale %d: must be at least 1", opts.Scale)
	}
	return nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Output, "o", "", "name of the output .asm file of the listing, printed on console if no name given")
	flags.StringVar(&opts.Frontend, "f", config.DefaultFrontend(), "frontend to run the ROM in ("+strings.Join(config.Frontends(), "/")+")")
	flags.StringVar(&opts.DisplayMode, "mode", emulator.Basic64x32.String(), "initial display mode (64x32/64x48/64x64/128x64)")
	flags.IntVar(&opts.StepsPerFrame, "speed", 10, "number of instructions executed per frame")
	flags.IntVar(&opts.FPS, "fps", 60, "frames per second")
	flags.IntVar(&opts.Scale, "scale", 10, "pixel scale of the window")
	flags.BoolVar(&opts.List, "list", false, "write an assembly listing of the ROM instead of running it")
	flags.BoolVar(&opts.Trace, "trace", false, "log every executed instruction, requires -debug")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
	flags.BoolVar(&opts.NoHexComments, "nohexcomments", false, "do not output opcode bytes as hex values in listing comments")
	flags.BoolVar(&opts.NoOffsets, "nooffsets", false, "do not output addresses in listing comments")
}
