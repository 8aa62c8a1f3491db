// Package pipeline orchestrates loading a ROM and running or listing it.
package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/retroenv/retrochip8/internal/config"
	"github.com/retroenv/retrochip8/internal/emulator"
	"github.com/retroenv/retrochip8/internal/listing"
	"github.com/retroenv/retrochip8/internal/loader"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/ui"
	"github.com/retroenv/retrogolib/log"
)

// Pipeline orchestrates the complete workflow for a ROM file.
type Pipeline struct {
	logger *log.Logger
	loader *loader.Loader

	createFrontend func(name string) (ui.Constructor, error)
}

// New creates a new pipeline.
func New(logger *log.Logger) *Pipeline {
	return &Pipeline{
		logger:         logger,
		loader:         loader.New(),
		createFrontend: config.CreateFrontendConstructor,
	}
}

// Execute loads the ROM file of the options and processes it.
// The writer receives the listing in listing mode.
func (p *Pipeline) Execute(ctx context.Context, opts options.Program, writer io.Writer) error {
	program, err := p.loader.Load(opts.Input)
	if err != nil {
		return fmt.Errorf("loading ROM: %w", err)
	}
	p.logger.Debug("ROM loaded",
		log.String("file", opts.Input),
		log.Int("size", len(program)))

	return p.ExecuteWithProgram(ctx, program, opts, writer)
}

// ExecuteWithProgram processes an already loaded program. It writes the
// listing of the program if listing mode is enabled and runs the program
// in the selected frontend otherwise.
func (p *Pipeline) ExecuteWithProgram(ctx context.Context, program []byte, opts options.Program, writer io.Writer) error {
	if opts.List {
		return p.list(program, opts, writer)
	}
	return p.run(ctx, program, opts)
}

func (p *Pipeline) list(program []byte, opts options.Program, writer io.Writer) error {
	listingOpts := listing.Options{
		HexComments:    !opts.NoHexComments,
		OffsetComments: !opts.NoOffsets,
	}
	if err := listing.Write(writer, program, listingOpts); err != nil {
		return fmt.Errorf("writing listing: %w", err)
	}
	return nil
}

func (p *Pipeline) run(ctx context.Context, program []byte, opts options.Program) error {
	mode, err := emulator.DisplayModeFromString(opts.DisplayMode)
	if err != nil {
		return err
	}

	emu := emulator.New(
		emulator.WithDisplayMode(mode),
		emulator.WithLogger(p.logger),
		emulator.WithTrace(opts.Trace),
	)
	if err := emu.LoadProgram(program); err != nil {
		return fmt.Errorf("loading program: %w", err)
	}

	constructor, err := p.createFrontend(opts.Frontend)
	if err != nil {
		return fmt.Errorf("creating frontend constructor: %w", err)
	}

	cfg := ui.Config{
		StepsPerFrame: opts.StepsPerFrame,
		FPS:           opts.FPS,
		Scale:         opts.Scale,
		Program:       program,
	}
	screen, err := constructor(emu, cfg, p.logger)
	if err != nil {
		return fmt.Errorf("creating %s frontend: %w", opts.Frontend, err)
	}

	p.logger.Info("Running ROM",
		log.String("frontend", opts.Frontend),
		log.Stringer("mode", mode))

	if err := screen.Run(ctx); err != nil {
		return fmt.Errorf("running emulator: %w", err)
	}
	return nil
}
