// Package fileprocessor handles file loading and processing operations
package fileprocessor

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/pipeline"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
)

// newWriter opens the listing output, tests replace it.
var newWriter = createWriter

// ProcessFile handles the complete file processing workflow
func ProcessFile(ctx context.Context, logger *log.Logger, opts options.Program) (err error) {
	var writer io.Writer
	if opts.List {
		w, err := newWriter(opts)
		if err != nil {
			return fmt.Errorf("creating writer: %w", err)
		}
		if closer, ok := w.(io.Closer); ok && w != os.Stdout {
			defer func() {
				if closeErr := closer.Close(); closeErr != nil && err == nil {
					err = fmt.Errorf("closing output file %s: %w", opts.Output, closeErr)
				}
			}()
		}
		writer = w
	}

	pipe := pipeline.New(logger)
	if err := pipe.Execute(ctx, opts, writer); err != nil {
		return fmt.Errorf("processing %s: %w", opts.Input, err)
	}
	return nil
}

func createWriter(opts options.Program) (io.Writer, error) {
	if opts.Output == "" {
		return os.Stdout, nil
	}

	file, err := os.Create(opts.Output)
	if err != nil {
		return nil, fmt.Errorf("creating output file %s: %w", opts.Output, err)
	}
	return file, nil
}

// PrintBanner prints application version information
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}

	logger.Info("retrochip8 - CHIP-8 emulator",
		log.String("version", buildinfo.Version(version, commit, date)))
}
