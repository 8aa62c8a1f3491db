// Package listing writes assembly listings of CHIP-8 programs.
package listing

import (
	"fmt"
	"io"
	"strings"

	"github.com/retroenv/retrochip8/internal/emulator"
	"github.com/retroenv/retrochip8/internal/instruction"
)

const bytesPerLine = 8

// Options controls the listing output.
type Options struct {
	HexComments    bool // output opcode bytes as hex values in comments
	OffsetComments bool // output memory addresses in comments
}

// DefaultOptions returns the default listing options.
func DefaultOptions() Options {
	return Options{
		HexComments:    true,
		OffsetComments: true,
	}
}

type writer struct {
	w       io.Writer
	opts    Options
	tracer  *tracer
	program []byte
}

// Write writes an assembly listing of the program. Instructions that are
// reachable from the program start are written as code with labels for
// their branch destinations, all other bytes are written as data.
func Write(w io.Writer, program []byte, opts Options) error {
	lw := &writer{
		w:       w,
		opts:    opts,
		tracer:  trace(program),
		program: program,
	}
	return lw.write()
}

func (w *writer) write() error {
	if _, err := fmt.Fprintf(w.w, "; CHIP-8 ROM Disassembly\n"); err != nil {
		return fmt.Errorf("writing header comment: %w", err)
	}
	if _, err := fmt.Fprintf(w.w, "; Program starts at $%03X in CHIP-8 memory space\n\n", emulator.ProgramStart); err != nil {
		return fmt.Errorf("writing memory space comment: %w", err)
	}
	if _, err := fmt.Fprintf(w.w, ".org $%03X\n\n", emulator.ProgramStart); err != nil {
		return fmt.Errorf("writing org directive: %w", err)
	}

	for offset := 0; offset < len(w.program); {
		address := uint16(emulator.ProgramStart + offset)

		if label, ok := w.tracer.labels[address]; ok {
			if _, err := fmt.Fprintf(w.w, "%s:\n", label); err != nil {
				return fmt.Errorf("writing label %s: %w", label, err)
			}
		}

		if w.tracer.isCode(address) {
			if err := w.writeCode(address, w.program[offset:offset+instruction.Size]); err != nil {
				return err
			}
			offset += instruction.Size
			continue
		}

		n := w.dataLength(offset)
		if err := w.writeData(address, w.program[offset:offset+n]); err != nil {
			return err
		}
		offset += n
	}

	return nil
}

// dataLength returns the number of data bytes starting at the offset that
// can be written in one line. A line ends before the next label or code.
func (w *writer) dataLength(offset int) int {
	n := 1
	for ; n < bytesPerLine && offset+n < len(w.program); n++ {
		address := uint16(emulator.ProgramStart + offset + n)
		if _, ok := w.tracer.labels[address]; ok {
			break
		}
		if w.tracer.isCode(address) {
			break
		}
	}
	return n
}

func (w *writer) writeCode(address uint16, data []byte) error {
	ins, err := instruction.DecodeBytes(data[0], data[1])
	if err != nil {
		return fmt.Errorf("decoding instruction at $%04X: %w", address, err)
	}

	line := "    " + w.code(ins)
	if err := w.writeLine(line, w.comment(address, data)); err != nil {
		return fmt.Errorf("writing code: %w", err)
	}
	return nil
}

// code returns the instruction text, branch and index destinations that
// have a label are referenced by name.
func (w *writer) code(ins instruction.Instruction) string {
	switch ins.Op {
	case instruction.Jump, instruction.Call:
		if label, ok := w.tracer.labels[ins.Address]; ok {
			return ins.Name() + " " + label
		}
	case instruction.LoadIndex:
		if label, ok := w.tracer.labels[ins.Address]; ok {
			return ins.Name() + " I, " + label
		}
	}
	return ins.String()
}

func (w *writer) writeData(address uint16, data []byte) error {
	var buf strings.Builder
	fmt.Fprintf(&buf, "    .byte $%02X", data[0])
	for _, b := range data[1:] {
		fmt.Fprintf(&buf, ", $%02X", b)
	}

	if err := w.writeLine(buf.String(), w.comment(address, data)); err != nil {
		return fmt.Errorf("writing data: %w", err)
	}
	return nil
}

func (w *writer) writeLine(line, comment string) error {
	if comment == "" {
		_, err := fmt.Fprintf(w.w, "%s\n", line)
		return err
	}
	_, err := fmt.Fprintf(w.w, "%-32s ; %s\n", line, comment)
	return err
}

func (w *writer) comment(address uint16, data []byte) string {
	var comments []string
	if w.opts.OffsetComments {
		comments = []string{fmt.Sprintf("$%04X", address)}
	}
	if w.opts.HexComments {
		hex := make([]string, len(data))
		for i, b := range data {
			hex[i] = fmt.Sprintf("%02X", b)
		}
		comments = append(comments, strings.Join(hex, " "))
	}
	return strings.Join(comments, "  ")
}
