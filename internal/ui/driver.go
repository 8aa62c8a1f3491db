package ui

import (
	"fmt"
	"time"

	"github.com/retroenv/retrochip8/internal/emulator"
	"github.com/retroenv/retrogolib/log"
)

const statsInterval = time.Second

// Driver advances an emulator frame by frame and keeps execution
// statistics. It is used by the frontends from their frame loop.
type Driver struct {
	emu    *emulator.Emulator
	cfg    Config
	logger *log.Logger
	clock  func() time.Time

	steps     uint64 // instructions since the last statistics report
	draws     uint64 // frames drawn since the last statistics report
	lastStats time.Time
}

// NewDriver returns a driver for the given emulator.
func NewDriver(emu *emulator.Emulator, cfg Config, logger *log.Logger) *Driver {
	return newDriver(emu, cfg, logger, time.Now)
}

func newDriver(emu *emulator.Emulator, cfg Config, logger *log.Logger, clock func() time.Time) *Driver {
	return &Driver{
		emu:       emu,
		cfg:       cfg,
		logger:    logger,
		clock:     clock,
		lastStats: clock(),
	}
}

// Emulator returns the driven emulator.
func (d *Driver) Emulator() *emulator.Emulator {
	return d.emu
}

// Config returns the frontend settings.
func (d *Driver) Config() Config {
	return d.cfg
}

// Frame executes the configured number of instructions and returns
// whether the display has to be redrawn. The first failing step ends the
// frame and its error is returned.
func (d *Driver) Frame() (bool, error) {
	for range d.cfg.StepsPerFrame {
		if err := d.emu.Step(); err != nil {
			return false, err
		}
		d.steps++
	}

	d.reportStats()
	return d.emu.Redraw(), nil
}

// FrameDrawn marks the current display content as presented.
func (d *Driver) FrameDrawn() {
	d.emu.ClearRedraw()
	d.draws++
}

// Reset restores the initial machine state and loads the program again.
func (d *Driver) Reset() error {
	d.emu.Reset()
	if err := d.emu.LoadProgram(d.cfg.Program); err != nil {
		return fmt.Errorf("reloading program: %w", err)
	}
	d.logger.Info("Emulator reset")
	return nil
}

func (d *Driver) reportStats() {
	now := d.clock()
	elapsed := now.Sub(d.lastStats)
	if elapsed < statsInterval {
		return
	}

	seconds := elapsed.Seconds()
	d.logger.Debug("Frame statistics",
		log.Int("ips", int(float64(d.steps)/seconds)),
		log.Int("dps", int(float64(d.draws)/seconds)))

	d.steps = 0
	d.draws = 0
	d.lastStats = now
}
