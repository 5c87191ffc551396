package pulsgenlib

import (
	"time"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/xerrors"

	"github.com/yazici/arisc-firmware/gpio"
	"github.com/yazici/arisc-firmware/pulsgen"
)

// StepDirConfig describes the pin binding and timing of one STEP/DIR axis.
type StepDirConfig struct {
	// StepChannel and DirChannel are the generator channels to claim. They
	// must differ.
	StepChannel uint8
	DirChannel  uint8

	StepPort     gpio.Port
	StepPin      uint8
	StepInverted bool

	DirPort     gpio.Port
	DirPin      uint8
	DirInverted bool

	// StepPeriod is the full period of one step pulse, 50% duty.
	StepPeriod time.Duration
	// DirSetup is how long a direction change settles before the first
	// step pulse of the new segment.
	DirSetup time.Duration
}

// Validate reports every problem with the configuration at once.
func (cfg *StepDirConfig) Validate() error {
	var result *multierror.Error
	if cfg.StepChannel == cfg.DirChannel {
		result = multierror.Append(result, xerrors.Errorf(
			"pulsgenlib: step and dir on the same channel %d", cfg.StepChannel))
	}
	if cfg.StepChannel >= pulsgen.CHCount || cfg.DirChannel >= pulsgen.CHCount {
		result = multierror.Append(result, xerrors.Errorf(
			"pulsgenlib: channel out of range (have %d)", pulsgen.CHCount))
	}
	if cfg.StepPeriod <= 0 || cfg.StepPeriod.Nanoseconds()/2 > maxNs {
		result = multierror.Append(result, xerrors.Errorf(
			"pulsgenlib: step period %s: %w", cfg.StepPeriod, errPeriod))
	}
	if cfg.DirSetup < 0 || cfg.DirSetup.Nanoseconds() > maxNs {
		result = multierror.Append(result, xerrors.Errorf(
			"pulsgenlib: dir setup %s: %w", cfg.DirSetup, errPeriod))
	}
	return result.ErrorOrNil()
}

// StepDir coordinates a STEP channel and a DIR channel into one stepper
// axis. A direction flip runs on the DIR channel while the step burst on
// the STEP channel waits out DirSetup as its start delay. One segment runs
// at a time: segments are not queued behind a running one.
type StepDir struct {
	gen *pulsgen.Generator
	cfg StepDirConfig

	dirHigh bool
}

// NewStepDir validates the configuration, binds both pins and returns the
// axis with direction at its reset level.
func NewStepDir(gen *pulsgen.Generator, cfg StepDirConfig) (*StepDir, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	gen.PinSetup(cfg.StepChannel, cfg.StepPort, cfg.StepPin, cfg.StepInverted)
	gen.PinSetup(cfg.DirChannel, cfg.DirPort, cfg.DirPin, cfg.DirInverted)
	return &StepDir{gen: gen, cfg: cfg}, nil
}

// Move emits steps pulses in the given direction. A direction change is
// emitted on the DIR channel first, and the burst start is delayed by
// DirSetup so the drive samples the new level. Move refuses to queue while
// a previous segment is still running.
func (a *StepDir) Move(steps uint32, dirHigh bool) error {
	if steps == 0 {
		return nil
	}
	if a.Busy() {
		return errBusy
	}

	half := uint32(a.cfg.StepPeriod.Nanoseconds() / 2)
	delay := uint32(0)

	if dirHigh != a.dirHigh {
		// One toggle moves the DIR pin to the opposite level and leaves
		// it there.
		dirHalf := uint32(a.cfg.DirSetup.Nanoseconds() / 2)
		a.gen.TaskAdd(a.cfg.DirChannel, false, 1, dirHalf, dirHalf, 0)
		a.dirHigh = dirHigh
		delay = uint32(a.cfg.DirSetup.Nanoseconds())
	}

	// Two edges per step; moving with DIR low counts the position down.
	a.gen.TaskAdd(a.cfg.StepChannel, !dirHigh, steps*2, half, half, delay)
	return nil
}

// Busy reports whether either channel still has work.
func (a *StepDir) Busy() bool {
	return a.gen.State(a.cfg.StepChannel) || a.gen.State(a.cfg.DirChannel)
}

// Halt aborts both channels, finishing any step pulse already at its
// active level so no partial step reaches the drive.
func (a *StepDir) Halt() {
	a.gen.Abort(a.cfg.StepChannel, true)
	a.gen.Abort(a.cfg.DirChannel, true)
}

// Position returns the net step count since reset: edge pairs signed by
// direction.
func (a *StepDir) Position() int32 {
	return a.gen.Cnt(a.cfg.StepChannel) / 2
}

// SetPosition overwrites the position counter.
func (a *StepDir) SetPosition(steps int32) {
	a.gen.SetCnt(a.cfg.StepChannel, steps*2)
}
