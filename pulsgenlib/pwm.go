// Package pulsgenlib provides ready-made waveform drivers built on the
// pulse generator engine: a continuous PWM output and a STEP/DIR axis
// driver for stepper motion.
package pulsgenlib

import (
	"errors"
	"time"

	"github.com/yazici/arisc-firmware/gpio"
	"github.com/yazici/arisc-firmware/pulsgen"
)

var (
	errBusy   = errors.New("pulsgenlib: channel busy")
	errPeriod = errors.New("pulsgenlib: period out of range")
	errDuty   = errors.New("pulsgenlib: duty cycle over 100")
)

// maxNs is the longest duration expressible on the wire: durations
// travel as 32-bit nanosecond counts.
const maxNs = 0xFFFFFFFF

// PWM drives one pin with a continuous pulse train of configurable period
// and duty cycle.
type PWM struct {
	gen *pulsgen.Generator
	ch  uint8
}

// NewPWM binds channel ch of the generator to a pin and returns it wrapped
// as a PWM output. The pin starts at the inactive level.
func NewPWM(gen *pulsgen.Generator, ch uint8, port gpio.Port, pin uint8, inverted bool) *PWM {
	gen.PinSetup(ch, port, pin, inverted)
	return &PWM{gen: gen, ch: ch}
}

// Start begins an endless pulse train. dutyPercent is the share of the
// period the pin spends at the active level. The signal runs until Stop or
// a watchdog abort; starting a busy channel is an error.
func (p *PWM) Start(period time.Duration, dutyPercent uint8) error {
	if dutyPercent > 100 {
		return errDuty
	}
	if period <= 0 || period.Nanoseconds() > maxNs {
		return errPeriod
	}
	if p.gen.State(p.ch) {
		return errBusy
	}

	holdNs := uint32(period.Nanoseconds() * int64(dutyPercent) / 100)
	setupNs := uint32(period.Nanoseconds()) - holdNs
	p.gen.TaskAdd(p.ch, false, 0, setupNs, holdNs, 0)
	return nil
}

// Stop ends the pulse train once the pin returns to the inactive level; a
// started period finishes cleanly.
func (p *PWM) Stop() {
	p.gen.Abort(p.ch, true)
}

// Running reports whether the channel is emitting.
func (p *PWM) Running() bool {
	return p.gen.State(p.ch)
}
