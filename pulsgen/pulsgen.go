// Package pulsgen implements the real-time multi-channel pulse generator.
//
// Each channel drives one GPIO pin with precisely timed edges: square
// waves, PWM, or STEP/DIR motion signals. A channel executes one task at a
// time (emit N toggles with given setup/hold half-periods, or run forever)
// and owns a small FIFO of queued follow-on tasks so edges flow seamlessly
// between motion segments. A global watchdog aborts every channel when no
// command arrives in time.
//
// The engine is driven cooperatively: the host calls BaseThread in its
// main loop, and each invocation commits at most one edge per channel and
// returns. Nothing here blocks, sleeps, or allocates. The engine never
// fires an edge before its deadline; how late an edge fires is bounded
// only by how promptly the host calls BaseThread.
//
// All state is owned by the loop calling BaseThread. Message delivery must
// be marshalled into the same execution context; only the Cnt and
// TasksDone getters tolerate racing reads from elsewhere.
package pulsgen

import (
	"github.com/yazici/arisc-firmware/gpio"
	"github.com/yazici/arisc-firmware/timer"
)

const (
	// CHCount is the number of pulse generator channels.
	CHCount = 16
	// FIFOSize is the task queue depth of one channel, the live task
	// included.
	FIFOSize = 8
)

// infiniteToggles marks a never-ending task; the remaining-toggles check
// is skipped for those.
const infiniteToggles = 0xFFFFFFFF

// TickSource yields the monotonically increasing 64-bit system tick.
type TickSource interface {
	Count64() uint64
}

// PinDriver is the GPIO surface the generator commits edges through. Every
// call must be externally observable before it returns. *gpio.Driver
// implements it.
type PinDriver interface {
	SetupForOutput(port gpio.Port, pin uint8)
	// Get returns the data register bits selected by mask, unshifted.
	Get(port gpio.Port, mask uint32) uint32
	// Set drives the pins selected by mask high.
	Set(port gpio.Port, mask uint32)
	// Clear drives pins low by ANDing the data register with keep, the
	// precomputed complement of the pin mask.
	Clear(port gpio.Port, keep uint32)
}

// fifoItem is one queued task.
type fifoItem struct {
	used    bool
	dir     bool
	toggles uint32
	setupNs uint32
	holdNs  uint32
	delayNs uint32
}

// channel is the per-channel generator state.
type channel struct {
	// pin binding, cached at setup time
	port    gpio.Port
	mask    uint32
	maskNot uint32
	invMask uint32 // equals mask on inverted channels, else 0

	// live task
	task         bool
	infinite     bool
	dir          bool // false: cnt counts up, true: down
	togglesTotal uint32
	togglesLeft  uint32
	setupTicks   uint32
	holdTicks    uint32
	dueTick      uint64

	// one-shot abort latches
	abortOnSetup bool
	abortOnHold  bool

	cnt       int32
	tasksDone uint32

	fifo    [FIFOSize]fifoItem
	fifoPos uint8
}

// driveActive commits the edge to the active level: raw high normally, raw
// low on inverted channels.
func (ch *channel) driveActive(pins PinDriver) {
	if ch.invMask != 0 {
		pins.Clear(ch.port, ch.maskNot)
	} else {
		pins.Set(ch.port, ch.mask)
	}
}

func (ch *channel) driveInactive(pins PinDriver) {
	if ch.invMask != 0 {
		pins.Set(ch.port, ch.mask)
	} else {
		pins.Clear(ch.port, ch.maskNot)
	}
}

// Generator is the pulse engine. Construct with New; one Generator owns
// all channel state and must only be touched from the loop that calls
// BaseThread.
type Generator struct {
	ticks TickSource
	pins  PinDriver
	bus   replyBus

	ch    [CHCount]channel
	maxID uint8
	tick  uint64

	wdTicks    uint64
	wdDeadline uint64 // 0 disarms the watchdog
}

// New returns a generator committing edges through pins and scheduling
// against ticks. The tick source must already be started by the host.
func New(ticks TickSource, pins PinDriver) *Generator {
	return &Generator{ticks: ticks, pins: pins}
}

// PinSetup binds a channel to a GPIO pin and drives it to the inactive
// level. The pin mask and its complement are cached here so edge commits
// never recompute them.
func (g *Generator) PinSetup(c uint8, port gpio.Port, pin uint8, inverted bool) {
	g.pins.SetupForOutput(port, pin)

	ch := &g.ch[c]
	ch.port = port
	ch.mask = 1 << pin
	ch.maskNot = ^ch.mask
	if inverted {
		ch.invMask = ch.mask
	} else {
		ch.invMask = 0
	}
	ch.driveInactive(g.pins)
}

// TaskAdd queues a task on a channel. An idle channel starts the task
// immediately (relative to the last observed tick); a busy channel queues
// it in the first free FIFO slot after the head. When the FIFO is full the
// task is silently dropped — callers gate on State or accept the drop.
//
// toggles is the number of edges to emit; zero means run until aborted.
// dir selects the step counter direction: false counts up, true counts
// down. The setup, hold and start-delay durations are in nanoseconds.
func (g *Generator) TaskAdd(c uint8, dir bool, toggles, setupNs, holdNs, delayNs uint32) {
	ch := &g.ch[c]

	if ch.task {
		for i := uint8(1); i <= FIFOSize; i++ {
			pos := (ch.fifoPos + i) % FIFOSize
			if ch.fifo[pos].used {
				continue
			}
			ch.fifo[pos] = fifoItem{
				used:    true,
				dir:     dir,
				toggles: toggles,
				setupNs: setupNs,
				holdNs:  holdNs,
				delayNs: delayNs,
			}
			return
		}
		return
	}

	// The head slot stays marked while its task is live.
	ch.fifo[ch.fifoPos].used = true
	g.taskSetup(c, dir, toggles, setupNs, holdNs, delayNs)
}

// taskSetup installs a task as the channel's live task.
func (g *Generator) taskSetup(c uint8, dir bool, toggles, setupNs, holdNs, delayNs uint32) {
	if c > g.maxID {
		g.maxID = c
	}

	ch := &g.ch[c]
	ch.task = true
	ch.infinite = toggles == 0
	ch.dir = dir
	if toggles == 0 {
		ch.togglesTotal = infiniteToggles
	} else {
		ch.togglesTotal = toggles
	}
	ch.togglesLeft = ch.togglesTotal
	ch.abortOnSetup = false
	ch.abortOnHold = false

	ch.setupTicks = uint32(timer.TicksFromNs(setupNs))
	ch.holdTicks = uint32(timer.TicksFromNs(holdNs))

	ch.dueTick = g.tick
	if delayNs != 0 {
		ch.dueTick += timer.TicksFromNs(delayNs)
	}
}

// BaseThread runs one scheduler pass: read the tick, fire the watchdog if
// it expired, and for every active channel commit the due edge, retire the
// finished task, or load its FIFO successor. Call it from the host main
// loop as often as the tightest half-period demands.
func (g *Generator) BaseThread() {
	g.tick = g.ticks.Count64()

	abortAll := g.wdDeadline != 0 && g.tick > g.wdDeadline

	for c := int(g.maxID); c >= 0; c-- {
		ch := &g.ch[c]

		if !ch.task {
			continue
		}
		if abortAll {
			g.abort(uint8(c))
			continue
		}
		if g.tick < ch.dueTick {
			continue
		}

		if ch.togglesLeft == 0 && !ch.infinite {
			// Task finished: release the head slot and either chain into
			// the next queued task or idle the channel. The successor's
			// first edge waits for the next pass, which bounds the work
			// done per channel per pass.
			ch.fifo[ch.fifoPos].used = false
			ch.fifoPos = (ch.fifoPos + 1) % FIFOSize
			ch.tasksDone++

			if next := &ch.fifo[ch.fifoPos]; next.used {
				g.taskSetup(uint8(c), next.dir, next.toggles, next.setupNs, next.holdNs, next.delayNs)
			} else {
				ch.task = false
				if g.maxID != 0 && uint8(c) == g.maxID {
					g.maxID--
				}
			}
			continue
		}

		if g.pins.Get(ch.port, ch.mask)^ch.invMask != 0 {
			// Active half over: commit the edge to inactive.
			ch.driveInactive(g.pins)
			ch.cnt += ch.step()
			if ch.abortOnHold {
				g.abort(uint8(c))
				continue
			}
			ch.dueTick += uint64(ch.setupTicks)
		} else {
			// Setup half over: commit the edge to active.
			ch.driveActive(g.pins)
			ch.cnt += ch.step()
			if ch.abortOnSetup {
				g.abort(uint8(c))
				continue
			}
			ch.dueTick += uint64(ch.holdTicks)
		}

		ch.togglesLeft--
	}

	if abortAll {
		// One expiry aborts everything exactly once; the watchdog stays
		// disarmed until reconfigured.
		g.wdDeadline = 0
	}
}

// Abort terminates the channel's task at a chosen phase of the waveform.
// With onHold the task ends when the current active half completes,
// leaving the pin inactive; without it the task ends when the current
// inactive half completes, leaving the pin active. A channel not in the
// requested half (already past it) is aborted immediately. The FIFO is
// emptied either way.
func (g *Generator) Abort(c uint8, onHold bool) {
	ch := &g.ch[c]
	active := g.pins.Get(ch.port, ch.mask)^ch.invMask != 0

	switch {
	case onHold && !active:
		g.abort(c)
	case !onHold && active:
		g.abort(c)
	case onHold:
		ch.abortOnHold = true
	default:
		ch.abortOnSetup = true
	}
}

// abort kills the channel's task and queue immediately.
func (g *Generator) abort(c uint8) {
	ch := &g.ch[c]
	ch.abortOnSetup = false
	ch.abortOnHold = false
	ch.task = false
	ch.togglesLeft = 0

	if g.maxID != 0 && c == g.maxID {
		g.maxID--
	}

	for i := range ch.fifo {
		ch.fifo[i].used = false
	}
}

// State reports whether the channel currently has a task.
func (g *Generator) State(c uint8) bool {
	return g.ch[c].task
}

// TaskToggles returns the number of edges committed since the live task
// started.
func (g *Generator) TaskToggles(c uint8) uint32 {
	return g.ch[c].togglesTotal - g.ch[c].togglesLeft
}

// Cnt returns the channel's step counter: edges committed, signed by each
// task's direction. Safe to read from outside the scheduling loop.
func (g *Generator) Cnt(c uint8) int32 {
	return g.ch[c].cnt
}

// SetCnt overwrites the channel's step counter.
func (g *Generator) SetCnt(c uint8, v int32) {
	g.ch[c].cnt = v
}

// TasksDone returns how many tasks the channel has retired. Aborted tasks
// do not count. Safe to read from outside the scheduling loop.
func (g *Generator) TasksDone(c uint8) uint32 {
	return g.ch[c].tasksDone
}

// SetTasksDone overwrites the channel's retired-task counter.
func (g *Generator) SetTasksDone(c uint8, v uint32) {
	g.ch[c].tasksDone = v
}

// WatchdogSetup arms the abort-all watchdog with a deadline of ns
// nanoseconds from the last observed tick, or disarms it when enable is
// false. Every inbound message refreshes the deadline while armed; if it
// passes with no message, the next BaseThread aborts every active channel
// once and leaves the watchdog disarmed.
func (g *Generator) WatchdogSetup(enable bool, ns uint32) {
	if !enable {
		g.wdDeadline = 0
		return
	}
	g.wdTicks = timer.TicksFromNs(ns)
	g.wdDeadline = g.tick + g.wdTicks
}

func (ch *channel) step() int32 {
	if ch.dir {
		return -1
	}
	return 1
}
