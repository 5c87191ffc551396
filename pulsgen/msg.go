package pulsgen

import (
	"github.com/yazici/arisc-firmware/gpio"
	"github.com/yazici/arisc-firmware/msg"
)

// Pulse generator message types.
const (
	MsgPinSetup uint8 = 0x20 + iota
	MsgTaskAdd
	MsgAbort
	MsgStateGet
	MsgTaskTogglesGet
	MsgCntGet
	MsgCntSet
	MsgTasksDoneGet
	MsgTasksDoneSet
	MsgWatchdogSetup
)

// replyBus is the slice of the bus the engine needs for getter replies.
type replyBus interface {
	Send(typ uint8, payload []byte)
}

// Bind registers the engine's message callbacks on the bus and keeps it
// for getter replies. Replies go out on the request's message type.
func (g *Generator) Bind(bus *msg.Bus) {
	g.bus = bus
	for t := MsgPinSetup; t <= MsgWatchdogSetup; t++ {
		bus.OnRecv(t, g.recv)
	}
}

// recv decodes and executes one inbound command. Any inbound message
// refreshes the watchdog deadline while the watchdog is armed.
func (g *Generator) recv(typ uint8, payload []byte) error {
	if g.wdDeadline != 0 {
		g.wdDeadline = g.tick + g.wdTicks
	}

	in, err := msg.DecodeU32x10(payload)
	if err != nil {
		return err
	}

	switch typ {
	case MsgPinSetup:
		g.PinSetup(uint8(in[0]), gpio.Port(in[1]), uint8(in[2]), in[3] != 0)
	case MsgTaskAdd:
		g.TaskAdd(uint8(in[0]), in[1] != 0, in[2], in[3], in[4], in[5])
	case MsgAbort:
		g.Abort(uint8(in[0]), in[1] != 0)
	case MsgStateGet:
		var state uint32
		if g.State(uint8(in[0])) {
			state = 1
		}
		g.bus.Send(typ, msg.EncodeU32(state))
	case MsgTaskTogglesGet:
		g.bus.Send(typ, msg.EncodeU32(g.TaskToggles(uint8(in[0]))))
	case MsgCntGet:
		g.bus.Send(typ, msg.EncodeU32(uint32(g.Cnt(uint8(in[0])))))
	case MsgCntSet:
		g.SetCnt(uint8(in[0]), int32(in[1]))
	case MsgTasksDoneGet:
		g.bus.Send(typ, msg.EncodeU32(g.TasksDone(uint8(in[0]))))
	case MsgTasksDoneSet:
		g.SetTasksDone(uint8(in[0]), in[1])
	case MsgWatchdogSetup:
		g.WatchdogSetup(in[0] != 0, in[1])
	default:
		return msg.ErrNotHandled
	}
	return nil
}
