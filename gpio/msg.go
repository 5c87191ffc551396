package gpio

import "github.com/yazici/arisc-firmware/msg"

// GPIO message types.
const (
	MsgSetupForOutput uint8 = 0x10 + iota
	MsgSetupForInput
	MsgPinGet
	MsgPinSet
	MsgPinClear
	MsgPortGet
	MsgPortSet
	MsgPortClear
)

// Bind registers the driver's message callbacks on the bus. Getter replies
// go out on the same message type as the request.
func (d *Driver) Bind(bus *msg.Bus) {
	for t := MsgSetupForOutput; t <= MsgPortClear; t++ {
		bus.OnRecv(t, func(typ uint8, payload []byte) error {
			return d.recv(bus, typ, payload)
		})
	}
}

func (d *Driver) recv(bus *msg.Bus, typ uint8, payload []byte) error {
	in, err := msg.DecodeU32x10(payload)
	if err != nil {
		return err
	}

	switch typ {
	case MsgSetupForOutput:
		d.SetupForOutput(Port(in[0]), uint8(in[1]))
	case MsgSetupForInput:
		d.SetupForInput(Port(in[0]), uint8(in[1]))
	case MsgPinGet:
		bus.Send(typ, msg.EncodeU32(d.PinGet(Port(in[0]), uint8(in[1]))))
	case MsgPinSet:
		d.PinSet(Port(in[0]), uint8(in[1]))
	case MsgPinClear:
		d.PinClear(Port(in[0]), uint8(in[1]))
	case MsgPortGet:
		bus.Send(typ, msg.EncodeU32(d.PortGet(Port(in[0]))))
	case MsgPortSet:
		d.PortSet(Port(in[0]), in[1])
	case MsgPortClear:
		d.PortClear(Port(in[0]), in[1])
	default:
		return msg.ErrNotHandled
	}
	return nil
}
