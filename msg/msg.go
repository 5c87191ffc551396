// Package msg implements the byte-tagged request/response bus between the
// firmware modules and the host.
//
// A message is a type byte plus up to MaxLen bytes of payload. Payloads
// are little-endian arrays of 32-bit words, 4-byte aligned. Modules
// register receive callbacks per message type during init; the transport
// owner feeds inbound messages through Bus.Recv and collects outbound
// replies through the send function passed to New.
package msg

import "errors"

// MaxLen is the payload capacity of one message: ten 32-bit words.
const MaxLen = 40

// Bus errors.
var (
	// ErrNotHandled reports that no registered callback consumed the message.
	ErrNotHandled = errors.New("msg: not handled")
	// ErrMalformed reports a payload that does not fit the wire format.
	ErrMalformed = errors.New("msg: malformed payload")
)

// RecvFunc handles one inbound message. A handler that does not recognise
// the type returns ErrNotHandled so dispatch can try the next one.
type RecvFunc func(typ uint8, payload []byte) error

// SendFunc publishes one outbound message to the transport.
type SendFunc func(typ uint8, payload []byte)

// Bus routes inbound messages to registered callbacks and outbound
// messages to the transport. Not safe for concurrent use: the transport
// must marshal delivery into the same execution context as the engine.
type Bus struct {
	handlers [256][]RecvFunc
	send     SendFunc
}

// New returns a bus publishing outbound messages through send. A nil send
// discards replies.
func New(send SendFunc) *Bus {
	if send == nil {
		send = func(uint8, []byte) {}
	}
	return &Bus{send: send}
}

// OnRecv registers a callback for one message type. Multiple callbacks per
// type are tried in registration order.
func (b *Bus) OnRecv(typ uint8, fn RecvFunc) {
	b.handlers[typ] = append(b.handlers[typ], fn)
}

// Recv dispatches an inbound message. It returns ErrNotHandled when no
// callback is registered for the type or every callback declined, and the
// first callback error otherwise.
func (b *Bus) Recv(typ uint8, payload []byte) error {
	for _, fn := range b.handlers[typ] {
		err := fn(typ, payload)
		if errors.Is(err, ErrNotHandled) {
			continue
		}
		return err
	}
	return ErrNotHandled
}

// Send publishes an outbound message.
func (b *Bus) Send(typ uint8, payload []byte) {
	b.send(typ, payload)
}
