//go:build !baremetal

package timer

// Virtual is a software stand-in for the hardware counter on hosted
// builds. The counter only moves when Advance or Set is called, which
// keeps simulations and tests fully deterministic.
type Virtual struct {
	cnt     uint32
	running bool
}

// NewCounter returns a stopped virtual counter.
func NewCounter() *Virtual {
	return &Virtual{}
}

func (v *Virtual) Start() { v.running = true }

func (v *Virtual) Cnt() uint32 { return v.cnt }

// Advance moves the counter forward by n ticks, wrapping at 2^32 like the
// hardware counter does. Advancing a stopped counter has no effect.
func (v *Virtual) Advance(n uint32) {
	if v.running {
		v.cnt += n
	}
}

// Set forces the counter to a specific raw value.
func (v *Virtual) Set(n uint32) { v.cnt = n }
