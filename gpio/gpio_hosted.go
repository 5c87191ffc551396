//go:build !baremetal

package gpio

// reg32 mirrors the method set of a memory-mapped register on hosted
// builds, backed by ordinary memory.
type reg32 struct {
	v uint32
}

func (r *reg32) Get() uint32        { return r.v }
func (r *reg32) Set(v uint32)       { r.v = v }
func (r *reg32) SetBits(m uint32)   { r.v |= m }
func (r *reg32) ClearBits(m uint32) { r.v &^= m }

// New returns a driver over memory-backed banks. All registers read as
// zero until written.
func New() *Driver {
	d := &Driver{}
	for p := range d.banks {
		d.banks[p] = &bankHW{}
	}
	return d
}
