//go:build baremetal

package gpio

import (
	"runtime/volatile"
	"unsafe"
)

type reg32 = volatile.Register32

// H3 PIO block. PA..PG are contiguous 0x24-byte banks; PL sits alone in
// the R_PIO block.
const (
	pioBase      = 0x01C20800
	rPioBase     = 0x01F02C00
	pioBankSize  = 0x24
	mainBankLast = PG
)

// New returns the driver mapped over the hardware register blocks.
func New() *Driver {
	d := &Driver{}
	for p := PA; p <= mainBankLast; p++ {
		d.banks[p] = (*bankHW)(unsafe.Pointer(uintptr(pioBase + uintptr(p)*pioBankSize)))
	}
	d.banks[PL] = (*bankHW)(unsafe.Pointer(uintptr(rPioBase)))
	return d
}
