// Package gpio drives the Allwinner H3 GPIO banks.
//
// Banks PA..PG live in the main PIO block; PL is the separate low-power "R"
// bank. Every bank has four pin-configuration registers (eight pins per
// register, three configuration bits per pin) followed by one data
// register. On hosted builds the banks are plain memory, so everything
// built on top of the driver can run under go test.
package gpio

// Port identifies a GPIO bank.
type Port uint8

// GPIO banks of the H3. PL is the R_PIO bank.
const (
	PA Port = iota
	PB
	PC
	PD
	PE
	PF
	PG
	PL
)

const (
	// PortsCount is the number of GPIO banks.
	PortsCount = 8
	// PinsCount is the number of pins per bank.
	PinsCount = 32
)

const badPort = "gpio: invalid port"

// Pin configuration values. Each pin has a 3-bit function field.
const (
	funcInput    = 0
	funcOutput   = 1
	funcDisabled = 7
)

// bankHW is the register block of one GPIO bank.
type bankHW struct {
	CFG [4]reg32 // 0x00 function select, 8 pins per register
	DAT reg32    // 0x10 data
	DRV [2]reg32 // 0x14 drive strength
	PUL [2]reg32 // 0x1C pull-up/down
}

// Driver is the GPIO bank driver. The zero value is not usable; construct
// with New.
type Driver struct {
	banks [PortsCount]*bankHW
}

func (d *Driver) bank(port Port) *bankHW {
	if port >= PortsCount {
		panic(badPort)
	}
	return d.banks[port]
}

// SetupForOutput configures a pin as a push-pull output.
func (d *Driver) SetupForOutput(port Port, pin uint8) {
	d.setPinCfg(port, pin, funcOutput)
}

// SetupForInput configures a pin as an input.
func (d *Driver) SetupForInput(port Port, pin uint8) {
	d.setPinCfg(port, pin, funcInput)
}

// setPinCfg replaces the 3-bit function field of one pin. Eight pins share
// a configuration register, four bits apart.
func (d *Driver) setPinCfg(port Port, pin uint8, val uint32) {
	reg := &d.bank(port).CFG[pin>>3]
	shift := uint32(pin&7) * 4
	cfg := reg.Get()
	cfg &^= 0x7 << shift
	cfg |= val << shift
	reg.Set(cfg)
}

func (d *Driver) pinCfg(port Port, pin uint8) uint32 {
	shift := uint32(pin&7) * 4
	return (d.bank(port).CFG[pin>>3].Get() >> shift) & 0x7
}

// Get returns the data register bits selected by mask, unshifted. A
// nonzero result means at least one selected pin is high.
func (d *Driver) Get(port Port, mask uint32) uint32 {
	return d.bank(port).DAT.Get() & mask
}

// Set drives the pins selected by mask high.
func (d *Driver) Set(port Port, mask uint32) {
	d.bank(port).DAT.SetBits(mask)
}

// Clear drives pins low by ANDing the data register with keep, the
// complement of the pin mask. Callers cache the complement next to the
// mask so the hot path never recomputes it.
func (d *Driver) Clear(port Port, keep uint32) {
	reg := &d.bank(port).DAT
	reg.Set(reg.Get() & keep)
}

// PinGet returns 1 if the pin is high, 0 if low.
func (d *Driver) PinGet(port Port, pin uint8) uint32 {
	if d.Get(port, 1<<pin) != 0 {
		return 1
	}
	return 0
}

// PinSet drives a single pin high.
func (d *Driver) PinSet(port Port, pin uint8) {
	d.Set(port, 1<<pin)
}

// PinClear drives a single pin low.
func (d *Driver) PinClear(port Port, pin uint8) {
	d.bank(port).DAT.ClearBits(1 << pin)
}

// PortGet returns the whole data register of a bank. Each bit is the state
// of the matching pin.
func (d *Driver) PortGet(port Port) uint32 {
	return d.bank(port).DAT.Get()
}

// PortSet drives every pin selected by mask high.
func (d *Driver) PortSet(port Port, mask uint32) {
	d.Set(port, mask)
}

// PortClear drives every pin selected by mask low.
func (d *Driver) PortClear(port Port, mask uint32) {
	d.bank(port).DAT.ClearBits(mask)
}
