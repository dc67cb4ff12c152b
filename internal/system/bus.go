package system

import (
	"github.com/z80cpm/emulator/internal/iobus"
	"github.com/z80cpm/emulator/internal/membus"
)

// SystemBus composes the memory bus and I/O bus behind the single
// z80.Bus interface the CPU interpreter requires, and additionally
// satisfies peripherals.ErrorSink so peripheral handlers can signal a
// fatal runtime error back to the CPU loop without reaching into z80.CPU
// directly — the original keeps this as a module-global cpu_error byte;
// here it is a field on the bus the CPU already consults every step.
type SystemBus struct {
	Mem *membus.Bus
	IO  *iobus.Bus

	ioFailed bool
}

// NewSystemBus wires a fresh memory bus and I/O bus together.
func NewSystemBus() *SystemBus {
	return &SystemBus{Mem: membus.New(), IO: iobus.New()}
}

func (b *SystemBus) Read8(addr uint16) byte       { return b.Mem.Read8(addr) }
func (b *SystemBus) Write8(addr uint16, v byte)    { b.Mem.Write8(addr, v) }
func (b *SystemBus) Read16(addr uint16) uint16     { return b.Mem.Read16(addr) }
func (b *SystemBus) Write16(addr uint16, v uint16) { b.Mem.Write16(addr, v) }

func (b *SystemBus) In(port byte) byte     { return b.IO.In(port) }
func (b *SystemBus) Out(port byte, v byte) { b.IO.Out(port, v) }

// IOTrapped reports whether the most recent In/Out hit an unbound port
// with the trap flag enabled. iobus.Bus.Trapped is sticky until Run
// observes it, matching z80.Bus's "checked at the next instruction
// boundary" contract.
func (b *SystemBus) IOTrapped() bool { return b.IO.Trapped }

// IOFailed reports whether a peripheral handler called RaiseIOError.
func (b *SystemBus) IOFailed() bool { return b.ioFailed }

// RaiseIOError satisfies peripherals.ErrorSink: any peripheral handler
// that hits an unrecoverable condition (disk write failure, broken
// socket) calls this, and the CPU loop stops with StopIOError at the
// next instruction boundary.
func (b *SystemBus) RaiseIOError() { b.ioFailed = true }
