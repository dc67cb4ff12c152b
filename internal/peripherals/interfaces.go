// Package peripherals implements the FDC+DMA disk controller, the MMU
// port wrapper, the battery-backed clock, the periodic interrupt timer
// and busy-delay port, the console/printer/AUX character devices, and
// the listening/client TCP sockets — every device binds onto the
// 256-port I/O bus.
package peripherals

// Interrupter is the subset of the CPU interpreter peripherals are
// allowed to reach into: raising a pending interrupt. Expressed as an
// interface (rather than importing internal/z80 directly) so this
// package has no dependency on the CPU package — z80.CPU satisfies this
// interface structurally.
type Interrupter interface {
	RaiseINT(data byte)
}

// ErrorSink lets a peripheral signal a fatal runtime error without
// peripherals needing to know how the CPU loop represents that
// condition internally.
type ErrorSink interface {
	RaiseIOError()
}

// MemWriter is the slice of internal/membus.Bus the FDC's DMA path
// needs: raw byte read/write into the flat RAM image.
type MemWriter interface {
	Read8(addr uint16) byte
	Write8(addr uint16, v byte)
}
