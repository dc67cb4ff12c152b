// Package iobus implements the 256-port synthetic I/O bus that the Z80
// core's IN/OUT instructions and ED-plane IN r,(C)/OUT (C),r dispatch
// through. Every port is a pair of closures; unbound ports fall back to
// a trap handler.
package iobus

// Port is one 8-bit I/O address's pair of handlers.
type Port struct {
	In  func() byte
	Out func(v byte)
}

// Bus is the 256-slot port table.
type Bus struct {
	ports  [256]Port
	bound  [256]bool
	TrapOn bool // i_flag: when true, an access to an unbound port raises a trap
	// Trapped is set by In/Out when TrapOn is true and the accessed port
	// is unbound; the CPU loop checks this at the next instruction
	// boundary and stops with IOTRAP.
	Trapped bool
	// TrapPort records which port triggered the most recent trap.
	TrapPort byte
}

// New returns a bus with every port bound to the default trap handler.
func New() *Bus {
	b := &Bus{}
	trap := Port{
		In:  func() byte { return 0 },
		Out: func(byte) {},
	}
	for i := range b.ports {
		b.ports[i] = trap
	}
	return b
}

// Bind installs handlers for a port. Passing a nil func keeps that
// direction's default handler (reads return 0, writes are ignored); the
// port still counts as bound, so neither direction traps.
func (b *Bus) Bind(addr byte, in func() byte, out func(byte)) {
	p := &b.ports[addr]
	if in != nil {
		p.In = in
	}
	if out != nil {
		p.Out = out
	}
	b.bound[addr] = true
}

// In dispatches an IN instruction to the bound handler, or the trap.
func (b *Bus) In(addr byte) byte {
	if b.TrapOn && !b.bound[addr] {
		b.Trapped = true
		b.TrapPort = addr
		return 0
	}
	return b.ports[addr].In()
}

// Out dispatches an OUT instruction to the bound handler, or the trap.
func (b *Bus) Out(addr byte, v byte) {
	if b.TrapOn && !b.bound[addr] {
		b.Trapped = true
		b.TrapPort = addr
		return
	}
	b.ports[addr].Out(v)
}
