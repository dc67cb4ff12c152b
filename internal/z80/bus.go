package z80

// Bus is everything the CPU interpreter needs from the outside world: a
// flat 64KiB memory image and a 256-port I/O bus. The CPU never talks
// to peripherals directly — it only ever reads/writes memory and
// in/outs ports.
type Bus interface {
	Read8(addr uint16) byte
	Write8(addr uint16, v byte)
	Read16(addr uint16) uint16
	Write16(addr uint16, v uint16)

	In(port byte) byte
	Out(port byte, v byte)

	// IOTrapped reports whether the most recent In/Out hit an unbound
	// port with the trap flag enabled.
	IOTrapped() bool

	// IOFailed reports whether a peripheral handler signaled a fatal
	// runtime error; the CPU checks this at the next instruction
	// boundary and stops with StopIOError.
	IOFailed() bool
}

// StopReason is why Run returned control to the caller. Each value maps
// to one of the termination diagnostic lines printed by the run
// controller.
type StopReason int

const (
	StopNone   StopReason = iota // ran out of steps/budget, not a CPU condition
	StopOpHalt                   // HALT with interrupts disabled
	StopIOTrap                   // unbound port access with the trap flag set
	StopIOError                  // a peripheral signaled a fatal error
	StopOpTrap1                  // illegal opcode, 1 byte
	StopOpTrap2                  // illegal opcode, 2 bytes
	StopOpTrap4                  // illegal opcode, 4 bytes
	StopUserInt                  // Ctrl-\ emergency stop
)

