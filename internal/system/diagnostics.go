package system

import (
	"fmt"

	"github.com/z80cpm/emulator/internal/z80"
)

// diagnostic renders the single trailing line required on exit, given
// the reason execution stopped and the address runLoop reports for that
// reason (the HALT's own address, the start of a trapped opcode, or the
// PC just past a faulting IN/OUT). For StopOpTrap2 (the only illegal-
// opcode trap reachable on a real Z80 opcode map — every primary, CB,
// and indexed-CB byte value is documented, so only the two-byte ED
// plane has genuinely illegal sequences) it also reads the two trapped
// bytes straight back out of memory at pc and pc+1.
func diagnostic(reason z80.StopReason, pc uint16, bus *SystemBus) string {
	switch reason {
	case z80.StopOpHalt:
		return fmt.Sprintf("HALT Op-Code reached at %04X", pc)
	case z80.StopIOTrap:
		return fmt.Sprintf("I/O Trap at %04X", pc)
	case z80.StopIOError:
		return fmt.Sprintf("Fatal I/O Error at %04X", pc)
	case z80.StopOpTrap1:
		return fmt.Sprintf("Op-code trap at %04X %02x", pc, bus.Read8(pc))
	case z80.StopOpTrap2:
		return fmt.Sprintf("Op-code trap at %04X %02x %02x", pc, bus.Read8(pc), bus.Read8(pc+1))
	case z80.StopOpTrap4:
		return fmt.Sprintf("Op-code trap at %04X %02x %02x %02x %02x", pc,
			bus.Read8(pc), bus.Read8(pc+1), bus.Read8(pc+2), bus.Read8(pc+3))
	case z80.StopUserInt:
		return fmt.Sprintf("User Interrupt at %04X", pc)
	default:
		return fmt.Sprintf("Unknown error %d", reason)
	}
}
