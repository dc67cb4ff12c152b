// Package system implements the run controller: boot sequencing (snapshot
// load, explicit executable load, or drive-A boot-sector load), the signal
// sources that feed the CPU's interrupt and user-stop machinery, the
// run-to-stop loop, and the termination diagnostics printed on exit.
package system

import (
	"os"

	"github.com/z80cpm/emulator/internal/peripherals"
)

// Config gathers every flag and file path Run needs into a single
// struct, since Run is a library entry point rather than a main func and
// needs to be callable without a real controlling TTY.
type Config struct {
	// SaveCore writes core.z80 (CorePath) just before Run returns.
	SaveCore bool
	// LoadCore populates CPU state and RAM from core.z80 (CorePath)
	// instead of booting drive A or an explicit executable.
	LoadCore bool
	CorePath string

	// TrapUnboundIO sets iobus.Bus.TrapOn: an access to an unbound port
	// raises IOTRAP instead of silently returning 0/ignoring the write.
	TrapUnboundIO bool

	// FillByte fills RAM with this value before boot (the -mN option).
	// Ignored when LoadCore is set, since the snapshot supplies RAM.
	FillByte byte

	// NominalMHz paces instruction execution to approximate this clock
	// rate; 0 means run unpaced (as fast as the host allows).
	NominalMHz float64

	// ExecPath, if set, is loaded at address 0 and run instead of the
	// drive-A boot sector. Ignored when LoadCore is set.
	ExecPath string

	// DriveAPath is read when neither LoadCore nor ExecPath is set; its
	// first 128 bytes are the CP/M boot sector loaded into RAM[0..128).
	DriveAPath string

	// Peripherals carries every peripheral file path and drive geometry;
	// ConsoleIn/ConsoleOut within it are the controlling terminal's
	// raw-mode handles — cmd/z80cpm owns putting the terminal into raw
	// mode, Run only reads/writes through them.
	Peripherals peripherals.Config
}

// defaultConsole fills in stdin/stdout when the caller left them nil, so
// Config zero values remain usable in tests that don't care about the
// console channel.
func (cfg *Config) defaultConsole() {
	if cfg.Peripherals.ConsoleIn == nil {
		cfg.Peripherals.ConsoleIn = os.Stdin
	}
	if cfg.Peripherals.ConsoleOut == nil {
		cfg.Peripherals.ConsoleOut = os.Stdout
	}
}
