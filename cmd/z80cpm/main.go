package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/z80cpm/emulator/internal/peripherals"
	"github.com/z80cpm/emulator/internal/system"
	"github.com/z80cpm/emulator/internal/z80"
)

var (
	saveCore   = flag.Bool("s", false, "save core.z80 on exit")
	loadCore   = flag.Bool("l", false, "load core.z80 on start")
	trapIO     = flag.Bool("i", false, "trap unbound-port I/O")
	fillByte   = flag.Uint("m", 0, "fill RAM with byte N before boot")
	nominalMHz = flag.Float64("f", 0, "declare nominal CPU MHz (paces execution)")
	execPath   = flag.String("x", "", "load and execute <path> instead of booting drive A")

	corePath    = flag.String("core", "core.z80", "snapshot file path")
	driveAPath  = flag.String("drivea", "disks/drivea.cpm", "drive A image path")
	printerPath = flag.String("printer", "printer.cpm", "printer output file path")
	auxInPath   = flag.String("auxin", "auxin", "AUX input FIFO path")
	auxOutPath  = flag.String("auxout", "auxout", "AUX output FIFO path")
	serverConf  = flag.String("net-server", "net_server.conf", "listening socket config path")
	clientConf  = flag.String("net-client", "net_client.conf", "outbound socket config path")
)

// setupTerminal puts the controlling terminal in raw mode for the
// duration of the run.
func setupTerminal() (*term.State, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, nil
	}
	state, err := term.GetState(int(os.Stdin.Fd()))
	if err != nil {
		return nil, fmt.Errorf("getting terminal state: %w", err)
	}
	if _, err := term.MakeRaw(int(os.Stdin.Fd())); err != nil {
		return nil, fmt.Errorf("setting raw mode: %w", err)
	}
	return state, nil
}

func restoreTerminal(state *term.State) {
	if state != nil && term.IsTerminal(int(os.Stdin.Fd())) {
		term.Restore(int(os.Stdin.Fd()), state)
	}
}

func main() {
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	state, err := setupTerminal()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error setting up terminal: %v\n", err)
		os.Exit(1)
	}
	defer restoreTerminal(state)

	cfg := system.Config{
		SaveCore:      *saveCore,
		LoadCore:      *loadCore,
		CorePath:      *corePath,
		TrapUnboundIO: *trapIO,
		FillByte:      byte(*fillByte),
		NominalMHz:    *nominalMHz,
		ExecPath:      *execPath,
		DriveAPath:    *driveAPath,
		Peripherals: peripherals.Config{
			PrinterPath: *printerPath,
			AuxInPath:   *auxInPath,
			AuxOutPath:  *auxOutPath,
			ServerConf:  *serverConf,
			ClientConf:  *clientConf,
			ConsoleIn:   os.Stdin,
			ConsoleOut:  os.Stdout,
		},
	}
	cfg.Peripherals.DrivePaths[0] = *driveAPath
	cfg.Peripherals.Drives[0] = peripherals.DriveGeometry{Tracks: 77, Sectors: 26}

	reason, err := system.Run(cfg, log)
	restoreTerminal(state)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if reason == z80.StopIOError {
		os.Exit(1)
	}
	os.Exit(0)
}
