package peripherals

import (
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/z80cpm/emulator/internal/membus"
)

// errDriveAMissing is returned when drive A has no usable backing file
// at init; the run controller treats this as a fatal startup failure.
var errDriveAMissing = errors.New("peripherals: drive A has no backing file")

// Config names every file and drive geometry peripherals opens at
// init.
type Config struct {
	Drives      [maxDrives]DriveGeometry
	DrivePaths  [maxDrives]string // an empty path means the drive is unattached
	PrinterPath string
	AuxInPath   string
	AuxOutPath  string
	ServerConf  string
	ClientConf  string
	ConsoleIn   *os.File
	ConsoleOut  *os.File
}

// Peripherals bundles every device bound onto the I/O bus: the FDC,
// MMU wrapper, clock, timer, console/printer/AUX channels, and
// sockets.
type Peripherals struct {
	FDC     *FDC
	MMU     *MMU
	Clock   *Clock
	Timer   *Timer
	Console *Console
	Printer *Printer
	Aux     *Aux
	Sockets *Sockets
}

// New opens every backing file named in cfg and wires up the device
// set. Drive A must be present in cfg.Drives/DrivePaths; its absence is
// a fatal init failure the caller should report and exit(1) on.
func New(cfg Config, mem *membus.Bus, irq Interrupter, errs ErrorSink, log *slog.Logger) (*Peripherals, error) {
	fdc := NewFDC(mem, log)
	for i := range cfg.DrivePaths {
		if cfg.DrivePaths[i] == "" {
			continue
		}
		if err := fdc.Attach(i, cfg.DrivePaths[i], cfg.Drives[i]); err != nil {
			if i == 0 {
				return nil, err // drive A is mandatory
			}
			log.Warn("peripherals: optional drive not attached", "drive", i, "err", err)
		}
	}
	if fdc.drives[0].file == nil {
		return nil, errDriveAMissing
	}

	printer, err := NewPrinter(cfg.PrinterPath, log)
	if err != nil {
		return nil, err
	}

	aux, err := NewAux(cfg.AuxInPath, cfg.AuxOutPath, log)
	if err != nil {
		return nil, err
	}

	sockets := NewSockets(errs, log)
	if err := sockets.LoadServerConf(cfg.ServerConf); err != nil {
		return nil, err
	}
	if err := sockets.LoadClientConf(cfg.ClientConf); err != nil {
		return nil, err
	}
	if err := sockets.Start(); err != nil {
		return nil, err
	}

	return &Peripherals{
		FDC:     fdc,
		MMU:     NewMMU(mem, errs, log),
		Clock:   NewClock(time.Now),
		Timer:   NewTimer(irq),
		Console: NewConsole(cfg.ConsoleIn, cfg.ConsoleOut),
		Printer: printer,
		Aux:     aux,
		Sockets: sockets,
	}, nil
}

// Bind installs every device's ports onto bus via bind (normally
// iobus.Bus.Bind).
func (p *Peripherals) Bind(bind func(port byte, in func() byte, out func(byte))) {
	p.FDC.Bind(bind)
	p.MMU.Bind(bind)
	p.Clock.Bind(bind)
	p.Timer.Bind(bind)
	p.Console.Bind(bind)
	p.Printer.Bind(bind)
	p.Aux.Bind(bind)
	p.Sockets.Bind(bind)
}

// Close releases every file, pipe, and socket handle peripherals
// opened.
func (p *Peripherals) Close() {
	p.FDC.Close()
	p.Timer.Stop()
	p.Printer.Close()
	p.Aux.Close()
	p.Sockets.Close()
}
