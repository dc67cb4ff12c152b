package peripherals

import (
	"log/slog"
	"os"
)

// Printer is the permanently-ready printer channel (ports 2/3),
// appending to printer.cpm with CR filtered out.
type Printer struct {
	file *os.File
	log  *slog.Logger
}

// NewPrinter opens (creating if absent) the printer output file.
func NewPrinter(path string, log *slog.Logger) (*Printer, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	return &Printer{file: f, log: log}, nil
}

// Close closes the backing file.
func (p *Printer) Close() { p.file.Close() }

func (p *Printer) write(v byte) {
	if v == '\r' {
		return
	}
	if _, err := p.file.Write([]byte{v}); err != nil {
		p.log.Error("printer: write failed", "err", err)
	}
}

// Bind installs the printer's status/data port pair (2/3). Status is
// hard-wired ready; reads from the data port return 0.
func (p *Printer) Bind(bind func(port byte, in func() byte, out func(byte))) {
	bind(2, func() byte { return 1 }, nil)
	bind(3, func() byte { return 0 }, p.write)
}
