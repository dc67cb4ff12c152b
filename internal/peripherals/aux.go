package peripherals

import (
	"log/slog"
	"os"

	"golang.org/x/sys/unix"
)

// Aux is the AUX serial channel (ports 4/5), backed by the named pipes
// auxin (read side, non-blocking) and auxout (write side, CR
// filtered).
type Aux struct {
	inFd int
	out  *os.File
	eof  byte // 0 normally, 0xFF once auxin has hit end-of-file
	log  *slog.Logger
}

// NewAux opens auxin non-blocking and auxout for writing. Both FIFOs
// must already exist; nothing in this module creates them.
func NewAux(inPath, outPath string, log *slog.Logger) (*Aux, error) {
	fd, err := unix.Open(inPath, unix.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, err
	}
	out, err := os.OpenFile(outPath, os.O_WRONLY, 0)
	if err != nil {
		unix.Close(fd)
		return nil, err
	}
	return &Aux{inFd: fd, out: out, log: log}, nil
}

// Close closes both FIFO handles.
func (a *Aux) Close() {
	unix.Close(a.inFd)
	a.out.Close()
}

func (a *Aux) readData() byte {
	if a.eof != 0 {
		return 0x1A // CP/M EOF once auxin has gone dry
	}
	buf := make([]byte, 1)
	n, err := unix.Read(a.inFd, buf)
	if err != nil && err != unix.EAGAIN && err != unix.EINTR {
		a.log.Error("aux: read failed", "err", err)
	}
	if n <= 0 {
		if err == nil { // zero-length read: the writer closed its end
			a.eof = 0xFF
		}
		return 0
	}
	return buf[0]
}

func (a *Aux) writeData(v byte) {
	if v == '\r' {
		return
	}
	if _, err := a.out.Write([]byte{v}); err != nil {
		a.log.Error("aux: write failed", "err", err)
	}
}

func (a *Aux) status() byte { return a.eof }

func (a *Aux) setStatus(v byte) { a.eof = v }

// Bind installs the AUX status/data port pair (4/5).
func (a *Aux) Bind(bind func(port byte, in func() byte, out func(byte))) {
	bind(4, a.status, a.setStatus)
	bind(5, a.readData, a.writeData)
}
