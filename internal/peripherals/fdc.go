package peripherals

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

const sectorSize = 128

// maxDrives is the size of the disk table, one entry per drive letter
// A..P.
const maxDrives = 16

// DriveGeometry describes one drive's backing-file shape. cmd/z80cpm
// gives drive A the IBM 8" SSSD floppy geometry (77 tracks, 26
// sectors); no other drive has a default geometry, so every other drive
// uses whatever its caller puts in Config.Drives.
type DriveGeometry struct {
	Tracks  int
	Sectors int
}

// drive holds one disk table entry. A nil file means "not present":
// every FDC path branches on that before touching track/sector state.
type drive struct {
	file *os.File
	DriveGeometry
}

// FDC is the floppy-disk controller plus its DMA address pair. It has
// no clock of its own: every byte it moves, it moves synchronously
// inside the OUT 13 handler.
type FDC struct {
	drives [maxDrives]drive

	selectedDrive byte
	track         byte
	sectorLo      byte
	sectorHi      byte
	status        byte
	dmaLo         byte
	dmaHi         byte

	mem MemWriter
	log *slog.Logger
}

// NewFDC returns an FDC with no drives attached. Attach mounts the
// backing files.
func NewFDC(mem MemWriter, log *slog.Logger) *FDC {
	return &FDC{mem: mem, log: log}
}

// Attach opens path as drive idx's backing file (created if absent) and
// records its geometry. Drive A (idx 0) is the only mandatory drive;
// callers that can't open it should treat that as a fatal init failure.
func (f *FDC) Attach(idx int, path string, geo DriveGeometry) error {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("fdc: drive %d: %w", idx, err)
	}
	f.drives[idx] = drive{file: file, DriveGeometry: geo}
	return nil
}

// Close closes every attached drive's backing file.
func (f *FDC) Close() {
	for i := range f.drives {
		if f.drives[i].file != nil {
			f.drives[i].file.Close()
		}
	}
}

func (f *FDC) sector() uint16 { return uint16(f.sectorHi)<<8 | uint16(f.sectorLo) }

// command implements the OUT 13 sequence: drive/track/sector range
// checks, seek, and sector-sized transfer. Out-of-range parameters and
// short I/O never escalate beyond the status byte — FDC domain errors
// are never raised as CPU-level faults.
func (f *FDC) command(cmd byte) {
	d := &f.drives[f.selectedDrive]
	if d.file == nil {
		f.status = 1
		return
	}
	// The original firmware's range check is track > tracks, one past
	// the documented end; preserved here rather than tightened, since
	// shipped CP/M software may rely on the lax variant.
	if int(f.track) > d.Tracks {
		f.status = 2
		return
	}
	if int(f.sector()) > d.Sectors {
		f.status = 3
		return
	}

	offset := int64(int(f.track)*d.Sectors+int(f.sector())-1) * sectorSize
	if _, err := d.file.Seek(offset, io.SeekStart); err != nil {
		f.log.Error("fdc: seek failed", "drive", f.selectedDrive, "err", err)
		f.status = 4
		return
	}

	dmaAddr := uint16(f.dmaHi)<<8 | uint16(f.dmaLo)
	switch cmd {
	case 0: // read
		buf := make([]byte, sectorSize)
		n, err := io.ReadFull(d.file, buf)
		if err != nil && err != io.ErrUnexpectedEOF {
			f.log.Error("fdc: read failed", "drive", f.selectedDrive, "err", err)
		}
		if n != sectorSize {
			f.status = 5
			return
		}
		for i, b := range buf {
			f.mem.Write8(dmaAddr+uint16(i), b)
		}
		f.status = 0
	case 1: // write
		buf := make([]byte, sectorSize)
		for i := range buf {
			buf[i] = f.mem.Read8(dmaAddr + uint16(i))
		}
		n, err := d.file.Write(buf)
		if err != nil {
			f.log.Error("fdc: write failed", "drive", f.selectedDrive, "err", err)
		}
		if n != sectorSize {
			f.status = 6
			return
		}
		f.status = 0
	default:
		f.status = 7
	}
}

// Bind installs the FDC's eight port pairs: drive select, track,
// sector low/high, command, status, and DMA address low/high.
func (f *FDC) Bind(bind func(port byte, in func() byte, out func(byte))) {
	bind(10, func() byte { return f.selectedDrive }, func(v byte) { f.selectedDrive = v % maxDrives })
	bind(11, func() byte { return f.track }, func(v byte) { f.track = v })
	bind(12, func() byte { return f.sectorLo }, func(v byte) { f.sectorLo = v })
	bind(13, func() byte { return 0 }, f.command)
	bind(14, func() byte { return f.status }, nil)
	bind(15, func() byte { return f.dmaLo }, func(v byte) { f.dmaLo = v })
	bind(16, func() byte { return f.dmaHi }, func(v byte) { f.dmaHi = v })
	// Port 17 (sector high byte) write side is normal; the read side
	// truncates to a byte before the shift and so always reads back 0.
	// Preserved faithfully rather than fixed, since shipped software may
	// have been exercised only against this behavior.
	bind(17, func() byte { return byte(uint16(f.sectorHi) >> 8) }, func(v byte) { f.sectorHi = v })
}
