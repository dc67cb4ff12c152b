// Package membus implements the flat 64KiB memory image and the
// bank-switching MMU that sits in front of its low segment.
package membus

import "fmt"

// Size is the total addressable RAM.
const Size = 65536

// MaxSeg is the maximum number of bank images the MMU can hold.
const MaxSeg = 16

// PageSize is the unit port 22 (mmuc_out) counts in.
const PageSize = 256

// Bus is the CPU's flat memory image plus its bank-switching MMU.
type Bus struct {
	ram [Size]byte

	segsize  int // 0 until configured
	banks    [][]byte
	selected int
}

// New returns a zero-filled bus.
func New() *Bus {
	return &Bus{}
}

// Fill sets every byte of RAM to v, mirroring the -mN boot option.
func (b *Bus) Fill(v byte) {
	for i := range b.ram {
		b.ram[i] = v
	}
}

// Read8 reads one byte. Reads are total over the whole address space.
func (b *Bus) Read8(addr uint16) byte {
	return b.ram[addr]
}

// Write8 writes one byte. Writes always succeed.
func (b *Bus) Write8(addr uint16, v byte) {
	b.ram[addr] = v
}

// Read16 reads a little-endian word.
func (b *Bus) Read16(addr uint16) uint16 {
	lo := uint16(b.ram[addr])
	hi := uint16(b.ram[addr+1])
	return lo | hi<<8
}

// Write16 writes a little-endian word.
func (b *Bus) Write16(addr uint16, v uint16) {
	b.ram[addr] = byte(v)
	b.ram[addr+1] = byte(v >> 8)
}

// RawBytes exposes the full RAM image for snapshot save/load and for the
// boot loader's "splat the first 128 bytes" path. Callers must not retain
// the returned slice across bank switches.
func (b *Bus) RawBytes() []byte {
	return b.ram[:]
}

// SegmentSize reports the currently configured bank size in bytes (0 if
// unconfigured).
func (b *Bus) SegmentSize() int {
	return b.segsize
}

// MaxBank reports the number of allocated banks (mmui_in's value).
func (b *Bus) MaxBank() int {
	return len(b.banks)
}

// SelectedBank reports the currently selected bank index (mmus_in's value).
func (b *Bus) SelectedBank() int {
	return b.selected
}

// InitSegsize sets the bank segment size, in units of PageSize bytes.
// This must happen exactly once, before any bank is allocated; a second
// call after banks exist is fatal.
func (b *Bus) InitSegsize(pages byte) error {
	if len(b.banks) > 0 {
		return fmt.Errorf("membus: segment size fixed at %d bytes, cannot reconfigure after banks were allocated", b.segsize)
	}
	b.segsize = int(pages) * PageSize
	return nil
}

// InitBanks allocates n zero-filled bank images of the configured segment
// size. Repeated writes after the first are silently ignored, and
// n > MaxSeg is fatal. Calling this before InitSegsize is also fatal:
// segment size must be configured first.
func (b *Bus) InitBanks(n byte) error {
	if len(b.banks) > 0 {
		return nil // already allocated; silently ignored
	}
	if b.segsize == 0 {
		return fmt.Errorf("membus: cannot allocate banks before segment size is configured")
	}
	if int(n) > MaxSeg {
		return fmt.Errorf("membus: %d banks exceeds maximum of %d", n, MaxSeg)
	}
	b.banks = make([][]byte, n)
	for i := range b.banks {
		b.banks[i] = make([]byte, b.segsize)
	}
	return nil
}

// SelectBank switches the active low-segment bank. If v equals the
// currently selected bank, nothing happens. Otherwise the current low
// segment is saved into the outgoing bank's image and the incoming
// bank's image is copied into the low segment. v must be a valid bank
// index.
func (b *Bus) SelectBank(v byte) error {
	if int(v) >= len(b.banks) {
		return fmt.Errorf("membus: bank %d does not exist (%d allocated)", v, len(b.banks))
	}
	if int(v) == b.selected {
		return nil
	}
	copy(b.banks[b.selected], b.ram[:b.segsize])
	copy(b.ram[:b.segsize], b.banks[v])
	b.selected = int(v)
	return nil
}
