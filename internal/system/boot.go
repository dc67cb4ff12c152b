package system

import (
	"fmt"
	"os"

	"github.com/z80cpm/emulator/internal/membus"
	"github.com/z80cpm/emulator/internal/z80"
)

// coreHeaderLen is the byte count of the fixed register block written
// ahead of the 64KiB RAM image in a core.z80 snapshot: A,F,B,C,D,E,H,L,
// A',F',B',C',D',E',H',L' (16 bytes), I,IFF,R (3 bytes), PC,SP,IX,IY
// (8 bytes, little-endian).
const coreHeaderLen = 16 + 3 + 8

// saveCore writes cpu and mem to path in the layout the header constant
// above describes: the register block, then exactly 65536 bytes of RAM.
func saveCore(path string, cpu *z80.CPU, mem *membus.Bus) error {
	buf := make([]byte, 0, coreHeaderLen+membus.Size)
	buf = append(buf, cpu.A, cpu.F, cpu.B, cpu.C, cpu.D, cpu.E, cpu.H, cpu.L)
	buf = append(buf, cpu.A_, cpu.F_, cpu.B_, cpu.C_, cpu.D_, cpu.E_, cpu.H_, cpu.L_)
	buf = append(buf, cpu.I, packIFF(cpu), cpu.R)
	buf = appendWord(buf, cpu.PC)
	buf = appendWord(buf, cpu.SP)
	buf = appendWord(buf, cpu.IX)
	buf = appendWord(buf, cpu.IY)
	buf = append(buf, mem.RawBytes()...)

	if err := os.WriteFile(path, buf, 0644); err != nil {
		return fmt.Errorf("system: saving core snapshot: %w", err)
	}
	return nil
}

// loadCore populates cpu and mem from path, in the same layout saveCore
// writes.
func loadCore(path string, cpu *z80.CPU, mem *membus.Bus) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("system: loading core snapshot: %w", err)
	}
	if len(data) != coreHeaderLen+membus.Size {
		return fmt.Errorf("system: core snapshot %s has %d bytes, want %d", path, len(data), coreHeaderLen+membus.Size)
	}

	cpu.A, cpu.F, cpu.B, cpu.C, cpu.D, cpu.E, cpu.H, cpu.L = data[0], data[1], data[2], data[3], data[4], data[5], data[6], data[7]
	cpu.A_, cpu.F_, cpu.B_, cpu.C_, cpu.D_, cpu.E_, cpu.H_, cpu.L_ = data[8], data[9], data[10], data[11], data[12], data[13], data[14], data[15]
	cpu.I = data[16]
	unpackIFF(cpu, data[17])
	cpu.R = data[18]
	cpu.PC = readWord(data, 19)
	cpu.SP = readWord(data, 21)
	cpu.IX = readWord(data, 23)
	cpu.IY = readWord(data, 25)

	for i, b := range data[coreHeaderLen:] {
		mem.Write8(uint16(i), b)
	}
	return nil
}

// packIFF and unpackIFF fold IFF1/IFF2/IM into the single snapshot "IFF"
// byte: bit 0 is IFF1, bit 1 is IFF2, bits 2-3 are IM.
func packIFF(cpu *z80.CPU) byte {
	var v byte
	if cpu.IFF1 {
		v |= 1 << 0
	}
	if cpu.IFF2 {
		v |= 1 << 1
	}
	v |= byte(cpu.IM) << 2
	return v
}

func unpackIFF(cpu *z80.CPU, v byte) {
	cpu.IFF1 = v&(1<<0) != 0
	cpu.IFF2 = v&(1<<1) != 0
	cpu.IM = z80.InterruptMode((v >> 2) & 0x3)
}

func appendWord(buf []byte, v uint16) []byte {
	return append(buf, byte(v), byte(v>>8))
}

func readWord(data []byte, i int) uint16 {
	return uint16(data[i]) | uint16(data[i+1])<<8
}

// loadExecutable loads data at address 0 as a flat byte image.
func loadExecutable(path string, mem *membus.Bus) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("system: loading executable: %w", err)
	}
	if len(data) > membus.Size {
		return fmt.Errorf("system: executable %s is %d bytes, larger than %d-byte RAM", path, len(data), membus.Size)
	}
	for i, b := range data {
		mem.Write8(uint16(i), b)
	}
	return nil
}

// loadBootSector reads the first 128 bytes of path (drive A's image, by
// convention disks/drivea.cpm) into RAM[0..128).
func loadBootSector(path string, mem *membus.Bus) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("system: opening boot drive: %w", err)
	}
	defer f.Close()

	var sector [128]byte
	n, err := f.Read(sector[:])
	if err != nil {
		return fmt.Errorf("system: reading boot sector from %s: %w", path, err)
	}
	if n != len(sector) {
		return fmt.Errorf("system: boot sector from %s is %d bytes, want %d", path, n, len(sector))
	}
	for i, b := range sector {
		mem.Write8(uint16(i), b)
	}
	return nil
}
