package system

import (
	"testing"

	"github.com/z80cpm/emulator/internal/z80"
)

func TestDiagnosticFormats(t *testing.T) {
	bus := NewSystemBus()
	bus.Mem.Write8(0x0002, 0xED)
	bus.Mem.Write8(0x0003, 0x00)

	cases := []struct {
		reason z80.StopReason
		pc     uint16
		want   string
	}{
		{z80.StopOpHalt, 0x0002, "HALT Op-Code reached at 0002"},
		{z80.StopIOTrap, 0x0002, "I/O Trap at 0002"},
		{z80.StopIOError, 0x0002, "Fatal I/O Error at 0002"},
		{z80.StopOpTrap2, 0x0002, "Op-code trap at 0002 ed 00"},
		{z80.StopUserInt, 0x0002, "User Interrupt at 0002"},
		{z80.StopNone, 0x0002, "Unknown error 0"},
	}
	for _, c := range cases {
		if got := diagnostic(c.reason, c.pc, bus); got != c.want {
			t.Errorf("diagnostic(%v, %04x) = %q, want %q", c.reason, c.pc, got, c.want)
		}
	}
}
