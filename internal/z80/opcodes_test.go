package z80

import "testing"

func TestIndexedLoadStoresAtDisplacement(t *testing.T) {
	bus := newFakeBus()
	c := New()
	c.IX = 0x2000
	bus.load(0, 0xDD, 0x36, 0x05, 0x42) // LD (IX+5), 0x42
	run(t, c, bus, 1)
	if got := bus.Read8(0x2005); got != 0x42 {
		t.Fatalf("LD (IX+5),0x42: mem[0x2005]=%#x, want 0x42", got)
	}
}

func TestIndexedHalfRegisters(t *testing.T) {
	bus := newFakeBus()
	c := New()
	c.IX = 0xABCD
	bus.load(0, 0xDD, 0x7C) // LD A, IXH
	run(t, c, bus, 1)
	if c.A != 0xAB {
		t.Fatalf("LD A,IXH: A=%#x, want 0xAB", c.A)
	}
}

func TestJPIndexedJumpsDirectlyToRegister(t *testing.T) {
	bus := newFakeBus()
	c := New()
	c.IX = 0x4000
	bus.load(0, 0xDD, 0xE9) // JP (IX)
	run(t, c, bus, 1)
	if c.PC != 0x4000 {
		t.Fatalf("JP (IX): PC=%#x, want 0x4000", c.PC)
	}
}

func TestLDIRCopiesBlockAndTerminates(t *testing.T) {
	bus := newFakeBus()
	c := New()
	bus.load(0x1000, 'H', 'E', 'L', 'L', 'O')
	c.SetHL(0x1000)
	c.SetDE(0x2000)
	c.SetBC(5)
	bus.load(0, 0xED, 0xB0) // LDIR
	run(t, c, bus, 5)       // LDIR re-executes itself once per remaining byte
	for i := 0; i < 5; i++ {
		if got := bus.Read8(0x2000 + uint16(i)); got != bus.Read8(0x1000+uint16(i)) {
			t.Fatalf("LDIR mismatch at %d: %#x", i, got)
		}
	}
	if c.BC() != 0 {
		t.Fatalf("LDIR should leave BC=0, got %#x", c.BC())
	}
	if c.PC != 2 {
		t.Fatalf("LDIR should fall through once BC=0, PC=%#x want 2", c.PC)
	}
}

func TestCPIRFindsMatchingByte(t *testing.T) {
	bus := newFakeBus()
	c := New()
	bus.load(0x1000, 1, 2, 3, 4, 5)
	c.SetHL(0x1000)
	c.SetBC(5)
	c.A = 4
	bus.load(0, 0xED, 0xB1) // CPIR
	run(t, c, bus, 4)       // stops as soon as the match is found
	if c.F&FlagZ == 0 {
		t.Fatalf("CPIR should set Z when a match is found")
	}
	if c.HL() != 0x1004 {
		t.Fatalf("CPIR should stop right after the match, HL=%#x want 0x1004", c.HL())
	}
}

func TestDDCBUndocumentedCopyBack(t *testing.T) {
	bus := newFakeBus()
	c := New()
	c.IX = 0x3000
	bus.Write8(0x3005, 0x01)
	bus.load(0, 0xDD, 0xCB, 0x05, 0x00) // RLC (IX+5),B
	run(t, c, bus, 1)
	want := byte(0x02)
	if bus.Read8(0x3005) != want {
		t.Fatalf("RLC (IX+5): mem=%#x, want %#x", bus.Read8(0x3005), want)
	}
	if c.B != want {
		t.Fatalf("RLC (IX+5),B undocumented copy-back: B=%#x, want %#x", c.B, want)
	}
}

func TestIllegalEDOpcodeTraps(t *testing.T) {
	bus := newFakeBus()
	c := New()
	bus.load(0, 0xED, 0x00) // not a documented ED opcode
	reason, stop := c.Step(bus)
	if !stop || reason != StopOpTrap2 {
		t.Fatalf("expected StopOpTrap2, got reason=%v stop=%v", reason, stop)
	}
}
