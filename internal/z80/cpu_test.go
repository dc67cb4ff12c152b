package z80

import "testing"

func TestShadowExchangeIsInvolution(t *testing.T) {
	c := New()
	c.A, c.F, c.B, c.C = 1, 2, 3, 4
	orig := *c
	c.ExchangeAF()
	c.ExchangeAF()
	if *c != orig {
		t.Fatalf("EX AF,AF' twice did not restore state")
	}
	c.ExchangeX()
	c.ExchangeX()
	if *c != orig {
		t.Fatalf("EXX twice did not restore state")
	}
}

func TestRBumpPreservesHighBit(t *testing.T) {
	c := New()
	c.R = 0x80 // high bit set, low 7 bits zero
	for i := 0; i < 200; i++ {
		c.bumpR()
		if c.R&0x80 == 0 {
			t.Fatalf("R lost its high bit after %d bumps", i+1)
		}
	}
}

func TestAddThenSubLeavesAUnchanged(t *testing.T) {
	for a := 0; a < 256; a += 17 {
		for x := 0; x < 256; x += 23 {
			bus := newFakeBus()
			c := New()
			c.A = byte(a)
			bus.load(0, 0xC6, byte(x), 0xD6, byte(x)) // ADD A,x ; SUB A,x
			run(t, c, bus, 2)
			if c.A != byte(a) {
				t.Fatalf("ADD A,%#x then SUB A,%#x: A=%#x, want %#x", x, x, c.A, a)
			}
		}
	}
}

func TestRLCAEightTimesIsIdentity(t *testing.T) {
	bus := newFakeBus()
	c := New()
	c.A = 0xB7
	orig := c.A
	for i := 0; i < 8; i++ {
		bus.load(0, 0x07) // RLCA
		c.PC = 0
		run(t, c, bus, 1)
	}
	if c.A != orig {
		t.Fatalf("RLCA x8: A=%#x, want %#x", c.A, orig)
	}
}

func TestPushPopIsIdentity(t *testing.T) {
	bus := newFakeBus()
	c := New()
	c.SP = 0x8000
	c.SetHL(0x1234)
	origSP := c.SP
	bus.load(0, 0xE5, 0xE1) // PUSH HL ; POP HL
	run(t, c, bus, 2)
	if c.HL() != 0x1234 {
		t.Fatalf("PUSH HL;POP HL: HL=%#x, want 0x1234", c.HL())
	}
	if c.SP != origSP {
		t.Fatalf("PUSH HL;POP HL: SP=%#x, want %#x", c.SP, origSP)
	}
}

func TestHaltWithInterruptsDisabledStops(t *testing.T) {
	bus := newFakeBus()
	c := New()
	bus.load(0, 0x76) // HALT
	// The Step that executes HALT only sets Halted; the stop is reported
	// by the following Step, once no interrupt has woken the CPU.
	c.Step(bus)
	reason, stop := c.Step(bus)
	if !stop || reason != StopOpHalt {
		t.Fatalf("expected StopOpHalt, got reason=%v stop=%v", reason, stop)
	}
}

func TestEIDefersEnableByOneInstruction(t *testing.T) {
	bus := newFakeBus()
	c := New()
	bus.load(0, 0xFB, 0x00, 0x00) // EI ; NOP ; NOP
	c.Step(bus)                  // executes EI
	if c.IFF1 {
		t.Fatalf("IFF1 must not be set immediately after EI")
	}
	c.Step(bus) // executes the instruction following EI
	if !c.IFF1 {
		t.Fatalf("IFF1 must be set after the instruction following EI")
	}
}

func TestINTAcceptedAtIM1(t *testing.T) {
	bus := newFakeBus()
	c := New()
	c.IFF1 = true
	c.IM = IM1
	c.PC = 0x1000
	c.SP = 0x9000
	c.RaiseINT(0)
	c.Step(bus) // accepts the INT, then executes the NOP at 0x0038
	if c.PC != 0x0039 {
		t.Fatalf("IM1 INT accept: PC=%#x, want 0x0039", c.PC)
	}
	if c.IFF1 {
		t.Fatalf("IFF1 must be cleared on INT accept")
	}
	if bus.Read16(c.SP) != 0x1000 {
		t.Fatalf("INT accept must push the old PC")
	}
}

func TestNMIAcceptedEvenWithInterruptsDisabled(t *testing.T) {
	bus := newFakeBus()
	c := New()
	c.IFF1 = false
	c.PC = 0x2000
	c.SP = 0x9000
	c.RaiseNMI()
	c.Step(bus) // accepts the NMI, then executes the NOP at 0x0066
	if c.PC != 0x0067 {
		t.Fatalf("NMI accept: PC=%#x, want 0x0067", c.PC)
	}
}

func TestOutCWritesRegisterToPortC(t *testing.T) {
	bus := newFakeBus()
	c := New()
	c.A = 0x03
	c.SetBC(0x000A)
	bus.load(0, 0xED, 0x79) // OUT (C),A
	run(t, c, bus, 1)
	if bus.ports[10] != 0x03 {
		t.Fatalf("OUT (C),A: port 10 = %#x, want 0x03", bus.ports[10])
	}
}

func run(t *testing.T, c *CPU, bus *fakeBus, steps int) {
	t.Helper()
	for i := 0; i < steps; i++ {
		if reason, stop := c.Step(bus); stop {
			t.Fatalf("unexpected stop at step %d: %v", i, reason)
		}
	}
}
