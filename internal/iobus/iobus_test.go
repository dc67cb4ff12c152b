package iobus

import "testing"

func TestUnboundPortReturnsZeroWhenTrapOff(t *testing.T) {
	b := New()
	if got := b.In(99); got != 0 {
		t.Fatalf("In(99) = %d, want 0", got)
	}
	b.Out(99, 0x42) // must not panic
	if b.Trapped {
		t.Fatalf("Trapped should stay false when TrapOn is false")
	}
}

func TestUnboundPortTrapsWhenEnabled(t *testing.T) {
	b := New()
	b.TrapOn = true
	b.In(200)
	if !b.Trapped || b.TrapPort != 200 {
		t.Fatalf("expected trap on port 200, got Trapped=%v TrapPort=%d", b.Trapped, b.TrapPort)
	}
}

func TestBoundPortDispatches(t *testing.T) {
	b := New()
	b.TrapOn = true
	var written byte
	b.Bind(10, func() byte { return 7 }, func(v byte) { written = v })
	if got := b.In(10); got != 7 {
		t.Fatalf("In(10) = %d, want 7", got)
	}
	b.Out(10, 55)
	if written != 55 {
		t.Fatalf("Out(10, 55) did not reach handler, got %d", written)
	}
	if b.Trapped {
		t.Fatalf("bound port must not trap")
	}
}
