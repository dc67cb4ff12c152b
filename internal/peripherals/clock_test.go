package peripherals

import (
	"testing"
	"time"
)

func TestClockReturnsBCDTimeFields(t *testing.T) {
	fixed := time.Date(2026, time.July, 31, 14, 9, 5, 0, time.UTC)
	clk := NewClock(func() time.Time { return fixed })

	ports := map[byte]struct {
		in  func() byte
		out func(byte)
	}{}
	clk.Bind(func(port byte, in func() byte, out func(byte)) {
		ports[port] = struct {
			in  func() byte
			out func(byte)
		}{in, out}
	})

	cases := []struct {
		cmd  byte
		want byte
	}{
		{0, 0x05}, // seconds
		{1, 0x09}, // minutes
		{2, 0x14}, // hours
	}
	for _, c := range cases {
		ports[25].out(c.cmd)
		if got := ports[26].in(); got != c.want {
			t.Fatalf("cmd %d: data = %#x, want %#x", c.cmd, got, c.want)
		}
	}
}

func TestClockDataWritesAreIgnored(t *testing.T) {
	fixed := time.Date(2026, time.July, 31, 0, 0, 0, 0, time.UTC)
	clk := NewClock(func() time.Time { return fixed })
	var dataOut func(byte)
	var dataIn func() byte
	clk.Bind(func(port byte, in func() byte, out func(byte)) {
		if port == 26 {
			dataIn, dataOut = in, out
		}
	})
	dataOut(0xFF) // must be silently ignored
	if got := dataIn(); got != byte(bcd(0)) {
		t.Fatalf("data write leaked into clock state: got %#x", got)
	}
}

func TestDaysSinceEpochIsMonotonic(t *testing.T) {
	d1 := daysSinceEpoch(time.Date(1978, time.January, 1, 0, 0, 0, 0, time.UTC))
	if d1 != 0 {
		t.Fatalf("epoch day = %d, want 0", d1)
	}
	d2 := daysSinceEpoch(time.Date(1979, time.January, 1, 0, 0, 0, 0, time.UTC))
	if d2 != 365 {
		t.Fatalf("one year later = %d, want 365", d2)
	}
	d3 := daysSinceEpoch(time.Date(1980, time.December, 31, 0, 0, 0, 0, time.UTC))
	if d3 <= d2 {
		t.Fatalf("days must increase monotonically: %d then %d", d2, d3)
	}
}
