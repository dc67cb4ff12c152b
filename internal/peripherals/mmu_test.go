package peripherals

import (
	"io"
	"log/slog"
	"testing"

	"github.com/z80cpm/emulator/internal/membus"
)

type fakeErrorSink struct{ failed bool }

func (f *fakeErrorSink) RaiseIOError() { f.failed = true }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMMUPortsRoundTrip(t *testing.T) {
	mem := membus.New()
	errs := &fakeErrorSink{}
	mmu := NewMMU(mem, errs, discardLogger())

	ports := map[byte]struct {
		in  func() byte
		out func(byte)
	}{}
	bind := func(port byte, in func() byte, out func(byte)) {
		ports[port] = struct {
			in  func() byte
			out func(byte)
		}{in, out}
	}
	mmu.Bind(bind)

	ports[22].out(0xC0) // segsize = 0xC0*256 = 49152
	ports[20].out(2)    // 2 banks
	if got := ports[20].in(); got != 2 {
		t.Fatalf("IN 20 = %d, want 2", got)
	}
	if got := ports[22].in(); got != 0xC0 {
		t.Fatalf("IN 22 = %#x, want 0xC0", got)
	}
	if errs.failed {
		t.Fatalf("unexpected fatal error during valid init sequence")
	}

	ports[22].out(0x80) // segsize change after banks exist: fatal
	if !errs.failed {
		t.Fatalf("expected fatal error changing segsize after banks allocated")
	}
}

func TestMMUSelectBankOutOfRangeFails(t *testing.T) {
	mem := membus.New()
	errs := &fakeErrorSink{}
	mmu := NewMMU(mem, errs, discardLogger())

	var selectOut func(byte)
	mmu.Bind(func(port byte, in func() byte, out func(byte)) {
		if port == 21 {
			selectOut = out
		}
	})
	selectOut(5)
	if !errs.failed {
		t.Fatalf("expected fatal error selecting a bank that doesn't exist")
	}
}
