package peripherals

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPrinterFiltersCRAndAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "printer.cpm")
	p, err := NewPrinter(path, discardLogger())
	if err != nil {
		t.Fatalf("NewPrinter: %v", err)
	}
	defer p.Close()

	ports := map[byte]struct {
		in  func() byte
		out func(byte)
	}{}
	p.Bind(func(port byte, in func() byte, out func(byte)) {
		ports[port] = struct {
			in  func() byte
			out func(byte)
		}{in, out}
	})

	if got := ports[2].in(); got != 1 {
		t.Fatalf("status = %d, want 1 (always ready)", got)
	}
	for _, b := range []byte("AB\rC") {
		ports[3].out(b)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "ABC" {
		t.Fatalf("printer.cpm = %q, want %q", got, "ABC")
	}
}
