package membus

import "testing"

func TestReadWriteRoundTrip(t *testing.T) {
	b := New()
	b.Write8(0x1234, 0x42)
	if got := b.Read8(0x1234); got != 0x42 {
		t.Fatalf("Read8 = %#x, want 0x42", got)
	}
	b.Write16(0x2000, 0xBEEF)
	if got := b.Read16(0x2000); got != 0xBEEF {
		t.Fatalf("Read16 = %#x, want 0xBEEF", got)
	}
}

func TestFill(t *testing.T) {
	b := New()
	b.Fill(0xE5)
	for _, v := range b.RawBytes() {
		if v != 0xE5 {
			t.Fatalf("Fill left a non-0xE5 byte")
		}
	}
}

func TestSegsizeMustPrecedeBanks(t *testing.T) {
	b := New()
	if err := b.InitBanks(2); err == nil {
		t.Fatalf("expected error allocating banks before segment size is set")
	}
}

func TestSegsizeImmutableAfterBanks(t *testing.T) {
	b := New()
	if err := b.InitSegsize(0xC0); err != nil {
		t.Fatal(err)
	}
	if err := b.InitBanks(2); err != nil {
		t.Fatal(err)
	}
	if err := b.InitSegsize(0x80); err == nil {
		t.Fatalf("expected error reconfiguring segment size after banks exist")
	}
}

func TestInitBanksIdempotent(t *testing.T) {
	b := New()
	must(t, b.InitSegsize(1))
	must(t, b.InitBanks(3))
	if err := b.InitBanks(5); err != nil {
		t.Fatal(err)
	}
	if got := b.MaxBank(); got != 3 {
		t.Fatalf("MaxBank = %d, want 3 (second InitBanks should be ignored)", got)
	}
}

func TestInitBanksRejectsTooMany(t *testing.T) {
	b := New()
	must(t, b.InitSegsize(1))
	if err := b.InitBanks(MaxSeg + 1); err == nil {
		t.Fatalf("expected error allocating more than MaxSeg banks")
	}
}

func TestSelectBankSwapsLowSegment(t *testing.T) {
	b := New()
	must(t, b.InitSegsize(1)) // 256-byte segment
	must(t, b.InitBanks(2))

	b.Write8(0x0010, 0xAA)
	must(t, b.SelectBank(1))
	if got := b.Read8(0x0010); got != 0 {
		t.Fatalf("bank 1 should start zeroed, got %#x", got)
	}
	b.Write8(0x0010, 0xBB)
	must(t, b.SelectBank(0))
	if got := b.Read8(0x0010); got != 0xAA {
		t.Fatalf("switching back to bank 0 should restore 0xAA, got %#x", got)
	}
	must(t, b.SelectBank(1))
	if got := b.Read8(0x0010); got != 0xBB {
		t.Fatalf("switching back to bank 1 should restore 0xBB, got %#x", got)
	}
	if b.SelectedBank() != 1 {
		t.Fatalf("SelectedBank = %d, want 1", b.SelectedBank())
	}
}

func TestSelectBankNoopOnSameBank(t *testing.T) {
	b := New()
	must(t, b.InitSegsize(1))
	must(t, b.InitBanks(1))
	b.Write8(0, 0x55)
	must(t, b.SelectBank(0))
	if got := b.Read8(0); got != 0x55 {
		t.Fatalf("selecting the already-active bank must not touch RAM")
	}
}

func TestSelectBankRejectsOutOfRange(t *testing.T) {
	b := New()
	must(t, b.InitSegsize(1))
	must(t, b.InitBanks(2))
	if err := b.SelectBank(2); err == nil {
		t.Fatalf("expected error selecting a bank beyond maxbnk")
	}
}

func TestCommonMemoryUnaffectedByBankSwitch(t *testing.T) {
	b := New()
	must(t, b.InitSegsize(1)) // 256-byte banked segment
	must(t, b.InitBanks(2))
	b.Write8(0x1000, 0x77) // above segsize: common memory
	must(t, b.SelectBank(1))
	if got := b.Read8(0x1000); got != 0x77 {
		t.Fatalf("common memory must survive a bank switch, got %#x", got)
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}
