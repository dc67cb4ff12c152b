package peripherals

import (
	"log/slog"

	"github.com/z80cpm/emulator/internal/membus"
)

// MMU wraps an internal/membus.Bus with the three-port bank-switch
// protocol: segment size must be set before banks are allocated, bank
// count is fixed on first write, and bank select copies data in and
// out of the low segment.
type MMU struct {
	mem  *membus.Bus
	errs ErrorSink
	log  *slog.Logger
}

// NewMMU returns an MMU bound to mem. Any protocol violation (segsize
// after banks, too many banks, an out-of-range bank select) is reported
// to errs as a fatal runtime error, matching the real firmware's "this
// should never happen in working software" posture for these ports.
func NewMMU(mem *membus.Bus, errs ErrorSink, log *slog.Logger) *MMU {
	return &MMU{mem: mem, errs: errs, log: log}
}

// Bind installs the MMU's three port pairs (20 init, 21 select, 22
// segment size) onto bus.
func (m *MMU) Bind(bind func(port byte, in func() byte, out func(byte))) {
	bind(20,
		func() byte { return byte(m.mem.MaxBank()) },
		func(v byte) {
			if err := m.mem.InitBanks(v); err != nil {
				m.log.Error("mmu: bank init failed", "banks", v, "err", err)
				m.errs.RaiseIOError()
			}
		})
	bind(21,
		func() byte { return byte(m.mem.SelectedBank()) },
		func(v byte) {
			if err := m.mem.SelectBank(v); err != nil {
				m.log.Error("mmu: bank select failed", "bank", v, "err", err)
				m.errs.RaiseIOError()
			}
		})
	bind(22,
		func() byte { return byte(m.mem.SegmentSize() / membus.PageSize) },
		func(v byte) {
			if err := m.mem.InitSegsize(v); err != nil {
				m.log.Error("mmu: segment size set failed", "pages", v, "err", err)
				m.errs.RaiseIOError()
			}
		})
}
