package system

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/z80cpm/emulator/internal/peripherals"
	"github.com/z80cpm/emulator/internal/z80"
)

// Runner owns one emulation run's CPU, bus, and peripheral set, plus the
// atomically-updated flags the signal-handling goroutine and the CPU
// loop communicate through: a signal handler does nothing but flip a
// flag; the CPU loop samples flags only at instruction boundaries,
// never mid-opcode.
type Runner struct {
	cpu   *z80.CPU
	bus   *SystemBus
	perip *peripherals.Peripherals
	log   *slog.Logger

	ctrlCCount uint32 // atomic; informational, mirrors the original's counter
	userStop   atomic.Bool

	nominalMHz float64 // 0 = unpaced
}

// pacingBatch is how many instructions runLoop executes between pacing
// checks. Non-goals rule out cycle-accurate timing, so pacing only
// approximates -fN by comparing wall-clock elapsed against a nominal
// one-cycle-per-instruction budget every batch rather than per opcode.
const pacingBatch = 4096

// Run boots, executes, and cleans up one emulator instance: boot
// (snapshot, explicit executable, or drive-A sector), run until a
// termination reason is reached, print the single diagnostic line, save
// a snapshot if requested, and release every peripheral handle. The
// returned error is non-nil only for a config/init failure; a normal
// CPU-driven stop is reported via the returned StopReason and printed
// diagnostic, not an error.
func Run(cfg Config, log *slog.Logger) (z80.StopReason, error) {
	if log == nil {
		log = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	cfg.defaultConsole()

	cpu := z80.New()
	bus := NewSystemBus()
	bus.IO.TrapOn = cfg.TrapUnboundIO

	if !cfg.LoadCore {
		bus.Mem.Fill(cfg.FillByte)
	}

	perip, err := peripherals.New(cfg.Peripherals, bus.Mem, cpu, bus, log)
	if err != nil {
		log.Error("system: peripheral init failed", "err", err)
		return z80.StopNone, fmt.Errorf("system: peripheral init: %w", err)
	}
	perip.Bind(bus.IO.Bind)

	r := &Runner{cpu: cpu, bus: bus, perip: perip, log: log, nominalMHz: cfg.NominalMHz}
	defer r.perip.Close()

	if err := r.boot(cfg); err != nil {
		log.Error("system: boot failed", "err", err)
		return z80.StopNone, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error { return r.watchSignals(ctx) })

	reason, stopPC := r.runLoop()

	cancel()
	group.Wait() // signal-watching goroutine always returns promptly on ctx.Done

	line := diagnostic(reason, stopPC, r.bus)
	fmt.Fprintln(os.Stderr, line)
	log.Info("system: run stopped", "reason", reason, "pc", fmt.Sprintf("%04X", stopPC))

	if cfg.SaveCore {
		if err := saveCore(cfg.CorePath, r.cpu, r.bus.Mem); err != nil {
			log.Error("system: saving core snapshot failed", "err", err)
			return reason, err
		}
	}

	return reason, nil
}

// boot implements the three-way choice: snapshot load beats an explicit
// executable, which beats the default drive-A boot sector.
func (r *Runner) boot(cfg Config) error {
	switch {
	case cfg.LoadCore:
		return loadCore(cfg.CorePath, r.cpu, r.bus.Mem)
	case cfg.ExecPath != "":
		return loadExecutable(cfg.ExecPath, r.bus.Mem)
	default:
		return loadBootSector(cfg.DriveAPath, r.bus.Mem)
	}
}

// runLoop drives the CPU one Step at a time rather than calling
// z80.CPU.Run directly, so it can report the address each stop reason's
// diagnostic line needs — and that address isn't the same PC for every
// reason. An illegal opcode is caught mid-fetch, so startPC (the
// opcode's own address) is correct. HALT is only detected on the Step
// call *after* the one that executed it, by which point PC has already
// advanced past the one-byte instruction, so it needs PC-1. An I/O trap
// or a peripheral's fatal error is detected within the same Step call as
// the faulting IN/OUT, after the whole instruction has been fetched, so
// it needs the post-instruction PC rather than startPC.
func (r *Runner) runLoop() (z80.StopReason, uint16) {
	batchStart := time.Now()
	steps := 0
	for {
		if r.userStop.Load() {
			return z80.StopUserInt, r.cpu.PC
		}
		startPC := r.cpu.PC
		if reason, stop := r.cpu.Step(r.bus); stop {
			switch reason {
			case z80.StopOpHalt:
				return reason, r.cpu.PC - 1
			case z80.StopIOTrap, z80.StopIOError:
				return reason, r.cpu.PC
			default:
				return reason, startPC
			}
		}

		steps++
		if r.nominalMHz > 0 && steps >= pacingBatch {
			r.pace(batchStart, steps)
			steps = 0
			batchStart = time.Now()
		}
	}
}

// pace sleeps off whatever time remains in the current batch's nominal
// budget, approximating -fN's declared clock rate at one cycle per
// instruction.
func (r *Runner) pace(batchStart time.Time, steps int) {
	budget := time.Duration(float64(steps) / (r.nominalMHz * 1e6) * float64(time.Second))
	if elapsed := time.Since(batchStart); elapsed < budget {
		time.Sleep(budget - elapsed)
	}
}

// watchSignals maps SIGINT to the Ctrl-C counter (informational only)
// and SIGQUIT to the emergency stop the run loop polls at each
// instruction boundary, and unsubscribes cleanly when ctx is cancelled
// so the errgroup converges on shutdown.
func (r *Runner) watchSignals(ctx context.Context) error {
	sigCh := make(chan os.Signal, 4)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGQUIT)
	defer signal.Stop(sigCh)

	for {
		select {
		case <-ctx.Done():
			return nil
		case sig := <-sigCh:
			switch sig {
			case syscall.SIGQUIT:
				r.userStop.Store(true)
				r.perip.Console.NotifyCtrlBackslash()
			default:
				atomic.AddUint32(&r.ctrlCCount, 1)
				r.perip.Console.NotifyCtrlC()
			}
		}
	}
}
