package peripherals

import (
	"io"
	"os"
	"sync"
)

// Console is the local TTY channel bound to ports 0 (status) and 1
// (data). Unlike the printer/AUX/socket channels, CR is not filtered
// on output here — the console speaks raw terminal bytes.
type Console struct {
	mu        sync.Mutex
	in        io.Reader
	out       io.Writer
	buffered  bool
	lookahead byte
	emergency byte // 0 = none, else 0x03 or 0x1C pending
}

// NewConsole wires the console to stdin/stdout. The caller is
// responsible for putting the controlling terminal into raw mode and
// stdin into non-blocking mode before status polling is meaningful.
func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{in: in, out: out}
}

// NotifyCtrlC records a pending Ctrl-C synthesized byte (0x03),
// surfaced through the status/data port pair on the next poll. Called
// from the run controller's SIGINT handler.
func (c *Console) NotifyCtrlC() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.emergency = 0x03
}

// NotifyCtrlBackslash records a pending Ctrl-\ synthesized byte
// (0x1C). Called from the run controller's SIGQUIT handler.
func (c *Console) NotifyCtrlBackslash() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.emergency = 0x1C
}

// status polls for available input without blocking: a byte already
// buffered from a prior poll, an emergency-stop byte, or a fresh
// non-blocking read off the terminal (the caller must have put stdin
// into non-blocking mode; otherwise this degrades to a blocking peek).
func (c *Console) status() byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.buffered || c.emergency != 0 {
		return 1
	}
	buf := make([]byte, 1)
	n, err := c.in.Read(buf)
	if err == nil && n == 1 {
		c.buffered = true
		c.lookahead = buf[0]
		return 1
	}
	return 0
}

func (c *Console) readData() byte {
	c.mu.Lock()
	if c.buffered {
		c.buffered = false
		v := c.lookahead
		c.mu.Unlock()
		return v
	}
	if c.emergency != 0 {
		v := c.emergency
		c.emergency = 0
		c.mu.Unlock()
		return v
	}
	c.mu.Unlock()

	buf := make([]byte, 1)
	n, err := c.in.Read(buf)
	if err != nil || n == 0 {
		return 0x1A // CP/M EOF, mirrors the AUX end-of-file convention
	}
	return buf[0]
}

func (c *Console) writeData(v byte) {
	c.out.Write([]byte{v})
	if f, ok := c.out.(*os.File); ok {
		f.Sync()
	}
}

// Bind installs the console status/data port pair (0/1).
func (c *Console) Bind(bind func(port byte, in func() byte, out func(byte))) {
	bind(0, c.status, nil)
	bind(1, c.readData, c.writeData)
}
