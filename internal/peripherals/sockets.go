package peripherals

import (
	"bufio"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
)

// telnetWillSuppressGA is the 6-byte negotiation sent to a newly
// accepted telnet-mode client: WILL suppress-go-ahead, WILL echo.
var telnetWillSuppressGA = []byte{0xFF, 0xFB, 0x03, 0xFF, 0xFB, 0x01}

// serverSlot is one of the four listening sockets. Rather than the
// original's SIGIO-driven non-blocking accept loop, each slot runs its
// own accept goroutine and its own per-connection reader goroutine —
// the idiomatic Go shape for the same one-client-at-a-time policy.
type serverSlot struct {
	idx      int
	port     int
	telnet   bool
	listener net.Listener

	mu     sync.Mutex
	cond   *sync.Cond
	client net.Conn
	queue  []byte
	eof    bool

	errs ErrorSink
	log  *slog.Logger
}

func newServerSlot(idx, port int, telnet bool, errs ErrorSink, log *slog.Logger) *serverSlot {
	s := &serverSlot{idx: idx, port: port, telnet: telnet, errs: errs, log: log}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Sockets owns the four server slots and the one outbound client
// socket.
type Sockets struct {
	slots  [4]*serverSlot
	client *clientSocket
	errs   ErrorSink
	log    *slog.Logger
}

// NewSockets returns an empty socket manager; LoadServerConf/
// LoadClientConf populate it before Start.
func NewSockets(errs ErrorSink, log *slog.Logger) *Sockets {
	return &Sockets{errs: errs, log: log, client: newClientSocket(errs, log)}
}

// LoadServerConf parses net_server.conf: one "<idx> <telnet> <port>"
// line per listener, idx in 1..4, # lines are comments. A missing file
// simply means no listeners are configured.
func (s *Sockets) LoadServerConf(path string) error {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 3 {
			return fmt.Errorf("net_server.conf: malformed line %q", line)
		}
		idx, err := strconv.Atoi(fields[0])
		if err != nil || idx < 1 || idx > 4 {
			return fmt.Errorf("net_server.conf: bad index %q", fields[0])
		}
		telnet := fields[1] != "0"
		port, err := strconv.Atoi(fields[2])
		if err != nil {
			return fmt.Errorf("net_server.conf: bad port %q", fields[2])
		}
		s.slots[idx-1] = newServerSlot(idx, port, telnet, s.errs, s.log)
	}
	return sc.Err()
}

// LoadClientConf parses net_client.conf: "<anything> host port", first
// field ignored.
func (s *Sockets) LoadClientConf(path string) error {
	return s.client.loadConf(path)
}

// Start opens a listener and launches the accept loop for every
// configured server slot.
func (s *Sockets) Start() error {
	for _, slot := range s.slots {
		if slot == nil {
			continue
		}
		l, err := net.Listen("tcp", fmt.Sprintf(":%d", slot.port))
		if err != nil {
			return fmt.Errorf("sockets: listen on %d: %w", slot.port, err)
		}
		slot.listener = l
		go slot.acceptLoop()
	}
	return nil
}

// Close shuts every listener and connected client down.
func (s *Sockets) Close() {
	for _, slot := range s.slots {
		if slot == nil {
			continue
		}
		if slot.listener != nil {
			slot.listener.Close()
		}
		slot.mu.Lock()
		if slot.client != nil {
			slot.client.Close()
		}
		slot.mu.Unlock()
	}
	s.client.close()
}

func (slot *serverSlot) acceptLoop() {
	for {
		conn, err := slot.listener.Accept()
		if err != nil {
			return // listener closed at shutdown
		}
		slot.mu.Lock()
		if slot.client != nil {
			// One-client-at-a-time policy: reject the new connection.
			slot.mu.Unlock()
			conn.Close()
			continue
		}
		if slot.telnet {
			if _, err := conn.Write(telnetWillSuppressGA); err != nil {
				slot.log.Error("socket: telnet negotiation failed", "idx", slot.idx, "err", err)
			}
		}
		slot.client = conn
		slot.eof = false
		slot.queue = nil
		slot.mu.Unlock()
		go slot.readLoop(conn)
	}
}

// readLoop feeds accepted bytes into the queue, applying telnet CR/LF
// collapsing and two-byte command swallowing on the inbound stream.
// Every append/close is done under the slot's lock, with cond.Signal
// waking a blocked readData.
func (slot *serverSlot) readLoop(conn net.Conn) {
	buf := make([]byte, 1)
	for {
		n, err := conn.Read(buf)
		if n == 1 {
			b := buf[0]
			switch {
			case slot.telnet && b == 0x0D: // CR/LF pair collapses to nothing
				conn.Read(buf)
			case slot.telnet && b == 0xFF: // two-byte telnet command, swallowed
				two := make([]byte, 2)
				conn.Read(two)
			default:
				slot.push(b)
			}
		}
		if err != nil {
			slot.mu.Lock()
			slot.eof = true
			if slot.client == conn {
				slot.client = nil
			}
			slot.mu.Unlock()
			slot.cond.Broadcast()
			if !isBenignNetError(err) {
				slot.errs.RaiseIOError()
			}
			return
		}
	}
}

func (slot *serverSlot) push(b byte) {
	slot.mu.Lock()
	slot.queue = append(slot.queue, b)
	slot.mu.Unlock()
	slot.cond.Signal()
}

func isBenignNetError(err error) bool {
	if err == nil {
		return true
	}
	// EOF, connection reset, and "use of closed network connection" are
	// all expected shapes of a client going away; anything else is a
	// genuine peripheral runtime error.
	msg := err.Error()
	return strings.Contains(msg, "EOF") ||
		strings.Contains(msg, "closed") ||
		strings.Contains(msg, "reset by peer")
}

// status reports bit 0 = readable, bit 1 = writable. After a hang-up
// (eof with no client) bit 1 is clear, and bit 0 stays set only while
// bytes received before the hang-up are still queued.
func (slot *serverSlot) status() byte {
	slot.mu.Lock()
	defer slot.mu.Unlock()
	if slot.client == nil && !slot.eof {
		return 0
	}
	var v byte
	if slot.client != nil {
		v |= 0x02
	}
	if len(slot.queue) > 0 {
		v |= 0x01
	}
	return v
}

// readData blocks until a byte is queued or the connection hangs up.
func (slot *serverSlot) readData() byte {
	slot.mu.Lock()
	defer slot.mu.Unlock()
	for len(slot.queue) == 0 && !slot.eof {
		slot.cond.Wait()
	}
	if len(slot.queue) == 0 {
		return 0
	}
	b := slot.queue[0]
	slot.queue = slot.queue[1:]
	return b
}

func (slot *serverSlot) writeData(v byte) {
	if v == '\r' {
		return
	}
	slot.mu.Lock()
	c := slot.client
	slot.mu.Unlock()
	if c == nil {
		return
	}
	if _, err := c.Write([]byte{v}); err != nil && !isBenignNetError(err) {
		slot.errs.RaiseIOError()
	}
}

// Bind installs the status/data port pair of every configured server
// slot (slot i uses ports 40+2i/41+2i; unconfigured slots stay unbound)
// plus the client socket's pair (50/51).
func (s *Sockets) Bind(bind func(port byte, in func() byte, out func(byte))) {
	for i, slot := range s.slots {
		base := byte(40 + i*2)
		if slot == nil {
			continue
		}
		bind(base, slot.status, nil)
		bind(base+1, slot.readData, slot.writeData)
	}
	bind(50, s.client.status, nil)
	bind(51, s.client.readData, s.client.writeData)
}
