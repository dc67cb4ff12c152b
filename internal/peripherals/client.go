package peripherals

import (
	"bufio"
	"log/slog"
	"net"
	"os"
	"strings"
	"sync"
)

// clientSocket is the single outbound client socket (ports 50/51):
// connects lazily on the first status poll, using the host/port from
// net_client.conf.
type clientSocket struct {
	mu        sync.Mutex
	host      string
	port      string
	conn      net.Conn
	connected bool
	errs      ErrorSink
	log       *slog.Logger
}

func newClientSocket(errs ErrorSink, log *slog.Logger) *clientSocket {
	return &clientSocket{errs: errs, log: log}
}

// loadConf parses "<anything> host port"; the first field is ignored. A
// missing file leaves the client permanently unconfigured (status
// always reports not-connected).
func (c *clientSocket) loadConf(path string) error {
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
		fields := strings.Fields(sc.Text())
		if len(fields) != 3 {
			continue
		}
		c.host = fields[1]
		c.port = fields[2]
		return nil
	}
	return sc.Err()
}

func (c *clientSocket) connect() {
	if c.connected || c.host == "" {
		return
	}
	conn, err := net.Dial("tcp", net.JoinHostPort(c.host, c.port))
	if err != nil {
		c.log.Error("client socket: dial failed", "host", c.host, "port", c.port, "err", err)
		c.errs.RaiseIOError()
		return
	}
	c.conn = conn
	c.connected = true
}

func (c *clientSocket) status() byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connect()
	if !c.connected {
		return 0
	}
	return 0x02 // writable; readability isn't polled separately for the client slot
}

func (c *clientSocket) readData() byte {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return 0
	}
	buf := make([]byte, 1)
	n, err := conn.Read(buf)
	if err != nil || n == 0 {
		if !isBenignNetError(err) {
			c.errs.RaiseIOError()
		}
		return 0
	}
	return buf[0]
}

func (c *clientSocket) writeData(v byte) {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return
	}
	if _, err := conn.Write([]byte{v}); err != nil && !isBenignNetError(err) {
		c.errs.RaiseIOError()
	}
}

func (c *clientSocket) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		c.conn.Close()
	}
}
