package server

import (
	"net"
	"sync"
	"time"

	"volgrader/internal/codec"
)

// streamConn adapts net.Conn to session.Conn.
// Every Send must complete within writeTimeout, so a client that stops reading
// cannot hold a session in the middle of the replay.
type streamConn struct {
	conn         net.Conn
	writeTimeout time.Duration
	mu           sync.Mutex
	closeOnce    sync.Once
	closeErr     error
}

func newStreamConn(c net.Conn, writeTimeout time.Duration) *streamConn {
	return &streamConn{conn: c, writeTimeout: writeTimeout}
}

func (c *streamConn) Send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeTimeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
			return err
		}
	}
	return codec.WriteFull(c.conn, payload)
}

func (c *streamConn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}
