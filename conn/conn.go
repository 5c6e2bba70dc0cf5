// Package conn provides a concrete, net.Conn-backed implementation of
// protocol.Connection: the reference transport a ring.ConnectFunc can
// dial, built the way the teacher builds its own buffered TCP
// connection.
package conn

import (
	"bufio"
	"net"
	"time"

	"github.com/pkg/errors"
)

// TCPConnection is a buffered, persistent TCP connection to one
// memcached node. Exactly one operation may use it at a time, same as
// any protocol.Connection.
type TCPConnection struct {
	raw    net.Conn
	reader *bufio.Reader
	writer *bufio.Writer
}

// Dial opens a TCP connection to addr ("host:port"), failing if the
// connection isn't established within timeout.
func Dial(addr string, timeout time.Duration) (*TCPConnection, error) {
	raw, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", addr)
	}

	return &TCPConnection{
		raw:    raw,
		reader: bufio.NewReader(raw),
		writer: bufio.NewWriter(raw),
	}, nil
}

// Read implements protocol.Connection.
func (c *TCPConnection) Read(buf []byte) (int, error) {
	return c.reader.Read(buf)
}

// Write implements protocol.Connection, flushing the full buffer
// before returning.
func (c *TCPConnection) Write(buf []byte) error {
	if _, err := c.writer.Write(buf); err != nil {
		return errors.Wrap(err, "write")
	}
	return errors.Wrap(c.writer.Flush(), "flush")
}

// SetDeadline is a transport-level knob layered on top of the core
// contract (spec.md defines no built-in timeouts); callers that want
// one can set a deadline before issuing an operation.
func (c *TCPConnection) SetDeadline(t time.Time) error {
	return c.raw.SetDeadline(t)
}

// Close releases the underlying socket. A connection abandoned
// mid-operation (see spec.md's cancellation semantics) should be
// closed rather than reused.
func (c *TCPConnection) Close() error {
	return c.raw.Close()
}
