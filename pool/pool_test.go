package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	memcached "github.com/memcachedcore/client"
	"github.com/memcachedcore/client/protocol"
)

type noopConn struct{ closed bool }

func (c *noopConn) Read(buf []byte) (int, error) {
	header := protocol.Header{Magic: protocol.MagicResponse, Opcode: protocol.OpNoop}
	wire := header.Encode(nil)
	return copy(buf, wire), nil
}

func (c *noopConn) Write(buf []byte) error { return nil }

func (c *noopConn) Close() error {
	c.closed = true
	return nil
}

func newTestClient(t *testing.T) *memcached.Client {
	t.Helper()
	conns := []*noopConn{}
	connect := func(endpoint string) (protocol.Connection, error) {
		c := &noopConn{}
		conns = append(conns, c)
		return c, nil
	}
	client, err := memcached.New([]string{"localhost:11211"}, memcached.WithConnectFunc(connect))
	require.NoError(t, err)
	return client
}

func TestPool_GetPutReusesIdleClient(t *testing.T) {
	calls := 0
	factory := func() (*memcached.Client, error) {
		calls++
		return newTestClient(t), nil
	}

	p := New(factory, 2)

	c1, err := p.Get()
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	p.Put(c1)

	c2, err := p.Get()
	require.NoError(t, err)
	assert.Same(t, c1, c2)
	assert.Equal(t, 1, calls, "a recycled client should not trigger the factory again")
}

func TestPool_PutBeyondCapacityClosesClient(t *testing.T) {
	var conns []*noopConn
	factory := func() (*memcached.Client, error) {
		c := &noopConn{}
		conns = append(conns, c)
		return memcached.New([]string{"localhost:11211"}, memcached.WithConnectFunc(
			func(string) (protocol.Connection, error) { return c, nil }))
	}
	p := New(factory, 1)

	c1, _ := p.Get()
	c2, _ := p.Get()

	p.Put(c1)
	p.Put(c2) // pool already holds c1 at capacity 1; c2 is closed and dropped
	assert.True(t, conns[1].closed)

	got, err := p.Get()
	require.NoError(t, err)
	assert.Same(t, c1, got)
	assert.False(t, conns[0].closed)
}

func TestPool_Close(t *testing.T) {
	factory := func() (*memcached.Client, error) { return newTestClient(t), nil }
	p := New(factory, 2)

	c1, _ := p.Get()
	p.Put(c1)

	assert.NoError(t, p.Close())
}
