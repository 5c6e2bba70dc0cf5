package conn

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTCPConnection_WriteRead_RoundTrip(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		server, err := ln.Accept()
		if err != nil {
			return
		}
		defer server.Close()

		buf := make([]byte, 5)
		if _, err := server.Read(buf); err != nil {
			return
		}
		_, _ = server.Write(buf)
	}()

	c, err := Dial(ln.Addr().String(), time.Second)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Write([]byte("hello")))

	got := make([]byte, 5)
	n, err := c.Read(got)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", string(got))

	<-serverDone
}

func TestDial_ConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	_, err = Dial(addr, 200*time.Millisecond)
	assert.Error(t, err)
}
