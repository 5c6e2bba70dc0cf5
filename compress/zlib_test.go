package compress

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memcachedcore/client/protocol"
)

func TestZlibCompressor_RoundTrip(t *testing.T) {
	c := NewZlibCompressor(9, 1)

	value := bytes.Repeat([]byte("0"), 48)
	packet := protocol.Set([]byte("my_test_key"), value, protocol.SetExtras{Expire: 300})

	compressed, err := c.Compress(packet)
	require.NoError(t, err)
	assert.Less(t, compressed.Header.BodyLen, packet.Header.BodyLen)
	assert.EqualValues(t, 1, compressed.Extras[0]&compressedFlag)

	decompressed, err := c.Decompress(compressed)
	require.NoError(t, err)
	assert.Equal(t, packet.Value, decompressed.Value)
	assert.Equal(t, packet.Header.BodyLen, decompressed.Header.BodyLen)
	assert.EqualValues(t, 0, decompressed.Extras[0]&compressedFlag)
}

func TestZlibCompressor_SkipsBelowMinBytes(t *testing.T) {
	c := NewZlibCompressor(zlib.DefaultCompression, DefaultMinBytes)
	packet := protocol.Set([]byte("k"), []byte("short"), protocol.SetExtras{})

	compressed, err := c.Compress(packet)
	require.NoError(t, err)
	assert.Same(t, packet, compressed)
}

func TestZlibCompressor_NoExtrasIsNoop(t *testing.T) {
	c := NewDefaultZlibCompressor()
	packet := protocol.Get([]byte("k"))

	compressed, err := c.Compress(packet)
	require.NoError(t, err)
	assert.Same(t, packet, compressed)

	decompressed, err := c.Decompress(packet)
	require.NoError(t, err)
	assert.Same(t, packet, decompressed)
}
