// Package compress provides a Compressor implementation for
// protocol.Packet values, using zlib with a size gate below which
// compression is skipped.
package compress

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/pkg/errors"

	"github.com/memcachedcore/client/protocol"
)

// DefaultMinBytes is the smallest value length the compressor will
// bother compressing (about five times a packet header), below which
// zlib's own framing overhead erases any savings.
const DefaultMinBytes = 128

// compressedFlag is the bit in extras[0] marking a value as
// zlib-compressed.
const compressedFlag = 1

// ZlibCompressor implements protocol.Compressor with size-gated zlib
// compression. Packets whose extras are empty are never touched:
// there is nowhere to store the compression marker, so compressing
// them would be unrecoverable.
type ZlibCompressor struct {
	level    int
	minBytes int
}

// NewZlibCompressor builds a ZlibCompressor at the given zlib
// compression level (see compress/flate's level constants) that skips
// values shorter than minBytes.
func NewZlibCompressor(level, minBytes int) *ZlibCompressor {
	return &ZlibCompressor{level: level, minBytes: minBytes}
}

// NewDefaultZlibCompressor uses zlib's default level and
// DefaultMinBytes.
func NewDefaultZlibCompressor() *ZlibCompressor {
	return NewZlibCompressor(zlib.DefaultCompression, DefaultMinBytes)
}

func (z *ZlibCompressor) Compress(packet *protocol.Packet) (*protocol.Packet, error) {
	if len(packet.Extras) == 0 || len(packet.Value) < z.minBytes {
		return packet, nil
	}

	var out bytes.Buffer
	w, err := zlib.NewWriterLevel(&out, z.level)
	if err != nil {
		return nil, errors.Wrap(err, "zlib: new writer")
	}
	if _, err := w.Write(packet.Value); err != nil {
		return nil, errors.Wrap(err, "zlib: compress")
	}
	if err := w.Close(); err != nil {
		return nil, errors.Wrap(err, "zlib: finish")
	}

	extras := append([]byte(nil), packet.Extras...)
	extras[0] |= compressedFlag

	header := packet.Header
	header.BodyLen = uint32(len(extras)) + uint32(len(packet.Key)) + uint32(out.Len())

	return &protocol.Packet{
		Header: header,
		Extras: extras,
		Key:    packet.Key,
		Value:  out.Bytes(),
	}, nil
}

func (z *ZlibCompressor) Decompress(packet *protocol.Packet) (*protocol.Packet, error) {
	if len(packet.Extras) == 0 || packet.Extras[0]&compressedFlag == 0 {
		return packet, nil
	}

	r, err := zlib.NewReader(bytes.NewReader(packet.Value))
	if err != nil {
		return nil, errors.Wrap(err, "zlib: new reader")
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "zlib: decompress")
	}

	extras := append([]byte(nil), packet.Extras...)
	extras[0] &^= compressedFlag

	header := packet.Header
	header.BodyLen = uint32(len(extras)) + uint32(len(packet.Key)) + uint32(len(out))

	return &protocol.Packet{
		Header: header,
		Extras: extras,
		Key:    packet.Key,
		Value:  out,
	}, nil
}
