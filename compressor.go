package memcached

import "github.com/memcachedcore/client/protocol"

// NoCompressor is the identity protocol.Compressor: both transforms
// return their argument unchanged. It is the Client default.
type NoCompressor struct{}

func (NoCompressor) Compress(p *protocol.Packet) (*protocol.Packet, error)   { return p, nil }
func (NoCompressor) Decompress(p *protocol.Packet) (*protocol.Packet, error) { return p, nil }
