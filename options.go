package memcached

import (
	"time"

	"github.com/memcachedcore/client/conn"
	"github.com/memcachedcore/client/hash"
	"github.com/memcachedcore/client/protocol"
	"github.com/memcachedcore/client/ring"
)

// DefaultDialTimeout bounds how long the default connect function
// waits for a single node's TCP handshake.
const DefaultDialTimeout = 3 * time.Second

type config struct {
	bucketCount int
	hashFactory hash.Factory
	compressor  protocol.Compressor
	connect     ring.ConnectFunc
	dialTimeout time.Duration
}

func defaultConfig() *config {
	return &config{
		bucketCount: ring.DefaultBucketCount,
		hashFactory: hash.MurmurFactory,
		compressor:  NoCompressor{},
		dialTimeout: DefaultDialTimeout,
	}
}

// ClientOption configures a Client at construction. Options are
// applied in the order given to New.
type ClientOption func(*config)

// WithBucketCount overrides the ring's bucket count (default
// ring.DefaultBucketCount).
func WithBucketCount(n int) ClientOption {
	return func(c *config) { c.bucketCount = n }
}

// WithHashFactory overrides the hash strategy used for both bucket
// placement and key lookup (default hash.MurmurFactory).
func WithHashFactory(f hash.Factory) ClientOption {
	return func(c *config) { c.hashFactory = f }
}

// WithCompressor overrides the value compressor (default
// NoCompressor, a pure identity transform).
func WithCompressor(compressor protocol.Compressor) ClientOption {
	return func(c *config) { c.compressor = compressor }
}

// WithConnectFunc overrides how each node endpoint is dialed. Setting
// this makes WithDialTimeout a no-op, since the caller now owns
// dialing entirely.
func WithConnectFunc(connect ring.ConnectFunc) ClientOption {
	return func(c *config) { c.connect = connect }
}

// WithDialTimeout overrides the timeout used by the default
// TCP-based connect function. Ignored if WithConnectFunc is also
// given.
func WithDialTimeout(d time.Duration) ClientOption {
	return func(c *config) { c.dialTimeout = d }
}

func (c *config) resolveConnect() ring.ConnectFunc {
	if c.connect != nil {
		return c.connect
	}
	timeout := c.dialTimeout
	return func(endpoint string) (protocol.Connection, error) {
		return conn.Dial(endpoint, timeout)
	}
}
