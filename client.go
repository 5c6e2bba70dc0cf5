package memcached

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/memcachedcore/client/protocol"
	"github.com/memcachedcore/client/ring"
)

// BulkGetResponse is the result of GetMulti: keys found on the server
// land in Successes, keys that came back with a non-NotFound status
// land in Errors, keyed by the raw key bytes converted to string. A
// key absent from both maps was simply not found.
type BulkGetResponse struct {
	Successes map[string][]byte
	Errors    map[string]error
}

// Client is a memcached binary-protocol client over a fixed,
// consistently-hashed set of nodes. Each public method takes an
// exclusive lock for the duration of its wire traffic, so concurrent
// callers on one Client serialize rather than race and never run in
// parallel. An outer pool is expected to hand out one Client per
// caller at a time.
type Client struct {
	mu         sync.Mutex
	ring       *ring.Ring
	compressor protocol.Compressor
}

// New builds a Client over the given ordered endpoint list, dialing
// every node before returning. See the ClientOption functions for
// overriding the bucket count, hash strategy, compressor, or dialer.
func New(endpoints []string, opts ...ClientOption) (*Client, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	r, err := ring.NewWithOptions(endpoints, cfg.bucketCount, cfg.hashFactory, cfg.resolveConnect())
	if err != nil {
		return nil, errors.Wrap(err, "build ring")
	}

	return &Client{ring: r, compressor: cfg.compressor}, nil
}

// Get fetches key. found is false both when the server reports
// KeyNotFound and whenever err is non-nil.
func (c *Client) Get(key []byte) (value []byte, found bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	conn := c.ring.GetConn(key)

	if err := protocol.WritePacket(conn, c.compressor, protocol.Get(key)); err != nil {
		return nil, false, errors.Wrap(err, "write get")
	}

	packet, err := protocol.ReadPacket(conn, c.compressor)
	if err != nil {
		return nil, false, errors.Wrap(err, "read get")
	}

	switch status := protocol.StatusFromUint16(packet.Header.VBucketOrStatus); status {
	case protocol.StatusNoError:
		return packet.Value, true, nil
	case protocol.StatusKeyNotFound:
		return nil, false, nil
	default:
		return nil, false, status
	}
}

// Set stores key/value with the given expiry (seconds; 0 means never
// expire subject to eviction, values over 30 days are an absolute
// Unix timestamp, interpreted server-side, not here).
func (c *Client) Set(key, value []byte, expire uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	conn := c.ring.GetConn(key)
	extras := protocol.SetExtras{Expire: expire}

	if err := protocol.WritePacket(conn, c.compressor, protocol.Set(key, value, extras)); err != nil {
		return errors.Wrap(err, "write set")
	}

	packet, err := protocol.ReadPacket(conn, c.compressor)
	if err != nil {
		return errors.Wrap(err, "read set")
	}

	return packet.ErrorForStatus()
}

// Delete removes key.
func (c *Client) Delete(key []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	conn := c.ring.GetConn(key)

	if err := protocol.WritePacket(conn, c.compressor, protocol.Delete(key)); err != nil {
		return errors.Wrap(err, "write delete")
	}

	packet, err := protocol.ReadPacket(conn, c.compressor)
	if err != nil {
		return errors.Wrap(err, "read delete")
	}

	return packet.ErrorForStatus()
}

// GetMulti pipelines a batch of gets per node using getkq for every
// key but the last on each node and a non-quiet getk as the sentinel
// that terminates that node's drain loop. A single key routed to a
// node is itself the sentinel: just a getk, no preceding getkq. The
// server still replies to a non-quiet get on miss, so KeyNotFound is
// accepted for the sentinel same as for any other reply.
func (c *Client) GetMulti(keys [][]byte) (*BulkGetResponse, error) {
	if len(keys) == 0 {
		return nil, ErrEmptyKeyList
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	resp := &BulkGetResponse{
		Successes: make(map[string][]byte),
		Errors:    make(map[string]error),
	}

	batches := c.ring.GetConns(keys)

	for _, batch := range batches {
		last := batch.Keys[len(batch.Keys)-1]
		rest := batch.Keys[:len(batch.Keys)-1]

		for _, key := range rest {
			if err := protocol.WritePacket(batch.Conn, c.compressor, protocol.GetKQ(key)); err != nil {
				return nil, errors.Wrap(err, "write getkq")
			}
		}
		if err := protocol.WritePacket(batch.Conn, c.compressor, protocol.GetK(last)); err != nil {
			return nil, errors.Wrap(err, "write getk")
		}
	}

	for _, batch := range batches {
		last := batch.Keys[len(batch.Keys)-1]

		for {
			packet, err := protocol.ReadPacket(batch.Conn, c.compressor)
			if err != nil {
				return nil, errors.Wrap(err, "read getmulti reply")
			}

			finished := string(packet.Key) == string(last)

			switch status := protocol.StatusFromUint16(packet.Header.VBucketOrStatus); status {
			case protocol.StatusNoError:
				resp.Successes[string(packet.Key)] = packet.Value
			case protocol.StatusKeyNotFound:
				// Dropped silently, sentinel or not.
			default:
				resp.Errors[string(packet.Key)] = status
			}

			if finished {
				break
			}
		}
	}

	return resp, nil
}

// SetMulti pipelines a batch of stores per node using setq for every
// entry but the last and a non-quiet set as the sentinel. Per the
// reference design, each node's drain loop stops at the first reply
// whose status is zero rather than by matching the sentinel's key.
// On a single connection replies are strictly FIFO, so in practice
// the zero-status reply IS the sentinel's ack, but a server that
// returned a spurious zero-status reply out of order would terminate
// the loop early. This is carried over deliberately, not corrected.
func (c *Client) SetMulti(entries map[string][]byte, expire uint32) (map[string]error, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyKeyList
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([][]byte, 0, len(entries))
	for k := range entries {
		keys = append(keys, []byte(k))
	}

	errs := make(map[string]error)
	batches := c.ring.GetConns(keys)
	extras := protocol.SetExtras{Expire: expire}

	for _, batch := range batches {
		last := batch.Keys[len(batch.Keys)-1]
		rest := batch.Keys[:len(batch.Keys)-1]

		for _, key := range rest {
			if err := protocol.WritePacket(batch.Conn, c.compressor, protocol.SetQ(key, entries[string(key)], extras)); err != nil {
				return nil, errors.Wrap(err, "write setq")
			}
		}
		if err := protocol.WritePacket(batch.Conn, c.compressor, protocol.Set(last, entries[string(last)], extras)); err != nil {
			return nil, errors.Wrap(err, "write set")
		}
	}

	for _, batch := range batches {
		for {
			packet, err := protocol.ReadPacket(batch.Conn, c.compressor)
			if err != nil {
				return nil, errors.Wrap(err, "read setmulti reply")
			}

			status := protocol.StatusFromUint16(packet.Header.VBucketOrStatus)
			if status != protocol.StatusNoError && status != protocol.StatusKeyNotFound {
				errs[string(packet.Key)] = status
			}
			if status == protocol.StatusNoError {
				break
			}
		}
	}

	return errs, nil
}

// DeleteMulti issues a plain (non-quiet) delete for every key; the
// binary protocol has no deleteq, and reads exactly one reply per
// key per node.
func (c *Client) DeleteMulti(keys [][]byte) (map[string]error, error) {
	if len(keys) == 0 {
		return nil, ErrEmptyKeyList
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	errs := make(map[string]error)
	batches := c.ring.GetConns(keys)

	for _, batch := range batches {
		for _, key := range batch.Keys {
			if err := protocol.WritePacket(batch.Conn, c.compressor, protocol.Delete(key)); err != nil {
				return nil, errors.Wrap(err, "write delete")
			}
		}
	}

	for _, batch := range batches {
		for range batch.Keys {
			packet, err := protocol.ReadPacket(batch.Conn, c.compressor)
			if err != nil {
				return nil, errors.Wrap(err, "read deletemulti reply")
			}
			if status := protocol.StatusFromUint16(packet.Header.VBucketOrStatus); status != protocol.StatusNoError {
				errs[string(packet.Key)] = status
			}
		}
	}

	return errs, nil
}

// Close releases every node Connection the Client's Ring owns. A
// Client must not be used after Close.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.ring.Close()
}

// KeepAlive pings every node in the ring with a noop and fails on the
// first non-zero status or transport error. It is meant to be called
// by an outer pool at checkout and check-in time, not by application
// code directly.
func (c *Client) KeepAlive() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.ring.Range(func(conn protocol.Connection) error {
		if err := protocol.WritePacket(conn, c.compressor, protocol.Noop()); err != nil {
			return errors.Wrap(err, "write noop")
		}
		packet, err := protocol.ReadPacket(conn, c.compressor)
		if err != nil {
			return errors.Wrap(err, "read noop")
		}
		return packet.ErrorForStatus()
	})
}
