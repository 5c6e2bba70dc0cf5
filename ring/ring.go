// Package ring implements the consistent-hash ring that maps a key to
// one of a fixed set of memcached nodes, and partitions a batch of
// keys into one ordered, non-empty sublist per node.
package ring

import (
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/memcachedcore/client/hash"
	"github.com/memcachedcore/client/protocol"
)

// DefaultBucketCount is the ring size used when no explicit
// bucket-count is supplied, matching the reference implementation.
const DefaultBucketCount = 360

// ConnectFunc dials one node endpoint, producing the Connection the
// ring will own for that node's lifetime. The concrete transport is
// an external collaborator of this package; see the conn package for
// a TCP implementation.
type ConnectFunc func(endpoint string) (protocol.Connection, error)

type node struct {
	endpoint string
	conn     protocol.Connection
}

type placement struct {
	hash      uint32
	nodeIndex int
}

// Ring owns every node Connection for its lifetime and decides, for
// any key, which node owns it. Buckets are built once at construction
// and never mutated afterward.
type Ring struct {
	nodes   []node
	buckets []placement

	// keyHash is the seed-0 hasher used to locate a key on the ring;
	// hash.HashFunc bakes its seed in at construction, so a fresh
	// instance at seed 0 is kept around rather than reconstructed on
	// every lookup.
	keyHash hash.HashFunc
}

// Batch is one node's share of a partitioned key batch: the
// Connection to use, and the keys (in original input order) routed to
// it.
type Batch struct {
	Conn protocol.Connection
	Keys [][]byte
}

// New builds a ring over the given endpoints with DefaultBucketCount
// buckets and hash.NewMurmur3 as the hash strategy, dialing every
// endpoint via connect.
func New(endpoints []string, connect ConnectFunc) (*Ring, error) {
	return NewWithOptions(endpoints, DefaultBucketCount, hash.MurmurFactory, connect)
}

// NewWithOptions builds a ring with an explicit bucket count and hash
// strategy factory. hashFactory(seed) must return a HashFunc whose
// seed is fixed for its lifetime; the ring calls it once per replica
// during construction and once more (at seed 0) to build the hasher
// that every key lookup reuses.
func NewWithOptions(
	endpoints []string,
	bucketCount int,
	hashFactory hash.Factory,
	connect ConnectFunc,
) (*Ring, error) {
	if len(endpoints) == 0 {
		return nil, errors.New("ring: no endpoints given")
	}
	if bucketCount <= 0 {
		bucketCount = DefaultBucketCount
	}

	nodes := make([]node, len(endpoints))
	if err := dialAll(endpoints, connect, nodes); err != nil {
		return nil, err
	}

	share := bucketCount / len(endpoints)
	if share == 0 {
		slog.Warn("memcached: bucket count smaller than node count, some nodes will own zero buckets",
			"bucketCount", bucketCount,
			"nodeCount", len(endpoints),
		)
	} else if bucketCount%len(endpoints) != 0 {
		slog.Warn("memcached: bucket count does not divide evenly across nodes",
			"bucketCount", bucketCount,
			"nodeCount", len(endpoints),
			"share", share,
		)
	}

	buckets := make([]placement, 0, share*len(endpoints))
	for nodeIndex, endpoint := range endpoints {
		for replica := 0; replica < share; replica++ {
			h := hashFactory(uint32(replica)).Hash([]byte(endpoint))
			buckets = append(buckets, placement{hash: h, nodeIndex: nodeIndex})
		}
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].hash < buckets[j].hash })

	return &Ring{
		nodes:   nodes,
		buckets: buckets,
		keyHash: hashFactory(0),
	}, nil
}

// dialAll connects every endpoint concurrently (dialing one node is
// independent of dialing any other; the per-operation single-threaded
// cooperative contract governs request dispatch, not one-time
// construction) and aggregates any failures.
func dialAll(endpoints []string, connect ConnectFunc, out []node) error {
	var wg sync.WaitGroup
	errCh := make(chan error, len(endpoints))

	for i, endpoint := range endpoints {
		wg.Add(1)
		i, endpoint := i, endpoint
		go func() {
			defer wg.Done()
			conn, err := connect(endpoint)
			if err != nil {
				errCh <- errors.Wrapf(err, "dial %s", endpoint)
				return
			}
			out[i] = node{endpoint: endpoint, conn: conn}
		}()
	}

	wg.Wait()
	close(errCh)

	var result error
	for err := range errCh {
		result = multierror.Append(result, err)
	}
	return result
}

// FindBucket returns the index of the node owning key: the smallest
// bucket whose hash is >= the key's hash, wrapping to bucket 0 when
// the key's hash exceeds every bucket's.
func (r *Ring) FindBucket(key []byte) int {
	pos := r.keyHash.Hash(key)
	i := sort.Search(len(r.buckets), func(i int) bool { return r.buckets[i].hash >= pos })
	if i == len(r.buckets) {
		i = 0
	}
	return r.buckets[i].nodeIndex
}

// GetConn returns the Connection owning key.
func (r *Ring) GetConn(key []byte) protocol.Connection {
	return r.nodes[r.FindBucket(key)].conn
}

// GetConns partitions keys into per-node batches, preserving both the
// relative order of keys routed to the same node and the overall
// multiset of keys. Only nodes with at least one routed key appear in
// the result, in node index order.
func (r *Ring) GetConns(keys [][]byte) []Batch {
	perNode := make([][][]byte, len(r.nodes))
	for _, key := range keys {
		idx := r.FindBucket(key)
		perNode[idx] = append(perNode[idx], key)
	}

	batches := make([]Batch, 0, len(r.nodes))
	for i, keys := range perNode {
		if len(keys) == 0 {
			continue
		}
		batches = append(batches, Batch{Conn: r.nodes[i].conn, Keys: keys})
	}
	return batches
}

// Range calls fn for every node's Connection in node index order,
// stopping at the first error.
func (r *Ring) Range(fn func(protocol.Connection) error) error {
	for _, n := range r.nodes {
		if err := fn(n.conn); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of nodes in the ring.
func (r *Ring) Len() int { return len(r.nodes) }

// Close closes every node Connection that implements io.Closer,
// aggregating any failures. Connections that don't implement Closer
// (a bare in-memory fake, say) are simply skipped.
func (r *Ring) Close() error {
	var result error
	for _, n := range r.nodes {
		closer, ok := n.conn.(io.Closer)
		if !ok {
			continue
		}
		if err := closer.Close(); err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "close %s", n.endpoint))
		}
	}
	return result
}
