// Package pool provides a bounded pool of memcached.Client instances,
// the external collaborator the core's construct/keep-alive hooks are
// built for: it owns Client lifetimes (create, recycle, limit) so the
// core itself never has to.
package pool

import (
	"log/slog"

	"github.com/hashicorp/go-multierror"

	memcached "github.com/memcachedcore/client"
)

// Factory builds one Client. Called by Get whenever the pool holds no
// usable idle client; the number of clients in flight is not capped.
type Factory func() (*memcached.Client, error)

// Pool hands out *memcached.Client values one at a time, same as the
// Client's own single-caller contract demands. Idle clients sit in a
// buffered channel; Get drains it first and only calls factory when
// empty.
type Pool struct {
	factory Factory
	clients chan *memcached.Client
}

// New builds a Pool holding at most size idle clients at once. size
// bounds idle capacity, not total clients in flight: Get still
// creates a fresh one via factory when the channel is empty.
func New(factory Factory, size int) *Pool {
	return &Pool{
		factory: factory,
		clients: make(chan *memcached.Client, size),
	}
}

// Get returns an idle client, pinging it with KeepAlive first, or
// builds a fresh one via factory if none are idle. A client that
// fails its keep-alive is closed and discarded rather than handed
// out; Get keeps trying idle clients until one survives or the idle
// channel runs dry.
func (p *Pool) Get() (*memcached.Client, error) {
	for {
		select {
		case c := <-p.clients:
			if err := c.KeepAlive(); err != nil {
				slog.Warn("memcached: pool recycle failed on checkout, discarding client", "err", err)
				_ = c.Close()
				continue
			}
			return c, nil
		default:
			return p.factory()
		}
	}
}

// Put returns c to the pool after a recycle keep-alive. A client that
// fails the keep-alive, or arrives once the pool is already at
// capacity, is closed rather than returned. The pool does not track
// or error on discarded clients, matching the fire-and-forget recycle
// path of a channel-backed pool.
func (p *Pool) Put(c *memcached.Client) {
	if c == nil {
		return
	}
	if err := c.KeepAlive(); err != nil {
		slog.Warn("memcached: pool recycle failed on check-in, discarding client", "err", err)
		_ = c.Close()
		return
	}

	select {
	case p.clients <- c:
	default:
		_ = c.Close()
	}
}

// Close closes every idle client currently in the pool, aggregating
// any failures. Clients checked out via Get and never returned are
// the caller's responsibility.
func (p *Pool) Close() error {
	close(p.clients)

	var result error
	for c := range p.clients {
		if err := c.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result
}
