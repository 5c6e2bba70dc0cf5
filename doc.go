// Package memcached is a client for a memcached cluster speaking the
// binary protocol. It routes keys to nodes by consistent hashing,
// pipelines multi-key requests per node using the protocol's quiet
// opcodes, and surfaces per-key errors distinguished from transport
// failures.
//
// The transport and pooling layers are external collaborators: New
// dials nodes through a pluggable conn.Dial-backed default (override
// with WithConnectFunc), and a Client is meant to be managed by an
// outer pool that calls KeepAlive at checkout and check-in.
package memcached
