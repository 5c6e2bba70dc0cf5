// Package hash provides the pluggable hash strategies the ring
// package uses to place keys and endpoints on the hash ring.
package hash

// HashFunc maps an arbitrary byte string to a 32-bit hash. The ring
// uses the value both to place a node's replica buckets and to find
// the bucket a key belongs to, so two calls with the same input must
// always agree within one ring's lifetime.
type HashFunc interface {
	Hash(key []byte) uint32
}

// Factory builds a seeded HashFunc. The ring calls it once per
// replica during construction (with the replica index as seed) and
// once more at seed 0 for key lookup.
type Factory func(seed uint32) HashFunc

// MurmurFactory is the ring's default hash strategy.
func MurmurFactory(seed uint32) HashFunc { return NewMurmur3(seed) }

// CRC32Factory ignores its seed (CRC32 has none) and is provided as
// an alternate, swappable ring strategy.
func CRC32Factory(uint32) HashFunc { return NewCRC32() }
