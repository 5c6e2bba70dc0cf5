package hash

import "encoding/binary"

// c1/c2 are the mixing constants of the canonical x86_32 variant of
// MurmurHash3. The ring's determinism (spec scenario: fixed endpoint
// strings and seeds always produce the same bucket table) depends on
// using exactly this algorithm, not the 64-bit x64 variant.
const (
	c1 = uint32(0xcc9e2d51)
	c2 = uint32(0x1b873593)
)

type Murmur3 struct {
	seed uint32
}

func NewMurmur3(seed uint32) *Murmur3 {
	return &Murmur3{seed: seed}
}

func (h *Murmur3) Hash(key []byte) uint32 {
	length := len(key)
	hash := h.seed

	// Body: four bytes at a time, little-endian.
	nblocks := length / 4
	for i := 0; i < nblocks; i++ {
		k := binary.LittleEndian.Uint32(key[i*4 : i*4+4])

		k *= c1
		k = (k << 15) | (k >> 17)
		k *= c2

		hash ^= k
		hash = (hash << 13) | (hash >> 19)
		hash = hash*5 + 0xe6546b64
	}

	// Tail: the 0-3 bytes too short for a full block.
	tail := key[nblocks*4:]
	k1 := uint32(0)
	switch length & 3 {
	case 3:
		k1 ^= uint32(tail[2]) << 16
		fallthrough
	case 2:
		k1 ^= uint32(tail[1]) << 8
		fallthrough
	case 1:
		k1 ^= uint32(tail[0])
		k1 *= c1
		k1 = (k1 << 15) | (k1 >> 17)
		k1 *= c2
		hash ^= k1
	}

	// fmix32 finalizer.
	hash ^= uint32(length)
	hash ^= hash >> 16
	hash *= 0x85ebca6b
	hash ^= hash >> 13
	hash *= 0xc2b2ae35
	hash ^= hash >> 16

	return hash
}
