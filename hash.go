package chash

import "github.com/cespare/xxhash/v2"

// HashFunc maps a key to a 32-bit hash. Implementations must be deterministic
// across processes so that bucket placement is reproducible.
type HashFunc func(key string) uint32

const djb2Seed uint32 = 5381

// DJB2 computes the 32-bit DJB2 hash of the key's bytes
func DJB2(key string) uint32 {
	hash := djb2Seed
	for i := 0; i < len(key); i++ {
		hash = (hash << 5) + hash + uint32(key[i])
	}
	return hash
}

// XXHash returns the low 32 bits of the key's xxhash64 digest
func XXHash(key string) uint32 {
	return uint32(xxhash.Sum64String(key))
}
