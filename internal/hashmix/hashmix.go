// Package hashmix provides the seeded 64-bit hash primitive behind
// behaviour.Fingerprint (the F_int/F_ext keys) and the relative-trie
// signature table's verifying hash. Keys are hashed once with
// xxh3 (the same primitive bits.BitString.HashWithSeed uses) and the result
// is remixed with Stafford's 13th-variant finalizer so that two different
// seeds produce avalanching, independent values even when xxh3's
// own seed mixing is weak for nearby seeds.
package hashmix

import "github.com/zeebo/xxh3"

// Seeded hashes data under seed and remixes the result.
func Seeded(data []byte, seed uint64) uint64 {
	return remix(xxh3.HashSeed(data, seed))
}

// Remix re-mixes an already-hashed 64-bit value, e.g. to derive a second,
// independent value from a single hash call.
func Remix(z uint64) uint64 {
	return remix(z)
}

// remix is David Stafford's 13th-variant 64-bit finalizer, the same
// mixing step RecSplit applies after its murmur3 bucket hash.
func remix(z uint64) uint64 {
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
