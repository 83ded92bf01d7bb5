// Package hash wraps xxHash64 for fast, non-cryptographic fingerprints.
package hash

import "github.com/cespare/xxhash/v2"

// ID computes the xxHash64 of the given string.
func ID(data string) uint64 {
	return xxhash.Sum64String(data)
}

// Bytes computes the xxHash64 of the given byte slice.
//
// It is the []byte counterpart of ID, which the dict package uses as a
// cheap prefilter: two entries with different hashes cannot be equal, so
// the linear scan can skip the byte-exact comparison (still O(N<=64),
// just cheaper per entry).
func Bytes(data []byte) uint64 {
	return xxhash.Sum64(data)
}
