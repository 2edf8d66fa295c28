package lfmap

import (
	"github.com/cespare/xxhash/v2"
	"github.com/segmentio/fasthash/fnv1a"
)

// DefaultHasher returns the default key-hash function for string keys,
// backed by xxhash: fast, non-cryptographic, good avalanche for short
// keys.
func DefaultHasher() func(string) uint64 {
	return func(s string) uint64 {
		return xxhash.Sum64String(s)
	}
}

// BytesHasher is DefaultHasher's []byte-keyed counterpart.
func BytesHasher() func([]byte) uint64 {
	return func(b []byte) uint64 {
		return xxhash.Sum64(b)
	}
}

// IntHasher returns a hash function for integer keys using fasthash's
// FNV-1a, which mixes an integer's bits well enough to avoid the
// clustering a raw identity hash produces against this table's linear
// probing.
func IntHasher[T ~int | ~int8 | ~int16 | ~int32 | ~int64 |
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64]() func(T) uint64 {
	return func(v T) uint64 {
		return fnv1a.HashUint64(uint64(v))
	}
}
