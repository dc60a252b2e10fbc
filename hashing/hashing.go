// Package hashing computes content digests of values that know how to feed themselves
// into a hash.Hash. Digests are used to correlate validation runs with the exact data
// they looked at.
package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"

	"github.com/OneOfOne/xxhash"
	"github.com/zeebo/xxh3"
)

// HashFunc is a function that takes a Hashable object
// and returns a string representation of its hashing.
type HashFunc func(hashable Hashable) (string, error)

// Hashable is an interface that allows an object to update
// a hash.Hash with its contents.
type Hashable interface {
	UpdateHash(h hash.Hash) error
}

func digest(h hash.Hash, hashable Hashable) (string, error) {
	if err := hashable.UpdateHash(h); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// Sha256 returns the hex-encoded SHA256 digest of the given Hashable.
func Sha256(hashable Hashable) (string, error) {
	return digest(sha256.New(), hashable)
}

// XXH3 returns the hex-encoded 64-bit XXH3 digest of the given Hashable.
// It is the default fingerprint: fast, and collisions only cost log correlation.
func XXH3(hashable Hashable) (string, error) {
	return digest(xxh3.New(), hashable)
}

// XXHash64 returns the hex-encoded 64-bit xxHash digest of the given Hashable.
func XXHash64(hashable Hashable) (string, error) {
	return digest(xxhash.New64(), hashable)
}

// HashableBytes hashes raw content, such as a source file before parsing.
type HashableBytes []byte

func (b HashableBytes) UpdateHash(h hash.Hash) error {
	_, err := h.Write(b)

	return err
}
