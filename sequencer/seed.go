// Package sequencer implements deterministic, stake-weighted leader
// election for an era.
//
// Every validator must derive the identical leader for a given tick, so the
// whole pipeline is fixed-point and platform-independent: the era seed is a
// Keccak-256 digest, the per-tick randomness comes from a fresh ChaCha20
// keystream (a fully specified generator with no OS entropy involved), and
// the stake-interval lookup compares exact integers, never floats.
package sequencer

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/rony4d/go-casper-core/utils/bits"
)

// ComputeSeed derives an era seed from the parent era's seed and the magic
// bits of the boundary block. The bits are packed MSB-first (the leftmost
// bit occupies bit 7 of the first byte, zero-padded on the right) and the
// concatenation parentSeed ++ packed is hashed with Keccak-256.
//
// Pure and deterministic: equal inputs yield an equal 32-byte seed on every
// platform.
func ComputeSeed(parentSeed []byte, magicBits []bool) []byte {
	return crypto.Keccak256(parentSeed, bits.PackBigEndian(magicBits))
}

// tickSeed derives the 32-byte generator key for one tick:
// Keccak-256(seed ++ little-endian-8-bytes(tick)).
func tickSeed(seed []byte, tick uint64) []byte {
	var le [8]byte
	binary.LittleEndian.PutUint64(le[:], tick)
	return crypto.Keccak256(seed, le[:])
}
