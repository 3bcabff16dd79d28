// Package inter defines the core consensus data structures shared across the
// node: blocks of the justification DAG, validator bonds, and timestamps.
//
// Key concepts:
//   - Block: one vertex of the DAG; it extends a single parent and carries
//     justifications, the creator's claims about the latest block it has
//     observed from every other validator.
//   - Rank: a block's topological height, the longest path length from the
//     era start; parent rank plus one.
//   - Bond: a validator's stake entry; bond lists are ordered and that order
//     is consensus-critical for leader election.
//
// Blocks are identified by the Keccak-256 hash of their canonical encoding
// (see block_serializer.go), so every validator derives identical IDs.
package inter

import (
	"time"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/Fantom-foundation/lachesis-base/inter/idx"
)

// Timestamp is a UNIX nanoseconds timestamp.
type Timestamp uint64

// FromTime converts t into a Timestamp.
func FromTime(t time.Time) Timestamp {
	return Timestamp(t.UnixNano())
}

// Time converts the timestamp back into time.Time.
func (t Timestamp) Time() time.Time {
	return time.Unix(0, int64(t))
}

// Justification is a creator's reference to the latest block it has observed
// from another validator. Justifications build the causal/voting structure
// of the DAG that finality detection walks.
type Justification struct {
	Validator idx.ValidatorID
	Block     hash.Event
}

// Block is a vertex of the justification DAG.
//
// A block extends exactly one Parent and its Rank must equal the parent's
// rank plus one (the era start block has rank 0 and a zero parent hash).
// MagicBits are only present on era-boundary blocks; they are mixed into the
// next era's seed derivation.
type Block struct {
	// ID is the Keccak-256 hash of the block's canonical encoding. It is
	// derived, not serialized; see HashID.
	ID hash.Event

	Parent  hash.Event
	Creator idx.ValidatorID
	Rank    idx.Block
	Time    Timestamp

	// MagicBits is empty except on era-boundary blocks.
	MagicBits []bool

	// Justifications must be sorted by validator ID with no duplicates;
	// the canonical encoder rejects anything else.
	Justifications []Justification
}

// EstimateSize returns an approximate in-memory size of the block in bytes.
// Used for cache accounting; it does not try to match the serialized size.
func (b *Block) EstimateSize() int {
	hashes := 2 + len(b.Justifications) // ID + Parent + one per justification
	return hashes*32 + len(b.Justifications)*4 + len(b.MagicBits) + 8 + 8 + 4
}

// SeenBy reports the block hash this block justifies for the given
// validator, or false when the block carries no justification for it.
func (b *Block) SeenBy(v idx.ValidatorID) (hash.Event, bool) {
	for _, j := range b.Justifications {
		if j.Validator == v {
			return j.Block, true
		}
	}
	return hash.ZeroEvent, false
}
