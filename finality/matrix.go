package finality

import (
	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/Fantom-foundation/lachesis-base/inter/idx"
)

// voteRef points at a concrete block in the era DAG.
type voteRef struct {
	block hash.Event
	rank  idx.Block
}

// votingMatrix tracks, per ordered validator pair (observer, creator), the
// highest-rank block of creator that observer has transitively seen, plus
// every validator's own latest block. Entries only move forward: an update
// with a lower or equal rank is a no-op.
type votingMatrix struct {
	ids    []idx.ValidatorID
	member map[idx.ValidatorID]bool
	seen   map[idx.ValidatorID]map[idx.ValidatorID]voteRef
	latest map[idx.ValidatorID]voteRef
}

// newVotingMatrix seeds every cell with the era start block, so that the
// era boundary acts as the universally-known floor of the matrix.
func newVotingMatrix(ids []idx.ValidatorID, eraStart voteRef) *votingMatrix {
	m := &votingMatrix{
		ids:    ids,
		member: make(map[idx.ValidatorID]bool, len(ids)),
		seen:   make(map[idx.ValidatorID]map[idx.ValidatorID]voteRef, len(ids)),
		latest: make(map[idx.ValidatorID]voteRef, len(ids)),
	}
	for _, i := range ids {
		m.member[i] = true
		m.latest[i] = eraStart
		row := make(map[idx.ValidatorID]voteRef, len(ids))
		for _, j := range ids {
			row[j] = eraStart
		}
		m.seen[i] = row
	}
	return m
}

// updateSeen records that observer has seen creator's block ref.
// Returns false if the matrix already held an equal or newer entry.
func (m *votingMatrix) updateSeen(observer, creator idx.ValidatorID, ref voteRef) bool {
	if !m.member[observer] || !m.member[creator] {
		return false
	}
	if ref.rank <= m.seen[observer][creator].rank {
		return false
	}
	m.seen[observer][creator] = ref
	return true
}

// updateLatest advances creator's own latest block.
func (m *votingMatrix) updateLatest(creator idx.ValidatorID, ref voteRef) bool {
	if !m.member[creator] {
		return false
	}
	if ref.rank <= m.latest[creator].rank {
		return false
	}
	m.latest[creator] = ref
	return true
}
