// Package era ties the consensus primitives together: it tracks the current
// era's parameters (seed, bonds, fault tolerance) and runs the engine that
// feeds blocks through leader validation, DAG storage and finality
// detection, rotating eras at finalized boundaries.
package era

import (
	"math/big"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/Fantom-foundation/lachesis-base/inter/idx"

	"github.com/rony4d/go-casper-core/inter"
	"github.com/rony4d/go-casper-core/sequencer"
)

// Era describes one era of the chain: a fixed validator set with a fixed
// leader-election seed, spanning Length ranks above its start block.
type Era struct {
	// Epoch numbers eras from 0 at genesis.
	Epoch idx.Epoch
	// Seed drives the era's leader schedule.
	Seed []byte
	// Bonds is the era's validator set with stakes, in genesis order.
	Bonds inter.Bonds
	// Start is the era's root block; it is finalized by definition.
	Start hash.Event
	// StartRank is Start's topological height.
	StartRank idx.Block
	// Length is the number of ranks the era spans.
	Length idx.Block
	// RFTT is the relative fault tolerance threshold, in [0, 1).
	RFTT *big.Rat
}

// EndRank is the rank at which the era hands over to its successor: the
// first finalized block at or above it becomes the next era's start.
func (e *Era) EndRank() idx.Block {
	return e.StartRank + e.Length
}

// Next derives the successor era rooted at the finalized boundary block.
// The new seed folds the boundary's magic bits into the current seed, so
// it is unknowable before the boundary block's content is fixed.
func (e *Era) Next(boundary *inter.Block) *Era {
	rFTT := new(big.Rat)
	if e.RFTT != nil {
		rFTT.Set(e.RFTT)
	}
	return &Era{
		Epoch:     e.Epoch + 1,
		Seed:      sequencer.ComputeSeed(e.Seed, boundary.MagicBits),
		Bonds:     e.Bonds.Copy(),
		Start:     boundary.ID,
		StartRank: boundary.Rank,
		Length:    e.Length,
		RFTT:      rFTT,
	}
}
