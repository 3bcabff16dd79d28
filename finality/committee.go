// Package finality implements the per-era finality detector.
//
// The detector maintains a voting matrix: for every pair of validators
// (i, j) it records the latest block of j that i has transitively observed
// through justifications, alongside every validator's own latest block. As
// new blocks arrive the matrix only ever gains information (an entry never
// regresses to an older block), and after each update the detector checks
// whether the next undecided candidate has accumulated enough supporting
// stake to finalize. Finalization can cascade: one block may resolve a
// whole run of candidates at once.
package finality

import (
	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/Fantom-foundation/lachesis-base/inter/idx"
)

// Committee is the outcome of one successful finality check: the validators
// whose latest votes support the finalized block, with their summed stake.
// Ephemeral, produced per finalized candidate.
type Committee struct {
	// Block is the newly finalized block.
	Block hash.Event
	// Validators lists the supporters in ascending ID order.
	Validators []idx.ValidatorID
	// Stake is the supporters' summed stake.
	Stake uint64
}
