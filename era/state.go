package era

import (
	"crypto/sha256"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/rlp"
)

// State is a checkpoint of the engine's consensus progress. Two nodes that
// processed the same blocks hold identical States.
type State struct {
	Epoch         idx.Epoch
	Seed          []byte
	LastFinalized hash.Event
	FinalizedRank idx.Block
}

// Hash calculates the SHA256 hash of the RLP-encoded State, a compact
// fingerprint for cross-node comparison and checkpoint logs.
func (s State) Hash() hash.Hash {
	hasher := sha256.New()
	err := rlp.Encode(hasher, &s)
	if err != nil {
		panic("can't hash: " + err.Error())
	}
	return hash.BytesToHash(hasher.Sum(nil))
}
