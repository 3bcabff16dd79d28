package sequencer

import (
	"encoding/binary"
	mathbits "math/bits"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"golang.org/x/crypto/chacha20"

	"github.com/rony4d/go-casper-core/inter"
)

// Sequencer elects the block-production leader for each round tick of an
// era. It is immutable after construction; Elect is a pure function of the
// tick, so concurrent calls from any number of goroutines need no locking.
type Sequencer struct {
	seed  []byte
	bonds inter.Bonds
	total uint64
}

// New builds a sequencer over the era's seed and ordered bond list. The
// bond order is consensus-critical: all validators walk the same stake
// intervals. Configuration errors (empty list, non-positive stake) are
// returned, not deferred to Elect, which cannot fail afterwards.
func New(seed []byte, bonds inter.Bonds) (*Sequencer, error) {
	if err := bonds.Validate(); err != nil {
		return nil, err
	}
	cp := make(inter.Bonds, len(bonds))
	copy(cp, bonds)
	return &Sequencer{
		seed:  append([]byte{}, seed...),
		bonds: cp,
		total: cp.TotalStake(),
	}, nil
}

// Elect returns the validator entitled to produce a block at the given
// tick.
//
// A fresh ChaCha20 keystream is keyed with the per-tick seed and 8 of its
// bytes form a uniform 64-bit draw r. The elected stake offset is
// floor(r/2^64 * totalStake), computed exactly as the high word of the
// 128-bit product r*totalStake. The walk then picks the first validator
// whose inclusive cumulative stake strictly exceeds the offset, so each
// validator owns the half-open interval [cumPrev, cumPrev+stake); the
// strict comparison keeps interval lower bounds from being assigned twice.
// The last validator also absorbs any residual, though with exact integer
// arithmetic the offset is always below the total.
func (s *Sequencer) Elect(tick uint64) idx.ValidatorID {
	r := s.draw(tick)
	target, _ := mathbits.Mul64(r, s.total)

	cum := uint64(0)
	for _, b := range s.bonds {
		cum += uint64(b.Stake)
		if cum > target {
			return b.ID
		}
	}
	return s.bonds[len(s.bonds)-1].ID
}

// TotalStake returns the summed stake of the bond list.
func (s *Sequencer) TotalStake() uint64 {
	return s.total
}

// draw produces the uniform 64-bit value for a tick. A new generator
// instance is constructed per call: re-seeding a shared generator is not
// guaranteed to reset its state on every implementation, and a transient
// instance keeps Elect stateless.
func (s *Sequencer) draw(tick uint64) uint64 {
	key := tickSeed(s.seed, tick)
	nonce := make([]byte, chacha20.NonceSize)
	stream, err := chacha20.NewUnauthenticatedCipher(key, nonce)
	if err != nil {
		// key and nonce sizes are correct by construction
		panic("leader draw: " + err.Error())
	}
	var buf [8]byte
	stream.XORKeyStream(buf[:], buf[:])
	return binary.BigEndian.Uint64(buf[:])
}
