package inter

import (
	"errors"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/Fantom-foundation/lachesis-base/inter/pos"
)

// Errors of bond list validation.
var (
	ErrNoBonds       = errors.New("bond list is empty")
	ErrZeroStake     = errors.New("bonded stake must be positive")
	ErrDuplicateBond = errors.New("duplicate validator in bond list")
)

// Bond is one validator's stake entry of an era's bond list.
type Bond struct {
	ID    idx.ValidatorID
	Stake pos.Weight
}

// Bonds is the ordered bond list of an era. The order is fixed at era setup
// and is consensus-critical: leader election walks stake intervals in this
// exact order on every validator.
type Bonds []Bond

// Validate checks the list is non-empty, every stake is positive and no
// validator appears twice.
func (bb Bonds) Validate() error {
	if len(bb) == 0 {
		return ErrNoBonds
	}
	seen := make(map[idx.ValidatorID]bool, len(bb))
	for _, b := range bb {
		if b.Stake == 0 {
			return ErrZeroStake
		}
		if seen[b.ID] {
			return ErrDuplicateBond
		}
		seen[b.ID] = true
	}
	return nil
}

// Copy returns an independent copy of the bond list.
func (bb Bonds) Copy() Bonds {
	cp := make(Bonds, len(bb))
	copy(cp, bb)
	return cp
}

// TotalStake sums all stakes. Stakes are 32-bit weights, so the sum cannot
// overflow uint64.
func (bb Bonds) TotalStake() uint64 {
	total := uint64(0)
	for _, b := range bb {
		total += uint64(b.Stake)
	}
	return total
}

// Validators builds the weighted validator set used by finality detection.
func (bb Bonds) Validators() *pos.Validators {
	builder := pos.NewBuilder()
	for _, b := range bb {
		builder.Set(b.ID, b.Stake)
	}
	return builder.Build()
}
