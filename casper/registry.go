package casper

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"

	"github.com/rony4d/go-casper-core/inter"
)

// Governance table errors. All are configuration errors: the node must
// refuse to start with a table that trips any of them, since running with
// ambiguous governance rules is worse than not running.
var (
	ErrEmptyTable      = errors.New("protocol version table is empty")
	ErrNoZeroFloor     = errors.New("protocol version table has no threshold at height 0")
	ErrDuplicateHeight = errors.New("duplicate block height threshold")
)

// BlockThreshold declares that Version governs every block from Height
// (inclusive) onward, until superseded by a threshold with a greater height.
type BlockThreshold struct {
	Height  idx.Block
	Version ProtocolVersion
}

// VersionRegistry answers which protocol version governs a given block
// height. It owns an ordered threshold table, strictly descending by height,
// constructed once and immutable thereafter; reads need no locking.
type VersionRegistry struct {
	thresholds []BlockThreshold // descending by Height
}

// NewVersionRegistry validates the threshold table and builds the registry.
//
// The table must be non-empty, contain a threshold at height 0 (so every
// height from genesis on has a governing version), contain no duplicate
// heights, and its versions must follow the upgrade path rules when walked
// from the lowest height to the highest. The returned error names the rule
// that failed and the offending entry.
func NewVersionRegistry(thresholds []BlockThreshold) (*VersionRegistry, error) {
	if len(thresholds) == 0 {
		return nil, ErrEmptyTable
	}

	tt := make([]BlockThreshold, len(thresholds))
	copy(tt, thresholds)
	sort.Slice(tt, func(i, j int) bool {
		return tt[i].Height > tt[j].Height
	})

	if tt[len(tt)-1].Height != 0 {
		return nil, ErrNoZeroFloor
	}
	for i := 1; i < len(tt); i++ {
		higher, lower := tt[i-1], tt[i]
		if higher.Height == lower.Height {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateHeight, higher.Height)
		}
		if err := checkFollows(lower.Version, higher.Version); err != nil {
			return nil, fmt.Errorf("version succession %s (height %d) -> %s (height %d): %w",
				lower.Version, lower.Height, higher.Version, higher.Height, err)
		}
	}

	return &VersionRegistry{thresholds: tt}, nil
}

// VersionAt returns the protocol version governing the given block height:
// the version of the threshold with the greatest height not above it. Total
// for every height by the zero-floor invariant.
func (r *VersionRegistry) VersionAt(height idx.Block) ProtocolVersion {
	for _, t := range r.thresholds {
		if t.Height <= height {
			return t.Version
		}
	}
	// unreachable: construction guarantees a threshold at height 0
	panic("version table invariant violated: no threshold matched")
}

// VersionForBlock returns the version governing the block's rank, its
// topological height in the DAG.
func (r *VersionRegistry) VersionForBlock(b *inter.Block) ProtocolVersion {
	return r.VersionAt(b.Rank)
}

// Thresholds returns a copy of the table, descending by height.
func (r *VersionRegistry) Thresholds() []BlockThreshold {
	tt := make([]BlockThreshold, len(r.thresholds))
	copy(tt, r.thresholds)
	return tt
}
