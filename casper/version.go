// Package casper defines the network rules and protocol-version governance
// for the chain.
//
// This package provides:
//   - ProtocolVersion: semantic protocol versions ordered lexicographically
//   - BlockThreshold / VersionRegistry: the governance table mapping
//     block-height ranges to the protocol version that governs them
//   - Rules: per-network configuration presets (mainnet, testnet, fakenet)
//     bundling the governance table with era parameters
//
// The registry is built once at node startup from governance configuration
// and is immutable afterwards, so it is safe for unsynchronized concurrent
// reads from any goroutine.
package casper

import (
	"errors"
	"fmt"
)

// ProtocolVersion identifies a revision of the consensus protocol. Versions
// are ordered lexicographically by (Major, Minor, Patch). Components are
// unsigned, so negative versions are unrepresentable by construction.
type ProtocolVersion struct {
	Major uint32
	Minor uint32
	Patch uint32
}

// Version governance errors. Every upgrade path must reset lower components
// and never skip a major version, matching semantic-versioning discipline.
var (
	ErrMajorRegress   = errors.New("major version must not regress")
	ErrMajorSkip      = errors.New("major version must increase by at most 1")
	ErrNoReset        = errors.New("minor and patch must reset to 0 on a major version bump")
	ErrMinorRegress   = errors.New("minor version must not regress")
	ErrMinorSkip      = errors.New("minor version must increase by at most 1")
	ErrPatchNoAdvance = errors.New("patch version must increase monotonically")
)

// String formats the version as "major.minor.patch".
func (v ProtocolVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Cmp compares two versions lexicographically: -1 when v is lower than o,
// 0 when equal, +1 when higher.
func (v ProtocolVersion) Cmp(o ProtocolVersion) int {
	cmp := func(a, b uint32) int {
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		default:
			return 0
		}
	}
	if c := cmp(v.Major, o.Major); c != 0 {
		return c
	}
	if c := cmp(v.Minor, o.Minor); c != 0 {
		return c
	}
	return cmp(v.Patch, o.Patch)
}

// checkFollows validates that next is a legal direct successor of prev on
// the governance upgrade path:
//   - the major version may grow by at most 1, and a major bump requires
//     minor and patch to reset to 0;
//   - within a major version, the minor version may grow by at most 1, and
//     a minor bump frees the patch;
//   - within a minor version, the patch must strictly increase;
//   - no component may regress.
func checkFollows(prev, next ProtocolVersion) error {
	switch {
	case next.Major < prev.Major:
		return ErrMajorRegress
	case next.Major > prev.Major+1:
		return ErrMajorSkip
	case next.Major == prev.Major+1:
		if next.Minor != 0 || next.Patch != 0 {
			return ErrNoReset
		}
		return nil
	}
	// same major
	switch {
	case next.Minor < prev.Minor:
		return ErrMinorRegress
	case next.Minor > prev.Minor+1:
		return ErrMinorSkip
	case next.Minor == prev.Minor+1:
		return nil
	}
	// same major and minor
	if next.Patch <= prev.Patch {
		return ErrPatchNoAdvance
	}
	return nil
}
