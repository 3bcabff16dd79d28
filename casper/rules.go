package casper

import (
	"encoding/json"
	"math/big"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
)

// Network identification constants.
const (
	// MainNetworkID is the chain ID of the main network.
	MainNetworkID uint64 = 0xca5

	// TestNetworkID is the chain ID of the public test network.
	TestNetworkID uint64 = 0xca52

	// FakeNetworkID is the chain ID of local/fake networks used in testing.
	FakeNetworkID uint64 = 0xca53
)

// EraRules holds the per-era consensus parameters.
type EraRules struct {
	// RFTTNum/RFTTDen express the relative fault-tolerance threshold as an
	// exact fraction in [0, 1). Finality requires supporting stake of at
	// least total/2 + total*rFTT; rFTT = 0 means strict majority. The
	// fraction is kept as integers so every validator evaluates the
	// threshold identically.
	RFTTNum uint64
	RFTTDen uint64

	// EraLength is the number of block ranks an era spans before the bond
	// set and seed rotate.
	EraLength idx.Block

	// MagicBitsLen is the number of magic bits an era-boundary block must
	// carry for the child era's seed derivation.
	MagicBitsLen int
}

// RFTT returns the fault-tolerance threshold as an exact rational.
func (e EraRules) RFTT() *big.Rat {
	if e.RFTTDen == 0 {
		return new(big.Rat)
	}
	return new(big.Rat).SetFrac(new(big.Int).SetUint64(e.RFTTNum), new(big.Int).SetUint64(e.RFTTDen))
}

// Rules describes the complete consensus configuration of a network.
type Rules struct {
	Name      string
	NetworkID uint64

	// Versions is the protocol-version governance table. It is validated
	// and frozen into a VersionRegistry at startup.
	Versions []BlockThreshold

	Eras EraRules
}

// VersionRegistry validates the governance table and freezes it.
func (r Rules) VersionRegistry() (*VersionRegistry, error) {
	return NewVersionRegistry(r.Versions)
}

// MainNetRules returns the production network configuration.
func MainNetRules() Rules {
	return Rules{
		Name:      "main",
		NetworkID: MainNetworkID,
		Versions:  DefaultVersionThresholds(),
		Eras: EraRules{
			RFTTNum:      1,
			RFTTDen:      100, // 1% margin above strict majority
			EraLength:    100000,
			MagicBitsLen: 256,
		},
	}
}

// TestNetRules returns the public test network configuration. It mirrors
// mainnet parameters for realistic testing.
func TestNetRules() Rules {
	return Rules{
		Name:      "test",
		NetworkID: TestNetworkID,
		Versions:  DefaultVersionThresholds(),
		Eras: EraRules{
			RFTTNum:      1,
			RFTTDen:      100,
			EraLength:    100000,
			MagicBitsLen: 256,
		},
	}
}

// FakeNetRules returns the configuration for local/fake networks. Eras are
// short and rFTT is zero so finality scenarios resolve with small stakes.
func FakeNetRules() Rules {
	return Rules{
		Name:      "fake",
		NetworkID: FakeNetworkID,
		Versions:  DefaultVersionThresholds(),
		Eras: EraRules{
			RFTTNum:      0,
			RFTTDen:      1,
			EraLength:    100,
			MagicBitsLen: 16,
		},
	}
}

// DefaultVersionThresholds returns the governance table shipped with the
// node: the genesis protocol plus the scheduled upgrades.
func DefaultVersionThresholds() []BlockThreshold {
	return []BlockThreshold{
		{Height: 0, Version: ProtocolVersion{Major: 1, Minor: 0, Patch: 0}},
		{Height: 500000, Version: ProtocolVersion{Major: 1, Minor: 1, Patch: 0}},
		{Height: 1500000, Version: ProtocolVersion{Major: 2, Minor: 0, Patch: 0}},
	}
}

// String returns a JSON representation of the rules for logging and config
// dumps.
func (r Rules) String() string {
	b, _ := json.Marshal(&r)
	return string(b)
}
