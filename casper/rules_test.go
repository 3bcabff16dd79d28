package casper

import (
	"math/big"
	"testing"
)

// TestNetworkConstants guards the chain ID constants used to tell networks
// apart.
func TestNetworkConstants(t *testing.T) {
	tests := []struct {
		name     string
		constant uint64
		want     uint64
	}{
		{"MainNetworkID", MainNetworkID, 0xca5},
		{"TestNetworkID", TestNetworkID, 0xca52},
		{"FakeNetworkID", FakeNetworkID, 0xca53},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.constant != tt.want {
				t.Errorf("%s = %d, want %d", tt.name, tt.constant, tt.want)
			}
		})
	}
}

func TestNetworkPresets(t *testing.T) {
	for _, rules := range []Rules{MainNetRules(), TestNetRules(), FakeNetRules()} {
		t.Run(rules.Name, func(t *testing.T) {
			if rules.NetworkID == 0 {
				t.Fatal("NetworkID is zero")
			}
			// the shipped governance table must always be valid
			r, err := rules.VersionRegistry()
			if err != nil {
				t.Fatalf("VersionRegistry() error = %v", err)
			}
			if got := r.VersionAt(0); got.Major == 0 {
				t.Errorf("genesis version = %s, want major >= 1", got)
			}
			// rFTT must stay inside [0, 1)
			rftt := rules.Eras.RFTT()
			if rftt.Sign() < 0 || rftt.Cmp(big.NewRat(1, 1)) >= 0 {
				t.Errorf("RFTT = %v, want in [0, 1)", rftt)
			}
			if rules.Eras.EraLength == 0 {
				t.Error("EraLength is zero")
			}
		})
	}
}

func TestFakeNetRules(t *testing.T) {
	rules := FakeNetRules()
	if rules.Name != "fake" {
		t.Errorf("Name = %q, want %q", rules.Name, "fake")
	}
	if rules.Eras.RFTT().Sign() != 0 {
		t.Errorf("fakenet RFTT = %v, want 0", rules.Eras.RFTT())
	}
	if rules.Eras.EraLength >= MainNetRules().Eras.EraLength {
		t.Error("fakenet eras should be shorter than mainnet eras")
	}
}

func TestRFTTZeroDenominator(t *testing.T) {
	e := EraRules{RFTTNum: 3, RFTTDen: 0}
	if e.RFTT().Sign() != 0 {
		t.Errorf("RFTT with zero denominator = %v, want 0", e.RFTT())
	}
}

func TestRulesString(t *testing.T) {
	if MainNetRules().String() == "" {
		t.Error("String() is empty")
	}
}
