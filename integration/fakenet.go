// Package integration assembles a runnable consensus core from presets.
// Fakenet is the local/test profile: a deterministic genesis whose validator
// keys derive from the validator index, so every developer machine and CI
// run builds the identical chain setup without any key exchange.
package integration

import (
	"crypto/ecdsa"
	"encoding/binary"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/Fantom-foundation/lachesis-base/inter/pos"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-casper-core/casper"
	"github.com/rony4d/go-casper-core/casper/genesis"
	"github.com/rony4d/go-casper-core/dagstore"
	"github.com/rony4d/go-casper-core/era"
	"github.com/rony4d/go-casper-core/inter/validatorpk"
	"github.com/rony4d/go-casper-core/utils/bits"
)

// FakeStake is every fakenet validator's stake.
const FakeStake = pos.Weight(1000)

// FakeKey returns the deterministic private key of fakenet validator n.
// Never use these keys outside local networks: anyone can derive them.
func FakeKey(n idx.ValidatorID) *ecdsa.PrivateKey {
	tag := make([]byte, 4)
	binary.BigEndian.PutUint32(tag, uint32(n))
	seed := crypto.Keccak256([]byte("fakenet-validator"), tag)
	key, err := crypto.ToECDSA(seed)
	if err != nil {
		panic("can't derive fakenet key: " + err.Error())
	}
	return key
}

// FakePubKey returns the public key of fakenet validator n.
func FakePubKey(n idx.ValidatorID) validatorpk.PubKey {
	return validatorpk.PubKey{
		Type: validatorpk.Types.Secp256k1,
		Raw:  crypto.FromECDSAPub(&FakeKey(n).PublicKey),
	}
}

// FakeMagicBits derives an era-boundary block's magic bits from its parent,
// so every fakenet node proposes identical boundary content.
func FakeMagicBits(parent hash.Event, count int) []bool {
	entropy := crypto.Keccak256([]byte("fakenet-magic"), parent.Bytes())
	return bits.UnpackBigEndian(entropy, count)
}

// FakeGenesis builds the fakenet genesis with validators 1..num, equal
// stakes and fakenet rules.
func FakeGenesis(num idx.ValidatorID) genesis.Genesis {
	validators := make([]genesis.Validator, 0, num)
	for n := idx.ValidatorID(1); n <= num; n++ {
		validators = append(validators, genesis.Validator{
			ID:     n,
			PubKey: FakePubKey(n),
			Stake:  FakeStake,
		})
	}
	return genesis.Genesis{
		Rules:      casper.FakeNetRules(),
		Validators: validators,
		EraSeed:    crypto.Keccak256([]byte("fakenet-era-zero")),
	}
}

// NewFromGenesis assembles an engine over an in-memory DAG store from a
// validated genesis configuration.
func NewFromGenesis(g genesis.Genesis, logger *logrus.Logger) (*era.Engine, *dagstore.MemStore, error) {
	if err := g.Validate(); err != nil {
		return nil, nil, err
	}
	store := dagstore.NewMemStore()
	engine, err := era.NewEngine(store, g.Rules, g.Block(), g.Era(), logger)
	if err != nil {
		return nil, nil, err
	}
	return engine, store, nil
}

// FakeEngine assembles an engine from the fakenet genesis. It is the
// backing of the launcher's demo mode and of integration tests.
func FakeEngine(num idx.ValidatorID, logger *logrus.Logger) (*era.Engine, *dagstore.MemStore, genesis.Genesis, error) {
	g := FakeGenesis(num)
	engine, store, err := NewFromGenesis(g, logger)
	return engine, store, g, err
}
