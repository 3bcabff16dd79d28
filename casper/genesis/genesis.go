// Package genesis defines the chain's genesis configuration: the network
// rules, the initial bond list with validator keys, and the era-zero seed
// that all nodes must agree on before the first block.
package genesis

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/Fantom-foundation/lachesis-base/inter/pos"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/rony4d/go-casper-core/casper"
	"github.com/rony4d/go-casper-core/era"
	"github.com/rony4d/go-casper-core/inter"
	"github.com/rony4d/go-casper-core/inter/validatorpk"
)

var (
	ErrNoSeed    = errors.New("genesis era seed is empty")
	ErrBadPubKey = errors.New("genesis validator has a malformed public key")
)

// Validator is one entry of the genesis bond list.
type Validator struct {
	ID     idx.ValidatorID
	PubKey validatorpk.PubKey
	Stake  pos.Weight
}

// Genesis is the complete chain setup. It is immutable after validation;
// its hashable content determines the genesis block ID, so any divergence
// between nodes surfaces immediately.
type Genesis struct {
	Rules      casper.Rules
	Validators []Validator
	EraSeed    []byte
}

// Bonds returns the bond list in genesis order. The order is
// consensus-critical: leader election walks it identically on every node.
func (g Genesis) Bonds() inter.Bonds {
	bonds := make(inter.Bonds, len(g.Validators))
	for i, v := range g.Validators {
		bonds[i] = inter.Bond{ID: v.ID, Stake: v.Stake}
	}
	return bonds
}

// Validate checks the configuration is complete and internally consistent.
func (g Genesis) Validate() error {
	if err := g.Bonds().Validate(); err != nil {
		return err
	}
	if _, err := g.Rules.VersionRegistry(); err != nil {
		return fmt.Errorf("invalid version table of %s: %w", g.Rules.Name, err)
	}
	if len(g.EraSeed) == 0 {
		return ErrNoSeed
	}
	for _, v := range g.Validators {
		if v.PubKey.Empty() || v.PubKey.Type != validatorpk.Types.Secp256k1 {
			return fmt.Errorf("%w: validator %d", ErrBadPubKey, v.ID)
		}
	}
	return nil
}

// Block builds the genesis block: rank 0, no parent, no justifications.
// The block's timestamp carries a fingerprint of the whole configuration,
// so nodes with diverging genesis files derive different block IDs.
func (g Genesis) Block() *inter.Block {
	vals, err := rlp.EncodeToBytes(g.Validators)
	if err != nil {
		panic("can't encode genesis validators: " + err.Error())
	}
	fingerprint := crypto.Keccak256([]byte(g.Rules.String()), g.EraSeed, vals)

	b := &inter.Block{
		Time: inter.Timestamp(binary.BigEndian.Uint64(fingerprint[:8])),
	}
	b.ID = b.HashID()
	return b
}

// Era builds the era-zero parameters; the engine pins Start/StartRank to
// the genesis block on startup.
func (g Genesis) Era() *era.Era {
	return &era.Era{
		Epoch:  0,
		Seed:   append([]byte(nil), g.EraSeed...),
		Bonds:  g.Bonds(),
		Length: g.Rules.Eras.EraLength,
		RFTT:   g.Rules.Eras.RFTT(),
	}
}
