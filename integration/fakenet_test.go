package integration

import (
	"io/ioutil"
	"sort"
	"testing"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-casper-core/era"
	"github.com/rony4d/go-casper-core/inter"
	"github.com/rony4d/go-casper-core/sequencer"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(ioutil.Discard)
	return logger
}

func TestFakeKeysAreDeterministic(t *testing.T) {
	require := require.New(t)

	require.Equal(FakeKey(1), FakeKey(1))
	require.NotEqual(FakeKey(1).D, FakeKey(2).D)

	pk := FakePubKey(3)
	require.Equal(pk, FakePubKey(3))
	require.Len(pk.Raw, 65)
}

func TestFakeGenesisIsValidAndStable(t *testing.T) {
	require := require.New(t)

	g := FakeGenesis(3)
	require.NoError(g.Validate())
	require.Len(g.Validators, 3)
	require.Equal(g.Block().ID, FakeGenesis(3).Block().ID)

	// A different validator count is a different chain.
	require.NotEqual(g.Block().ID, FakeGenesis(4).Block().ID)
}

// driveChain produces a linear chain of n blocks led by the era's schedule,
// each block justifying every other validator's newest block and carrying
// magic bits at era boundaries, and returns each validator's last produced
// rank.
func driveChain(t *testing.T, e *era.Engine, start *inter.Block, n, magicBitsLen int) map[idx.ValidatorID]idx.Block {
	t.Helper()

	parent := start
	latest := map[idx.ValidatorID]*inter.Block{}
	lastRank := map[idx.ValidatorID]idx.Block{}
	for i := 0; i < n; i++ {
		snap := e.CurrentEra()
		seq, err := sequencer.New(snap.Seed, snap.Bonds)
		require.NoError(t, err)

		rank := parent.Rank + 1
		leader := seq.Elect(uint64(rank - snap.StartRank))

		ids := make([]idx.ValidatorID, 0, len(latest))
		for v := range latest {
			if v != leader {
				ids = append(ids, v)
			}
		}
		sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })
		justs := make([]inter.Justification, 0, len(ids))
		for _, v := range ids {
			justs = append(justs, inter.Justification{Validator: v, Block: latest[v].ID})
		}

		b := &inter.Block{
			Parent:         parent.ID,
			Creator:        leader,
			Rank:           rank,
			Time:           inter.Timestamp(i + 1),
			Justifications: justs,
		}
		if rank >= snap.StartRank+snap.Length {
			b.MagicBits = FakeMagicBits(parent.ID, magicBitsLen)
		}
		b.ID = b.HashID()

		_, err = e.ProcessBlock(b)
		require.NoError(t, err)
		parent = b
		latest[leader] = b
		lastRank[leader] = rank
	}
	return lastRank
}

func TestFakeEngineFinalizesHonestChain(t *testing.T) {
	require := require.New(t)

	e, store, g, err := FakeEngine(3, quietLogger())
	require.NoError(err)

	events := make(chan era.FinalizedEvent, 64)
	sub := e.SubscribeFinalized(events)
	defer sub.Unsubscribe()

	lastRank := driveChain(t, e, g.Block(), 25, g.Rules.Eras.MagicBitsLen)
	require.Equal(25, store.Len()-1)

	// On a linear chain a validator's latest vote is its own last block, so
	// the finalized tip is the highest rank backed by a stake quorum: with
	// three equal stakes, the second-highest last-produced rank.
	ranks := make([]idx.Block, 0, 3)
	for n := idx.ValidatorID(1); n <= 3; n++ {
		ranks = append(ranks, lastRank[n])
	}
	sort.Slice(ranks, func(a, b int) bool { return ranks[a] > ranks[b] })
	require.Equal(ranks[1], e.State().FinalizedRank)
	require.NotZero(e.State().FinalizedRank)
	require.NotEmpty(events)
}

func TestFakeEngineIsDeterministicAcrossRuns(t *testing.T) {
	require := require.New(t)

	run := func() hash.Hash {
		e, _, g, err := FakeEngine(3, quietLogger())
		require.NoError(err)
		driveChain(t, e, g.Block(), 20, g.Rules.Eras.MagicBitsLen)
		return e.State().Hash()
	}

	require.Equal(run(), run())
}

func TestFakeEngineRotatesErasEndToEnd(t *testing.T) {
	require := require.New(t)

	g := FakeGenesis(3)
	g.Rules.Eras.EraLength = 5
	e, _, err := NewFromGenesis(g, quietLogger())
	require.NoError(err)

	driveChain(t, e, g.Block(), 20, g.Rules.Eras.MagicBitsLen)

	state := e.State()
	require.GreaterOrEqual(uint32(state.Epoch), uint32(1))
	require.NotEqual(g.EraSeed, state.Seed)
	require.GreaterOrEqual(uint64(state.FinalizedRank), uint64(5))
}
