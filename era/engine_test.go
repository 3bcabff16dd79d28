package era

import (
	"io/ioutil"
	"sync/atomic"
	"testing"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-casper-core/casper"
	"github.com/rony4d/go-casper-core/dagstore"
	"github.com/rony4d/go-casper-core/inter"
	"github.com/rony4d/go-casper-core/sequencer"
)

var blockSeq uint64

func makeBlock(creator idx.ValidatorID, parent *inter.Block, magicBits []bool, justs ...inter.Justification) *inter.Block {
	b := &inter.Block{
		Creator:        creator,
		Time:           inter.Timestamp(atomic.AddUint64(&blockSeq, 1)),
		MagicBits:      magicBits,
		Justifications: justs,
	}
	if parent != nil {
		b.Parent = parent.ID
		b.Rank = parent.Rank + 1
	}
	b.ID = b.HashID()
	return b
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(ioutil.Discard)
	return logger
}

func testEra(bonds inter.Bonds, length idx.Block) *Era {
	return &Era{
		Epoch:  0,
		Seed:   []byte("era-zero-seed"),
		Bonds:  bonds,
		Length: length,
		RFTT:   casper.FakeNetRules().Eras.RFTT(),
	}
}

func TestEngineFinalizesChain(t *testing.T) {
	require := require.New(t)

	genesis := makeBlock(0, nil, nil)
	bonds := inter.Bonds{{ID: 1, Stake: 10}}
	e, err := NewEngine(dagstore.NewMemStore(), casper.FakeNetRules(), genesis, testEra(bonds, 100), quietLogger())
	require.NoError(err)
	require.Equal(genesis.ID, e.LastFinalized())

	events := make(chan FinalizedEvent, 16)
	sub := e.SubscribeFinalized(events)
	defer sub.Unsubscribe()

	// A single bonded validator finalizes its own chain block by block.
	parent := genesis
	for i := 0; i < 3; i++ {
		b := makeBlock(1, parent, nil)
		committees, err := e.ProcessBlock(b)
		require.NoError(err)
		require.Len(committees, 1)
		require.Equal(b.ID, committees[0].Block)
		require.Equal(b.ID, e.LastFinalized())

		ev := <-events
		require.Equal(idx.Epoch(0), ev.Era)
		require.Equal(b.ID, ev.Committee.Block)
		parent = b
	}

	state := e.State()
	require.Equal(idx.Epoch(0), state.Epoch)
	require.Equal(parent.ID, state.LastFinalized)
	require.Equal(idx.Block(3), state.FinalizedRank)
}

func TestEngineStateHashIsDeterministic(t *testing.T) {
	require := require.New(t)

	genesis := makeBlock(0, nil, nil)
	bonds := inter.Bonds{{ID: 1, Stake: 10}}

	run := func() hash.Hash {
		e, err := NewEngine(dagstore.NewMemStore(), casper.FakeNetRules(), genesis, testEra(bonds, 100), quietLogger())
		require.NoError(err)
		parent := genesis
		for i := 0; i < 3; i++ {
			b := makeBlock(1, parent, nil)
			b.Time = inter.Timestamp(100 + i) // fixed content, identical on both runs
			b.ID = b.HashID()
			_, err := e.ProcessBlock(b)
			require.NoError(err)
			parent = b
		}
		return e.State().Hash()
	}

	require.Equal(run(), run())
}

func TestEngineRejectsWrongLeader(t *testing.T) {
	require := require.New(t)

	genesis := makeBlock(0, nil, nil)
	bonds := inter.Bonds{
		{ID: 1, Stake: 10},
		{ID: 2, Stake: 10},
	}
	era0 := testEra(bonds, 100)
	e, err := NewEngine(dagstore.NewMemStore(), casper.FakeNetRules(), genesis, era0, quietLogger())
	require.NoError(err)

	seq, err := sequencer.New(era0.Seed, bonds)
	require.NoError(err)
	leader := seq.Elect(1)
	impostor := idx.ValidatorID(1)
	if leader == impostor {
		impostor = 2
	}

	_, err = e.ProcessBlock(makeBlock(impostor, genesis, nil))
	require.ErrorIs(err, ErrWrongLeader)

	committees, err := e.ProcessBlock(makeBlock(leader, genesis, nil))
	require.NoError(err)
	require.Len(committees, 1)
}

func TestEngineRejectsStaleRank(t *testing.T) {
	require := require.New(t)

	genesis := makeBlock(0, nil, nil)
	e, err := NewEngine(dagstore.NewMemStore(), casper.FakeNetRules(), genesis, testEra(inter.Bonds{{ID: 1, Stake: 10}}, 100), quietLogger())
	require.NoError(err)

	stale := makeBlock(1, nil, nil) // rank 0, era starts at rank 0
	_, err = e.ProcessBlock(stale)
	require.ErrorIs(err, ErrStaleBlock)
}

func TestEngineRotatesEras(t *testing.T) {
	require := require.New(t)

	genesis := makeBlock(0, nil, nil)
	bonds := inter.Bonds{{ID: 1, Stake: 10}}
	era0 := testEra(bonds, 2)
	seedBefore := append([]byte(nil), era0.Seed...)
	e, err := NewEngine(dagstore.NewMemStore(), casper.FakeNetRules(), genesis, era0, quietLogger())
	require.NoError(err)

	b1 := makeBlock(1, genesis, nil)
	_, err = e.ProcessBlock(b1)
	require.NoError(err)
	require.Equal(idx.Epoch(0), e.CurrentEra().Epoch)

	// The era spans 2 ranks; finalizing rank 2 triggers the handover and
	// folds the boundary's magic bits into the next seed.
	magic := make([]bool, casper.FakeNetRules().Eras.MagicBitsLen)
	magic[0], magic[7], magic[13] = true, true, true
	boundary := makeBlock(1, b1, magic)
	_, err = e.ProcessBlock(boundary)
	require.NoError(err)

	next := e.CurrentEra()
	require.Equal(idx.Epoch(1), next.Epoch)
	require.Equal(boundary.ID, next.Start)
	require.Equal(idx.Block(2), next.StartRank)
	require.NotEqual(seedBefore, next.Seed)
	require.Equal(sequencer.ComputeSeed(seedBefore, boundary.MagicBits), next.Seed)

	// The chain continues under the new era's schedule.
	b3 := makeBlock(1, boundary, nil)
	committees, err := e.ProcessBlock(b3)
	require.NoError(err)
	require.Len(committees, 1)
	require.Equal(idx.Epoch(1), e.State().Epoch)
	require.Equal(idx.Block(3), e.State().FinalizedRank)
}

func TestEngineEnforcesMagicBitRules(t *testing.T) {
	require := require.New(t)

	genesis := makeBlock(0, nil, nil)
	bonds := inter.Bonds{{ID: 1, Stake: 10}}
	e, err := NewEngine(dagstore.NewMemStore(), casper.FakeNetRules(), genesis, testEra(bonds, 2), quietLogger())
	require.NoError(err)

	// Magic bits below the boundary are rejected.
	_, err = e.ProcessBlock(makeBlock(1, genesis, []bool{true}))
	require.ErrorIs(err, ErrBadMagicBits)

	b1 := makeBlock(1, genesis, nil)
	_, err = e.ProcessBlock(b1)
	require.NoError(err)

	// A boundary candidate without the full bit commitment is rejected.
	_, err = e.ProcessBlock(makeBlock(1, b1, []bool{true, false}))
	require.ErrorIs(err, ErrBadMagicBits)
}

func TestNewEngineRejectsBrokenVersionTable(t *testing.T) {
	require := require.New(t)

	rules := casper.FakeNetRules()
	rules.Versions = nil
	genesis := makeBlock(0, nil, nil)
	_, err := NewEngine(dagstore.NewMemStore(), rules, genesis, testEra(inter.Bonds{{ID: 1, Stake: 10}}, 100), quietLogger())
	require.ErrorIs(err, casper.ErrEmptyTable)
}
