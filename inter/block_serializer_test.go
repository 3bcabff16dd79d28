package inter

import (
	"testing"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/stretchr/testify/require"
)

func testBlock() *Block {
	b := &Block{
		Parent:    hash.HexToEventHash("0x0102030000000000000000000000000000000000000000000000000000000000"),
		Creator:   3,
		Rank:      42,
		Time:      1700000000000000000,
		MagicBits: []bool{true, false, true, true, false, false, true, false, true},
		Justifications: []Justification{
			{Validator: 1, Block: hash.HexToEventHash("0x0a00000000000000000000000000000000000000000000000000000000000000")},
			{Validator: 2, Block: hash.HexToEventHash("0x0b00000000000000000000000000000000000000000000000000000000000000")},
		},
	}
	b.ID = b.HashID()
	return b
}

func TestBlockRoundtrip(t *testing.T) {
	require := require.New(t)

	exp := testBlock()
	raw, err := exp.MarshalBinary()
	require.NoError(err)

	got := &Block{}
	require.NoError(got.UnmarshalBinary(raw))
	require.Equal(exp, got)
}

func TestBlockRoundtripMinimal(t *testing.T) {
	require := require.New(t)

	exp := &Block{Parent: hash.ZeroEvent}
	exp.ID = exp.HashID()

	raw, err := exp.MarshalBinary()
	require.NoError(err)

	got := &Block{}
	require.NoError(got.UnmarshalBinary(raw))
	require.Equal(exp.ID, got.ID)
	require.Empty(got.MagicBits)
	require.Empty(got.Justifications)
}

func TestBlockHashDeterminism(t *testing.T) {
	require := require.New(t)

	a := testBlock()
	b := testBlock()
	require.Equal(a.HashID(), b.HashID())

	// any content change must change the ID
	b.Rank++
	require.NotEqual(a.HashID(), b.HashID())
}

func TestBlockRejectsUnsortedJustifications(t *testing.T) {
	require := require.New(t)

	b := testBlock()
	b.Justifications[0], b.Justifications[1] = b.Justifications[1], b.Justifications[0]
	_, err := b.MarshalBinary()
	require.Equal(ErrSerMalformedBlock, err)

	b = testBlock()
	b.Justifications[1].Validator = b.Justifications[0].Validator
	_, err = b.MarshalBinary()
	require.Equal(ErrSerMalformedBlock, err)
}

func TestBlockRejectsGarbage(t *testing.T) {
	require := require.New(t)

	got := &Block{}
	require.Error(got.UnmarshalBinary(nil))
	require.Error(got.UnmarshalBinary([]byte{0x00}))
}
