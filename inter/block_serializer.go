// Canonical serialization for DAG blocks.
//
// Blocks are encoded with CSER (see utils/cser): a deterministic, canonical
// format whose bytes feed the block's content hash, so all validators derive
// bit-identical block IDs for equal content. The derived ID field itself is
// excluded from the encoding.
package inter

import (
	"errors"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/rony4d/go-casper-core/utils/cser"
)

var (
	ErrSerMalformedBlock = errors.New("serialization of malformed block: justifications must be sorted and unique")
	ErrUnknownVersion    = errors.New("unknown block serialization version")
)

// MaxSerializationVersion is the highest block wire version this node writes
// and accepts.
const MaxSerializationVersion = 1

// MaxBlockJustifications bounds decoded justification lists; it exceeds any
// realistic validator set size.
const MaxBlockJustifications = 10240

// MarshalCSER writes the block (without its derived ID) to w.
//
// Layout:
//  1. version (u8)
//  2. creator, rank, time
//  3. parent hash
//  4. magic-bit count + the bits themselves (bit stream)
//  5. justification count + (validator, block hash) pairs, which must be
//     sorted by validator ID with no duplicates
func (b *Block) MarshalCSER(w *cser.Writer) error {
	w.U8(MaxSerializationVersion)
	w.U32(uint32(b.Creator))
	w.U64(uint64(b.Rank))
	w.U64(uint64(b.Time))
	w.FixedBytes(b.Parent.Bytes())

	w.U56(uint64(len(b.MagicBits)))
	for _, bit := range b.MagicBits {
		w.Bool(bit)
	}

	w.U56(uint64(len(b.Justifications)))
	for i, j := range b.Justifications {
		if i > 0 && b.Justifications[i-1].Validator >= j.Validator {
			return ErrSerMalformedBlock
		}
		w.U32(uint32(j.Validator))
		w.FixedBytes(j.Block.Bytes())
	}
	return nil
}

// UnmarshalCSER reads a block written by MarshalCSER and recomputes nothing:
// the caller assigns the ID via HashID when needed.
func (b *Block) UnmarshalCSER(r *cser.Reader) error {
	version := r.U8()
	if version == 0 || version > MaxSerializationVersion {
		return ErrUnknownVersion
	}
	b.Creator = idx.ValidatorID(r.U32())
	b.Rank = idx.Block(r.U64())
	b.Time = Timestamp(r.U64())

	buf := make([]byte, 32)
	r.FixedBytes(buf)
	b.Parent = hash.BytesToEvent(buf)

	bitsCount := r.U56()
	if bitsCount > 8*cser.MaxAlloc {
		return cser.ErrTooLargeAlloc
	}
	b.MagicBits = make([]bool, bitsCount)
	for i := range b.MagicBits {
		b.MagicBits[i] = r.Bool()
	}

	count := r.U56()
	if count > MaxBlockJustifications {
		return cser.ErrTooLargeAlloc
	}
	b.Justifications = make([]Justification, count)
	for i := range b.Justifications {
		v := idx.ValidatorID(r.U32())
		if i > 0 && b.Justifications[i-1].Validator >= v {
			return ErrSerMalformedBlock
		}
		r.FixedBytes(buf)
		b.Justifications[i] = Justification{
			Validator: v,
			Block:     hash.BytesToEvent(buf),
		}
	}
	return nil
}

// MarshalBinary returns the canonical encoding of the block.
func (b *Block) MarshalBinary() ([]byte, error) {
	return cser.MarshalBinaryAdapter(b.MarshalCSER)
}

// UnmarshalBinary decodes a canonical encoding and recomputes the ID.
func (b *Block) UnmarshalBinary(raw []byte) error {
	err := cser.UnmarshalBinaryAdapter(raw, b.UnmarshalCSER)
	if err != nil {
		return err
	}
	b.ID = b.HashID()
	return nil
}

// HashID computes the block's identifier: the Keccak-256 hash of the
// canonical encoding.
func (b *Block) HashID() hash.Event {
	raw, err := b.MarshalBinary()
	if err != nil {
		panic("can't hash malformed block: " + err.Error())
	}
	return hash.BytesToEvent(crypto.Keccak256(raw))
}
