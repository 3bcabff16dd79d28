package bits

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// word is one value to push through the stream: v stored in 'bits' bits.
type word struct {
	bits int
	v    uint
}

func bytesToFit(bits int) int {
	return (bits + 7) / 8
}

func genWords(r *rand.Rand, maxCount int, maxBits int) []word {
	words := make([]word, r.Intn(maxCount))
	for i := range words {
		if maxBits == 1 {
			words[i].bits = 1
		} else {
			words[i].bits = 1 + r.Intn(maxBits-1)
		}
		words[i].v = uint(r.Intn(1 << words[i].bits))
	}
	return words
}

// roundtrip writes all words, checks the array length, then reads them back
// and checks cursor bookkeeping.
func roundtrip(t *testing.T, words []word, name string) {
	arr := Array{make([]byte, 0, 100)}
	writer := NewWriter(&arr)
	reader := NewReader(&arr)

	total := 0
	for _, w := range words {
		writer.Write(w.bits, w.v)
		total += w.bits
	}
	assert.Equal(t, bytesToFit(total), len(arr.Bytes), name)

	read := 0
	for i, w := range words {
		viewed := reader.View(w.bits)
		got := reader.Read(w.bits)
		assert.Equal(t, viewed, got, name)
		assert.Equal(t, w.v, got, fmt.Sprintf("%s: word %d", name, i))
		read += w.bits
		assert.Equal(t, bytesToFit(total)*8-read, reader.NonReadBits(), name)
	}
	// only zero padding may remain
	assert.LessOrEqual(t, reader.NonReadBits(), 7, name)
	assert.Equal(t, uint(0), reader.Read(reader.NonReadBits()), name)
	assert.Equal(t, 0, reader.NonReadBits(), name)
	assert.Equal(t, 0, reader.NonReadBytes(), name)
}

func TestStreamFixed(t *testing.T) {
	roundtrip(t, []word{}, "empty")
	roundtrip(t, []word{{1, 1}}, "single bit")
	roundtrip(t, []word{{8, 0xff}}, "full byte")
	roundtrip(t, []word{{3, 0b101}, {7, 0b1100110}, {16, 0xbeef}}, "split across bytes")
	roundtrip(t, []word{{1, 0}, {1, 1}, {1, 0}, {1, 1}, {1, 0}, {1, 1}, {1, 0}, {1, 1}, {1, 1}}, "nine flags")
}

func TestStreamRandom(t *testing.T) {
	r := rand.New(rand.NewSource(0))
	for i := 0; i < 100; i++ {
		roundtrip(t, genWords(r, 50, 16), fmt.Sprintf("random case %d", i))
	}
}

func TestPackBigEndian(t *testing.T) {
	require := require.New(t)

	require.Empty(PackBigEndian(nil))

	// leftmost bit occupies bit 7 of the first byte
	require.Equal([]byte{0b10000000}, PackBigEndian([]bool{true}))
	require.Equal([]byte{0b01000000}, PackBigEndian([]bool{false, true}))
	require.Equal([]byte{0b10110000}, PackBigEndian([]bool{true, false, true, true}))

	// zero-padded on the right up to the byte boundary
	require.Equal(
		[]byte{0b11111111, 0b10000000},
		PackBigEndian([]bool{true, true, true, true, true, true, true, true, true}),
	)
}

func TestUnpackBigEndian(t *testing.T) {
	require := require.New(t)

	r := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		bb := make([]bool, r.Intn(40))
		for j := range bb {
			bb[j] = r.Intn(2) == 1
		}
		require.Equal(bb, UnpackBigEndian(PackBigEndian(bb), len(bb)))
	}
}
