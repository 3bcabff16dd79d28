package fast

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriter(t *testing.T) {
	require := require.New(t)

	w := NewWriter(make([]byte, 0, 8))
	require.Empty(w.Bytes())

	w.WriteByte(0x01)
	w.Write([]byte{0x02, 0x03})
	w.WriteByte(0x04)
	require.Equal([]byte{0x01, 0x02, 0x03, 0x04}, w.Bytes())
}

func TestReader(t *testing.T) {
	require := require.New(t)

	r := NewReader([]byte{0x01, 0x02, 0x03, 0x04})
	require.False(r.Empty())
	require.Equal(0, r.Position())

	require.Equal(byte(0x01), r.ReadByte())
	require.Equal([]byte{0x02, 0x03}, r.Read(2))
	require.Equal(3, r.Position())
	require.False(r.Empty())

	require.Equal(byte(0x04), r.ReadByte())
	require.True(r.Empty())

	// reading past the end panics; the codec layer converts this into a
	// malformed-encoding error
	require.Panics(func() {
		r.ReadByte()
	})
}
