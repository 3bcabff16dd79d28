package cser

import (
	"github.com/rony4d/go-casper-core/utils/fast"
)

// Integers use split encoding: the value bytes (little-endian, minimal
// length) go to the byte stream, while the byte count goes to the bit
// stream. Small values therefore cost one byte plus a few bits. Decoders
// panic with ErrNonCanonicalEncoding when a value is stored in more bytes
// than needed; the adapter converts the panic into an error.

// writeUint64Compact encodes v as a varint with 7 data bits per byte.
// The stop marker is an MSB set to 1 on the final byte.
func writeUint64Compact(bytesW *fast.Writer, v uint64) {
	for {
		chunk := v & 0x7f
		v >>= 7
		if v == 0 {
			chunk |= 0x80
		}
		bytesW.WriteByte(byte(chunk))
		if v == 0 {
			return
		}
	}
}

// readUint64Compact decodes the stop-bit varint written by writeUint64Compact.
func readUint64Compact(bytesR *fast.Reader) uint64 {
	v := uint64(0)
	for i, stop := 0, false; !stop; i++ {
		chunk := uint64(bytesR.ReadByte())
		stop = chunk&0x80 != 0
		word := chunk & 0x7f
		v |= word << uint(i*7)
		// a zero final chunk means the value was stored in more bytes
		// than needed
		if i > 0 && stop && word == 0 {
			panic(ErrNonCanonicalEncoding)
		}
	}
	return v
}

// writeUint64BitCompact writes v little-endian using the minimal number of
// bytes, but no less than minSize. Returns the number of bytes written.
func writeUint64BitCompact(bytesW *fast.Writer, v uint64, minSize int) (size int) {
	for size < minSize || v != 0 {
		bytesW.WriteByte(byte(v))
		size++
		v >>= 8
	}
	return size
}

// readUint64BitCompact reads size little-endian bytes back into an integer.
func readUint64BitCompact(bytesR *fast.Reader, size int) uint64 {
	var (
		v    uint64
		last byte
	)
	for i, b := range bytesR.Read(size) {
		v |= uint64(b) << uint(8*i)
		last = b
	}
	// a zero most significant byte means the value was padded
	if size > 1 && last == 0 {
		panic(ErrNonCanonicalEncoding)
	}
	return v
}

func (w *Writer) writeU64bits(minSize int, bitsForSize int, v uint64) {
	size := writeUint64BitCompact(w.BytesW, v, minSize)
	w.BitsW.Write(bitsForSize, uint(size-minSize))
}

func (r *Reader) readU64bits(minSize int, bitsForSize int) uint64 {
	size := int(r.BitsR.Read(bitsForSize)) + minSize
	return readUint64BitCompact(r.BytesR, size)
}

// U8 writes a single raw byte.
func (w *Writer) U8(v uint8) {
	w.BytesW.WriteByte(v)
}

func (r *Reader) U8() uint8 {
	return r.BytesR.ReadByte()
}

// U16 writes a uint16 in 1-2 bytes plus 1 size bit.
func (w *Writer) U16(v uint16) {
	w.writeU64bits(1, 1, uint64(v))
}

func (r *Reader) U16() uint16 {
	return uint16(r.readU64bits(1, 1))
}

// U32 writes a uint32 in 1-4 bytes plus 2 size bits.
func (w *Writer) U32(v uint32) {
	w.writeU64bits(1, 2, uint64(v))
}

func (r *Reader) U32() uint32 {
	return uint32(r.readU64bits(1, 2))
}

// U64 writes a uint64 in 1-8 bytes plus 3 size bits.
func (w *Writer) U64(v uint64) {
	w.writeU64bits(1, 3, v)
}

func (r *Reader) U64() uint64 {
	return r.readU64bits(1, 3)
}

// U56 writes a non-negative count in 0-7 bytes plus 3 size bits. Used for
// slice lengths.
func (w *Writer) U56(v uint64) {
	const max = 1<<56 - 1
	if v > max {
		panic("cser: value exceeds 56 bits")
	}
	w.writeU64bits(0, 3, v)
}

func (r *Reader) U56() uint64 {
	return r.readU64bits(0, 3)
}

// Bool writes a single bit to the bit stream.
func (w *Writer) Bool(v bool) {
	u := uint(0)
	if v {
		u = 1
	}
	w.BitsW.Write(1, u)
}

func (r *Reader) Bool() bool {
	return r.BitsR.Read(1) != 0
}

// FixedBytes writes raw bytes with no length prefix; the reader must know
// the exact size.
func (w *Writer) FixedBytes(v []byte) {
	w.BytesW.Write(v)
}

func (r *Reader) FixedBytes(v []byte) {
	copy(v, r.BytesR.Read(len(v)))
}

// SliceBytes writes a length-prefixed byte slice.
func (w *Writer) SliceBytes(v []byte) {
	w.U56(uint64(len(v)))
	w.FixedBytes(v)
}

func (r *Reader) SliceBytes(maxLen int) []byte {
	size := r.U56()
	if size > uint64(maxLen) {
		panic(ErrTooLargeAlloc)
	}
	buf := make([]byte, size)
	r.FixedBytes(buf)
	return buf
}
