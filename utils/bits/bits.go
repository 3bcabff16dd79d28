// Package bits implements bit-granular reading and writing over a byte slice.
//
// Two layouts are provided:
//   - Writer/Reader: an LSB-first bitstream used by the canonical serializer
//     to store flags and length prefixes without byte alignment.
//   - PackBigEndian/UnpackBigEndian: MSB-first packing of boolean sequences,
//     used when deriving era seeds from boundary-block magic bits, where the
//     leftmost bit of the sequence occupies bit 7 of the first byte.
package bits

type (
	// Array is the shared byte container a Writer fills and a Reader consumes.
	Array struct {
		Bytes []byte
	}

	// Writer appends values of 1-8+ bits to the Array, LSB-first within
	// each byte.
	Writer struct {
		*Array
		bitOffset int // next free bit in the last byte, 0-7
	}

	// Reader consumes the bits in the same order they were written.
	Reader struct {
		*Array
		byteOffset int
		bitOffset  int
	}
)

// NewWriter wraps arr for appending.
func NewWriter(arr *Array) *Writer {
	return &Writer{Array: arr}
}

// NewReader wraps arr for consumption from the start.
func NewReader(arr *Array) *Reader {
	return &Reader{Array: arr}
}

func (w *Writer) free() int {
	return 8 - w.bitOffset
}

// mask keeps only the lowest 8-drop bits of v.
func mask(v uint, drop int) uint {
	return v & (uint(0xff) >> drop)
}

// Write appends the lowest bits of v to the stream.
func (w *Writer) Write(bits int, v uint) {
	if w.bitOffset == 0 {
		w.Bytes = append(w.Bytes, 0)
	}
	free := w.free()
	if bits <= free {
		w.Bytes[len(w.Bytes)-1] |= byte(v << w.bitOffset)
		if bits == free {
			w.bitOffset = 0
		} else {
			w.bitOffset += bits
		}
		return
	}
	// split across the byte boundary: fill the current byte, recurse with
	// the remainder
	w.Bytes[len(w.Bytes)-1] |= byte(mask(v, w.bitOffset) << w.bitOffset)
	w.bitOffset = 0
	w.Write(bits-free, v>>free)
}

func (r *Reader) free() int {
	return 8 - r.bitOffset
}

// Read consumes bits from the stream and returns them as an integer.
// It panics when reading past the end of the underlying array.
func (r *Reader) Read(bits int) (v uint) {
	if bits == 0 {
		return 0
	}
	free := r.free()
	if bits <= free {
		drop := 8 - (r.bitOffset + bits)
		v = mask(uint(r.Bytes[r.byteOffset]), drop) >> r.bitOffset
		if bits == free {
			r.bitOffset = 0
			r.byteOffset++
		} else {
			r.bitOffset += bits
		}
		return v
	}
	// spans two or more bytes
	v = uint(r.Bytes[r.byteOffset]) >> r.bitOffset
	r.bitOffset = 0
	r.byteOffset++
	return v | r.Read(bits-free)<<free
}

// View reads without advancing the cursor.
func (r *Reader) View(bits int) uint {
	cp := *r
	return cp.Read(bits)
}

// NonReadBytes returns the number of not fully consumed bytes.
func (r *Reader) NonReadBytes() int {
	return len(r.Bytes) - r.byteOffset
}

// NonReadBits returns the number of unconsumed bits.
func (r *Reader) NonReadBits() int {
	return r.NonReadBytes()*8 - r.bitOffset
}

// PackBigEndian packs a boolean sequence into bytes MSB-first: element 0
// lands in bit 7 of byte 0, element 8 in bit 7 of byte 1, and so on. The
// final byte is zero-padded on the right. An empty sequence packs to an
// empty slice.
func PackBigEndian(bb []bool) []byte {
	packed := make([]byte, (len(bb)+7)/8)
	for i, b := range bb {
		if b {
			packed[i/8] |= 1 << uint(7-i%8)
		}
	}
	return packed
}

// UnpackBigEndian is the inverse of PackBigEndian. The caller supplies the
// bit count, since padding bits are indistinguishable from trailing zeros.
func UnpackBigEndian(packed []byte, count int) []bool {
	bb := make([]bool, count)
	for i := range bb {
		bb[i] = packed[i/8]&(1<<uint(7-i%8)) != 0
	}
	return bb
}
