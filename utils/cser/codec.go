// Package cser implements a canonical split-stream serialization format.
//
// Values are written to two streams: raw bytes go to a byte stream, while
// booleans and integer length prefixes go to an unaligned bit stream. On the
// wire the two are packed as
//
//	[ body bytes ][ bit-stream bytes ][ reversed varint(len(bit-stream)) ]
//
// so a reader can locate the split by scanning the suffix backwards. The
// format is canonical: every value has exactly one legal encoding, which
// makes the encoded bytes a fit input for content hashing. Decoders enforce
// canonicality and reject paddings, oversized integers and unconsumed tails.
package cser

import (
	"errors"

	"github.com/rony4d/go-casper-core/utils/bits"
	"github.com/rony4d/go-casper-core/utils/fast"
)

var (
	ErrNonCanonicalEncoding = errors.New("non-canonical encoding")
	ErrMalformedEncoding    = errors.New("malformed encoding")
	ErrTooLargeAlloc        = errors.New("too large allocation")
)

// MaxAlloc bounds decoded slice sizes to keep hostile inputs from forcing
// huge allocations.
const MaxAlloc = 100 * 1024

// Writer carries the two output streams of an in-progress encoding.
type Writer struct {
	BitsW  *bits.Writer
	BytesW *fast.Writer
}

// Reader carries the two input streams of an in-progress decoding.
type Reader struct {
	BitsR  *bits.Reader
	BytesR *fast.Reader
}

// NewWriter returns a Writer with pre-allocated streams.
func NewWriter() *Writer {
	return &Writer{
		BitsW:  bits.NewWriter(&bits.Array{Bytes: make([]byte, 0, 32)}),
		BytesW: fast.NewWriter(make([]byte, 0, 200)),
	}
}

// MarshalBinaryAdapter runs the given encoding callback and packs both
// streams into a single byte slice.
func MarshalBinaryAdapter(marshalCser func(*Writer) error) ([]byte, error) {
	w := NewWriter()
	if err := marshalCser(w); err != nil {
		return nil, err
	}
	return binaryFromCSER(w.BitsW.Array, w.BytesW.Bytes())
}

// UnmarshalBinaryAdapter splits raw into the two streams, runs the decoding
// callback and verifies that the input was fully and canonically consumed.
// Out-of-bounds panics from the underlying cursors are converted into
// ErrMalformedEncoding.
func UnmarshalBinaryAdapter(raw []byte, unmarshalCser func(*Reader) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok && (errors.Is(e, ErrNonCanonicalEncoding) || errors.Is(e, ErrTooLargeAlloc)) {
				err = e
				return
			}
			err = ErrMalformedEncoding
		}
	}()

	bbits, bbytes, err := binaryToCSER(raw)
	if err != nil {
		return err
	}
	r := &Reader{
		BitsR:  bits.NewReader(bbits),
		BytesR: fast.NewReader(bbytes),
	}
	if err := unmarshalCser(r); err != nil {
		return err
	}

	// strict mode: any leftover is a non-canonical encoding, and padding
	// bits in the last bit-stream byte must be zero
	if r.BitsR.NonReadBytes() > 1 {
		return ErrNonCanonicalEncoding
	}
	if tail := r.BitsR.Read(r.BitsR.NonReadBits()); tail != 0 {
		return ErrNonCanonicalEncoding
	}
	if !r.BytesR.Empty() {
		return ErrNonCanonicalEncoding
	}
	return nil
}

func binaryFromCSER(bbits *bits.Array, bbytes []byte) ([]byte, error) {
	body := fast.NewWriter(bbytes)
	body.Write(bbits.Bytes)

	// the bit-stream length varint is reversed so the reader can decode it
	// from the very end of the blob
	size := fast.NewWriter(make([]byte, 0, 4))
	writeUint64Compact(size, uint64(len(bbits.Bytes)))
	body.Write(reversed(size.Bytes()))

	return body.Bytes(), nil
}

func binaryToCSER(raw []byte) (bbits *bits.Array, bbytes []byte, err error) {
	sizeReader := fast.NewReader(reversed(tail(raw, 9)))
	bitsSize := readUint64Compact(sizeReader)
	if uint64(len(raw)) < uint64(sizeReader.Position())+bitsSize {
		return nil, nil, ErrMalformedEncoding
	}
	raw = raw[:len(raw)-sizeReader.Position()]

	bbits = &bits.Array{Bytes: raw[uint64(len(raw))-bitsSize:]}
	bbytes = raw[:uint64(len(raw))-bitsSize]
	return bbits, bbytes, nil
}

// tail returns at most the last n bytes of b.
func tail(b []byte, n int) []byte {
	if len(b) > n {
		return b[len(b)-n:]
	}
	return b
}

// reversed returns a new slice with the bytes of b in reverse order.
func reversed(b []byte) []byte {
	rev := make([]byte, len(b))
	for i, v := range b {
		rev[len(b)-1-i] = v
	}
	return rev
}
