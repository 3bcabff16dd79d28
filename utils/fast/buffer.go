// Package fast provides minimal byte-slice cursors for linear serialization.
// Unlike bytes.Buffer, the Reader performs no bounds checking and panics on
// reads past the end. It is meant for internal, trusted codec code only.
package fast

// Reader consumes a byte slice front to back.
type Reader struct {
	buf    []byte
	offset int
}

// Writer accumulates bytes by appending to a slice.
type Writer struct {
	buf []byte
}

// NewReader wraps bb for consumption.
func NewReader(bb []byte) *Reader {
	return &Reader{buf: bb}
}

// NewWriter wraps bb for appending. Usually called with a pre-allocated
// zero-length slice.
func NewWriter(bb []byte) *Writer {
	return &Writer{buf: bb}
}

// WriteByte appends one byte.
func (w *Writer) WriteByte(v byte) {
	w.buf = append(w.buf, v)
}

// Write appends a slice of bytes.
func (w *Writer) Write(v []byte) {
	w.buf = append(w.buf, v...)
}

// Bytes returns the accumulated slice.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Read consumes and returns the next n bytes. The returned slice shares
// memory with the underlying buffer. Panics past the end.
func (r *Reader) Read(n int) []byte {
	res := r.buf[r.offset : r.offset+n]
	r.offset += n
	return res
}

// ReadByte consumes one byte.
func (r *Reader) ReadByte() byte {
	res := r.buf[r.offset]
	r.offset++
	return res
}

// Position returns the count of consumed bytes.
func (r *Reader) Position() int {
	return r.offset
}

// Empty reports whether the whole buffer has been consumed.
func (r *Reader) Empty() bool {
	return r.offset >= len(r.buf)
}
