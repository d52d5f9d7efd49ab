package packet

import (
	"encoding/binary"
	"sync"
)

// Writer accumulates Little-Endian encoded values.
type Writer struct {
	buf []byte
}

// Replacement payloads are a mask plus at most 16 short values.
const defaultCapacity = 256

var writerPool = sync.Pool{
	New: func() any {
		return &Writer{buf: make([]byte, 0, defaultCapacity)}
	},
}

// Get returns an empty Writer from the pool.
func Get() *Writer {
	w := writerPool.Get().(*Writer)
	w.Reset()
	return w
}

// Put returns the Writer to the pool.
// IMPORTANT: Do not use the Writer (or slices returned by Bytes) after calling Put.
func (w *Writer) Put() {
	writerPool.Put(w)
}

// WriteUint16 writes a uint16 (2 bytes, LE).
func (w *Writer) WriteUint16(val uint16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, val)
}

// WriteInt writes an int32 (4 bytes, LE).
func (w *Writer) WriteInt(val int32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(val))
}

// WriteCString writes s followed by a NUL terminator.
// s must not contain NUL bytes.
func (w *Writer) WriteCString(s string) {
	w.buf = append(w.buf, s...)
	w.buf = append(w.buf, 0)
}

// WriteBytes writes raw bytes.
func (w *Writer) WriteBytes(data []byte) {
	w.buf = append(w.buf, data...)
}

// Bytes returns the accumulated data.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes written.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Reset clears the buffer, keeping its capacity.
func (w *Writer) Reset() {
	w.buf = w.buf[:0]
}
