package packet

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrShortRead is returned when a read would run past the end of the data.
var ErrShortRead = errors.New("not enough data")

// Reader is a bounds-checked cursor over a byte slice.
// Uses Little-Endian byte order for all multi-byte values.
type Reader struct {
	data []byte
	pos  int
}

// NewReader creates a new reader over data.
func NewReader(data []byte) *Reader {
	return &Reader{
		data: data,
		pos:  0,
	}
}

// ReadByte reads a single byte.
func (r *Reader) ReadByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, fmt.Errorf("ReadByte: %w (pos=%d, len=%d)", ErrShortRead, r.pos, len(r.data))
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// ReadUint16 reads a uint16 (2 bytes, LE).
func (r *Reader) ReadUint16() (uint16, error) {
	if r.pos+2 > len(r.data) {
		return 0, fmt.Errorf("ReadUint16: %w (pos=%d, len=%d)", ErrShortRead, r.pos, len(r.data))
	}
	val := binary.LittleEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return val, nil
}

// ReadInt reads an int32 (4 bytes, LE).
func (r *Reader) ReadInt() (int32, error) {
	if r.pos+4 > len(r.data) {
		return 0, fmt.Errorf("ReadInt: %w (pos=%d, len=%d)", ErrShortRead, r.pos, len(r.data))
	}
	val := int32(binary.LittleEndian.Uint32(r.data[r.pos:]))
	r.pos += 4
	return val, nil
}

// ReadCString reads a NUL-terminated byte string and returns it without the terminator.
// ZERO-COPY: the returned slice shares memory with the reader's data.
func (r *Reader) ReadCString() ([]byte, error) {
	end := bytes.IndexByte(r.data[r.pos:], 0)
	if end < 0 {
		return nil, fmt.Errorf("ReadCString: %w, no terminator (pos=%d, len=%d)", ErrShortRead, r.pos, len(r.data))
	}
	s := r.data[r.pos : r.pos+end]
	r.pos += end + 1
	return s, nil
}

// ReadBytes reads n bytes (ZERO-COPY — returns subslice of internal data).
// Caller MUST NOT modify returned bytes.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("ReadBytes: negative count %d", n)
	}
	if r.pos+n > len(r.data) {
		return nil, fmt.Errorf("ReadBytes: %w (pos=%d, need=%d, len=%d)", ErrShortRead, r.pos, n, len(r.data))
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

// Position returns the current read position.
func (r *Reader) Position() int {
	return r.pos
}
