package replacement

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/udisondev/itemcode/internal/zdict"
)

// Version is the only extension block format version we read or write.
const Version byte = 0

const (
	// 1 byte version, 2 byte zlib header, 4 byte dict id, 4 byte adler32, at least 1 byte of data.
	minExtensionLen = 12

	// A full 16-slot payload is a few hundred bytes; anything bigger is not ours.
	maxPayloadLen = 4 << 10
)

var (
	ErrTooShort = errors.New("extension block too short")
	ErrVersion  = errors.New("unsupported extension block version")
	ErrCorrupt  = errors.New("extension block does not inflate")
)

// Codec compresses replacement payloads with the shared preset dictionary.
// It holds no mutable state and is safe for concurrent use.
type Codec struct {
	dict *zdict.Dictionary
}

// NewCodec creates a codec bound to a dictionary.
func NewCodec(dict *zdict.Dictionary) *Codec {
	return &Codec{dict: dict}
}

// Dictionary returns the dictionary the codec was built with.
func (c *Codec) Dictionary() *zdict.Dictionary {
	return c.dict
}

// Compress deflates a raw payload and prefixes the version byte.
func (c *Codec) Compress(payload []byte) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(Version)

	zw, err := zlib.NewWriterLevelDict(&buf, zlib.BestCompression, c.dict.Bytes())
	if err != nil {
		return nil, fmt.Errorf("creating zlib writer: %w", err)
	}
	if _, err := zw.Write(payload); err != nil {
		return nil, fmt.Errorf("compressing replacements: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("flushing replacements: %w", err)
	}
	return buf.Bytes(), nil
}

// Decompress validates an extension block and inflates its payload.
// Any inflate failure, including a stream made with a different dictionary, is ErrCorrupt.
func (c *Codec) Decompress(ext []byte) ([]byte, error) {
	if len(ext) < minExtensionLen {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooShort, len(ext))
	}
	if ext[0] != Version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, ext[0])
	}

	zr, err := zlib.NewReaderDict(bytes.NewReader(ext[1:]), c.dict.Bytes())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	defer zr.Close()

	payload, err := io.ReadAll(io.LimitReader(zr, maxPayloadLen+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if len(payload) > maxPayloadLen {
		return nil, fmt.Errorf("%w: payload exceeds %d bytes", ErrCorrupt, maxPayloadLen)
	}
	return payload, nil
}
