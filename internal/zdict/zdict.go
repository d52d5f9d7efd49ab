// Package zdict holds the preset deflate dictionary shared by every producer and
// consumer of modded item codes.
//
// The dictionary is a content-addressed asset: the bytes must be identical on both
// sides of the wire, so every dictionary is identified by its BLAKE2b-256 hash and
// loading one whose hash does not match the expected value is an error rather than
// a source of silently corrupted codes.
package zdict

import (
	_ "embed"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/crypto/blake2b"
)

// MaxSize is the deflate window; bytes before the last MaxSize are never referenced.
const MaxSize = 32 << 10

// DefaultHash pins the embedded dictionary (version 0 of the modded code format).
const DefaultHash = "cc5a2a024839265e7c249bd8ca438d3328b1aaf34dbced8fffd4d2103bb16315"

var (
	ErrHashMismatch = errors.New("dictionary hash mismatch")
	ErrEmpty        = errors.New("dictionary is empty")
	ErrTooLarge     = errors.New("dictionary exceeds deflate window")
)

//go:embed default.zdict
var defaultData []byte

// Hash is a BLAKE2b-256 digest of dictionary bytes.
type Hash [blake2b.Size256]byte

// String returns the lowercase hex form.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// ParseHash parses a hex-encoded dictionary hash.
func ParseHash(s string) (Hash, error) {
	var h Hash
	raw, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("decoding dictionary hash: %w", err)
	}
	if len(raw) != len(h) {
		return h, fmt.Errorf("dictionary hash must be %d bytes, got %d", len(h), len(raw))
	}
	copy(h[:], raw)
	return h, nil
}

// Sum hashes dictionary bytes.
func Sum(data []byte) Hash {
	return blake2b.Sum256(data)
}

// Dictionary is immutable after construction and safe for concurrent use.
type Dictionary struct {
	data []byte
	hash Hash
}

// New wraps dictionary bytes, copying them.
func New(data []byte) (*Dictionary, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	if len(data) > MaxSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, len(data))
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	return &Dictionary{data: buf, hash: Sum(buf)}, nil
}

// Bytes returns the dictionary contents. Callers must not modify the slice.
func (d *Dictionary) Bytes() []byte {
	return d.data
}

// Hash returns the content hash.
func (d *Dictionary) Hash() Hash {
	return d.hash
}

// Verify checks the dictionary against an expected hex hash.
func (d *Dictionary) Verify(want string) error {
	h, err := ParseHash(want)
	if err != nil {
		return err
	}
	if h != d.hash {
		return fmt.Errorf("%w: want %s, got %s", ErrHashMismatch, want, d.hash)
	}
	return nil
}

// Default returns the embedded dictionary. It is loaded and verified once per process.
var Default = sync.OnceValues(func() (*Dictionary, error) {
	d, err := New(defaultData)
	if err != nil {
		return nil, fmt.Errorf("loading embedded dictionary: %w", err)
	}
	if err := d.Verify(DefaultHash); err != nil {
		return nil, fmt.Errorf("embedded dictionary: %w", err)
	}
	return d, nil
})

// Load reads a dictionary file. When wantHash is non-empty the content must match it.
func Load(path, wantHash string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dictionary %s: %w", path, err)
	}
	d, err := New(data)
	if err != nil {
		return nil, fmt.Errorf("dictionary %s: %w", path, err)
	}
	if wantHash != "" {
		if err := d.Verify(wantHash); err != nil {
			return nil, fmt.Errorf("dictionary %s: %w", path, err)
		}
	} else {
		slog.Warn("dictionary loaded without pinned hash", "path", path, "hash", d.hash.String())
	}
	return d, nil
}
