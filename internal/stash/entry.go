// Package stash keeps named item codes. Entries are keyed by KSUID and
// deduplicated by a fingerprint of the normalized code.
package stash

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/ksuid"
	"github.com/zeebo/blake3"
)

var (
	ErrNotFound  = errors.New("stash entry not found")
	ErrDuplicate = errors.New("item code already stashed")
)

// Fingerprint identifies a normalized item code.
type Fingerprint [32]byte

// FingerprintOf hashes a normalized code. Two codes for the same item only share a
// fingerprint after normalization (encrypted game serials differ byte-wise).
func FingerprintOf(normalized string) Fingerprint {
	return blake3.Sum256([]byte(normalized))
}

// String returns the lowercase hex form.
func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// ParseFingerprint parses a hex fingerprint.
func ParseFingerprint(s string) (Fingerprint, error) {
	var f Fingerprint
	raw, err := hex.DecodeString(s)
	if err != nil {
		return f, fmt.Errorf("decoding fingerprint: %w", err)
	}
	if len(raw) != len(f) {
		return f, fmt.Errorf("fingerprint must be %d bytes, got %d", len(f), len(raw))
	}
	copy(f[:], raw)
	return f, nil
}

// Entry is a saved item code.
type Entry struct {
	ID          ksuid.KSUID `cbor:"id"`
	Name        string      `cbor:"name"`
	Code        string      `cbor:"code"` // normalized
	Game        string      `cbor:"game"`
	Fingerprint Fingerprint `cbor:"fp"`
	CreatedAt   time.Time   `cbor:"created_at"`
}

// Store persists entries. Put rejects an entry whose fingerprint is already
// stored with ErrDuplicate; lookups of absent entries return ErrNotFound.
type Store interface {
	Put(ctx context.Context, e Entry) error
	Get(ctx context.Context, id ksuid.KSUID) (Entry, error)
	FindByFingerprint(ctx context.Context, fp Fingerprint) (Entry, error)
	// List returns entries oldest first.
	List(ctx context.Context) ([]Entry, error)
	Delete(ctx context.Context, id ksuid.KSUID) error
	Close() error
}
