package stash

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/segmentio/ksuid"
)

// Key spaces:
//
//	entry/<ksuid>        -> CBOR Entry
//	fp/<fingerprint hex> -> ksuid bytes
var (
	entryPrefix = []byte("entry/")
	fpPrefix    = []byte("fp/")
)

// PebbleStore keeps the stash in a local pebble database.
type PebbleStore struct {
	db *pebble.DB

	// Put and Delete touch two keys; mu keeps the fingerprint index consistent.
	mu sync.Mutex
}

// OpenPebble opens (or creates) a stash in dir.
func OpenPebble(dir string) (*PebbleStore, error) {
	return openPebble(dir, &pebble.Options{})
}

// OpenPebbleFS opens a stash on a custom filesystem, e.g. vfs.NewMem() in tests.
func OpenPebbleFS(fs vfs.FS, dir string) (*PebbleStore, error) {
	return openPebble(dir, &pebble.Options{FS: fs})
}

func openPebble(dir string, opts *pebble.Options) (*PebbleStore, error) {
	db, err := pebble.Open(dir, opts)
	if err != nil {
		return nil, fmt.Errorf("opening pebble stash %s: %w", dir, err)
	}
	slog.Debug("pebble stash opened", "dir", dir)
	return &PebbleStore{db: db}, nil
}

func entryKey(id ksuid.KSUID) []byte {
	return append(append([]byte{}, entryPrefix...), id.String()...)
}

func fpKey(fp Fingerprint) []byte {
	return append(append([]byte{}, fpPrefix...), fp.String()...)
}

// get returns a copy of the value; pebble's slice is only valid until closer.Close.
func (s *PebbleStore) get(key []byte) ([]byte, error) {
	v, closer, err := s.db.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	ret := make([]byte, len(v))
	copy(ret, v)
	closer.Close()
	return ret, nil
}

// Put stores an entry.
func (s *PebbleStore) Put(_ context.Context, e Entry) error {
	value, err := marshalEntry(e)
	if err != nil {
		return fmt.Errorf("encoding entry %s: %w", e.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.get(fpKey(e.Fingerprint))
	switch {
	case err == nil:
		if id, perr := ksuid.FromBytes(existing); perr == nil && id != e.ID {
			return fmt.Errorf("%w: as %s", ErrDuplicate, id)
		}
	case !errors.Is(err, ErrNotFound):
		return fmt.Errorf("reading fingerprint index: %w", err)
	}

	b := s.db.NewBatch()
	defer b.Close()
	if err := b.Set(entryKey(e.ID), value, nil); err != nil {
		return fmt.Errorf("writing entry %s: %w", e.ID, err)
	}
	if err := b.Set(fpKey(e.Fingerprint), e.ID.Bytes(), nil); err != nil {
		return fmt.Errorf("writing fingerprint index: %w", err)
	}
	if err := b.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("committing entry %s: %w", e.ID, err)
	}
	return nil
}

// Get loads an entry by ID.
func (s *PebbleStore) Get(_ context.Context, id ksuid.KSUID) (Entry, error) {
	value, err := s.get(entryKey(id))
	if err != nil {
		return Entry{}, fmt.Errorf("reading entry %s: %w", id, err)
	}
	e, err := unmarshalEntry(value)
	if err != nil {
		return Entry{}, fmt.Errorf("decoding entry %s: %w", id, err)
	}
	return e, nil
}

// FindByFingerprint loads the entry holding a fingerprint.
func (s *PebbleStore) FindByFingerprint(ctx context.Context, fp Fingerprint) (Entry, error) {
	raw, err := s.get(fpKey(fp))
	if err != nil {
		return Entry{}, fmt.Errorf("reading fingerprint %s: %w", fp, err)
	}
	id, err := ksuid.FromBytes(raw)
	if err != nil {
		return Entry{}, fmt.Errorf("decoding fingerprint index %s: %w", fp, err)
	}
	return s.Get(ctx, id)
}

// List returns all entries oldest first. Keys are KSUIDs, which only order by
// the second, so entries are sorted by CreatedAt afterwards.
func (s *PebbleStore) List(_ context.Context) ([]Entry, error) {
	iter := s.db.NewIter(&pebble.IterOptions{
		LowerBound: entryPrefix,
		UpperBound: prefixEnd(entryPrefix),
	})
	defer iter.Close()

	var entries []Entry
	for iter.First(); iter.Valid(); iter.Next() {
		e, err := unmarshalEntry(iter.Value())
		if err != nil {
			return nil, fmt.Errorf("decoding entry %s: %w", iter.Key(), err)
		}
		entries = append(entries, e)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}
	slices.SortStableFunc(entries, func(a, b Entry) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return entries, nil
}

// Delete removes an entry and its fingerprint.
func (s *PebbleStore) Delete(ctx context.Context, id ksuid.KSUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	b := s.db.NewBatch()
	defer b.Close()
	if err := b.Delete(entryKey(id), nil); err != nil {
		return fmt.Errorf("deleting entry %s: %w", id, err)
	}
	if err := b.Delete(fpKey(e.Fingerprint), nil); err != nil {
		return fmt.Errorf("deleting fingerprint index: %w", err)
	}
	if err := b.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("committing delete %s: %w", id, err)
	}
	return nil
}

// Close closes the database.
func (s *PebbleStore) Close() error {
	return s.db.Close()
}

// prefixEnd returns the smallest key greater than every key with the prefix.
func prefixEnd(prefix []byte) []byte {
	end := append([]byte{}, prefix...)
	end[len(end)-1]++
	return end
}
