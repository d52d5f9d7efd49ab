package stash

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/segmentio/ksuid"
)

// Normalizer rewrites a valid item code into its canonical form.
type Normalizer interface {
	Normalize(text string) (string, error)
}

// Service stores item codes of one game.
type Service struct {
	store Store
	norm  Normalizer
	game  string

	now func() time.Time
}

// NewService creates a stash service.
func NewService(store Store, norm Normalizer, game string) *Service {
	return &Service{
		store: store,
		norm:  norm,
		game:  game,
		now:   time.Now,
	}
}

// Add normalizes and stores a code. If the same item is already stashed the
// existing entry is returned together with ErrDuplicate.
func (s *Service) Add(ctx context.Context, name, code string) (Entry, error) {
	normalized, err := s.norm.Normalize(code)
	if err != nil {
		return Entry{}, fmt.Errorf("normalizing code: %w", err)
	}
	fp := FingerprintOf(normalized)

	existing, err := s.store.FindByFingerprint(ctx, fp)
	switch {
	case err == nil:
		return existing, fmt.Errorf("%w: as %s", ErrDuplicate, existing.ID)
	case !errors.Is(err, ErrNotFound):
		return Entry{}, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = fp.String()[:12]
	}

	now := s.now().UTC()
	id, err := ksuid.NewRandomWithTime(now)
	if err != nil {
		return Entry{}, fmt.Errorf("generating id: %w", err)
	}
	e := Entry{
		ID:          id,
		Name:        name,
		Code:        normalized,
		Game:        s.game,
		Fingerprint: fp,
		// PostgreSQL keeps microseconds.
		CreatedAt: now.Truncate(time.Microsecond),
	}
	if err := s.store.Put(ctx, e); err != nil {
		return Entry{}, err
	}
	slog.Info("item code stashed", "id", e.ID, "name", e.Name)
	return e, nil
}

// Get loads an entry by its KSUID string.
func (s *Service) Get(ctx context.Context, id string) (Entry, error) {
	kid, err := ksuid.Parse(id)
	if err != nil {
		return Entry{}, fmt.Errorf("parsing id %q: %w", id, err)
	}
	return s.store.Get(ctx, kid)
}

// List returns entries of the service's game, oldest first.
func (s *Service) List(ctx context.Context) ([]Entry, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	entries := all[:0]
	for _, e := range all {
		if e.Game == s.game {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// Remove deletes an entry by its KSUID string.
func (s *Service) Remove(ctx context.Context, id string) error {
	kid, err := ksuid.Parse(id)
	if err != nil {
		return fmt.Errorf("parsing id %q: %w", id, err)
	}
	if err := s.store.Delete(ctx, kid); err != nil {
		return err
	}
	slog.Info("item code removed from stash", "id", kid)
	return nil
}
