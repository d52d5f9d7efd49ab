package testutil

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/segmentio/ksuid"

	"github.com/udisondev/itemcode/internal/stash"
)

// MockStore — in-memory имплементация stash.Store для unit тестов.
// Не требует ни pebble, ни PostgreSQL.
type MockStore struct {
	mu      sync.RWMutex
	entries map[ksuid.KSUID]stash.Entry
	order   []ksuid.KSUID

	// FailPut makes Put return ErrSimulated.
	FailPut bool
}

var _ stash.Store = (*MockStore)(nil)

// NewMockStore создаёт новый MockStore экземпляр.
func NewMockStore() *MockStore {
	return &MockStore{
		entries: make(map[ksuid.KSUID]stash.Entry),
	}
}

// Put сохраняет entry.
func (m *MockStore) Put(_ context.Context, e stash.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailPut {
		return ErrSimulated
	}
	for _, existing := range m.entries {
		if existing.Fingerprint == e.Fingerprint && existing.ID != e.ID {
			return fmt.Errorf("%w: as %s", stash.ErrDuplicate, existing.ID)
		}
	}
	if _, exists := m.entries[e.ID]; !exists {
		m.order = append(m.order, e.ID)
	}
	m.entries[e.ID] = e
	return nil
}

// Get получает entry по ID.
func (m *MockStore) Get(_ context.Context, id ksuid.KSUID) (stash.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, exists := m.entries[id]
	if !exists {
		return stash.Entry{}, fmt.Errorf("entry %s: %w", id, stash.ErrNotFound)
	}
	return e, nil
}

// FindByFingerprint ищет entry по fingerprint.
func (m *MockStore) FindByFingerprint(_ context.Context, fp stash.Fingerprint) (stash.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, e := range m.entries {
		if e.Fingerprint == fp {
			return e, nil
		}
	}
	return stash.Entry{}, fmt.Errorf("fingerprint %s: %w", fp, stash.ErrNotFound)
}

// List возвращает entries в порядке добавления.
func (m *MockStore) List(_ context.Context) ([]stash.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := make([]stash.Entry, 0, len(m.order))
	for _, id := range m.order {
		entries = append(entries, m.entries[id])
	}
	return entries, nil
}

// Delete удаляет entry.
func (m *MockStore) Delete(_ context.Context, id ksuid.KSUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[id]; !exists {
		return fmt.Errorf("entry %s: %w", id, stash.ErrNotFound)
	}
	delete(m.entries, id)
	m.order = slices.DeleteFunc(m.order, func(x ksuid.KSUID) bool { return x == id })
	return nil
}

// Close закрывает MockStore (no-op для in-memory).
func (m *MockStore) Close() error {
	return nil
}

// Reset очищает все данные MockStore.
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[ksuid.KSUID]stash.Entry)
	m.order = nil
}

// EntryCount возвращает количество entries в MockStore.
func (m *MockStore) EntryCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
