package catalog

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"inventory-sync/core/reconcile"
)

// MemoryEntry is the in-memory counterpart of Entry.
type MemoryEntry struct {
	Attributes   map[string]any
	Hash         string
	LastSyncedAt time.Time
	Removed      bool
}

// MemoryStore is a concurrency-safe in-memory reconcile.Store.
// It records every applied operation and can be told to reject specific keys.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*MemoryEntry
	failOn  map[string]error
	ops     []string

	// OnApply, when set, is called before each write with the operation name
	// ("upsert", "remove", "touch") and the key (first key for touch).
	OnApply func(op, key string)

	now func() time.Time
}

// NewMemoryStore creates an empty in-memory catalog.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*MemoryEntry),
		failOn:  make(map[string]error),
		now:     time.Now,
	}
}

// Seed inserts an entry directly, computing its content hash.
func (m *MemoryStore) Seed(key string, attrs map[string]any) error {
	hash, err := reconcile.ContentHash(attrs)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = &MemoryEntry{Attributes: maps.Clone(attrs), Hash: hash, LastSyncedAt: m.now()}
	return nil
}

// FailOn makes every write touching key fail with err.
func (m *MemoryStore) FailOn(key string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failOn[key] = err
}

// Entry returns a copy of the entry for key.
func (m *MemoryStore) Entry(key string) (MemoryEntry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return MemoryEntry{}, false
	}
	return *e, true
}

// Ops returns the applied operations in order, formatted as "op:key".
func (m *MemoryStore) Ops() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.ops...)
}

func (m *MemoryStore) ListKeyHashes(ctx context.Context) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	index := make(map[string]string, len(m.entries))
	for key, e := range m.entries {
		if !e.Removed {
			index[key] = e.Hash
		}
	}
	return index, nil
}

func (m *MemoryStore) Upsert(ctx context.Context, key string, attrs map[string]any, hash string) error {
	m.hook("upsert", key)
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failOn[key]; err != nil {
		return err
	}
	m.entries[key] = &MemoryEntry{Attributes: maps.Clone(attrs), Hash: hash, LastSyncedAt: m.now()}
	m.ops = append(m.ops, "upsert:"+key)
	return nil
}

func (m *MemoryStore) MarkRemoved(ctx context.Context, key string) error {
	m.hook("remove", key)
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failOn[key]; err != nil {
		return err
	}
	e, ok := m.entries[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, key)
	}
	e.Removed = true
	e.LastSyncedAt = m.now()
	m.ops = append(m.ops, "remove:"+key)
	return nil
}

func (m *MemoryStore) Touch(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	m.hook("touch", keys[0])
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		if err := m.failOn[key]; err != nil {
			return err
		}
	}
	now := m.now()
	for _, key := range keys {
		if e, ok := m.entries[key]; ok {
			e.LastSyncedAt = now
		}
		m.ops = append(m.ops, "touch:"+key)
	}
	return nil
}

func (m *MemoryStore) hook(op, key string) {
	if m.OnApply != nil {
		m.OnApply(op, key)
	}
}
