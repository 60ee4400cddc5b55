package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/loresmith/pdfstore/pkg/pdfstore"
)

// Store is an in-memory implementation of the pdfstore.RecordStore
// interface with per-key TTL, used in tests and development. Expiry is
// applied lazily on read, the way the production stores apply it.
type Store struct {
	mu      sync.RWMutex
	records map[string]entry
	now     func() time.Time
}

type entry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

// New creates a new in-memory record store
func New() *Store {
	return &Store{
		records: make(map[string]entry),
		now:     time.Now,
	}
}

// NewWithClock creates a store with an injected clock, for tests that need
// to control TTL expiry.
func NewWithClock(now func() time.Time) *Store {
	return &Store{
		records: make(map[string]entry),
		now:     now,
	}
}

// Get returns the value for a key, treating expired entries as absent.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	e, exists := s.records[key]
	s.mu.RUnlock()

	if !exists || s.expired(e) {
		return nil, pdfstore.ErrRecordNotFound
	}

	value := make([]byte, len(e.value))
	copy(value, e.value)
	return value, nil
}

// Put writes a value with an optional TTL.
func (s *Store) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	e := entry{value: make([]byte, len(value))}
	copy(e.value, value)
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[key] = e
	return nil
}

// Delete removes a key. Missing keys are ignored.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, key)
	return nil
}

// List returns all live keys beginning with prefix, sorted.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []string
	for k, e := range s.records {
		if strings.HasPrefix(k, prefix) && !s.expired(e) {
			keys = append(keys, k)
		}
	}

	sort.Strings(keys)
	return keys, nil
}

func (s *Store) expired(e entry) bool {
	return !e.expiresAt.IsZero() && s.now().After(e.expiresAt)
}
