package session

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// MemoryStorage is a process-local fiber.Storage used with the sqlite engine and in tests.
// Entries expire after their own expiry or the storage-wide maxAge, whichever comes first.
type MemoryStorage struct {
	maxAge time.Duration
	lru    *lru.LRU[string, memoryEntry]
}

// NewMemoryStorage returns a storage holding at most size sessions for at most maxAge.
func NewMemoryStorage(size int, maxAge time.Duration) *MemoryStorage {
	return &MemoryStorage{
		maxAge: maxAge,
		lru:    lru.NewLRU[string, memoryEntry](size, nil, maxAge),
	}
}

// Get implements fiber.Storage. A missing key returns nil, nil.
func (m *MemoryStorage) Get(key string) ([]byte, error) {
	e, ok := m.lru.Get(key)
	if !ok {
		return nil, nil
	}

	if !e.expires.IsZero() && time.Now().After(e.expires) {
		m.lru.Remove(key)

		return nil, nil
	}

	return append([]byte(nil), e.value...), nil
}

// Set implements fiber.Storage. A zero exp keeps the entry for maxAge.
func (m *MemoryStorage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}

	e := memoryEntry{value: append([]byte(nil), val...)}
	if exp > 0 && exp < m.maxAge {
		e.expires = time.Now().Add(exp)
	}

	m.lru.Add(key, e)

	return nil
}

// Delete implements fiber.Storage.
func (m *MemoryStorage) Delete(key string) error {
	m.lru.Remove(key)

	return nil
}

// Reset implements fiber.Storage.
func (m *MemoryStorage) Reset() error {
	m.lru.Purge()

	return nil
}

// Close implements fiber.Storage.
func (m *MemoryStorage) Close() error {
	return nil
}
