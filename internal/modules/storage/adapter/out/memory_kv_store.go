package out

import (
	"context"
	"sync"

	storageout "keyloop/internal/modules/storage/port/out"
)

// MemoryKVStore keeps documents in process. Fail makes every call return the
// given error, to simulate an unavailable backend.
type MemoryKVStore struct {
	mu     sync.Mutex
	values map[string][]byte
	fail   error
}

func NewMemoryKVStore() *MemoryKVStore {
	return &MemoryKVStore{values: make(map[string][]byte)}
}

var _ storageout.KVStore = (*MemoryKVStore)(nil)

func (m *MemoryKVStore) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = err
}

func (m *MemoryKVStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, false, m.fail
	}
	value, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

func (m *MemoryKVStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.values[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryKVStore) SetMany(_ context.Context, entries map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	for key, value := range entries {
		m.values[key] = append([]byte(nil), value...)
	}
	return nil
}

func (m *MemoryKVStore) Remove(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

func (m *MemoryKVStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.values)
}
