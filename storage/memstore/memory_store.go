package memstore

import (
	"sort"
	"sync"

	"github.com/jrsteele09/fitcamp-session/storage"
)

var _ storage.Store = (*MemoryStore)(nil)

// MemoryStore keeps a storage scope in process memory. A zero quota means
// unlimited; otherwise the summed length of keys and values may not exceed it.
type MemoryStore struct {
	items map[string]string
	quota int
	used  int
	lock  sync.RWMutex
}

type Option func(*MemoryStore)

// WithQuota caps the bytes held by the store, like a browser's storage quota.
func WithQuota(bytes int) Option {
	return func(ms *MemoryStore) {
		ms.quota = bytes
	}
}

func New(options ...Option) *MemoryStore {
	ms := &MemoryStore{
		items: make(map[string]string),
	}
	for _, opt := range options {
		opt(ms)
	}
	return ms
}

func (ms *MemoryStore) Get(key string) (string, error) {
	ms.lock.RLock()
	defer ms.lock.RUnlock()

	v, ok := ms.items[key]
	if !ok {
		return "", storage.ErrNotFound
	}
	return v, nil
}

func (ms *MemoryStore) Set(key, value string) error {
	ms.lock.Lock()
	defer ms.lock.Unlock()

	used := ms.used + len(value)
	if old, ok := ms.items[key]; ok {
		used -= len(old)
	} else {
		used += len(key)
	}
	if ms.quota > 0 && used > ms.quota {
		return storage.ErrQuotaExceeded
	}

	ms.items[key] = value
	ms.used = used
	return nil
}

func (ms *MemoryStore) Delete(key string) error {
	ms.lock.Lock()
	defer ms.lock.Unlock()

	if old, ok := ms.items[key]; ok {
		ms.used -= len(key) + len(old)
		delete(ms.items, key)
	}
	return nil
}

func (ms *MemoryStore) Keys() ([]string, error) {
	ms.lock.RLock()
	defer ms.lock.RUnlock()

	keys := make([]string, 0, len(ms.items))
	for k := range ms.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
