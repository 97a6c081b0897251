// Package client is the storefront SDK. It mirrors what a browser frontend
// does: talk to the cart API when it is reachable, keep a simulated local
// cart when it is not, and persist session state in a small key-value store.
package client

import "sync"

// Storage keys shared across the SDK.
const (
	keyCartID    = "cartId"
	keyFallback  = "fallbackCart"
	keySession   = "session"
	keyAuthPhone = "authPhone"
	keyBundle    = "bundleSelection"
)

// KV is the persistence boundary. Implementations range from an in-memory
// map in tests to a file- or cookie-backed store in real hosts.
type KV interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Delete(key string)
}

// MemoryKV is a threadsafe in-memory KV, the default when none is supplied.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]string)}
}

func (m *MemoryKV) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *MemoryKV) Set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
}

func (m *MemoryKV) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
}
