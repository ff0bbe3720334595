package storage

import (
	"fmt"
	"sort"
	"sync"
)

// Factory creates an unopened storage backend instance.
type Factory func() ReadWriteStorage

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register makes a storage backend available under the given identifier.
// Backends call Register from an init function.
func Register(identifier string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[identifier] = factory
}

// Get returns the factory registered under identifier.
func Get(identifier string) (Factory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	factory, ok := registry[identifier]
	return factory, ok
}

// IsRegistered reports whether a backend exists for identifier.
func IsRegistered(identifier string) bool {
	_, ok := Get(identifier)
	return ok
}

// List returns the registered identifiers in sorted order.
func List() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	identifiers := make([]string, 0, len(registry))
	for id := range registry {
		identifiers = append(identifiers, id)
	}
	sort.Strings(identifiers)
	return identifiers
}

// New instantiates the backend registered under identifier.
func New(identifier string) (ReadWriteStorage, error) {
	factory, ok := Get(identifier)
	if !ok {
		return nil, fmt.Errorf("unknown storage identifier: %s (registered: %v)", identifier, List())
	}
	return factory(), nil
}
