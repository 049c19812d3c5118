package memory

import (
	"sync"

	"github.com/climatevia/pathway/llms"
	"github.com/climatevia/pathway/registry"
)

// Registry holds one Store per specialist, keyed by agent id.
type Registry struct {
	*registry.BaseRegistry[*Store]
	mu sync.Mutex
}

// NewRegistry constructs an empty store registry.
func NewRegistry() *Registry {
	return &Registry{BaseRegistry: registry.NewBaseRegistry[*Store]()}
}

// GetOrCreate returns the store registered under agentID, creating one
// backed by gateway on first access.
func (r *Registry) GetOrCreate(agentID string, gateway llms.Gateway) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	if store, ok := r.BaseRegistry.Get(agentID); ok {
		return store
	}
	store := NewStore(gateway)
	_ = r.Register(agentID, store)
	return store
}
