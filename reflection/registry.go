package reflection

import (
	"sync"

	"github.com/climatevia/pathway/llms"
	"github.com/climatevia/pathway/registry"
)

// Registry holds one Engine per specialist, keyed by agent id.
type Registry struct {
	*registry.BaseRegistry[*Engine]
	mu sync.Mutex
}

// NewRegistry constructs an empty engine registry.
func NewRegistry() *Registry {
	return &Registry{BaseRegistry: registry.NewBaseRegistry[*Engine]()}
}

// GetOrCreate returns the engine registered under agentID, creating one
// backed by gateway on first access.
func (r *Registry) GetOrCreate(agentID string, gateway llms.Gateway) *Engine {
	r.mu.Lock()
	defer r.mu.Unlock()

	if engine, ok := r.BaseRegistry.Get(agentID); ok {
		return engine
	}
	engine := NewEngine(agentID, gateway)
	_ = r.Register(agentID, engine)
	return engine
}
