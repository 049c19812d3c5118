package prompts

import (
	"github.com/climatevia/pathway/errs"
	"github.com/climatevia/pathway/registry"
)

// Registry is a name -> Bundle lookup. Once built it is treated as
// immutable: specialists read from it on every turn but never mutate it.
type Registry struct {
	*registry.BaseRegistry[Bundle]
}

// NewRegistry constructs an empty prompt registry.
func NewRegistry() *Registry {
	return &Registry{BaseRegistry: registry.NewBaseRegistry[Bundle]()}
}

// DefaultRegistry returns a registry preloaded with the eight built-in
// specialist bundles (the supervisor plus seven specialists).
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for id, bundle := range defaultBundles() {
		_ = r.Register(id, bundle)
	}
	return r
}

// Get returns the bundle for agentID, or UnknownPrompt if none is
// registered under that id.
func (r *Registry) Get(agentID string) (Bundle, error) {
	bundle, exists := r.BaseRegistry.Get(agentID)
	if !exists {
		return Bundle{}, errs.New(errs.UnknownPrompt, "prompts: unknown agent id '"+agentID+"'")
	}
	return bundle, nil
}
