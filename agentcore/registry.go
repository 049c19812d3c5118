package agentcore

import (
	"github.com/climatevia/pathway/errs"
	"github.com/climatevia/pathway/registry"
)

// Registry is a name -> Agent lookup, used by the supervisor to dispatch
// delegate_to_specialist calls without type assertions.
type Registry struct {
	*registry.BaseRegistry[Agent]
}

// NewRegistry constructs an empty agent registry.
func NewRegistry() *Registry {
	return &Registry{BaseRegistry: registry.NewBaseRegistry[Agent]()}
}

// Get returns the agent registered under agentID, or NotFound.
func (r *Registry) Get(agentID string) (Agent, error) {
	agent, exists := r.BaseRegistry.Get(agentID)
	if !exists {
		return nil, errs.New(errs.NotFound, "agentcore: unknown specialist '"+agentID+"'")
	}
	return agent, nil
}
