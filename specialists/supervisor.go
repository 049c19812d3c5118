package specialists

import (
	"context"
	"time"

	"github.com/climatevia/pathway/agentcore"
	"github.com/climatevia/pathway/errs"
)

// Supervisor is Pendo: the default entrypoint, which in addition to the
// Agent Contract can hand a conversation off to a named specialist.
type Supervisor struct {
	*Specialist
	registry *agentcore.Registry
}

// NewSupervisor wraps spec as a Supervisor, resolving delegation targets
// through registry.
func NewSupervisor(spec *Specialist, registry *agentcore.Registry) *Supervisor {
	return &Supervisor{Specialist: spec, registry: registry}
}

// DelegateToSpecialist looks up (in the registry) and invokes the
// named specialist, tagging its response's metadata with who delegated and
// when — grounded on pendo/agent.py's delegate_to_specialist.
func (s *Supervisor) DelegateToSpecialist(ctx context.Context, specialistID string, in agentcore.Interaction) (agentcore.Response, error) {
	specialist, err := s.registry.Get(specialistID)
	if err != nil {
		return agentcore.Response{}, errs.Wrap(errs.NotFound, "specialists: delegate to unknown specialist '"+specialistID+"'", err)
	}

	resp, err := specialist.HandleInteraction(ctx, in)
	if err != nil {
		return agentcore.Response{}, err
	}

	if resp.Metadata == nil {
		resp.Metadata = map[string]any{}
	}
	resp.Metadata["delegated_by"] = "supervisor"
	resp.Metadata["delegation_timestamp"] = time.Now().UTC().Format(time.RFC3339)

	return resp, nil
}
