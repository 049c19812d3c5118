// Package specialists provides the eight agent implementations named in the
// spec's routing table: the supervisor (pendo) and seven domain specialists,
// each a thin identity wrapper around the shared agentcore.Runtime pipeline.
package specialists

import (
	"context"

	"github.com/climatevia/pathway/agentcore"
	"github.com/climatevia/pathway/config"
	"github.com/climatevia/pathway/llms"
	"github.com/climatevia/pathway/memory"
	"github.com/climatevia/pathway/prompts"
	"github.com/climatevia/pathway/reflection"
)

// Specialist is an agentcore.Agent backed by a Runtime. Every concrete
// specialist in this package is this same wrapper constructed with a
// different agent id — behavior differences come entirely from the
// AgentConfig and Bundle supplied at construction, never from per-specialist
// Go code.
type Specialist struct {
	id      string
	runtime *agentcore.Runtime
}

// New constructs the specialist id from the given config, prompt bundle,
// gateway, memory store and reflection engine.
func New(id string, cfg config.AgentConfig, bundle prompts.Bundle, gateway llms.Gateway, memStore *memory.Store, refl *reflection.Engine) *Specialist {
	return &Specialist{
		id:      id,
		runtime: agentcore.NewRuntime(cfg, bundle, gateway, memStore, refl),
	}
}

// ID returns the specialist's agent id (e.g. "mai").
func (s *Specialist) ID() string { return s.id }

// SpecialistType implements agentcore.Agent.
func (s *Specialist) SpecialistType() string { return s.runtime.SpecialistType() }

// HandleInteraction implements agentcore.Agent.
func (s *Specialist) HandleInteraction(ctx context.Context, in agentcore.Interaction) (agentcore.Response, error) {
	return s.runtime.HandleInteraction(ctx, in)
}

var _ agentcore.Agent = (*Specialist)(nil)
