package specialists

import (
	"github.com/climatevia/pathway/agentcore"
	"github.com/climatevia/pathway/config"
	"github.com/climatevia/pathway/errs"
	"github.com/climatevia/pathway/llms"
	"github.com/climatevia/pathway/memory"
	"github.com/climatevia/pathway/prompts"
	"github.com/climatevia/pathway/reflection"
)

// supervisorID is the one agent id the team wiring treats specially: it
// gets a Supervisor wrapper instead of a plain Specialist.
const supervisorID = "pendo"

// Team is every constructed specialist plus the supervisor, ready to
// dispatch against by id.
type Team struct {
	Registry   *agentcore.Registry
	Supervisor *Supervisor
}

// Build constructs one Specialist per entry in cfg.Agents, loading the
// prompt bundle named by its PromptKey and wiring it to its configured LLM
// gateway and a per-agent memory store and reflection engine. An entry
// whose bundle or LLM is not registered fails Build with InvalidInput.
func Build(cfg *config.Config, promptRegistry *prompts.Registry, llmRegistry *llms.Registry, memRegistry *memory.Registry, reflRegistry *reflection.Registry) (*Team, error) {
	agentRegistry := agentcore.NewRegistry()

	for _, id := range cfg.ListAgents() {
		agentCfg, ok := cfg.GetAgent(id)
		if !ok {
			continue
		}
		bundle, err := promptRegistry.Get(agentCfg.PromptKey)
		if err != nil {
			return nil, errs.Wrap(errs.InvalidInput, "specialists: no prompt bundle '"+agentCfg.PromptKey+"' for agent '"+id+"'", err)
		}
		gateway, err := llmRegistry.Get(agentCfg.LLM)
		if err != nil {
			return nil, errs.Wrap(errs.InvalidInput, "specialists: agent '"+id+"' references unknown llm '"+agentCfg.LLM+"'", err)
		}

		mem := memRegistry.GetOrCreate(id, gateway)
		refl := reflRegistry.GetOrCreate(id, gateway)

		specialist := New(id, *agentCfg, bundle, gateway, mem, refl)
		if err := agentRegistry.Register(id, specialist); err != nil {
			return nil, err
		}
	}

	supervisorAgent, err := agentRegistry.Get(supervisorID)
	if err != nil {
		return nil, errs.Wrap(errs.InvalidInput, "specialists: supervisor agent '"+supervisorID+"' not configured", err)
	}
	supervisorSpecialist, ok := supervisorAgent.(*Specialist)
	if !ok {
		return nil, errs.New(errs.InternalInvariant, "specialists: supervisor agent is not a *Specialist")
	}

	return &Team{
		Registry:   agentRegistry,
		Supervisor: NewSupervisor(supervisorSpecialist, agentRegistry),
	}, nil
}
