// Package container wires every collaborator package into one running
// instance: configuration, LLM gateways, prompts, memory, specialists, the
// two workflow graphs, session tracking, auth, partner/cache persistence,
// and metrics. Grounded on the teacher's pkg/component.ComponentManager —
// same "construct every registry up front, fail fast on any misconfigured
// collaborator" shape, generalized from hector's tool/embedder/db registries
// to this module's specialist/workflow/session/auth/partnerdb/cache stack.
package container

import (
	"context"
	"os"

	"github.com/climatevia/pathway/auth"
	"github.com/climatevia/pathway/cache"
	"github.com/climatevia/pathway/config"
	"github.com/climatevia/pathway/empathy"
	"github.com/climatevia/pathway/errs"
	"github.com/climatevia/pathway/llms"
	"github.com/climatevia/pathway/logger"
	"github.com/climatevia/pathway/memory"
	"github.com/climatevia/pathway/metrics"
	"github.com/climatevia/pathway/partnerdb"
	"github.com/climatevia/pathway/prompts"
	"github.com/climatevia/pathway/reflection"
	"github.com/climatevia/pathway/session"
	"github.com/climatevia/pathway/specialists"
	"github.com/climatevia/pathway/supervisor"
)

// Container holds every constructed collaborator for one process lifetime.
type Container struct {
	Config *config.Config

	LLMs       *llms.Registry
	Prompts    *prompts.Registry
	Memory     *memory.Registry
	Reflection *reflection.Registry
	Team       *specialists.Team

	Supervisor *supervisor.Workflow
	Empathy    *empathy.Workflow

	Sessions *session.Tracker
	Auth     *auth.JWTValidator // nil when cfg.Auth.Enabled is false
	Partners *partnerdb.Store   // nil when cfg.Database.DSN is empty
	Cache    *cache.Cache       // nil when cfg.Cache unreachable
	Metrics  *metrics.Metrics   // nil when cfg.Metrics.Enabled is false

	closeLog func()
}

// empathyAgentID is the specialist whose prompt bundle and LLM the empathy
// sub-workflow borrows for its Alex-voiced response and crisis-escalation
// nodes, per backendv1/workflows/empathy_workflow.py's use of the `alex`
// agent.
const empathyAgentID = "alex"

// New constructs every collaborator from cfg. Auth and partner persistence
// are nil when not configured, but fail New when configured and
// unavailable; only the cache degrades to nil when it cannot be reached.
// Everything else is fail-fast.
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	closeLog := initLogger(cfg.Logging)

	llmRegistry := llms.NewRegistry()
	for name, llmCfg := range cfg.LLMs {
		if _, err := llmRegistry.CreateFromConfig(name, llmCfg); err != nil {
			return nil, errs.Wrap(errs.InvalidInput, "container: llm '"+name+"'", err)
		}
	}

	promptRegistry := prompts.DefaultRegistry()
	memRegistry := memory.NewRegistry()
	reflRegistry := reflection.NewRegistry()

	team, err := specialists.Build(cfg, promptRegistry, llmRegistry, memRegistry, reflRegistry)
	if err != nil {
		return nil, errs.Wrap(errs.InvalidInput, "container: build specialist team", err)
	}

	var empathyWorkflow *empathy.Workflow
	if alexAgent, err := team.Registry.Get(empathyAgentID); err == nil {
		alexCfg, _ := cfg.GetAgent(empathyAgentID)
		gateway, gwErr := llmRegistry.Get(alexCfg.LLM)
		if gwErr != nil {
			return nil, errs.Wrap(errs.InvalidInput, "container: empathy workflow llm", gwErr)
		}
		empathyWorkflow = empathy.New(alexAgent, gateway, cfg.Workflow.MaxSteps)
	}

	sessions := session.New(cfg.Session)
	sessions.Start(ctx)

	c := &Container{
		Config:     cfg,
		LLMs:       llmRegistry,
		Prompts:    promptRegistry,
		Memory:     memRegistry,
		Reflection: reflRegistry,
		Team:       team,
		Empathy:    empathyWorkflow,
		Sessions:   sessions,
		Metrics:    metrics.New(cfg.Metrics),
		closeLog:   closeLog,
	}

	if cfg.Auth.Enabled {
		validator, err := auth.NewJWTValidator(ctx, cfg.Auth)
		if err != nil {
			return nil, errs.Wrap(errs.Unavailable, "container: auth validator", err)
		}
		c.Auth = validator
	}

	if cfg.Database.DSN != "" {
		store, err := partnerdb.Open(ctx, cfg.Database)
		if err != nil {
			return nil, errs.Wrap(errs.Unavailable, "container: partner store", err)
		}
		c.Partners = store
	}

	if cfg.Cache.Addr != "" {
		if ch, err := cache.New(ctx, cfg.Cache); err == nil {
			c.Cache = ch
		}
	}

	var partnerFinder supervisor.PartnerFinder
	if c.Partners != nil {
		partnerFinder = c.Partners
	}
	c.Supervisor = supervisor.New(team.Registry, partnerFinder, empathyWorkflow, cfg.Workflow.MaxSteps, cfg.Workflow.ConfidenceThreshold)

	return c, nil
}

func initLogger(cfg config.LoggingConfig) func() {
	level := logger.ParseLevel(cfg.Level)
	if cfg.Output == "file" {
		if f, cleanup, err := logger.OpenLogFile("pathway.log"); err == nil {
			logger.Init(level, f, cfg.Format)
			return cleanup
		}
	}
	out := os.Stdout
	if cfg.Output == "stderr" {
		out = os.Stderr
	}
	logger.Init(level, out, cfg.Format)
	return func() {}
}

// Close releases every collaborator holding a background goroutine or
// external connection.
func (c *Container) Close() {
	c.Sessions.Stop()
	if c.Auth != nil {
		c.Auth.Close()
	}
	if c.Partners != nil {
		c.Partners.Close()
	}
	if c.Cache != nil {
		c.Cache.Close()
	}
	if c.closeLog != nil {
		c.closeLog()
	}
}
