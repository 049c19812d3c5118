package llms

import (
	"github.com/climatevia/pathway/config"
	"github.com/climatevia/pathway/errs"
	"github.com/climatevia/pathway/registry"
)

// Registry holds named Gateway instances, one per configured LLM provider.
type Registry struct {
	*registry.BaseRegistry[Gateway]
}

// NewRegistry constructs an empty gateway registry.
func NewRegistry() *Registry {
	return &Registry{BaseRegistry: registry.NewBaseRegistry[Gateway]()}
}

// CreateFromConfig builds and registers a Gateway for name from its provider
// config, dispatching on cfg.Type.
func (r *Registry) CreateFromConfig(name string, cfg config.LLMProviderConfig) (Gateway, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var gw Gateway
	switch cfg.Type {
	case "openai":
		gw = NewOpenAIGateway(cfg)
	case "anthropic":
		gw = NewAnthropicGateway(cfg)
	default:
		return nil, errs.New(errs.InvalidInput, "llms: unsupported provider type: "+cfg.Type)
	}

	if err := r.Register(name, gw); err != nil {
		return nil, err
	}
	return gw, nil
}

// Get returns the named gateway, or an Unavailable error if none is
// registered under that name.
func (r *Registry) Get(name string) (Gateway, error) {
	gw, exists := r.BaseRegistry.Get(name)
	if !exists {
		return nil, errs.New(errs.Unavailable, "llms: no gateway registered under '"+name+"'")
	}
	return gw, nil
}
