// Package config provides the typed configuration for the orchestration
// runtime: provider credentials, persistence endpoints, and per-specialist
// agent settings, loaded from YAML with environment variable overlay.
package config

import (
	"os"

	"github.com/climatevia/pathway/errs"
	"gopkg.in/yaml.v3"
)

// ============================================================================
// MAIN UNIFIED CONFIGURATION
// ============================================================================

// Config is the single entry point for all runtime configuration: one YAML
// document describing providers, specialists, persistence, and transport.
type Config struct {
	Name        string            `yaml:"name,omitempty"`
	Description string            `yaml:"description,omitempty"`
	Metadata    map[string]string `yaml:"metadata,omitempty"`

	Logging LoggingConfig `yaml:"logging,omitempty"`
	Server  ServerConfig  `yaml:"server,omitempty"`
	Auth    AuthConfig    `yaml:"auth,omitempty"`
	Metrics MetricsConfig `yaml:"metrics,omitempty"`

	LLMs      map[string]LLMProviderConfig      `yaml:"llms,omitempty"`
	Embedders map[string]EmbedderProviderConfig `yaml:"embedders,omitempty"`

	Agents   map[string]AgentConfig `yaml:"agents,omitempty"`
	Workflow WorkflowConfig         `yaml:"workflow,omitempty"`
	Session  SessionConfig          `yaml:"session,omitempty"`

	Database DatabaseConfig `yaml:"database,omitempty"`
	Cache    CacheConfig    `yaml:"cache,omitempty"`
}

// Validate checks every section of the configuration.
func (c *Config) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Metrics.Validate(); err != nil {
		return err
	}
	for name, llm := range c.LLMs {
		if err := llm.Validate(); err != nil {
			return errs.Wrap(errs.InvalidInput, "llm '"+name+"'", err)
		}
	}
	for name, embedder := range c.Embedders {
		if err := embedder.Validate(); err != nil {
			return errs.Wrap(errs.InvalidInput, "embedder '"+name+"'", err)
		}
	}
	for name, agent := range c.Agents {
		if err := agent.Validate(); err != nil {
			return errs.Wrap(errs.InvalidInput, "agent '"+name+"'", err)
		}
	}
	if err := c.Workflow.Validate(); err != nil {
		return err
	}
	if err := c.Session.Validate(); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if err := c.Cache.Validate(); err != nil {
		return err
	}
	return nil
}

// SetDefaults fills in every unset field across the whole configuration
// tree.
func (c *Config) SetDefaults() {
	c.Logging.SetDefaults()
	c.Server.SetDefaults()
	c.Auth.SetDefaults()
	c.Metrics.SetDefaults()
	c.Workflow.SetDefaults()
	c.Session.SetDefaults()
	c.Database.SetDefaults()
	c.Cache.SetDefaults()

	if c.LLMs == nil {
		c.LLMs = make(map[string]LLMProviderConfig)
	}
	for name := range c.LLMs {
		llm := c.LLMs[name]
		llm.SetDefaults()
		c.LLMs[name] = llm
	}

	if c.Embedders == nil {
		c.Embedders = make(map[string]EmbedderProviderConfig)
	}
	for name := range c.Embedders {
		embedder := c.Embedders[name]
		embedder.SetDefaults()
		c.Embedders[name] = embedder
	}

	if c.Agents == nil {
		c.Agents = make(map[string]AgentConfig)
	}
	for name := range c.Agents {
		agent := c.Agents[name]
		agent.SetDefaults()
		c.Agents[name] = agent
	}
}

// ============================================================================
// CONFIGURATION LOADING
// ============================================================================

// LoadConfig loads configuration from a YAML file, expanding ${VAR} /
// ${VAR:-default} / $VAR references against the process environment first.
func LoadConfig(filePath string) (*Config, error) {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return nil, errs.Wrap(errs.NotFound, "config: read "+filePath, err)
	}
	return LoadConfigFromString(string(raw))
}

// LoadConfigFromString loads configuration from a YAML document already in
// memory, e.g. embedded defaults or a test fixture.
func LoadConfigFromString(yamlContent string) (*Config, error) {
	expanded := expandEnvVars(yamlContent)

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, errs.Wrap(errs.InvalidInput, "config: parse yaml", err)
	}
	return &cfg, nil
}

// ============================================================================
// HELPER METHODS
// ============================================================================

// GetAgent returns a specialist's configuration by name.
func (c *Config) GetAgent(name string) (*AgentConfig, bool) {
	agent, exists := c.Agents[name]
	return &agent, exists
}

// ListAgents returns the configured specialist names.
func (c *Config) ListAgents() []string {
	agents := make([]string, 0, len(c.Agents))
	for name := range c.Agents {
		agents = append(agents, name)
	}
	return agents
}
