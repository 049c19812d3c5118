// Package config provides the typed configuration for the orchestration
// runtime: provider credentials, persistence endpoints, and per-specialist
// agent settings, loaded from YAML with environment variable overlay.
package config

import (
	"time"

	"github.com/climatevia/pathway/errs"
)

// ============================================================================
// LLM PROVIDER CONFIGURATION
// ============================================================================

// LLMProviderConfig describes one named LLM backend the gateway can dispatch
// chat, embedding, and structured-output requests to.
type LLMProviderConfig struct {
	Type        string        `yaml:"type"`        // "openai", "anthropic"
	Model       string        `yaml:"model"`       // model name
	APIKey      string        `yaml:"api_key"`     // API key, usually from env overlay
	Host        string        `yaml:"host"`        // API base URL
	Temperature float64       `yaml:"temperature"` // sampling temperature
	MaxTokens   int           `yaml:"max_tokens"`  // response token cap
	Timeout     time.Duration `yaml:"timeout"`     // request timeout
}

// Validate implements ConfigInterface for LLMProviderConfig.
func (c *LLMProviderConfig) Validate() error {
	if c.Type == "" {
		return errs.New(errs.InvalidInput, "llm: type is required")
	}
	if c.Model == "" {
		return errs.New(errs.InvalidInput, "llm: model is required")
	}
	if c.Host == "" {
		return errs.New(errs.InvalidInput, "llm: host is required")
	}
	if c.APIKey == "" {
		return errs.New(errs.InvalidInput, "llm: api_key is required")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return errs.New(errs.InvalidInput, "llm: temperature must be between 0 and 2")
	}
	if c.MaxTokens < 0 {
		return errs.New(errs.InvalidInput, "llm: max_tokens must be non-negative")
	}
	return nil
}

// SetDefaults implements ConfigInterface for LLMProviderConfig.
func (c *LLMProviderConfig) SetDefaults() {
	if c.Type == "" {
		c.Type = "openai"
	}
	if c.Host == "" {
		switch c.Type {
		case "anthropic":
			c.Host = "https://api.anthropic.com"
		default:
			c.Host = "https://api.openai.com/v1"
		}
	}
	if c.Temperature == 0 {
		c.Temperature = 0.7
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 2000
	}
	if c.Timeout == 0 {
		c.Timeout = 60 * time.Second
	}
}

// EmbedderProviderConfig describes the embedding backend used by the memory
// store's semantic recall.
type EmbedderProviderConfig struct {
	Type      string        `yaml:"type"`
	Model     string        `yaml:"model"`
	APIKey    string        `yaml:"api_key"`
	Host      string        `yaml:"host"`
	Dimension int           `yaml:"dimension"`
	Timeout   time.Duration `yaml:"timeout"`
}

// Validate implements ConfigInterface for EmbedderProviderConfig.
func (c *EmbedderProviderConfig) Validate() error {
	if c.Type == "" {
		return errs.New(errs.InvalidInput, "embedder: type is required")
	}
	if c.Model == "" {
		return errs.New(errs.InvalidInput, "embedder: model is required")
	}
	if c.Dimension <= 0 {
		return errs.New(errs.InvalidInput, "embedder: dimension must be positive")
	}
	return nil
}

// SetDefaults implements ConfigInterface for EmbedderProviderConfig.
func (c *EmbedderProviderConfig) SetDefaults() {
	if c.Type == "" {
		c.Type = "openai"
	}
	if c.Model == "" {
		c.Model = "text-embedding-3-small"
	}
	if c.Host == "" {
		c.Host = "https://api.openai.com/v1"
	}
	if c.Dimension == 0 {
		c.Dimension = 1536
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
}

// ============================================================================
// AGENT (SPECIALIST) CONFIGURATION
// ============================================================================

// AgentConfig configures one specialist: which LLM it dispatches to, which
// prompt bundle it loads from the registry, and how its confidence score is
// adjusted per detected intent.
type AgentConfig struct {
	Name                string             `yaml:"name"`                 // specialist id, e.g. "mai"
	Description         string             `yaml:"description"`          // one-line role summary
	LLM                 string             `yaml:"llm"`                  // LLM provider reference
	PromptKey           string             `yaml:"prompt_key"`           // key into the prompt registry
	BaseConfidence      float64            `yaml:"base_confidence"`      // starting confidence before intent adjustment
	ConfidenceByIntent  map[string]float64 `yaml:"confidence_by_intent"` // per-intent confidence adjustments
	NextActionsByIntent map[string][]string `yaml:"next_actions_by_intent"` // per-intent suggested next actions
	MaxContextMessages  int                `yaml:"max_context_messages"` // rolling window fed into the prompt
}

// Validate implements ConfigInterface for AgentConfig.
func (c *AgentConfig) Validate() error {
	if c.Name == "" {
		return errs.New(errs.InvalidInput, "agent: name is required")
	}
	if c.LLM == "" {
		return errs.New(errs.InvalidInput, "agent: llm provider reference is required")
	}
	if c.PromptKey == "" {
		return errs.New(errs.InvalidInput, "agent: prompt_key is required")
	}
	if c.BaseConfidence < 0 || c.BaseConfidence > 1 {
		return errs.New(errs.InvalidInput, "agent: base_confidence must be between 0 and 1")
	}
	for intent, adj := range c.ConfidenceByIntent {
		if adj < 0 || adj > 1 {
			return errs.New(errs.InvalidInput, "agent: confidence_by_intent["+intent+"] must be between 0 and 1")
		}
	}
	return nil
}

// SetDefaults implements ConfigInterface for AgentConfig.
func (c *AgentConfig) SetDefaults() {
	if c.BaseConfidence == 0 {
		c.BaseConfidence = 0.5
	}
	if c.MaxContextMessages == 0 {
		c.MaxContextMessages = 20
	}
	if c.ConfidenceByIntent == nil {
		c.ConfidenceByIntent = make(map[string]float64)
	}
	if c.NextActionsByIntent == nil {
		c.NextActionsByIntent = make(map[string][]string)
	}
}

// ============================================================================
// SERVER / TRANSPORT CONFIGURATION
// ============================================================================

// ServerConfig configures the HTTP transport.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// Validate implements ConfigInterface for ServerConfig.
func (c *ServerConfig) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return errs.New(errs.InvalidInput, "server: invalid port")
	}
	return nil
}

// SetDefaults implements ConfigInterface for ServerConfig.
func (c *ServerConfig) SetDefaults() {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 15 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 60 * time.Second
	}
}

// ============================================================================
// AUTH CONFIGURATION
// ============================================================================

// AuthConfig configures JWT validation. The runtime is a JWT consumer: it
// validates tokens minted by an external identity provider, it never mints
// its own.
type AuthConfig struct {
	Enabled         bool          `yaml:"enabled"`
	JWKSURL         string        `yaml:"jwks_url"`
	Issuer          string        `yaml:"issuer"`
	Audience        string        `yaml:"audience"`
	JWKSRefresh     time.Duration `yaml:"jwks_refresh"`
}

// Validate implements ConfigInterface for AuthConfig.
func (c *AuthConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.JWKSURL == "" {
		return errs.New(errs.InvalidInput, "auth: jwks_url is required when auth is enabled")
	}
	if c.Issuer == "" {
		return errs.New(errs.InvalidInput, "auth: issuer is required when auth is enabled")
	}
	if c.Audience == "" {
		return errs.New(errs.InvalidInput, "auth: audience is required when auth is enabled")
	}
	return nil
}

// SetDefaults implements ConfigInterface for AuthConfig.
func (c *AuthConfig) SetDefaults() {
	if c.JWKSRefresh == 0 {
		c.JWKSRefresh = 15 * time.Minute
	}
}

// ============================================================================
// DATABASE / CACHE CONFIGURATION
// ============================================================================

// DatabaseConfig configures the Postgres-backed partner/opportunity store.
type DatabaseConfig struct {
	Driver          string        `yaml:"driver"` // "postgres" or "sqlite3" (tests)
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// Validate implements ConfigInterface for DatabaseConfig.
func (c *DatabaseConfig) Validate() error {
	if c.DSN == "" {
		return nil // no partner store configured
	}
	if c.Driver == "" {
		return errs.New(errs.InvalidInput, "database: driver is required")
	}
	return nil
}

// SetDefaults implements ConfigInterface for DatabaseConfig.
func (c *DatabaseConfig) SetDefaults() {
	if c.Driver == "" {
		c.Driver = "postgres"
	}
	if c.MaxOpenConns == 0 {
		c.MaxOpenConns = 10
	}
	if c.MaxIdleConns == 0 {
		c.MaxIdleConns = 5
	}
	if c.ConnMaxLifetime == 0 {
		c.ConnMaxLifetime = 30 * time.Minute
	}
}

// CacheConfig configures the Redis-backed ephemeral cache.
type CacheConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// Validate implements ConfigInterface for CacheConfig.
func (c *CacheConfig) Validate() error {
	if c.Addr == "" {
		return errs.New(errs.InvalidInput, "cache: addr is required")
	}
	return nil
}

// SetDefaults implements ConfigInterface for CacheConfig.
func (c *CacheConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = "localhost:6379"
	}
	if c.TTL == 0 {
		c.TTL = 24 * time.Hour
	}
}

// ============================================================================
// SESSION CONFIGURATION
// ============================================================================

// SessionConfig configures the in-process session tracker.
type SessionConfig struct {
	WindowSize   int           `yaml:"window_size"`   // rolling message window kept per conversation
	Expiry       time.Duration `yaml:"expiry"`         // inactivity timeout before a session is swept
	SweepInterval time.Duration `yaml:"sweep_interval"` // how often the expiry sweep runs
}

// Validate implements ConfigInterface for SessionConfig.
func (c *SessionConfig) Validate() error {
	if c.WindowSize <= 0 {
		return errs.New(errs.InvalidInput, "session: window_size must be positive")
	}
	if c.Expiry <= 0 {
		return errs.New(errs.InvalidInput, "session: expiry must be positive")
	}
	return nil
}

// SetDefaults implements ConfigInterface for SessionConfig.
func (c *SessionConfig) SetDefaults() {
	if c.WindowSize == 0 {
		c.WindowSize = 20
	}
	if c.Expiry == 0 {
		c.Expiry = 24 * time.Hour
	}
	if c.SweepInterval == 0 {
		c.SweepInterval = 15 * time.Minute
	}
}

// ============================================================================
// WORKFLOW CONFIGURATION
// ============================================================================

// WorkflowConfig bounds the supervisor graph's human-in-the-loop cycles.
type WorkflowConfig struct {
	MaxSteps              int     `yaml:"max_steps"`
	MaxHumanSteeringTurns int     `yaml:"max_human_steering_turns"`
	ConfidenceThreshold   float64 `yaml:"confidence_threshold"`
}

// Validate implements ConfigInterface for WorkflowConfig.
func (c *WorkflowConfig) Validate() error {
	if c.MaxSteps <= 0 {
		return errs.New(errs.InvalidInput, "workflow: max_steps must be positive")
	}
	if c.MaxHumanSteeringTurns <= 0 {
		return errs.New(errs.InvalidInput, "workflow: max_human_steering_turns must be positive")
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return errs.New(errs.InvalidInput, "workflow: confidence_threshold must be between 0 and 1")
	}
	return nil
}

// SetDefaults implements ConfigInterface for WorkflowConfig.
func (c *WorkflowConfig) SetDefaults() {
	if c.MaxSteps == 0 {
		c.MaxSteps = 10
	}
	if c.MaxHumanSteeringTurns == 0 {
		c.MaxHumanSteeringTurns = 3
	}
	if c.ConfidenceThreshold == 0 {
		c.ConfidenceThreshold = 0.8
	}
}

// ============================================================================
// LOGGING CONFIGURATION
// ============================================================================

// LoggingConfig configures the process-wide slog logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Validate implements ConfigInterface for LoggingConfig.
func (c *LoggingConfig) Validate() error {
	switch c.Level {
	case "debug", "info", "warn", "error":
	default:
		return errs.New(errs.InvalidInput, "logging: invalid level: "+c.Level)
	}
	switch c.Output {
	case "stdout", "stderr", "file":
	default:
		return errs.New(errs.InvalidInput, "logging: invalid output: "+c.Output)
	}
	return nil
}

// SetDefaults implements ConfigInterface for LoggingConfig.
func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "simple"
	}
	if c.Output == "" {
		c.Output = "stdout"
	}
}

// ============================================================================
// METRICS CONFIGURATION
// ============================================================================

// MetricsConfig configures the Prometheus metrics endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Validate implements ConfigInterface for MetricsConfig.
func (c *MetricsConfig) Validate() error { return nil }

// SetDefaults implements ConfigInterface for MetricsConfig.
func (c *MetricsConfig) SetDefaults() {
	if c.Path == "" {
		c.Path = "/metrics"
	}
}
