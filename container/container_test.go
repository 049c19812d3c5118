package container

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/climatevia/pathway/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Logging: config.LoggingConfig{Level: "error", Format: "simple", Output: "stdout"},
		LLMs: map[string]config.LLMProviderConfig{
			"default": {Type: "openai", APIKey: "test-key", Model: "gpt-4o-mini"},
		},
		Agents: map[string]config.AgentConfig{
			"pendo": {Name: "pendo", LLM: "default", PromptKey: "pendo"},
			"alex":  {Name: "alex", LLM: "default", PromptKey: "alex"},
		},
	}
}

func TestNew_WiresSupervisorAndEmpathyWithoutOptionalCollaborators(t *testing.T) {
	c, err := New(context.Background(), testConfig())
	require.NoError(t, err)
	defer c.Close()

	require.NotNil(t, c.Supervisor)
	require.NotNil(t, c.Empathy)
	require.NotNil(t, c.Sessions)
	require.Nil(t, c.Auth)
	require.Nil(t, c.Partners)
}

func TestNew_MissingSupervisorAgentFails(t *testing.T) {
	cfg := testConfig()
	delete(cfg.Agents, "pendo")

	_, err := New(context.Background(), cfg)
	require.Error(t, err)
}

func TestNew_UnknownLLMReferenceFails(t *testing.T) {
	cfg := testConfig()
	cfg.Agents["pendo"] = config.AgentConfig{Name: "pendo", LLM: "nonexistent", PromptKey: "pendo"}

	_, err := New(context.Background(), cfg)
	require.Error(t, err)
}
