package specialists

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/climatevia/pathway/agentcore"
	"github.com/climatevia/pathway/config"
	"github.com/climatevia/pathway/llms"
	"github.com/climatevia/pathway/memory"
	"github.com/climatevia/pathway/prompts"
	"github.com/climatevia/pathway/reflection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubGateway never reaches a provider: every call either returns a fixed
// chat response or fails, exercising both the happy path and the fallback
// path without a network dependency.
type stubGateway struct{}

func (stubGateway) ChatCompletion(ctx context.Context, req llms.ChatRequest) (llms.ChatResponse, error) {
	return llms.ChatResponse{Text: "Here's what I'd suggest."}, nil
}
func (stubGateway) Embedding(ctx context.Context, text string) ([]float64, error) {
	return []float64{0.1, 0.2, 0.3}, nil
}
func (stubGateway) StructuredOutput(ctx context.Context, req llms.StructuredRequest, out any) error {
	var payload []byte
	switch req.SchemaName {
	case "intent_classification":
		payload = []byte(`{"intent":"initial_discovery","confidence":0.7,"reasoning":"stub"}`)
	case "confidence_assessment":
		payload = []byte(`{"score":0.75,"reasoning":"stub"}`)
	default:
		payload = []byte(`{}`)
	}
	return json.Unmarshal(payload, out)
}
func (stubGateway) StreamChat(ctx context.Context, req llms.ChatRequest) (<-chan llms.StreamChunk, error) {
	ch := make(chan llms.StreamChunk, 1)
	ch <- llms.StreamChunk{Done: true}
	close(ch)
	return ch, nil
}

func testConfig() *config.Config {
	cfg := &config.Config{
		LLMs: map[string]config.LLMProviderConfig{
			"default": {Type: "openai", Model: "gpt-4o", APIKey: "test", Host: "https://api.openai.test"},
		},
		Agents: map[string]config.AgentConfig{
			"pendo": {Name: "pendo", LLM: "default", PromptKey: "pendo"},
			"mai":   {Name: "mai", LLM: "default", PromptKey: "mai"},
			"alex":  {Name: "alex", LLM: "default", PromptKey: "alex"},
		},
	}
	cfg.SetDefaults()
	return cfg
}

func TestBuild_WiresSupervisorAndSpecialists(t *testing.T) {
	cfg := testConfig()
	llmRegistry := llms.NewRegistry()
	require.NoError(t, llmRegistry.Register("default", stubGateway{}))

	team, err := Build(cfg, prompts.DefaultRegistry(), llmRegistry, memory.NewRegistry(), reflection.NewRegistry())
	require.NoError(t, err)
	assert.Equal(t, "pendo", team.Supervisor.ID())

	mai, err := team.Registry.Get("mai")
	require.NoError(t, err)
	assert.Equal(t, "resume_specialist", mai.SpecialistType())
}

func TestSupervisor_DelegateToSpecialistTagsMetadata(t *testing.T) {
	cfg := testConfig()
	llmRegistry := llms.NewRegistry()
	require.NoError(t, llmRegistry.Register("default", stubGateway{}))

	team, err := Build(cfg, prompts.DefaultRegistry(), llmRegistry, memory.NewRegistry(), reflection.NewRegistry())
	require.NoError(t, err)

	resp, err := team.Supervisor.DelegateToSpecialist(context.Background(), "mai", agentcore.Interaction{
		Message:        "Can you review my resume?",
		UserID:         "u1",
		ConversationID: "c1",
	})
	require.NoError(t, err)
	assert.Equal(t, "supervisor", resp.Metadata["delegated_by"])
	assert.NotEmpty(t, resp.Metadata["delegation_timestamp"])
}

func TestSupervisor_DelegateToAlexTagsEmpathySpecialistType(t *testing.T) {
	cfg := testConfig()
	llmRegistry := llms.NewRegistry()
	require.NoError(t, llmRegistry.Register("default", stubGateway{}))

	team, err := Build(cfg, prompts.DefaultRegistry(), llmRegistry, memory.NewRegistry(), reflection.NewRegistry())
	require.NoError(t, err)

	resp, err := team.Supervisor.DelegateToSpecialist(context.Background(), "alex", agentcore.Interaction{
		Message:        "Can you bring in emotional support for this?",
		UserID:         "u1",
		ConversationID: "c1",
	})
	require.NoError(t, err)
	assert.Equal(t, "empathy_specialist", resp.SpecialistType)
	assert.Equal(t, "supervisor", resp.Metadata["delegated_by"])
	assert.NotEmpty(t, resp.Metadata["delegation_timestamp"])
}
