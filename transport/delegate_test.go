package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/climatevia/pathway/config"
	"github.com/climatevia/pathway/llms"
	"github.com/climatevia/pathway/memory"
	"github.com/climatevia/pathway/prompts"
	"github.com/climatevia/pathway/reflection"
	"github.com/climatevia/pathway/session"
	"github.com/climatevia/pathway/specialists"
	"github.com/climatevia/pathway/supervisor"
)

// delegateStubGateway mirrors specialists/build_test.go's stubGateway: fixed
// responses, no network dependency.
type delegateStubGateway struct{}

func (delegateStubGateway) ChatCompletion(ctx context.Context, req llms.ChatRequest) (llms.ChatResponse, error) {
	return llms.ChatResponse{Text: "Here's what I'd suggest."}, nil
}
func (delegateStubGateway) Embedding(ctx context.Context, text string) ([]float64, error) {
	return []float64{0.1, 0.2, 0.3}, nil
}
func (delegateStubGateway) StructuredOutput(ctx context.Context, req llms.StructuredRequest, out any) error {
	return json.Unmarshal([]byte(`{}`), out)
}
func (delegateStubGateway) StreamChat(ctx context.Context, req llms.ChatRequest) (<-chan llms.StreamChunk, error) {
	ch := make(chan llms.StreamChunk, 1)
	ch <- llms.StreamChunk{Done: true}
	close(ch)
	return ch, nil
}

func testServerWithDelegate(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{
		LLMs: map[string]config.LLMProviderConfig{
			"default": {Type: "openai", Model: "gpt-4o", APIKey: "test", Host: "https://api.openai.test"},
		},
		Agents: map[string]config.AgentConfig{
			"pendo": {Name: "pendo", LLM: "default", PromptKey: "pendo"},
			"mai":   {Name: "mai", LLM: "default", PromptKey: "mai"},
		},
	}
	cfg.SetDefaults()

	llmRegistry := llms.NewRegistry()
	require.NoError(t, llmRegistry.Register("default", delegateStubGateway{}))

	team, err := specialists.Build(cfg, prompts.DefaultRegistry(), llmRegistry, memory.NewRegistry(), reflection.NewRegistry())
	require.NoError(t, err)

	wf := supervisor.New(team.Registry, nil, nil, 10, 0.75)
	sessions := session.New(config.SessionConfig{})
	return NewServer(config.ServerConfig{Host: "127.0.0.1", Port: 0}, Dependencies{
		Supervisor: wf,
		Delegate:   team.Supervisor,
		Sessions:   sessions,
	})
}

func TestHandleChatDelegate_InvokesNamedSpecialistDirectly(t *testing.T) {
	srv := testServerWithDelegate(t)
	rec := doRequest(t, srv, http.MethodPost, "/chat/delegate", delegateRequest{
		SpecialistID: "mai", Content: "Can you review my resume?", UserID: "u1", ConversationID: "c1",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp delegateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "resume_specialist", resp.Response.SpecialistType)
	assert.Equal(t, "supervisor", resp.Response.Metadata["delegated_by"])
	assert.NotEmpty(t, resp.Response.Metadata["delegation_timestamp"])
}

func TestHandleChatDelegate_UnknownSpecialistIsError(t *testing.T) {
	srv := testServerWithDelegate(t)
	rec := doRequest(t, srv, http.MethodPost, "/chat/delegate", delegateRequest{
		SpecialistID: "nope", Content: "hi", UserID: "u1", ConversationID: "c1",
	})
	assert.NotEqual(t, http.StatusOK, rec.Code)
}

func TestHandleChatDelegate_NotConfiguredIsUnavailable(t *testing.T) {
	srv := testServer(t)
	rec := doRequest(t, srv, http.MethodPost, "/chat/delegate", delegateRequest{
		SpecialistID: "mai", Content: "hi", UserID: "u1", ConversationID: "c1",
	})
	assert.NotEqual(t, http.StatusOK, rec.Code)
}
