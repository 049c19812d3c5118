package agentcore

import (
	"context"
	"testing"

	"github.com/climatevia/pathway/config"
	"github.com/climatevia/pathway/errs"
	"github.com/climatevia/pathway/prompts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBundle() prompts.Bundle {
	return prompts.Bundle{
		AgentID:        "mai",
		DisplayName:    "Mai",
		SpecialistType: "resume_specialist",
		SystemPrompt:   "You are Mai.",
		Templates:      map[string]string{"followup": "Want to go deeper on this?"},
	}
}

func testAgentConfig() config.AgentConfig {
	cfg := config.AgentConfig{
		Name:      "mai",
		LLM:       "openai-default",
		PromptKey: "mai",
	}
	cfg.SetDefaults()
	return cfg
}

func TestHandleInteraction_RejectsEmptyMessage(t *testing.T) {
	r := NewRuntime(testAgentConfig(), testBundle(), nil, nil, nil)
	_, err := r.HandleInteraction(context.Background(), Interaction{
		Message:        "",
		UserID:         "u1",
		ConversationID: "c1",
	})
	require.Error(t, err)
	assert.Equal(t, errs.InvalidInput, errs.KindOf(err))
}

func TestHandleInteraction_RejectsMissingIDs(t *testing.T) {
	r := NewRuntime(testAgentConfig(), testBundle(), nil, nil, nil)
	_, err := r.HandleInteraction(context.Background(), Interaction{Message: "hello"})
	require.Error(t, err)
	assert.Equal(t, errs.InvalidInput, errs.KindOf(err))
}

func TestHandleInteraction_NoGatewayFallsBackConservatively(t *testing.T) {
	r := NewRuntime(testAgentConfig(), testBundle(), nil, nil, nil)
	resp, err := r.HandleInteraction(context.Background(), Interaction{
		Message:        "I need help with my resume",
		UserID:         "u1",
		ConversationID: "c1",
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "fallback", resp.Metadata["method"])
	assert.Equal(t, conservativeIntent, resp.Metadata["intent"])
	assert.GreaterOrEqual(t, resp.ConfidenceScore, 0.0)
	assert.LessOrEqual(t, resp.ConfidenceScore, 1.0)
	assert.GreaterOrEqual(t, resp.ProcessingTimeMS, 0.0)
	assert.NotEmpty(t, resp.Content)
}

func TestHandleInteraction_AppendsRollingHistory(t *testing.T) {
	r := NewRuntime(testAgentConfig(), testBundle(), nil, nil, nil)
	ctx := context.Background()
	in := Interaction{Message: "hi", UserID: "u1", ConversationID: "c1"}

	_, err := r.HandleInteraction(ctx, in)
	require.NoError(t, err)
	_, err = r.HandleInteraction(ctx, in)
	require.NoError(t, err)

	assert.Len(t, r.historyFor("c1"), 4) // 2 human + 2 AI turns
}

func TestClampConfidence(t *testing.T) {
	assert.Equal(t, 0.0, clampConfidence(-0.5))
	assert.Equal(t, 1.0, clampConfidence(1.5))
	assert.Equal(t, 0.42, clampConfidence(0.42))
}

func TestTruncateHistoryByTokens_KeepsMostRecentWithinBudget(t *testing.T) {
	history := []Message{
		{Kind: Human, Content: "this is a fairly long opening message from a while back"},
		{Kind: AI, Content: "short reply"},
		{Kind: Human, Content: "most recent message"},
	}
	truncated := truncateHistoryByTokens(history, 5)
	assert.Equal(t, "most recent message", truncated[len(truncated)-1].Content)
	assert.Less(t, len(truncated), len(history))
}

func TestTruncateHistoryByTokens_NonPositiveBudgetDropsEverything(t *testing.T) {
	history := []Message{{Kind: Human, Content: "hi"}}
	assert.Empty(t, truncateHistoryByTokens(history, 0))
}
