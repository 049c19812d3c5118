package empathy

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/climatevia/pathway/agentcore"
	"github.com/climatevia/pathway/graph"
	"github.com/climatevia/pathway/llms"
)

type stubAlex struct {
	content string
	err     error
}

func (s *stubAlex) SpecialistType() string { return "empathy_specialist" }

func (s *stubAlex) HandleInteraction(ctx context.Context, in agentcore.Interaction) (agentcore.Response, error) {
	if s.err != nil {
		return agentcore.Response{}, s.err
	}
	return agentcore.Response{Content: s.content, Success: true}, nil
}

type stubGateway struct {
	assessment emotionalAssessment
	err        error
}

func (g *stubGateway) ChatCompletion(ctx context.Context, req llms.ChatRequest) (llms.ChatResponse, error) {
	return llms.ChatResponse{}, nil
}

func (g *stubGateway) Embedding(ctx context.Context, text string) ([]float64, error) {
	return nil, nil
}

func (g *stubGateway) StructuredOutput(ctx context.Context, req llms.StructuredRequest, out any) error {
	if g.err != nil {
		return g.err
	}
	raw, err := json.Marshal(g.assessment)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (g *stubGateway) StreamChat(ctx context.Context, req llms.ChatRequest) (<-chan llms.StreamChunk, error) {
	return nil, nil
}

func humanMsg(content string) any {
	return agentcore.Message{Kind: agentcore.Human, Content: content, Timestamp: time.Now()}
}

func TestInvoke_NeutralMessageGetsAlexResponse(t *testing.T) {
	w := New(&stubAlex{content: "That sounds like a big decision, let's work through it together."},
		&stubGateway{assessment: emotionalAssessment{EmotionalState: "neutral", EmpathyLevel: "standard"}}, 10)

	state, err := w.Invoke(context.Background(), graph.State{
		keyMessages: []any{humanMsg("I'm not sure which certification to pursue")},
	})
	require.NoError(t, err)
	assert.False(t, boolAt(state, keyNeedsHumanEscalation))
	assert.Equal(t, "neutral", stringAt(state, keyEmotionalState))
	plan, ok := state[keyActionPlan].(ActionPlan)
	require.True(t, ok)
	assert.False(t, plan.CrisisEscalation)
}

func TestInvoke_CrisisMessageEscalates(t *testing.T) {
	w := New(&stubAlex{content: "Please reach out to 988 right now, I'm here with you."},
		&stubGateway{assessment: emotionalAssessment{EmotionalState: "crisis", CrisisDetected: true, EmpathyLevel: "crisis", UrgencyScore: 0.95}}, 10)

	state, err := w.Invoke(context.Background(), graph.State{
		keyMessages: []any{humanMsg("I don't see the point in going on")},
	})
	require.NoError(t, err)
	assert.True(t, boolAt(state, keyNeedsHumanEscalation))
	plan, ok := state[keyActionPlan].(ActionPlan)
	require.True(t, ok)
	assert.True(t, plan.CrisisEscalation)
	assert.Contains(t, plan.Resources, "Crisis helpline: 988")
}

func TestEmotionalAssessmentNode_FallsBackConservativelyOnGatewayError(t *testing.T) {
	w := New(&stubAlex{content: "fallback"}, &stubGateway{err: assertError{}}, 10)

	partial, err := w.emotionalAssessmentNode(context.Background(), graph.State{
		keyMessages: []any{humanMsg("hello")},
	})
	require.NoError(t, err)
	assert.Equal(t, string(Neutral), partial[keyEmotionalState])
	assert.Equal(t, "fallback", partial[keyAssessmentMethod])
	assert.False(t, partial[keyCrisisDetected].(bool))
}

func TestEmotionalAssessmentNode_NilGatewayFallsBack(t *testing.T) {
	w := New(nil, nil, 10)

	partial, err := w.emotionalAssessmentNode(context.Background(), graph.State{})
	require.NoError(t, err)
	assert.Equal(t, "fallback", partial[keyAssessmentMethod])
}

func TestRouteAfterAssessment(t *testing.T) {
	assert.Equal(t, "crisis_escalation", routeAfterAssessment(graph.State{keyCrisisDetected: true}))
	assert.Equal(t, "alex_empathy_response", routeAfterAssessment(graph.State{keyCrisisDetected: false}))
}

type assertError struct{}

func (assertError) Error() string { return "gateway unavailable" }
