package supervisor

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/climatevia/pathway/agentcore"
	"github.com/climatevia/pathway/empathy"
	"github.com/climatevia/pathway/graph"
	"github.com/climatevia/pathway/llms"
)

// stubEmpathyGateway feeds a fixed structured-output response to the
// empathy workflow's emotional_assessment node, independent of empathy's
// own (unexported) assessment struct: json.Unmarshal only needs matching
// tags, not a shared type.
type stubEmpathyGateway struct {
	response string
}

func (g *stubEmpathyGateway) ChatCompletion(ctx context.Context, req llms.ChatRequest) (llms.ChatResponse, error) {
	return llms.ChatResponse{}, nil
}

func (g *stubEmpathyGateway) Embedding(ctx context.Context, text string) ([]float64, error) {
	return nil, nil
}

func (g *stubEmpathyGateway) StructuredOutput(ctx context.Context, req llms.StructuredRequest, out any) error {
	return json.Unmarshal([]byte(g.response), out)
}

func (g *stubEmpathyGateway) StreamChat(ctx context.Context, req llms.ChatRequest) (<-chan llms.StreamChunk, error) {
	return nil, nil
}

type stubAgent struct {
	id              string
	specialistType  string
	content         string
	confidenceScore float64
	err             error
}

func (s *stubAgent) SpecialistType() string { return s.specialistType }

func (s *stubAgent) HandleInteraction(ctx context.Context, in agentcore.Interaction) (agentcore.Response, error) {
	if s.err != nil {
		return agentcore.Response{}, s.err
	}
	return agentcore.Response{
		Content:         s.content,
		SpecialistType:  s.specialistType,
		ConfidenceScore: s.confidenceScore,
		NextActions:     []string{"update your resume"},
		Success:         true,
	}, nil
}

type stubPartnerFinder struct {
	matches []PartnerMatch
}

func (f *stubPartnerFinder) FindMatches(ctx context.Context, query string) ([]PartnerMatch, error) {
	return f.matches, nil
}

func testRegistry() *agentcore.Registry {
	reg := agentcore.NewRegistry()
	_ = reg.Register("pendo", &stubAgent{id: "pendo", specialistType: "supervisor", content: "Let's figure out your path. Tell me about your background.", confidenceScore: 0.8})
	_ = reg.Register("mai", &stubAgent{id: "mai", specialistType: "military_transition_specialist", content: "Your logistics background translates well to supply-chain roles in clean energy. Let's dig into certifications next.", confidenceScore: 0.8})
	return reg
}

func humanMessage(content string) any {
	return Message{Kind: agentcore.Human, Content: content, Timestamp: time.Now()}
}

func TestInitialDiscovery_BareGreetingEndsConversation(t *testing.T) {
	w := New(testRegistry(), nil, nil, 10, 0.75)

	state, err := w.Invoke(context.Background(), graph.State{
		keyMessages: []any{humanMessage("hi")},
	})
	require.NoError(t, err)
	assert.True(t, boolAt(state, keyConversationComplete))
	assert.NotEmpty(t, messagesAt(state))
}

func TestInitialDiscovery_CrisisScreensThroughEmpathyAndEscalates(t *testing.T) {
	alex := &stubAgent{id: "alex", specialistType: "empathy_specialist", content: "I'm here for you. Please reach out to 988.", confidenceScore: 0.9}
	gateway := &stubEmpathyGateway{response: `{"emotional_state":"crisis","crisis_detected":true,"empathy_level":"crisis","reasoning":"explicit hopelessness","urgency_score":0.95}`}
	empathyWF := empathy.New(alex, gateway, 10)
	w := New(testRegistry(), nil, empathyWF, 10, 0.75)

	state, err := w.Invoke(context.Background(), graph.State{
		keyMessages: []any{humanMessage("I feel hopeless about my career and don't see a way forward.")},
	})
	require.NoError(t, err)
	assert.True(t, boolAt(state, keyConversationComplete))
	assert.True(t, boolAt(state, keyNeedsHumanEscalation))
	assert.Contains(t, messagesAt(state)[len(messagesAt(state))-1].(Message).Content, "988")
}

func TestInitialDiscovery_NonCrisisEmpathyFallsThroughToPendo(t *testing.T) {
	alex := &stubAgent{id: "alex", specialistType: "empathy_specialist", content: "glad to hear it", confidenceScore: 0.9}
	gateway := &stubEmpathyGateway{response: `{"emotional_state":"positive","crisis_detected":false,"empathy_level":"supportive","reasoning":"optimistic tone","urgency_score":0.1}`}
	empathyWF := empathy.New(alex, gateway, 10)
	w := New(testRegistry(), nil, empathyWF, 10, 0.75)

	state, err := w.Invoke(context.Background(), graph.State{
		keyMessages: []any{humanMessage("I'm excited to start exploring solar careers!")},
	})
	require.NoError(t, err)
	assert.False(t, boolAt(state, keyNeedsHumanEscalation))
}

func TestSelectAnalysisAgent_RotatesSpecialists(t *testing.T) {
	assert.Equal(t, "mai", selectAnalysisAgent(nil))
	assert.Equal(t, "lauren", selectAnalysisAgent([]Finding{{Type: "specialist_analysis", Agent: "mai"}}))
	assert.Equal(t, "marcus", selectAnalysisAgent([]Finding{{Type: "specialist_analysis", Agent: "lauren"}}))
	assert.Equal(t, "lauren", selectAnalysisAgent([]Finding{{Type: "specialist_analysis", Agent: "marcus"}}))
}

func TestRouteAfterConfidence_ThresholdBoundary(t *testing.T) {
	router := routeAfterConfidence(0.75)

	assert.Equal(t, labelApplicationGuidance, router(graph.State{keyOverallConfidence: 0.75}))
	assert.Equal(t, labelConversationContinuation, router(graph.State{keyOverallConfidence: 0.74}))
}

func TestRouteConversationFlow_GlobalGuards(t *testing.T) {
	assert.Equal(t, labelEnd, routeConversationFlow(graph.State{keyConversationComplete: true}))
	assert.Equal(t, labelEnd, routeConversationFlow(graph.State{keyStepCount: 10}))
	assert.Equal(t, labelEnd, routeConversationFlow(graph.State{keyHumanSteeringCount: 3}))
}

func TestRouteConversationFlow_WaitingForInputWithoutNewMessageSteers(t *testing.T) {
	state := graph.State{
		keyWaitingForInput: true,
		keyMessages:        []any{Message{Kind: agentcore.AI, Content: "what next?"}},
	}
	assert.Equal(t, labelHumanSteeringPoint, routeConversationFlow(state))
}

func TestRouteConversationFlow_NewHumanMessageAdvancesToAnalysis(t *testing.T) {
	state := graph.State{
		keyWaitingForInput: true,
		keyMessages:        []any{humanMessage("let's look at jobs")},
	}
	assert.Equal(t, labelIncrementalAnalysis, routeConversationFlow(state))
}

func TestHumanSteeringPoint_InterruptsWhenNoNewMessage(t *testing.T) {
	w := New(testRegistry(), nil, nil, 10, 0.75)

	_, err := w.Invoke(context.Background(), graph.State{
		keyMessages: []any{Message{Kind: agentcore.AI, Content: "So, what would help most?"}},
	})

	var interrupted *graph.Interrupted
	require.ErrorAs(t, err, &interrupted)
	assert.Equal(t, "human_steering_point", interrupted.Node)
	payload, ok := interrupted.Payload.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "comprehensive_guidance", payload["type"])
}

func TestHumanSteeringPoint_LeavesWaitingFlagForRouterWhenAnswered(t *testing.T) {
	w := New(testRegistry(), nil, nil, 10, 0.75)

	state := graph.State{
		keyWaitingForInput:    true,
		keyHumanSteeringCount: 1,
		keyMessages:           []any{Message{Kind: agentcore.AI, Content: "what next?"}, humanMessage("help me find jobs")},
	}

	partial, err := w.humanSteeringPoint(context.Background(), state)
	require.NoError(t, err)
	// waiting_for_input is left untouched here: routeConversationFlow reads
	// it alongside the now-present human tail to route to
	// incremental_analysis, which is the node that actually clears it.
	_, touched := partial[keyWaitingForInput]
	assert.False(t, touched)

	merged := graph.State{keyWaitingForInput: true, keyMessages: state[keyMessages]}
	for k, v := range partial {
		merged[k] = v
	}
	assert.Equal(t, labelIncrementalAnalysis, routeConversationFlow(merged))
}

func TestIncrementalAnalysis_ClearsWaitingForInput(t *testing.T) {
	w := New(testRegistry(), nil, nil, 10, 0.75)

	partial, err := w.incrementalAnalysis(context.Background(), graph.State{
		keyMessages: []any{humanMessage("help me find jobs")},
	})
	require.NoError(t, err)
	assert.False(t, partial[keyWaitingForInput].(bool))
}

func TestPartnerMatching_FormatsTopMatch(t *testing.T) {
	w := New(testRegistry(), &stubPartnerFinder{matches: []PartnerMatch{
		{Organization: "SolarWorks", Role: "Field Technician", MatchScore: 0.9, Location: "Denver, CO", SalaryRange: "$55k-$70k", CareerPageURL: "https://solarworks.example/careers", Contact: "jobs@solarworks.example"},
	}}, nil, 10, 0.75)

	partial, err := w.partnerMatching(context.Background(), graph.State{keyMessages: []any{humanMessage("find me solar jobs")}})
	require.NoError(t, err)
	matches, ok := partial[keyPartnerMatches].([]PartnerMatch)
	require.True(t, ok)
	require.Len(t, matches, 1)
	assert.Equal(t, "SolarWorks", matches[0].Organization)
}

func TestConfidenceAssessment_AveragesNonNilFindings(t *testing.T) {
	w := New(testRegistry(), nil, nil, 10, 0.75)

	partial, err := w.confidenceAssessment(context.Background(), graph.State{
		keyFindings: []Finding{
			{Type: "specialist_analysis", Confidence: ptr(0.8)},
			{Type: "specialist_analysis", Confidence: ptr(0.6)},
			{Type: "greeting"},
		},
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.7, partial[keyOverallConfidence].(float64), 0.001)
}

func TestApplicationGuidance_SetsConversationComplete(t *testing.T) {
	w := New(testRegistry(), nil, nil, 10, 0.75)

	partial, err := w.applicationGuidance(context.Background(), graph.State{
		keyPartnerMatches: []PartnerMatch{{Organization: "SolarWorks", Role: "Technician", CareerPageURL: "https://example.com"}},
	})
	require.NoError(t, err)
	assert.True(t, partial[keyConversationComplete].(bool))
}

func TestWorkflow_SteeringExhaustionEndsWithCompletionSummary(t *testing.T) {
	w := New(agentcore.NewRegistry(), nil, nil, 10, 0.75)

	state, err := w.Invoke(context.Background(), graph.State{
		keyMessages: []any{humanMessage("I'm not sure what I want to do next.")},
	})
	var interrupted *graph.Interrupted
	require.ErrorAs(t, err, &interrupted)
	state = interrupted.State

	for i := 0; i < 2; i++ {
		state[keyMessages] = append(state[keyMessages].([]any), humanMessage("still not sure"))
		state, err = w.Resume(context.Background(), state, interrupted.Node)
		require.ErrorAs(t, err, &interrupted)
		state = interrupted.State
	}

	state[keyMessages] = append(state[keyMessages].([]any), humanMessage("still not sure"))
	final, err := w.Resume(context.Background(), state, interrupted.Node)
	require.NoError(t, err)

	assert.Equal(t, 3, intAt(final, keyHumanSteeringCount))
	assert.True(t, boolAt(final, keyConversationComplete))
	msgs := messagesAt(final)
	assert.Contains(t, msgs[len(msgs)-1].(Message).Content, "summary")
}

func TestWorkflow_HighConfidenceFindingsRouteToApplicationGuidance(t *testing.T) {
	w := New(testRegistry(), &stubPartnerFinder{matches: []PartnerMatch{
		{Organization: "SolarWorks", Role: "Field Technician", MatchScore: 0.92, CareerPageURL: "https://solarworks.example/careers", Contact: "jobs@solarworks.example"},
	}}, nil, 10, 0.75)

	seeded := []Finding{
		{Type: "specialist_analysis", Agent: "mai", Confidence: ptr(0.9)},
		{Type: "specialist_analysis", Agent: "lauren", Confidence: ptr(0.85)},
		{Type: "partner_matches", Confidence: ptr(0.8)},
	}

	assessed, err := w.confidenceAssessment(context.Background(), graph.State{keyFindings: seeded})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, assessed[keyOverallConfidence].(float64), 0.8)

	label := routeAfterConfidence(0.75)(graph.State{keyOverallConfidence: assessed[keyOverallConfidence]})
	assert.Equal(t, labelApplicationGuidance, label)

	applied, err := w.applicationGuidance(context.Background(), graph.State{
		keyPartnerMatches: []PartnerMatch{{Organization: "SolarWorks", Role: "Field Technician", CareerPageURL: "https://solarworks.example/careers", Contact: "jobs@solarworks.example"}},
		keyFindings:       assessed[keyFindings].([]Finding),
	})
	require.NoError(t, err)
	assert.True(t, applied[keyConversationComplete].(bool))

	findings := applied[keyFindings].([]Finding)
	last := findings[len(findings)-1]
	assert.Equal(t, "application_guidance", last.Type)
	assert.Contains(t, last.Insight, "https://solarworks.example/careers")
}

func TestClassifyHumanSteeringIntent(t *testing.T) {
	assert.Equal(t, "partner_matching", classifyHumanSteeringIntent("help me search for jobs"))
	assert.Equal(t, "incremental_analysis", classifyHumanSteeringIntent("can you assess my skills"))
	assert.Equal(t, "confidence_assessment", classifyHumanSteeringIntent("what's my roadmap"))
	assert.Equal(t, "application_guidance", classifyHumanSteeringIntent("help me apply"))
	assert.Equal(t, "incremental_analysis", classifyHumanSteeringIntent("tell me more"))
}
