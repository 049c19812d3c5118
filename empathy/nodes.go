package empathy

import (
	"context"
	"time"

	"github.com/climatevia/pathway/agentcore"
	"github.com/climatevia/pathway/graph"
	"github.com/climatevia/pathway/llms"
)

// emotionalAssessment is the structured-output schema the LLM must
// conform to, mirroring the original's Pydantic EmotionalAssessment model.
type emotionalAssessment struct {
	EmotionalState string  `json:"emotional_state" jsonschema:"enum=crisis,enum=distressed,enum=anxious,enum=neutral,enum=positive"`
	CrisisDetected bool    `json:"crisis_detected"`
	EmpathyLevel   string  `json:"empathy_level" jsonschema:"enum=crisis,enum=high,enum=moderate,enum=standard,enum=supportive"`
	Reasoning      string  `json:"reasoning"`
	UrgencyScore   float64 `json:"urgency_score"`
}

const assessmentSystemPrompt = `You are an expert emotional intelligence specialist analyzing user messages for empathy workflow routing.

Assess the emotional state and crisis risk level:

CRISIS (immediate intervention needed): explicit self-harm ideation or suicidal thoughts, expressions of hopelessness with no future perspective, immediate danger to self or others.
DISTRESSED (high empathy needed): severe emotional distress or breakdown, overwhelming anxiety or panic, major life crisis or trauma.
ANXIOUS (moderate empathy needed): worry, uncertainty, or nervousness, career-related stress or concerns, general anxiety about decisions.
NEUTRAL (standard empathy): calm, matter-of-fact communication, information seeking without emotional distress.
POSITIVE (supportive empathy): excitement, confidence, or optimism, positive outlook with support needs.

Consider context, tone, and implicit emotional indicators, not just keywords.`

// Workflow compiles the three-node empathy graph: assess, respond (or
// escalate), plan.
type Workflow struct {
	alex    agentcore.Agent
	gateway llms.Gateway
	graph   *graph.Graph
}

// New builds the empathy workflow. alex answers emotional-support and
// crisis turns; gateway drives the LLM-based emotional assessment. A nil
// gateway falls back to a conservative neutral assessment, matching the
// original's own LLM-failure fallback.
func New(alex agentcore.Agent, gateway llms.Gateway, maxSteps int) *Workflow {
	w := &Workflow{alex: alex, gateway: gateway}

	g := graph.NewGraph(maxSteps)
	g.AddNode("emotional_assessment", w.emotionalAssessmentNode)
	g.AddNode("alex_empathy_response", w.alexEmpathyResponse)
	g.AddNode("crisis_escalation", w.crisisEscalation)
	g.AddNode("action_planning", w.actionPlanning)

	g.AddConditionalEdge("emotional_assessment", routeAfterAssessment, map[string]string{
		"alex_empathy_response": "alex_empathy_response",
		"crisis_escalation":     "crisis_escalation",
	})
	g.AddEdge("alex_empathy_response", "action_planning")
	g.AddEdge("crisis_escalation", "action_planning")
	g.AddEdge("action_planning", graph.End)
	g.SetEntryPoint("emotional_assessment")

	w.graph = g
	return w
}

// Invoke runs the empathy workflow to completion; it never suspends, so the
// returned error is always from a genuine failure, never an interrupt.
func (w *Workflow) Invoke(ctx context.Context, initial graph.State) (graph.State, error) {
	return w.graph.Invoke(ctx, initial)
}

func routeAfterAssessment(state graph.State) string {
	if boolAt(state, keyCrisisDetected) {
		return "crisis_escalation"
	}
	return "alex_empathy_response"
}

func (w *Workflow) emotionalAssessmentNode(ctx context.Context, state graph.State) (graph.PartialState, error) {
	message := latestHumanMessage(state)

	if w.gateway == nil {
		return conservativeAssessment(), nil
	}

	var out emotionalAssessment
	err := w.gateway.StructuredOutput(ctx, llms.StructuredRequest{
		Messages: []llms.Message{
			{Role: "system", Content: assessmentSystemPrompt},
			{Role: "user", Content: "User message: " + message},
		},
		SchemaName:  "emotional_assessment",
		SchemaValue: emotionalAssessment{},
	}, &out)
	if err != nil || out.EmotionalState == "" {
		return conservativeAssessment(), nil
	}

	return graph.PartialState{
		keyEmotionalState:   out.EmotionalState,
		keyCrisisDetected:   out.CrisisDetected,
		keyEmpathyLevel:     out.EmpathyLevel,
		keyUrgencyScore:     out.UrgencyScore,
		keyAssessmentMethod: "llm_reasoning",
	}, nil
}

func conservativeAssessment() graph.PartialState {
	return graph.PartialState{
		keyEmotionalState:   string(Neutral),
		keyCrisisDetected:   false,
		keyEmpathyLevel:     string(LevelStandard),
		keyUrgencyScore:     0.5,
		keyAssessmentMethod: "fallback",
	}
}

func (w *Workflow) alexEmpathyResponse(ctx context.Context, state graph.State) (graph.PartialState, error) {
	fallback := "I understand you're going through a difficult time. I'm here to support you."
	if w.alex == nil {
		return graph.PartialState{
			keyMessages:        []any{aiMessage(fallback)},
			keyAlexResponse:    fallback,
			keySupportProvided: true,
		}, nil
	}

	resp, err := w.alex.HandleInteraction(ctx, agentcore.Interaction{
		Message:        latestHumanMessage(state),
		UserID:         stringAt(state, keyUserID),
		ConversationID: stringAt(state, keyConversationID),
		SessionData: map[string]any{
			"emotional_state": stringAt(state, keyEmotionalState),
			"empathy_level":   stringAt(state, keyEmpathyLevel),
		},
	})
	if err != nil {
		return graph.PartialState{
			keyMessages:        []any{aiMessage(fallback)},
			keyAlexResponse:    fallback,
			keySupportProvided: true,
		}, nil
	}

	return graph.PartialState{
		keyMessages:        []any{aiMessage(resp.Content)},
		keyAlexResponse:    resp.Content,
		keySupportProvided: true,
	}, nil
}

func (w *Workflow) crisisEscalation(ctx context.Context, state graph.State) (graph.PartialState, error) {
	fallback := "I'm concerned about you and want to help. Please consider reaching out to a crisis helpline: 988 (Suicide & Crisis Lifeline)."
	if w.alex == nil {
		return graph.PartialState{
			keyMessages:             []any{aiMessage(fallback)},
			keyAlexResponse:         fallback,
			keyNeedsHumanEscalation: true,
			keySupportProvided:      true,
		}, nil
	}

	resp, err := w.alex.HandleInteraction(ctx, agentcore.Interaction{
		Message:        "CRISIS INTERVENTION NEEDED: " + latestHumanMessage(state),
		UserID:         stringAt(state, keyUserID),
		ConversationID: stringAt(state, keyConversationID),
		SessionData: map[string]any{
			"emotional_state": string(Crisis),
			"empathy_level":   string(LevelCrisis),
			"crisis_detected": true,
		},
	})
	content := fallback
	if err == nil && resp.Content != "" {
		content = resp.Content
	}

	return graph.PartialState{
		keyMessages:             []any{aiMessage(content)},
		keyAlexResponse:         content,
		keyNeedsHumanEscalation: true,
		keySupportProvided:      true,
	}, nil
}

func (w *Workflow) actionPlanning(ctx context.Context, state graph.State) (graph.PartialState, error) {
	crisis := boolAt(state, keyNeedsHumanEscalation)

	plan := ActionPlan{
		Guidance:         stringAt(state, keyAlexResponse),
		EmotionalState:   stringAt(state, keyEmotionalState),
		SupportLevel:     stringAt(state, keyEmpathyLevel),
		CrisisEscalation: crisis,
		Timestamp:        time.Now(),
	}
	if crisis {
		plan.Resources = []string{"Crisis helpline: 988", "Local mental health services"}
		plan.FollowUp = "Check in within 24 hours"
	} else {
		plan.Resources = []string{"Career counseling resources", "Peer support community"}
		plan.FollowUp = "Continue seeking support as needed"
	}

	return graph.PartialState{
		keyActionPlan: plan,
	}, nil
}
