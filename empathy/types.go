// Package empathy implements the Empathy sub-workflow: a three-node graph
// that assesses the emotional register of a turn, routes crisis signals to
// an escalation path carrying a human-review flag, and always closes with
// an action plan.
//
// Grounded on backendv1/workflows/empathy_workflow.py's EmpathyWorkflow,
// re-expressed against the graph package instead of LangGraph.
package empathy

import (
	"time"

	"github.com/climatevia/pathway/agentcore"
)

// EmotionalState is the closed classification emotionalAssessment assigns.
type EmotionalState string

const (
	Crisis     EmotionalState = "crisis"
	Distressed EmotionalState = "distressed"
	Anxious    EmotionalState = "anxious"
	Neutral    EmotionalState = "neutral"
	Positive   EmotionalState = "positive"
)

// EmpathyLevel is the support intensity actionPlanning and the response
// nodes calibrate to.
type EmpathyLevel string

const (
	LevelCrisis     EmpathyLevel = "crisis"
	LevelHigh       EmpathyLevel = "high"
	LevelModerate   EmpathyLevel = "moderate"
	LevelStandard   EmpathyLevel = "standard"
	LevelSupportive EmpathyLevel = "supportive"
)

// ActionPlan is the structured close-out every run of the workflow
// produces, regardless of which response path it took.
type ActionPlan struct {
	Guidance         string
	Resources        []string
	FollowUp         string
	EmotionalState   string
	SupportLevel     string
	CrisisEscalation bool
	Timestamp        time.Time
}

const (
	keyMessages              = "messages"
	keyUserID                = "user_id"
	keyConversationID        = "conversation_id"
	keyEmotionalState        = "emotional_state"
	keyCrisisDetected        = "crisis_detected"
	keyEmpathyLevel          = "empathy_level"
	keyUrgencyScore          = "urgency_score"
	keyAssessmentMethod      = "assessment_method"
	keyNeedsHumanEscalation  = "needs_human_escalation"
	keySupportProvided       = "support_provided"
	keyAlexResponse          = "alex_response"
	keyActionPlan            = "action_plan"
)

func boolAt(state map[string]any, key string) bool {
	v, _ := state[key].(bool)
	return v
}

func stringAt(state map[string]any, key string) string {
	v, _ := state[key].(string)
	return v
}

func messagesAt(state map[string]any) []any {
	v, _ := state[keyMessages].([]any)
	return v
}

func latestHumanMessage(state map[string]any) string {
	msgs := messagesAt(state)
	for i := len(msgs) - 1; i >= 0; i-- {
		if m, ok := msgs[i].(agentcore.Message); ok && m.Kind == agentcore.Human {
			return m.Content
		}
	}
	return ""
}

func aiMessage(content string) any {
	return agentcore.Message{Kind: agentcore.AI, Content: content, Timestamp: time.Now()}
}
