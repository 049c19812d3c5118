// Package supervisor implements the seven-node Supervisor Workflow: the
// default conversation graph that classifies a turn, delegates to the
// specialist best suited to it, and decides when the conversation needs
// another human turn versus a final recommendation.
//
// Grounded on backendv1/workflows/climate_supervisor.py's
// ClimateSupervisorWorkflow node-by-node, re-expressed against the
// graph package's typed state machine instead of LangGraph's StateGraph.
package supervisor

import (
	"strings"
	"time"

	"github.com/climatevia/pathway/agentcore"
)

// Message is an alias for the agentcore message type so the workflow's
// "messages" state field speaks the same language the specialists do.
type Message = agentcore.Message

// Finding is one accumulated insight, appended across the life of a
// conversation. Confidence is nullable: a nil Confidence is excluded from
// the overall-confidence average.
type Finding struct {
	Type        string
	Insight     string
	Confidence  *float64
	Agent       string
	Sources     []string
	NextActions []string
	Timestamp   time.Time
}

func ptr(f float64) *float64 { return &f }

// simpleGreetings is the closed set recognized by initial_discovery —
// anything outside it is treated as a substantive message.
var simpleGreetings = map[string]bool{
	"hi": true, "hello": true, "hey": true, "sup": true, "yo": true, "howdy": true,
}

func isSimpleGreeting(message string) bool {
	return simpleGreetings[strings.ToLower(strings.TrimSpace(message))]
}

// State keys used in the graph.State map this workflow threads through.
const (
	keyMessages              = "messages"
	keyFindings              = "findings"
	keyUserID                = "user_id"
	keyConversationID         = "conversation_id"
	keyConversationComplete  = "conversation_complete"
	keyStepCount             = "step_count"
	keyHumanSteeringCount    = "human_steering_count"
	keyWaitingForInput       = "waiting_for_input"
	keyNeedsHumanReview      = "needs_human_review"
	keyHumanSteeringContext  = "human_steering_context"
	keyOverallConfidence     = "overall_confidence"
	keyPartnerMatches        = "partner_matches"
	keyNeedsHumanEscalation  = "needs_human_escalation"
)

func intAt(state map[string]any, key string) int {
	if v, ok := state[key].(int); ok {
		return v
	}
	return 0
}

func boolAt(state map[string]any, key string) bool {
	v, _ := state[key].(bool)
	return v
}

func findingsAt(state map[string]any) []Finding {
	v, _ := state[keyFindings].([]Finding)
	return v
}

func partnersAt(state map[string]any) []PartnerMatch {
	v, _ := state[keyPartnerMatches].([]PartnerMatch)
	return v
}

func messagesAt(state map[string]any) []any {
	v, _ := state[keyMessages].([]any)
	return v
}

// latestHumanMessage scans messages in reverse for the most recent human
// turn, matching the original's "walk messages backwards for a
// HumanMessage" pattern.
func latestHumanMessage(state map[string]any) string {
	msgs := messagesAt(state)
	for i := len(msgs) - 1; i >= 0; i-- {
		if m, ok := msgs[i].(Message); ok && m.Kind == agentcore.Human {
			return m.Content
		}
	}
	return ""
}

// tailIsUnansweredHuman reports whether the most recent message is a human
// turn the workflow hasn't yet replied to — AI turns are always appended
// immediately after the human turn that triggered them, so a human tail
// means a new message is waiting.
func tailIsUnansweredHuman(state map[string]any) bool {
	msgs := messagesAt(state)
	if len(msgs) == 0 {
		return false
	}
	m, ok := msgs[len(msgs)-1].(Message)
	return ok && m.Kind == agentcore.Human
}
