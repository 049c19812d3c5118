package empathy

import "github.com/climatevia/pathway/graph"

// NeedsHumanEscalation reports whether a completed empathy workflow run hit
// the crisis_escalation path.
func NeedsHumanEscalation(state graph.State) bool {
	return boolAt(state, keyNeedsHumanEscalation)
}

// LastEmotionalState returns the emotional_assessment classification from a
// completed run.
func LastEmotionalState(state graph.State) string {
	return stringAt(state, keyEmotionalState)
}

// LastResponse returns the guidance alex produced, from either the
// response or the escalation path.
func LastResponse(state graph.State) string {
	return stringAt(state, keyAlexResponse)
}

// LastActionPlan returns the action_planning node's structured close-out,
// the zero value if the run never reached it.
func LastActionPlan(state graph.State) ActionPlan {
	v, _ := state[keyActionPlan].(ActionPlan)
	return v
}
