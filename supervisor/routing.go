package supervisor

import "github.com/climatevia/pathway/graph"

const (
	labelAnalysis               = "analysis"
	labelHumanReview            = "human_review"
	labelEnd                    = "END"
	labelConfidenceAssessment   = "confidence_assessment"
	labelPartnerMatching        = "partner_matching"
	labelApplicationGuidance    = "application_guidance"
	labelConversationContinuation = "conversation_continuation"
	labelIncrementalAnalysis    = "incremental_analysis"
	labelHumanSteeringPoint     = "human_steering_point"
)

// routeInitialDiscovery bypasses human review for simple greetings — the
// greeting node itself already set conversation_complete, so the guard
// below fires before this logic ever runs for that case.
func routeInitialDiscovery(state graph.State) string {
	if boolAt(state, keyConversationComplete) {
		return labelEnd
	}
	if boolAt(state, keyNeedsHumanReview) {
		return labelHumanReview
	}
	return labelAnalysis
}

// routeAfterAnalysis is shared by incremental_analysis and partner_matching,
// mirroring the original's reuse of _route_after_analysis for both nodes.
func routeAfterAnalysis(state graph.State) string {
	if boolAt(state, keyNeedsHumanReview) {
		return labelHumanReview
	}
	if len(findingsAt(state)) >= 3 {
		return labelPartnerMatching
	}
	return labelConfidenceAssessment
}

// routeAfterConfidence compares overall_confidence to the configured
// threshold.
func routeAfterConfidence(threshold float64) graph.RouterFunc {
	return func(state graph.State) string {
		confidence, _ := state[keyOverallConfidence].(float64)
		if confidence >= threshold {
			return labelApplicationGuidance
		}
		return labelConversationContinuation
	}
}

// routeAfterApplication ends the conversation once application_guidance has
// marked it complete.
func routeAfterApplication(state graph.State) string {
	if boolAt(state, keyConversationComplete) {
		return labelEnd
	}
	return labelConversationContinuation
}

// routeConversationFlow is the guarded router shared by human_steering_point
// and conversation_continuation, enforcing the three global termination
// guards before any steering-specific logic runs.
func routeConversationFlow(state graph.State) string {
	if boolAt(state, keyConversationComplete) {
		return labelEnd
	}
	if intAt(state, keyStepCount) >= 10 {
		return labelEnd
	}
	if intAt(state, keyHumanSteeringCount) >= 3 {
		return labelEnd
	}
	if boolAt(state, keyWaitingForInput) {
		if !tailIsUnansweredHuman(state) {
			return labelHumanSteeringPoint
		}
		return labelIncrementalAnalysis
	}
	return labelHumanSteeringPoint
}
