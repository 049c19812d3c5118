package supervisor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/climatevia/pathway/agentcore"
	"github.com/climatevia/pathway/empathy"
	"github.com/climatevia/pathway/graph"
)

func aiMessage(content string) any {
	return Message{Kind: agentcore.AI, Content: content, Timestamp: time.Now()}
}

func (w *Workflow) initialDiscovery(ctx context.Context, state graph.State) (graph.PartialState, error) {
	message := latestHumanMessage(state)

	if isSimpleGreeting(message) {
		return graph.PartialState{
			keyMessages: []any{aiMessage("Hi there! I'm here to help you explore climate career opportunities. What interests you most?")},
			keyFindings: append(findingsAt(state), Finding{
				Type:      "greeting",
				Insight:   "User initiated conversation with a greeting",
				Timestamp: time.Now(),
			}),
			keyConversationComplete: true,
		}, nil
	}

	if w.empathy != nil {
		if partial, screened, err := w.screenForEmpathy(ctx, state, message); screened {
			return partial, err
		}
	}

	supervisorAgent, err := w.agents.Get("pendo")
	if err != nil {
		return graph.PartialState{
			keyMessages:         []any{aiMessage("Welcome! I'm here to help you explore climate career opportunities. Let me analyze your needs.")},
			keyNeedsHumanReview: true,
		}, nil
	}

	resp, err := supervisorAgent.HandleInteraction(ctx, agentcore.Interaction{
		Message:        message,
		UserID:         stringAt(state, keyUserID),
		ConversationID: stringAt(state, keyConversationID),
	})
	if err != nil {
		return graph.PartialState{
			keyMessages:         []any{aiMessage("I'm experiencing a technical issue. Let me connect you with our team for support.")},
			keyNeedsHumanReview: true,
		}, nil
	}

	return graph.PartialState{
		keyMessages: []any{aiMessage(resp.Content)},
		keyFindings: append(findingsAt(state), Finding{
			Type:       "initial_discovery",
			Insight:    firstSentences(resp.Content, 1),
			Confidence: ptr(0.7),
			Timestamp:  time.Now(),
		}),
	}, nil
}

// screenForEmpathy runs message through the Empathy Sub-Workflow. screened
// is true only when the assessment came back crisis or distressed, in
// which case partial is the complete node output and the caller should
// return immediately without consulting pendo — this is the only path to
// alex, per the original's "empathy workflow invoked by alex" framing.
// A failed or non-distressed assessment falls through silently to the
// normal pendo-led discovery flow.
func (w *Workflow) screenForEmpathy(ctx context.Context, state graph.State, message string) (graph.PartialState, bool, error) {
	empathyState, err := w.empathy.Invoke(ctx, graph.State{
		keyMessages:       []any{Message{Kind: agentcore.Human, Content: message, Timestamp: time.Now()}},
		keyUserID:         stringAt(state, keyUserID),
		keyConversationID: stringAt(state, keyConversationID),
	})
	if err != nil {
		return nil, false, nil
	}

	emotion := empathy.LastEmotionalState(empathyState)
	if emotion != string(empathy.Crisis) && emotion != string(empathy.Distressed) {
		return nil, false, nil
	}

	partial := graph.PartialState{
		keyMessages: []any{aiMessage(empathy.LastResponse(empathyState))},
		keyFindings: append(findingsAt(state), Finding{
			Type:       "empathy_support",
			Agent:      "alex",
			Insight:    emotion + " detected",
			Confidence: ptr(1.0),
			Timestamp:  time.Now(),
		}),
		keyConversationComplete: true,
	}
	if empathy.NeedsHumanEscalation(empathyState) {
		partial[keyNeedsHumanEscalation] = true
	}
	return partial, true, nil
}

// selectAnalysisAgent rotates specialists by who produced the last
// specialist_analysis finding, per the original's _select_analysis_agent.
func selectAnalysisAgent(findings []Finding) string {
	var lastAgent string
	for i := len(findings) - 1; i >= 0; i-- {
		if findings[i].Type == "specialist_analysis" {
			lastAgent = findings[i].Agent
			break
		}
	}
	switch lastAgent {
	case "":
		return "mai"
	case "mai":
		return "lauren"
	case "lauren":
		return "marcus"
	default:
		return "lauren"
	}
}

func (w *Workflow) incrementalAnalysis(ctx context.Context, state graph.State) (graph.PartialState, error) {
	findings := findingsAt(state)
	specialistID := selectAnalysisAgent(findings)

	specialist, err := w.agents.Get(specialistID)
	if err != nil {
		return graph.PartialState{
			keyMessages:             []any{aiMessage("I need your input to provide the most relevant guidance. What specific aspect of climate careers interests you most?")},
			keyNeedsHumanReview:     true,
			keyHumanSteeringContext: "I need your input to provide the most relevant guidance. What specific aspect of climate careers interests you most?",
		}, nil
	}

	message := latestHumanMessage(state)
	if message == "" {
		message = "Analyze my profile"
	}

	resp, err := specialist.HandleInteraction(ctx, agentcore.Interaction{
		Message:        message,
		UserID:         stringAt(state, keyUserID),
		ConversationID: stringAt(state, keyConversationID),
	})
	if err != nil {
		return graph.PartialState{
			keyMessages:         []any{aiMessage("I encountered an issue during analysis. Let me help you in a different way.")},
			keyNeedsHumanReview: true,
		}, nil
	}

	nextActions := resp.NextActions
	if len(nextActions) > 2 {
		nextActions = nextActions[:2]
	}
	insight := firstSentences(resp.Content, 2)

	followUp := "continue exploring opportunities"
	if len(nextActions) > 0 {
		followUp = nextActions[0]
	}

	return graph.PartialState{
		keyMessages: []any{aiMessage(resp.Content)},
		keyFindings: append(findings, Finding{
			Type:        "specialist_analysis",
			Agent:       specialistID,
			Insight:     insight,
			Confidence:  ptr(resp.ConfidenceScore),
			Sources:     resp.Sources,
			NextActions: nextActions,
			Timestamp:   time.Now(),
		}),
		keyHumanSteeringContext: fmt.Sprintf("Based on this analysis, would you like me to %s?", followUp),
		keyWaitingForInput:      false,
	}, nil
}

func (w *Workflow) humanSteeringPoint(ctx context.Context, state graph.State) (graph.PartialState, error) {
	steeringCount := intAt(state, keyHumanSteeringCount)
	if steeringCount >= 3 {
		return graph.PartialState{
			keyMessages:            []any{aiMessage(completionSummary(state))},
			keyConversationComplete: true,
		}, nil
	}

	if !tailIsUnansweredHuman(state) {
		payload := map[string]any{
			"type":               "comprehensive_guidance",
			"database_summary":   summarizeFindings(findingsAt(state)),
			"available_tools":    []string{"resume_review", "credential_evaluation", "partner_search", "skills_assessment"},
			"example_inputs":     []string{"Help me translate my military experience", "What climate jobs fit my background?", "Find me partner opportunities"},
			"suggested_actions":  []string{"search for jobs", "analyze my skills", "plan my next steps", "apply to an opportunity"},
			"question":           stageQuestion(state),
		}
		return graph.PartialState{
			keyHumanSteeringCount: steeringCount + 1,
			keyWaitingForInput:    true,
		}, graph.Interrupt(payload)
	}

	// waiting_for_input stays true here: routeConversationFlow reads it
	// together with the now-present human tail to advance to
	// incremental_analysis, which clears the flag once it has consumed
	// the message.
	classifyHumanSteeringIntent(latestHumanMessage(state))
	return graph.PartialState{}, nil
}

// classifyHumanSteeringIntent mirrors the spec's documented intent-keyword
// classification; the graph's own routing is bounded to
// {incremental_analysis, human_steering_point, END} per the edge table, so
// this result is not a routing label; humanSteeringPoint discards it and it
// is not surfaced anywhere else.
func classifyHumanSteeringIntent(message string) string {
	lower := strings.ToLower(message)
	switch {
	case containsAny(lower, "search", "find", "jobs"):
		return "partner_matching"
	case containsAny(lower, "analyze", "assess", "skills"):
		return "incremental_analysis"
	case containsAny(lower, "plan", "strategy", "roadmap"):
		return "confidence_assessment"
	case containsAny(lower, "apply", "connect", "network"):
		return "application_guidance"
	default:
		return "incremental_analysis"
	}
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func (w *Workflow) partnerMatching(ctx context.Context, state graph.State) (graph.PartialState, error) {
	query := latestHumanMessage(state)
	var matches []PartnerMatch
	if w.partners != nil {
		found, err := w.partners.FindMatches(ctx, query)
		if err == nil {
			matches = found
		}
	}

	maxScore := 0.0
	for _, m := range matches {
		if m.MatchScore > maxScore {
			maxScore = m.MatchScore
		}
	}

	message := "I'm still searching our partner database for the best matches. Let me continue analyzing your profile."
	if len(matches) > 0 {
		top := matches[0]
		message = fmt.Sprintf(
			"Found %d matches. Top match: %s — %s in %s (%s), match score %.0f%%.",
			len(matches), top.Organization, top.Role, top.Location, top.SalaryRange, top.MatchScore*100,
		)
	}

	return graph.PartialState{
		keyMessages:       []any{aiMessage(message)},
		keyPartnerMatches: matches,
		keyFindings: append(findingsAt(state), Finding{
			Type:       "partner_matches",
			Insight:    message,
			Confidence: ptr(maxScore),
			Sources:    []string{"CEA Partner Database", "Climate Organization Network"},
			Timestamp:  time.Now(),
		}),
	}, nil
}

func (w *Workflow) confidenceAssessment(ctx context.Context, state graph.State) (graph.PartialState, error) {
	findings := findingsAt(state)
	overall := overallConfidence(findings)

	return graph.PartialState{
		keyOverallConfidence: overall,
		keyFindings: append(findings, Finding{
			Type:       "confidence_assessment",
			Insight:    fmt.Sprintf("Overall confidence %.0f%%", overall*100),
			Confidence: ptr(overall),
			Timestamp:  time.Now(),
		}),
	}, nil
}

func (w *Workflow) applicationGuidance(ctx context.Context, state graph.State) (graph.PartialState, error) {
	matches := partnersAt(state)
	if len(matches) == 0 {
		return graph.PartialState{keyNeedsHumanReview: true}, nil
	}

	top := matches[0]
	message := fmt.Sprintf(
		"Ready to apply: %s at %s. Apply at %s. Contact: %s.",
		top.Role, top.Organization, top.CareerPageURL, top.Contact,
	)

	return graph.PartialState{
		keyMessages: []any{aiMessage(message)},
		keyFindings: append(findingsAt(state), Finding{
			Type:        "application_guidance",
			Insight:     message,
			Confidence:  ptr(overallConfidence(findingsAt(state))),
			NextActions: []string{"Apply at " + top.CareerPageURL, "Continue developing skills for future opportunities"},
			Timestamp:   time.Now(),
		}),
		keyConversationComplete: true,
	}, nil
}

func (w *Workflow) conversationContinuation(ctx context.Context, state graph.State) (graph.PartialState, error) {
	menu := "Here's what we can do next: search for more opportunities, dive deeper into your skills analysis, revisit your application plan, or connect with a specialist directly. What would help most?"

	return graph.PartialState{
		keyMessages: []any{aiMessage(menu)},
		keyFindings: append(findingsAt(state), Finding{
			Type:      "conversation_continuation",
			Insight:   menu,
			Timestamp: time.Now(),
		}),
		keyNeedsHumanReview: true,
	}, nil
}

func overallConfidence(findings []Finding) float64 {
	var sum float64
	var count int
	for _, f := range findings {
		if f.Confidence != nil {
			sum += *f.Confidence
			count++
		}
	}
	if count == 0 {
		return 0.5
	}
	return sum / float64(count)
}

func firstSentences(content string, n int) string {
	parts := strings.SplitAfter(content, ". ")
	if len(parts) <= n {
		return strings.TrimSpace(content)
	}
	return strings.TrimSpace(strings.Join(parts[:n], ""))
}

func summarizeFindings(findings []Finding) string {
	if len(findings) == 0 {
		return "No findings recorded yet."
	}
	return fmt.Sprintf("%d findings recorded so far, most recently: %s", len(findings), findings[len(findings)-1].Insight)
}

func stageQuestion(state graph.State) string {
	if ctx, ok := state[keyHumanSteeringContext].(string); ok && ctx != "" {
		return ctx
	}
	return "What would be most helpful to explore next?"
}

func completionSummary(state graph.State) string {
	findings := findingsAt(state)
	return fmt.Sprintf("Here's a summary of our conversation: %s. Let me know if you'd like to pick this back up later.", summarizeFindings(findings))
}

func stringAt(state graph.State, key string) string {
	v, _ := state[key].(string)
	return v
}
