package supervisor

import (
	"context"

	"github.com/climatevia/pathway/agentcore"
	"github.com/climatevia/pathway/empathy"
	"github.com/climatevia/pathway/graph"
)

// Workflow holds the specialists and collaborators the seven nodes call
// into, and compiles them into a graph.Graph.
type Workflow struct {
	agents              *agentcore.Registry
	partners            PartnerFinder
	empathy             *empathy.Workflow // nil disables crisis/distress screening at initial_discovery
	confidenceThreshold float64
	graph               *graph.Graph
}

// New compiles the Supervisor Workflow graph. maxSteps and
// confidenceThreshold normally come from config.WorkflowConfig. empathyWF
// is the compiled Empathy Sub-Workflow initial_discovery screens every
// non-greeting turn through before falling back to pendo's own
// classification; nil disables that screening (alex still reachable via
// incremental_analysis rotation is not modeled, since the original routes
// emotional turns exclusively through this screen, per "invoked by alex").
func New(agents *agentcore.Registry, partners PartnerFinder, empathyWF *empathy.Workflow, maxSteps int, confidenceThreshold float64) *Workflow {
	w := &Workflow{agents: agents, partners: partners, empathy: empathyWF, confidenceThreshold: confidenceThreshold}

	g := graph.NewGraph(maxSteps)
	g.AddNode("initial_discovery", w.initialDiscovery)
	g.AddNode("incremental_analysis", w.incrementalAnalysis)
	g.AddNode("human_steering_point", w.humanSteeringPoint)
	g.AddNode("partner_matching", w.partnerMatching)
	g.AddNode("confidence_assessment", w.confidenceAssessment)
	g.AddNode("application_guidance", w.applicationGuidance)
	g.AddNode("conversation_continuation", w.conversationContinuation)

	g.AddConditionalEdge("initial_discovery", routeInitialDiscovery, map[string]string{
		labelAnalysis:    "incremental_analysis",
		labelHumanReview: "human_steering_point",
		labelEnd:         graph.End,
	})
	g.AddConditionalEdge("incremental_analysis", routeAfterAnalysis, map[string]string{
		labelConfidenceAssessment: "confidence_assessment",
		labelPartnerMatching:      "partner_matching",
		labelHumanReview:          "human_steering_point",
		labelEnd:                  graph.End,
	})
	g.AddConditionalEdge("partner_matching", routeAfterAnalysis, map[string]string{
		labelConfidenceAssessment: "confidence_assessment",
		labelHumanReview:          "human_steering_point",
		labelEnd:                  graph.End,
	})
	g.AddConditionalEdge("confidence_assessment", routeAfterConfidence(confidenceThreshold), map[string]string{
		labelApplicationGuidance:      "application_guidance",
		labelPartnerMatching:          "partner_matching",
		labelConversationContinuation: "conversation_continuation",
		labelEnd:                      graph.End,
	})
	g.AddConditionalEdge("application_guidance", routeAfterApplication, map[string]string{
		labelConversationContinuation: "conversation_continuation",
		labelEnd:                      graph.End,
	})
	g.AddConditionalEdge("human_steering_point", routeConversationFlow, map[string]string{
		labelIncrementalAnalysis: "incremental_analysis",
		labelHumanSteeringPoint:  "human_steering_point",
		labelEnd:                 graph.End,
	})
	g.AddConditionalEdge("conversation_continuation", routeConversationFlow, map[string]string{
		labelIncrementalAnalysis: "incremental_analysis",
		labelHumanSteeringPoint:  "human_steering_point",
		labelEnd:                 graph.End,
	})
	g.SetEntryPoint("initial_discovery")

	w.graph = g
	return w
}

// Invoke runs the workflow from its entry point.
func (w *Workflow) Invoke(ctx context.Context, initial graph.State) (graph.State, error) {
	return w.graph.Invoke(ctx, initial)
}

// Resume continues a suspended workflow at node with state.
func (w *Workflow) Resume(ctx context.Context, state graph.State, node string) (graph.State, error) {
	return w.graph.Resume(ctx, state, node)
}

// Stream runs the workflow exactly as Invoke does, calling onStep after
// every node completes so a caller can relay incremental output (e.g. over
// an SSE transport) as the turn progresses rather than only at the end.
func (w *Workflow) Stream(ctx context.Context, initial graph.State, onStep graph.StepFunc) (graph.State, error) {
	return w.graph.Stream(ctx, initial, onStep)
}

// StreamResume is Resume with Stream's per-node onStep callback, for
// relaying a resumed turn's remaining nodes incrementally over SSE.
func (w *Workflow) StreamResume(ctx context.Context, state graph.State, node string, onStep graph.StepFunc) (graph.State, error) {
	return w.graph.StreamResume(ctx, state, node, onStep)
}
