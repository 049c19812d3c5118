package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/climatevia/pathway/graph"
)

// invokeOrStream runs a fresh Invoke, relaying per-node output through
// onStep (and recording per-node metrics) when onStep is non-nil.
func (s *Server) invokeOrStream(ctx context.Context, initial graph.State, onStep graph.StepFunc) (graph.State, error) {
	if onStep == nil {
		return s.supervisorWF.Invoke(ctx, initial)
	}
	return s.supervisorWF.Stream(ctx, initial, s.timedStep(onStep))
}

// resumeOrStream is invokeOrStream's counterpart for resuming a suspended
// snapshot at node, going through Workflow.StreamResume (with the same
// per-node relay and metrics) when onStep is non-nil.
func (s *Server) resumeOrStream(ctx context.Context, state graph.State, node string, onStep graph.StepFunc) (graph.State, error) {
	if onStep == nil {
		return s.supervisorWF.Resume(ctx, state, node)
	}
	return s.supervisorWF.StreamResume(ctx, state, node, s.timedStep(onStep))
}

// timedStep wraps onStep so every relayed node also records a metrics
// observation, timing the gap between consecutive step callbacks.
func (s *Server) timedStep(onStep graph.StepFunc) graph.StepFunc {
	last := time.Now()
	return func(node string, state graph.State) {
		now := time.Now()
		s.metrics.RecordNode(node, now.Sub(last), nil)
		last = now
		onStep(node, state)
	}
}

type sseEvent struct {
	Node     string         `json:"node"`
	Response agentResponseDTO `json:"response"`
}

// handleChatStream responds with a text/event-stream of one event per
// completed graph node, terminating with an explicit end-of-stream marker
// once the turn either reaches End or suspends at a human steering point.
func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	req, err := decodeChatRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, fmt.Errorf("transport: streaming unsupported by response writer"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	enc := json.NewEncoder(w)
	onStep := func(node string, state graph.State) {
		fmt.Fprint(w, "event: node\ndata: ")
		_ = enc.Encode(sseEvent{Node: node, Response: partialResponseDTO(state)})
		fmt.Fprint(w, "\n")
		flusher.Flush()
	}

	start := time.Now()
	final, interrupted, err := s.runTurn(r.Context(), req, onStep)
	if err != nil {
		fmt.Fprintf(w, "event: error\ndata: %s\n\n", err.Error())
		flusher.Flush()
		return
	}

	s.recordTurn(req, final)

	fmt.Fprint(w, "event: final\ndata: ")
	_ = enc.Encode(buildChatResponse(final, interrupted, time.Since(start)))
	fmt.Fprint(w, "\n\n")
	fmt.Fprint(w, "event: done\ndata: [DONE]\n\n")
	flusher.Flush()
}

func partialResponseDTO(state graph.State) agentResponseDTO {
	return agentResponseDTO{
		Content:         lastAIMessage(state),
		SpecialistType:  latestSpecialist(state),
		ConfidenceScore: func() float64 { v, _ := state["overall_confidence"].(float64); return v }(),
		Success:         true,
	}
}
