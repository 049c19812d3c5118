package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/climatevia/pathway/agentcore"
	"github.com/climatevia/pathway/errs"
	"github.com/climatevia/pathway/graph"
	"github.com/climatevia/pathway/supervisor"
)

func decodeJSON(r *http.Request, out any) error {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		return errs.Wrap(errs.InvalidInput, "decode request body", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status: "ok",
		Components: map[string]bool{
			"orchestrator": s.supervisorWF != nil,
			"auth":         s.authv != nil,
			"cache":        s.cacheStore != nil,
		},
	})
}

func (s *Server) handleChatHealth(w http.ResponseWriter, r *http.Request) {
	s.handleHealth(w, r)
}

// decodeChatRequest parses the body and, when the request carries an
// authenticated principal, trusts its UserID over whatever the body claims
// — a caller cannot act on behalf of another user merely by editing the
// JSON body.
func decodeChatRequest(r *http.Request) (chatMessageRequest, error) {
	var req chatMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		return req, err
	}
	if principal, ok := principalFrom(r.Context()); ok {
		req.UserID = principal.UserID
	}
	if req.Content == "" || req.UserID == "" || req.ConversationID == "" {
		return req, errs.New(errs.InvalidInput, "content, user_id and conversation_id are required")
	}
	return req, nil
}

func (s *Server) handleChatMessage(w http.ResponseWriter, r *http.Request) {
	req, err := decodeChatRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	start := time.Now()
	final, interrupted, err := s.runTurn(r.Context(), req, nil)
	if err != nil {
		writeError(w, err)
		return
	}

	s.recordTurn(req, final)
	writeJSON(w, http.StatusOK, buildChatResponse(final, interrupted, time.Since(start)))
}

// runTurn advances the conversation's graph execution by one human turn,
// resuming a suspended snapshot, starting a fresh leg after completion, or
// invoking from scratch for a conversation this store hasn't seen yet. If
// onStep is non-nil the turn streams through Workflow.Stream instead of
// Invoke/Resume.
func (s *Server) runTurn(ctx context.Context, req chatMessageRequest, onStep graph.StepFunc) (graph.State, *graph.Interrupted, error) {
	snap, ok := s.conversations.get(req.UserID, req.ConversationID)

	var (
		state graph.State
		err   error
	)

	switch {
	case !ok:
		state, err = s.invokeOrStream(ctx, appendHumanMessage(freshState(req), req.Content), onStep)
	case snap.terminated:
		state, err = s.invokeOrStream(ctx, appendHumanMessage(snap.state, req.Content), onStep)
	default:
		state, err = s.resumeOrStream(ctx, appendHumanMessage(snap.state, req.Content), snap.node, onStep)
	}

	var interrupted *graph.Interrupted
	if errors.As(err, &interrupted) {
		s.conversations.put(req.UserID, req.ConversationID, &conversationSnapshot{
			state: interrupted.State,
			node:  interrupted.Node,
		})
		return interrupted.State, interrupted, nil
	}
	if err != nil {
		return nil, nil, err
	}

	s.conversations.put(req.UserID, req.ConversationID, &conversationSnapshot{state: state, terminated: true})
	return state, nil, nil
}

func freshState(req chatMessageRequest) graph.State {
	return graph.State{
		"messages":        []any{},
		"user_id":         req.UserID,
		"conversation_id": req.ConversationID,
	}
}

func (s *Server) recordTurn(req chatMessageRequest, final graph.State) {
	if s.sessions == nil {
		return
	}
	s.sessions.RecordTurn(req.UserID, req.ConversationID, latestSpecialist(final),
		agentcore.Message{Kind: agentcore.Human, Content: req.Content, Timestamp: time.Now()})
	if boolAt(final, "conversation_complete") {
		s.sessions.MarkComplete(req.UserID, req.ConversationID)
	}
}

func buildChatResponse(state graph.State, interrupted *graph.Interrupted, elapsed time.Duration) chatMessageResponse {
	specialist := latestSpecialist(state)
	conf, _ := state["overall_confidence"].(float64)

	resp := agentResponseDTO{
		Content:          lastAIMessage(state),
		SpecialistType:   specialist,
		ConfidenceScore:  conf,
		Sources:          latestSources(state),
		NextActions:      latestNextActions(state),
		Success:          true,
		ProcessingTimeMS: float64(elapsed.Microseconds()) / 1000,
	}
	if interrupted != nil {
		resp.Metadata = map[string]any{"human_steering_context": interrupted.Payload}
	}

	return chatMessageResponse{
		Response: resp,
		RoutingInfo: routingInfoDTO{
			RecommendedSpecialist: specialist,
			DelegationOccurred:    specialist != "" && specialist != "pendo",
		},
	}
}

func boolAt(state graph.State, key string) bool {
	v, _ := state[key].(bool)
	return v
}

func lastAIMessage(state graph.State) string {
	msgs, _ := state["messages"].([]any)
	for i := len(msgs) - 1; i >= 0; i-- {
		if m, ok := msgs[i].(agentcore.Message); ok && m.Kind == agentcore.AI {
			return m.Content
		}
	}
	return ""
}

func findings(state graph.State) []supervisor.Finding {
	v, _ := state["findings"].([]supervisor.Finding)
	return v
}

func latestSpecialist(state graph.State) string {
	fs := findings(state)
	if len(fs) == 0 {
		return ""
	}
	return fs[len(fs)-1].Agent
}

func latestSources(state graph.State) []string {
	fs := findings(state)
	if len(fs) == 0 {
		return nil
	}
	return fs[len(fs)-1].Sources
}

func latestNextActions(state graph.State) []string {
	fs := findings(state)
	if len(fs) == 0 {
		return nil
	}
	return fs[len(fs)-1].NextActions
}

// handleChatDelegate bypasses the graph entirely and invokes one named
// specialist directly, matching pendo/agent.py's explicit
// delegate_to_specialist method. Useful for testing a specialist in
// isolation from the routing that would otherwise reach it.
func (s *Server) handleChatDelegate(w http.ResponseWriter, r *http.Request) {
	if s.delegate == nil {
		writeError(w, errs.New(errs.Unavailable, "delegation is not configured"))
		return
	}

	var req delegateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if principal, ok := principalFrom(r.Context()); ok {
		req.UserID = principal.UserID
	}
	if req.SpecialistID == "" || req.Content == "" || req.UserID == "" || req.ConversationID == "" {
		writeError(w, errs.New(errs.InvalidInput, "specialist_id, content, user_id and conversation_id are required"))
		return
	}

	start := time.Now()
	resp, err := s.delegate.DelegateToSpecialist(r.Context(), req.SpecialistID, agentcore.Interaction{
		Message:        req.Content,
		UserID:         req.UserID,
		ConversationID: req.ConversationID,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, delegateResponse{Response: agentResponseDTO{
		Content:          resp.Content,
		SpecialistType:   resp.SpecialistType,
		ConfidenceScore:  resp.ConfidenceScore,
		ToolsUsed:        resp.ToolsUsed,
		NextActions:      resp.NextActions,
		Sources:          resp.Sources,
		Metadata:         resp.Metadata,
		Success:          resp.Success,
		ErrorMessage:     resp.ErrorMessage,
		ProcessingTimeMS: float64(time.Since(start).Microseconds()) / 1000,
	}})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	userID, conversationID, err := s.requireUserAndConversation(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var msgs []messageDTO
	if s.sessions != nil {
		for _, m := range s.sessions.History(userID, conversationID) {
			msgs = append(msgs, messageDTO{Kind: string(m.Kind), Content: m.Content, Timestamp: m.Timestamp})
		}
	}
	writeJSON(w, http.StatusOK, historyResponse{ConversationID: conversationID, Messages: msgs})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	userID, conversationID, err := s.requireUserAndConversation(r)
	if err != nil {
		writeError(w, err)
		return
	}

	snap, ok := s.conversations.get(userID, conversationID)
	complete := ok && snap.terminated

	var specialists []string
	if ok {
		seen := map[string]bool{}
		for _, f := range findings(snap.state) {
			if f.Agent != "" && !seen[f.Agent] {
				seen[f.Agent] = true
				specialists = append(specialists, f.Agent)
			}
		}
	}

	count := 0
	if s.sessions != nil {
		count = len(s.sessions.History(userID, conversationID))
	}

	writeJSON(w, http.StatusOK, summaryResponse{
		ConversationID: conversationID,
		MessageCount:   count,
		Specialists:    specialists,
		Complete:       complete,
	})
}

func (s *Server) handleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	userID, conversationID, err := s.requireUserAndConversation(r)
	if err != nil {
		writeError(w, err)
		return
	}
	s.conversations.delete(userID, conversationID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, errs.New(errs.InvalidInput, "user_id query parameter is required"))
		return
	}
	writeJSON(w, http.StatusOK, conversationListResponse{Conversations: s.conversations.listForUser(userID)})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, errs.New(errs.InvalidInput, "user_id query parameter is required"))
		return
	}
	if s.sessions == nil {
		writeJSON(w, http.StatusOK, statsResponse{})
		return
	}
	stats := s.sessions.Stats(userID)
	var specialists []string
	for name := range stats.SpecialistsUsed {
		specialists = append(specialists, name)
	}
	writeJSON(w, http.StatusOK, statsResponse{TotalSessions: stats.TotalSessions, Specialists: specialists})
}

func (s *Server) requireUserAndConversation(r *http.Request) (string, string, error) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		return "", "", errs.New(errs.InvalidInput, "user_id query parameter is required")
	}
	conversationID := chi.URLParam(r, "conversationID")
	if conversationID == "" {
		return "", "", errs.New(errs.InvalidInput, "conversation_id path parameter is required")
	}
	return userID, conversationID, nil
}
