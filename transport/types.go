// Package transport is the thin HTTP surface over the orchestration
// runtime: request in, workflow input; streaming chunks out, response.
// Specified only for completeness (§6) — every decision here is a
// transport concern, never core routing/confidence logic, which lives
// entirely in supervisor/empathy/agentcore.
//
// Grounded on the teacher's chi-based HTTP conventions
// (pkg/transport/http_metrics_middleware.go's Flusher-aware response
// wrapper for SSE, chi.RouteContext for route-pattern metrics labels) and
// go-chi/chi/v5, already a teacher dependency.
package transport

import "time"

// chatMessageRequest is the body of POST /chat/message and /chat/stream.
type chatMessageRequest struct {
	Content        string `json:"content"`
	UserID         string `json:"user_id"`
	ConversationID string `json:"conversation_id"`
	MessageType    string `json:"message_type,omitempty"`
	Timestamp      string `json:"timestamp,omitempty"`
}

// agentResponseDTO mirrors agentcore.Response over the wire.
type agentResponseDTO struct {
	Content          string         `json:"content"`
	SpecialistType   string         `json:"specialist_type"`
	ConfidenceScore  float64        `json:"confidence_score"`
	ToolsUsed        []string       `json:"tools_used"`
	NextActions      []string       `json:"next_actions"`
	Sources          []string       `json:"sources"`
	Metadata         map[string]any `json:"metadata"`
	Success          bool           `json:"success"`
	ErrorMessage     string         `json:"error_message,omitempty"`
	ProcessingTimeMS float64        `json:"processing_time_ms"`
}

// routingInfoDTO accompanies every chatMessageResponse, per the spec's
// "routing_info object exposing the recommended specialist and whether
// delegation occurred".
type routingInfoDTO struct {
	RecommendedSpecialist string `json:"recommended_specialist,omitempty"`
	DelegationOccurred    bool   `json:"delegation_occurred"`
}

type chatMessageResponse struct {
	Response    agentResponseDTO `json:"response"`
	RoutingInfo routingInfoDTO   `json:"routing_info"`
}

type messageDTO struct {
	Kind      string    `json:"kind"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type historyResponse struct {
	ConversationID string       `json:"conversation_id"`
	Messages       []messageDTO `json:"messages"`
}

type summaryResponse struct {
	ConversationID string   `json:"conversation_id"`
	MessageCount   int      `json:"message_count"`
	Specialists    []string `json:"specialists_used"`
	Complete       bool     `json:"complete"`
}

type conversationListResponse struct {
	Conversations []string `json:"conversations"`
}

type statsResponse struct {
	TotalSessions int      `json:"total_sessions"`
	Specialists   []string `json:"specialists_used"`
}

type healthResponse struct {
	Status     string          `json:"status"`
	Components map[string]bool `json:"components"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// delegateRequest is the body of POST /chat/delegate, a thin endpoint for
// exercising supervisor.DelegateToSpecialist directly rather than through
// the graph's own routing.
type delegateRequest struct {
	SpecialistID   string `json:"specialist_id"`
	Content        string `json:"content"`
	UserID         string `json:"user_id"`
	ConversationID string `json:"conversation_id"`
}

type delegateResponse struct {
	Response agentResponseDTO `json:"response"`
}
