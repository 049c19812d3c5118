package llms

import "time"

// Message is the universal chat message format every gateway backend
// converts to and from its own wire format.
type Message struct {
	Role    string // "system", "user", "assistant"
	Content string
}

// ChatRequest is a chat-completion call: a message history plus generation
// parameters. Zero MaxTokens/Temperature mean "use the provider's configured
// default".
type ChatRequest struct {
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// ChatResponse is the result of a chat-completion call.
type ChatResponse struct {
	Text       string
	TokensUsed int
	Latency    time.Duration
}

// StructuredRequest is a structured-output call: a message history plus the
// shape the reply must conform to. Schema is reflected from SchemaValue via
// invopop/jsonschema; SchemaValue is never mutated, only used as a type
// template.
type StructuredRequest struct {
	Messages    []Message
	SchemaName  string
	SchemaValue any
}

// StreamChunk is one element of a streaming chat response. The stream ends
// with a chunk carrying Done=true and the final usage count; a read failure
// is delivered as a chunk with a non-nil Err just before that final chunk.
type StreamChunk struct {
	Text       string
	Done       bool
	TokensUsed int
	Err        error
}
