package agentcore

import "time"

// MessageKind tags one turn in a conversation history.
type MessageKind string

const (
	Human  MessageKind = "human"
	AI     MessageKind = "ai"
	System MessageKind = "system"
)

// Message is one turn, kept for building LLM prompt context and for the
// Memory Store's episodic log.
type Message struct {
	Kind      MessageKind
	Content   string
	Timestamp time.Time
}

// Context is everything a specialist has available while handling one
// interaction: identity, session and profile data threaded in from the
// caller, and the rolling conversation window.
type Context struct {
	UserID             string
	ConversationID     string
	SessionData        map[string]any
	UserProfile        map[string]any
	ConversationHistory []Message
	Metadata           map[string]any
}

// buildContext assembles an AgentContext from an Interaction, trimming the
// conversation history to the window the agent's config allows.
func buildContext(in Interaction, history []Message, maxMessages int) Context {
	if maxMessages > 0 && len(history) > maxMessages {
		history = history[len(history)-maxMessages:]
	}
	sessionData := in.SessionData
	if sessionData == nil {
		sessionData = map[string]any{}
	}
	userProfile := in.UserProfile
	if userProfile == nil {
		userProfile = map[string]any{}
	}
	return Context{
		UserID:              in.UserID,
		ConversationID:      in.ConversationID,
		SessionData:         sessionData,
		UserProfile:         userProfile,
		ConversationHistory: history,
		Metadata:            map[string]any{},
	}
}
