// Package agentcore defines the Agent Contract every specialist implements
// and the Runtime that carries a message through the classify -> respond ->
// score -> reflect pipeline common to all of them.
package agentcore

import "context"

// Agent is the uniform capability every specialist and the supervisor
// expose. Dispatch happens by specialist id, never by type assertion.
type Agent interface {
	HandleInteraction(ctx context.Context, in Interaction) (Response, error)
	SpecialistType() string
}

// Interaction is the input side of the Agent Contract.
type Interaction struct {
	Message        string
	UserID         string
	ConversationID string
	SessionData    map[string]any
	UserProfile    map[string]any
}
