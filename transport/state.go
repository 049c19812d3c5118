package transport

import (
	"strings"
	"sync"
	"time"

	"github.com/climatevia/pathway/agentcore"
	"github.com/climatevia/pathway/graph"
)

// conversationSnapshot is everything the transport needs to resume a
// conversation's single long-lived graph execution across HTTP turns: a
// graph execution suspends at human_steering_point between turns exactly as
// often as the conversation needs another human message, so the transport's
// job is to hold the suspended state and feed each new turn back in as a
// Resume rather than restarting Invoke from the entry point.
type conversationSnapshot struct {
	state      graph.State
	node       string // node to Resume at; empty means "start fresh with Invoke"
	terminated bool   // graph reached End; next turn starts a fresh Invoke seeded from state
}

// conversationStore holds one snapshot per (user_id, conversation_id),
// mirroring session.Tracker's keying but distinct from it: the tracker
// holds a rolling message window and usage counters for observability,
// this store holds the actual graph.State needed to resume execution.
type conversationStore struct {
	mu   sync.Mutex
	data map[string]*conversationSnapshot
}

func newConversationStore() *conversationStore {
	return &conversationStore{data: make(map[string]*conversationSnapshot)}
}

func conversationKey(userID, conversationID string) string {
	return userID + "\x00" + conversationID
}

func (s *conversationStore) get(userID, conversationID string) (*conversationSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.data[conversationKey(userID, conversationID)]
	return snap, ok
}

func (s *conversationStore) put(userID, conversationID string, snap *conversationSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[conversationKey(userID, conversationID)] = snap
}

func (s *conversationStore) delete(userID, conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, conversationKey(userID, conversationID))
}

// listForUser returns the conversation IDs this store holds a snapshot for
// under userID, in no particular order.
func (s *conversationStore) listForUser(userID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefix := userID + "\x00"
	var ids []string
	for key := range s.data {
		if rest, ok := strings.CutPrefix(key, prefix); ok {
			ids = append(ids, rest)
		}
	}
	return ids
}

func humanMessage(content string) any {
	return agentcore.Message{Kind: agentcore.Human, Content: content, Timestamp: time.Now()}
}

func appendHumanMessage(state graph.State, content string) graph.State {
	next := state.Clone()
	existing, _ := next["messages"].([]any)
	next["messages"] = append(append([]any{}, existing...), humanMessage(content))
	return next
}
