// Package session implements the Session Tracker: a sharded, in-process map
// keyed by (user_id, conversation_id) holding a rolling message window and
// per-user usage counters, swept for expiry on a timer.
//
// Written from first principles against this module's Session Tracker
// contract rather than copied from the teacher's pkg/session (an
// AGPL-licensed, ADK-style multi-session service addressing a different
// abstraction). The sharded-mutex discipline mirrors the concurrency
// guarantees the graph engine's State threading relies on: unrelated
// conversations never contend on the same lock.
package session

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/climatevia/pathway/agentcore"
	"github.com/climatevia/pathway/config"
)

const shardCount = 16

// Key identifies one tracked conversation.
type Key struct {
	UserID         string
	ConversationID string
}

// Record is the rolling state kept for one (user_id, conversation_id) pair.
type Record struct {
	Messages        []agentcore.Message
	SpecialistsUsed map[string]bool
	Complete        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// UserStats is the per-user aggregate the tracker maintains across all of a
// user's conversations.
type UserStats struct {
	TotalSessions   int
	SpecialistsUsed map[string]bool
}

type shard struct {
	mu       sync.Mutex
	sessions map[Key]*Record
}

// Tracker maintains per-conversation rolling windows and per-user counters.
// Safe for concurrent use.
type Tracker struct {
	cfg    config.SessionConfig
	shards [shardCount]*shard

	usersMu sync.Mutex
	users   map[string]*UserStats

	stop chan struct{}
	once sync.Once
}

// New constructs a Tracker. Call Start to begin the expiry sweep.
func New(cfg config.SessionConfig) *Tracker {
	t := &Tracker{
		cfg:   cfg,
		users: make(map[string]*UserStats),
		stop:  make(chan struct{}),
	}
	for i := range t.shards {
		t.shards[i] = &shard{sessions: make(map[Key]*Record)}
	}
	return t
}

func (t *Tracker) shardFor(key Key) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key.UserID + "\x00" + key.ConversationID))
	return t.shards[h.Sum32()%shardCount]
}

// RecordTurn appends msg to the conversation's rolling window, truncating to
// the configured window size, and — when specialistID is non-empty —
// records it against the conversation's and the user's specialist-usage
// sets. A first-seen (user_id, conversation_id) pair bumps the user's
// total_sessions counter.
func (t *Tracker) RecordTurn(userID, conversationID, specialistID string, msg agentcore.Message) {
	key := Key{UserID: userID, ConversationID: conversationID}
	s := t.shardFor(key)

	s.mu.Lock()
	rec, exists := s.sessions[key]
	if !exists {
		rec = &Record{SpecialistsUsed: make(map[string]bool), CreatedAt: time.Now()}
		s.sessions[key] = rec
	}
	rec.Messages = append(rec.Messages, msg)
	if over := len(rec.Messages) - t.cfg.WindowSize; over > 0 {
		rec.Messages = rec.Messages[over:]
	}
	if specialistID != "" {
		rec.SpecialistsUsed[specialistID] = true
	}
	rec.UpdatedAt = time.Now()
	s.mu.Unlock()

	t.usersMu.Lock()
	stats, ok := t.users[userID]
	if !ok {
		stats = &UserStats{SpecialistsUsed: make(map[string]bool)}
		t.users[userID] = stats
	}
	if !exists {
		stats.TotalSessions++
	}
	if specialistID != "" {
		stats.SpecialistsUsed[specialistID] = true
	}
	t.usersMu.Unlock()
}

// MarkComplete flags a conversation as finished. The flag does not affect
// the expiry sweep, which removes any record, complete or not, that has
// gone Expiry without an update.
func (t *Tracker) MarkComplete(userID, conversationID string) {
	key := Key{UserID: userID, ConversationID: conversationID}
	s := t.shardFor(key)

	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.sessions[key]; ok {
		rec.Complete = true
		rec.UpdatedAt = time.Now()
	}
}

// History returns a copy of the conversation's rolling message window.
func (t *Tracker) History(userID, conversationID string) []agentcore.Message {
	key := Key{UserID: userID, ConversationID: conversationID}
	s := t.shardFor(key)

	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.sessions[key]
	if !ok {
		return nil
	}
	out := make([]agentcore.Message, len(rec.Messages))
	copy(out, rec.Messages)
	return out
}

// Stats returns a copy of userID's aggregate counters.
func (t *Tracker) Stats(userID string) UserStats {
	t.usersMu.Lock()
	defer t.usersMu.Unlock()

	stats, ok := t.users[userID]
	if !ok {
		return UserStats{SpecialistsUsed: map[string]bool{}}
	}
	specialists := make(map[string]bool, len(stats.SpecialistsUsed))
	for k := range stats.SpecialistsUsed {
		specialists[k] = true
	}
	return UserStats{TotalSessions: stats.TotalSessions, SpecialistsUsed: specialists}
}

// Start launches the background expiry sweep, ticking at cfg.SweepInterval.
// It stops when ctx is done or Stop is called.
func (t *Tracker) Start(ctx context.Context) {
	ticker := time.NewTicker(t.cfg.SweepInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				t.sweep()
			case <-t.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop ends the sweep goroutine started by Start. Safe to call more than
// once.
func (t *Tracker) Stop() {
	t.once.Do(func() { close(t.stop) })
}

func (t *Tracker) sweep() {
	cutoff := time.Now().Add(-t.cfg.Expiry)
	for _, s := range t.shards {
		s.mu.Lock()
		for key, rec := range s.sessions {
			if rec.UpdatedAt.Before(cutoff) {
				delete(s.sessions, key)
			}
		}
		s.mu.Unlock()
	}
}
