// Package graph implements the Workflow Graph Engine: a typed state-machine
// primitive with named nodes, unconditional and conditional edges, a
// per-field reducer (append-only for "messages", last-writer-wins for
// everything else), and a suspend/resume interrupt primitive.
package graph

import "context"

// Start and End are the sentinel node names every graph implicitly has:
// execution begins at the node pointed to from Start and finishes the
// instant it reaches End.
const (
	Start = "__start__"
	End   = "__end__"
)

// State is the shared, versioned data a graph execution threads through
// every node. Keys are field names; "messages" is reduced by append, every
// other key by last-writer-wins.
type State map[string]any

// PartialState is what a node returns: only the fields it wants to update.
type PartialState map[string]any

// NodeFunc is one step of the graph: it reads the current state and
// returns the fields it changed. A NodeFunc may return an *Interrupted to
// suspend the graph instead of continuing.
type NodeFunc func(ctx context.Context, state State) (PartialState, error)

// RouterFunc inspects state and returns a label used to choose the next
// node from a conditional edge's label table.
type RouterFunc func(state State) string

// Clone returns a shallow copy of s, safe to mutate without affecting the
// caller's copy.
func (s State) Clone() State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// merge applies update onto base using the graph's reducer rules and
// returns the resulting state, leaving base untouched.
func merge(base State, update PartialState) State {
	out := base.Clone()
	for k, v := range update {
		if k == "messages" {
			out[k] = appendMessages(out[k], v)
			continue
		}
		out[k] = v
	}
	return out
}

// appendMessages concatenates the existing "messages" value with the new
// one, treating either side as a slice if it already is one.
func appendMessages(existing, incoming any) any {
	existingSlice := toSlice(existing)
	incomingSlice := toSlice(incoming)
	return append(existingSlice, incomingSlice...)
}

func toSlice(v any) []any {
	if v == nil {
		return nil
	}
	if s, ok := v.([]any); ok {
		return s
	}
	return []any{v}
}
