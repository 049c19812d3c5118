package graph

import (
	"context"
	"testing"

	"github.com/climatevia/pathway/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoke_AppendsMessagesAndOverwritesOtherFields(t *testing.T) {
	g := NewGraph(10)
	g.AddNode("a", func(ctx context.Context, s State) (PartialState, error) {
		return PartialState{"messages": []any{"hello"}, "step": "a"}, nil
	})
	g.AddNode("b", func(ctx context.Context, s State) (PartialState, error) {
		return PartialState{"messages": []any{"world"}, "step": "b"}, nil
	})
	g.AddEdge("a", "b")
	g.AddEdge("b", End)
	g.SetEntryPoint("a")

	final, err := g.Invoke(context.Background(), State{})
	require.NoError(t, err)
	assert.Equal(t, []any{"hello", "world"}, final["messages"])
	assert.Equal(t, "b", final["step"]) // last writer wins
}

func TestInvoke_ConditionalEdgeRoutesByLabel(t *testing.T) {
	g := NewGraph(10)
	g.AddNode("route", func(ctx context.Context, s State) (PartialState, error) {
		return nil, nil
	})
	g.AddNode("left", func(ctx context.Context, s State) (PartialState, error) {
		return PartialState{"visited": "left"}, nil
	})
	g.AddNode("right", func(ctx context.Context, s State) (PartialState, error) {
		return PartialState{"visited": "right"}, nil
	})
	g.AddConditionalEdge("route", func(s State) string {
		return s["which"].(string)
	}, map[string]string{"left": "left", "right": "right"})
	g.AddEdge("left", End)
	g.AddEdge("right", End)
	g.SetEntryPoint("route")

	final, err := g.Invoke(context.Background(), State{"which": "right"})
	require.NoError(t, err)
	assert.Equal(t, "right", final["visited"])
}

func TestInvoke_ExceedsMaxStepsFailsClosed(t *testing.T) {
	g := NewGraph(2)
	g.AddNode("loop", func(ctx context.Context, s State) (PartialState, error) {
		return nil, nil
	})
	g.AddEdge("loop", "loop")
	g.SetEntryPoint("loop")

	_, err := g.Invoke(context.Background(), State{})
	require.Error(t, err)
	assert.Equal(t, errs.InternalInvariant, errs.KindOf(err))
}

func TestInvoke_InterruptSuspendsAndResumeReentersSameNode(t *testing.T) {
	g := NewGraph(10)
	calls := 0
	g.AddNode("ask", func(ctx context.Context, s State) (PartialState, error) {
		calls++
		if _, answered := s["answer"]; !answered {
			return PartialState{"asked": true}, Interrupt("what's your favorite color?")
		}
		return PartialState{"done": true}, nil
	})
	g.AddEdge("ask", End)
	g.SetEntryPoint("ask")

	state, err := g.Invoke(context.Background(), State{})
	require.Error(t, err)
	var interrupted *Interrupted
	require.ErrorAs(t, err, &interrupted)
	assert.Equal(t, "ask", interrupted.Node)
	assert.Equal(t, true, state["asked"])
	assert.Equal(t, 1, calls)

	state["answer"] = "blue"
	final, err := g.Resume(context.Background(), state, interrupted.Node)
	require.NoError(t, err)
	assert.Equal(t, true, final["done"])
	assert.Equal(t, 2, calls)
}
