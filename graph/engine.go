package graph

import (
	"context"
	"errors"

	"github.com/climatevia/pathway/errs"
)

type conditionalEdge struct {
	router  RouterFunc
	labelTo map[string]string
}

// Graph is a builder and executor for one workflow: register nodes, wire
// edges, then Invoke from an entry point.
type Graph struct {
	nodes       map[string]NodeFunc
	edges       map[string]string
	conditional map[string]conditionalEdge
	entry       string
	maxSteps    int
}

// NewGraph constructs an empty graph. maxSteps bounds one Invoke call: if
// execution reaches maxSteps node transitions without hitting End, Invoke
// fails with InternalInvariant rather than looping forever. maxSteps <= 0
// means "no bound" (the caller's node graph is expected to be acyclic or to
// terminate via conditional edges).
func NewGraph(maxSteps int) *Graph {
	return &Graph{
		nodes:       make(map[string]NodeFunc),
		edges:       make(map[string]string),
		conditional: make(map[string]conditionalEdge),
		maxSteps:    maxSteps,
	}
}

// AddNode registers a named node.
func (g *Graph) AddNode(name string, fn NodeFunc) *Graph {
	g.nodes[name] = fn
	return g
}

// AddEdge wires an unconditional transition from -> to. to may be End.
func (g *Graph) AddEdge(from, to string) *Graph {
	g.edges[from] = to
	return g
}

// AddConditionalEdge wires from to one of several destinations, chosen by
// calling router against the state once from's node has run.
func (g *Graph) AddConditionalEdge(from string, router RouterFunc, labelTo map[string]string) *Graph {
	g.conditional[from] = conditionalEdge{router: router, labelTo: labelTo}
	return g
}

// SetEntryPoint designates which node Invoke starts at (equivalent to an
// edge from Start to name).
func (g *Graph) SetEntryPoint(name string) *Graph {
	g.entry = name
	return g
}

// Invoke runs the graph from its entry point against initial, returning the
// final state once a node transitions to End. If a node suspends via
// Interrupt, Invoke returns the partially-merged state and an *Interrupted
// error; call Resume with the same values to continue.
func (g *Graph) Invoke(ctx context.Context, initial State) (State, error) {
	if g.entry == "" {
		return initial, errs.New(errs.InternalInvariant, "graph: no entry point set")
	}
	return g.run(ctx, initial, g.entry)
}

// Resume re-enters the graph at node with state, continuing execution
// exactly as Invoke would from that point. node and state are normally the
// Node and State fields of a previously-returned *Interrupted.
func (g *Graph) Resume(ctx context.Context, state State, node string) (State, error) {
	return g.run(ctx, state, node)
}

// StepFunc is invoked after a node completes and its partial update has been
// merged, before the next node is chosen. Used by Stream to surface
// incremental per-node output; node and state are the ones that just ran.
type StepFunc func(node string, state State)

// Stream runs the graph exactly as Invoke does, additionally calling onStep
// after every node completes. onStep is never called for the terminal state
// transition into End.
func (g *Graph) Stream(ctx context.Context, initial State, onStep StepFunc) (State, error) {
	if g.entry == "" {
		return initial, errs.New(errs.InternalInvariant, "graph: no entry point set")
	}
	return g.run(ctx, initial, g.entry, onStep)
}

// StreamResume is Resume with Stream's per-node onStep callback, for
// relaying a resumed turn's remaining nodes incrementally.
func (g *Graph) StreamResume(ctx context.Context, state State, node string, onStep StepFunc) (State, error) {
	return g.run(ctx, state, node, onStep)
}

func (g *Graph) run(ctx context.Context, state State, current string, onStep ...StepFunc) (State, error) {
	steps := 0
	for current != End {
		if g.maxSteps > 0 && steps >= g.maxSteps {
			return state, errs.New(errs.InternalInvariant, "graph: exceeded max steps")
		}
		steps++

		fn, ok := g.nodes[current]
		if !ok {
			return state, errs.New(errs.InternalInvariant, "graph: no node registered for '"+current+"'")
		}

		select {
		case <-ctx.Done():
			return state, errs.Wrap(errs.Cancelled, "graph: context done mid-execution", ctx.Err())
		default:
		}

		partial, err := fn(ctx, state)
		var interrupted *Interrupted
		if errors.As(err, &interrupted) {
			interrupted.Node = current
			interrupted.State = merge(state, partial)
			return interrupted.State, interrupted
		}
		if err != nil {
			return state, err
		}

		state = merge(state, partial)
		for _, step := range onStep {
			if step != nil {
				step(current, state)
			}
		}

		next, err := g.next(current, state)
		if err != nil {
			return state, err
		}
		current = next
	}
	return state, nil
}

func (g *Graph) next(current string, state State) (string, error) {
	if edge, ok := g.conditional[current]; ok {
		label := edge.router(state)
		to, ok := edge.labelTo[label]
		if !ok {
			return "", errs.New(errs.InternalInvariant, "graph: router for '"+current+"' returned unknown label '"+label+"'")
		}
		return to, nil
	}
	if to, ok := g.edges[current]; ok {
		return to, nil
	}
	return "", errs.New(errs.InternalInvariant, "graph: node '"+current+"' has no outgoing edge")
}
