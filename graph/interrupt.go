package graph

import "fmt"

// Interrupted is returned by Invoke when a node suspends the graph via
// Interrupt. It carries everything needed to resume: the node that
// suspended and the state as of the suspension, with that node's partial
// update already merged in, per the spec's "on resume, the same node
// re-executes and the previously-returned partial state is merged before
// the re-entry" contract.
type Interrupted struct {
	Node    string
	State   State
	Payload any
}

func (i *Interrupted) Error() string {
	return fmt.Sprintf("graph: interrupted at node %q", i.Node)
}

// Interrupt is called from within a NodeFunc to suspend the graph,
// carrying payload (e.g. a human-steering question) out to the caller.
// The node's partial state update, if any, should still be returned
// alongside this error — Invoke merges it before surfacing the
// Interrupted value.
func Interrupt(payload any) error {
	return &Interrupted{Payload: payload}
}
